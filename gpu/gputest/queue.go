package gputest

import (
	"fmt"

	"github.com/NOT-REAL-GAMES/plume/gpu"
)

type submission struct {
	queue *Queue
	cmds  []*CommandBuffer
	fence gpu.Fence
}

// Submitted is a snapshot of one Submit call.
type Submitted struct {
	Waits    []gpu.SemaphoreWait
	Signal   []gpu.Semaphore
	Fence    gpu.Fence
	Commands [][]Command
}

// Presented is a snapshot of one Present call.
type Presented struct {
	Wait       gpu.Semaphore
	Swapchain  gpu.Swapchain
	ImageIndex uint32
}

// Queue executes nothing; a submission stays pending until its fence is
// waited on or the queue or device goes idle.
type Queue struct {
	dev  *Device
	name string

	pending        []*submission
	maxOutstanding int
	history        []Submitted
	presented      []Presented
}

func (q *Queue) Submit(info gpu.SubmitInfo) error {
	d := q.dev
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail(q.name + ".Submit"); err != nil {
		return err
	}

	for _, w := range info.Waits {
		signaled, ok := d.semaphores[w.Semaphore]
		if !ok {
			d.violate("%s submit waits on unknown semaphore %d", q.name, w.Semaphore)
			continue
		}
		if !signaled {
			d.violate("%s submit waits on unsignaled semaphore %d", q.name, w.Semaphore)
		}
		d.semaphores[w.Semaphore] = false
	}

	sub := &submission{queue: q, fence: info.Fence}
	snap := Submitted{
		Waits:  append([]gpu.SemaphoreWait(nil), info.Waits...),
		Signal: append([]gpu.Semaphore(nil), info.Signal...),
		Fence:  info.Fence,
	}
	for _, c := range info.CommandBuffers {
		cb, ok := c.(*CommandBuffer)
		if !ok {
			d.violate("%s submit of foreign command buffer %T", q.name, c)
			continue
		}
		if d.live[cb.id] != KindCommandBuffer {
			d.violate("%s submit of freed command buffer %d", q.name, cb.id)
			continue
		}
		switch cb.state {
		case stateExecutable:
		case statePending:
			d.violate("command buffer %d submitted while pending", cb.id)
		default:
			d.violate("command buffer %d submitted in %s state", cb.id, cb.state)
		}
		for _, set := range cb.boundSets() {
			if other := d.pendingUser(set, cb); other != nil {
				d.violate("descriptor set %d bound by pending command buffers %d and %d", set, other.id, cb.id)
			}
		}
		cb.state = statePending
		sub.cmds = append(sub.cmds, cb)
		snap.Commands = append(snap.Commands, append([]Command(nil), cb.commands...))
	}

	for _, s := range info.Signal {
		if d.semaphores[s] {
			d.violate("%s submit signals semaphore %d that is already signaled", q.name, s)
		}
		d.semaphores[s] = true
	}

	if info.Fence != 0 {
		st, ok := d.fences[info.Fence]
		switch {
		case !ok:
			d.violate("%s submit with unknown fence %d", q.name, info.Fence)
		case st.signaled || st.pending != nil:
			d.violate("%s submit with fence %d that was not reset", q.name, info.Fence)
		}
		if ok {
			st.signaled = false
			st.pending = sub
		}
	}

	q.pending = append(q.pending, sub)
	q.maxOutstanding = max(q.maxOutstanding, len(q.pending))
	q.history = append(q.history, snap)
	return nil
}

// Present consumes the wait semaphore even when it reports an error, as a
// real presentation engine does for OUT_OF_DATE.
func (q *Queue) Present(info gpu.PresentInfo) error {
	d := q.dev
	d.mu.Lock()
	defer d.mu.Unlock()
	d.presents++

	if !d.semaphores[info.Wait] {
		d.violate("present waits on unsignaled semaphore %d", info.Wait)
	}
	d.semaphores[info.Wait] = false

	sc, ok := d.swapchains[info.Swapchain]
	if !ok {
		d.violate("present to unknown swapchain %d", info.Swapchain)
		return fmt.Errorf("unknown swapchain %d", info.Swapchain)
	}
	if int(info.ImageIndex) >= len(sc.images) {
		d.violate("present of image %d from swapchain of %d", info.ImageIndex, len(sc.images))
	}

	q.presented = append(q.presented, Presented{Wait: info.Wait, Swapchain: info.Swapchain, ImageIndex: info.ImageIndex})
	return d.presentErrs[d.presents]
}

func (q *Queue) WaitIdle() error {
	q.dev.mu.Lock()
	defer q.dev.mu.Unlock()
	q.completeAll()
	return nil
}

func (q *Queue) Submits() int {
	q.dev.mu.Lock()
	defer q.dev.mu.Unlock()
	return len(q.history)
}

// Outstanding counts submissions that have not completed.
func (q *Queue) Outstanding() int {
	q.dev.mu.Lock()
	defer q.dev.mu.Unlock()
	return len(q.pending)
}

func (q *Queue) MaxOutstanding() int {
	q.dev.mu.Lock()
	defer q.dev.mu.Unlock()
	return q.maxOutstanding
}

func (q *Queue) History() []Submitted {
	q.dev.mu.Lock()
	defer q.dev.mu.Unlock()
	return append([]Submitted(nil), q.history...)
}

func (q *Queue) Presented() []Presented {
	q.dev.mu.Lock()
	defer q.dev.mu.Unlock()
	return append([]Presented(nil), q.presented...)
}

func (q *Queue) completeThrough(sub *submission) {
	for i, s := range q.pending {
		if s != sub {
			continue
		}
		for _, done := range q.pending[:i+1] {
			done.finish(q.dev)
		}
		q.pending = q.pending[i+1:]
		return
	}
}

func (q *Queue) completeAll() {
	for _, s := range q.pending {
		s.finish(q.dev)
	}
	q.pending = nil
}

func (s *submission) finish(d *Device) {
	for _, cb := range s.cmds {
		if cb.state == statePending {
			cb.state = stateExecutable
		}
	}
	if st, ok := d.fences[s.fence]; ok && st.pending == s {
		st.pending = nil
		st.signaled = true
	}
}
