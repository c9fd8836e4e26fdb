package vulkan

import (
	"github.com/NOT-REAL-GAMES/plume/gpu"
	"github.com/NOT-REAL-GAMES/plume/vk"
)

type Queue struct {
	name  string
	queue vk.Queue
}

var _ gpu.Queue = (*Queue)(nil)

func (q *Queue) Name() string {
	return q.name
}

func (q *Queue) Submit(info gpu.SubmitInfo) error {
	submit := vk.SubmitInfo{CommandBuffers: unwrapCommands(info.CommandBuffers)}
	for _, w := range info.Waits {
		submit.WaitSemaphores = append(submit.WaitSemaphores, vk.SemaphoreFromRaw(uint64(w.Semaphore)))
		submit.WaitDstStageMask = append(submit.WaitDstStageMask, vk.PipelineStageFlags(w.Stage))
	}
	for _, s := range info.Signal {
		submit.SignalSemaphores = append(submit.SignalSemaphores, vk.SemaphoreFromRaw(uint64(s)))
	}
	err := q.queue.Submit([]vk.SubmitInfo{submit}, vk.FenceFromRaw(uint64(info.Fence)))
	return translate(err)
}

func (q *Queue) Present(info gpu.PresentInfo) error {
	present := vk.PresentInfoKHR{
		Swapchains:   []vk.SwapchainKHR{vk.SwapchainFromRaw(uint64(info.Swapchain))},
		ImageIndices: []uint32{info.ImageIndex},
	}
	if info.Wait != 0 {
		present.WaitSemaphores = []vk.Semaphore{vk.SemaphoreFromRaw(uint64(info.Wait))}
	}
	return translate(q.queue.QueuePresentKHR(&present))
}

func (q *Queue) WaitIdle() error {
	return translate(q.queue.WaitIdle())
}
