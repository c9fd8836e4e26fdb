package gputest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NOT-REAL-GAMES/plume/gpu"
)

func recorded(t *testing.T, d *Device) *CommandBuffer {
	t.Helper()
	cmds, err := d.AllocateCommandBuffers(1)
	require.NoError(t, err)
	cb := cmds[0].(*CommandBuffer)
	require.NoError(t, cb.Begin(false))
	require.NoError(t, cb.End())
	return cb
}

func TestFenceLifecycle(t *testing.T) {
	d := New()
	f, err := d.CreateFence(true)
	require.NoError(t, err)
	cb := recorded(t, d)

	require.NoError(t, d.WaitFence(f, 0))
	require.NoError(t, d.ResetFence(f))
	require.NoError(t, d.Compute.Submit(gpu.SubmitInfo{CommandBuffers: []gpu.CommandBuffer{cb}, Fence: f}))
	assert.True(t, cb.Pending())
	assert.Equal(t, 1, d.Compute.Outstanding())

	require.NoError(t, d.WaitFence(f, 0))
	assert.False(t, cb.Pending())
	assert.True(t, d.Signaled(uint64(f)))
	assert.Zero(t, d.Compute.Outstanding())
	assert.Empty(t, d.Violations())
}

func TestViolations(t *testing.T) {
	tests := []struct {
		name string
		run  func(t *testing.T, d *Device)
	}{
		{
			name: "reset of pending fence",
			run: func(t *testing.T, d *Device) {
				f, _ := d.CreateFence(false)
				cb := recorded(t, d)
				_ = d.Graphics.Submit(gpu.SubmitInfo{CommandBuffers: []gpu.CommandBuffer{cb}, Fence: f})
				_ = d.ResetFence(f)
			},
		},
		{
			name: "submit with signaled fence",
			run: func(t *testing.T, d *Device) {
				f, _ := d.CreateFence(true)
				_ = d.Graphics.Submit(gpu.SubmitInfo{Fence: f})
			},
		},
		{
			name: "re-record of pending command buffer",
			run: func(t *testing.T, d *Device) {
				cb := recorded(t, d)
				_ = d.Graphics.Submit(gpu.SubmitInfo{CommandBuffers: []gpu.CommandBuffer{cb}})
				_ = cb.Begin(false)
			},
		},
		{
			name: "wait on unsignaled semaphore",
			run: func(t *testing.T, d *Device) {
				s, _ := d.CreateSemaphore()
				_ = d.Graphics.Submit(gpu.SubmitInfo{Waits: []gpu.SemaphoreWait{{Semaphore: s, Stage: gpu.StageAllCommands}}})
			},
		},
		{
			name: "double signal",
			run: func(t *testing.T, d *Device) {
				s, _ := d.CreateSemaphore()
				_ = d.Graphics.Submit(gpu.SubmitInfo{Signal: []gpu.Semaphore{s}})
				_ = d.Compute.Submit(gpu.SubmitInfo{Signal: []gpu.Semaphore{s}})
			},
		},
		{
			name: "descriptor set bound by two pending command buffers",
			run: func(t *testing.T, d *Device) {
				pool, _ := d.CreateDescriptorPool(1, nil)
				sets, _ := d.AllocateDescriptorSets(pool, []gpu.SetLayout{1})
				for i := 0; i < 2; i++ {
					cmds, _ := d.AllocateCommandBuffers(1)
					_ = cmds[0].Begin(false)
					cmds[0].BindDescriptorSets(gpu.BindCompute, 0, 0, sets[0])
					_ = cmds[0].End()
					_ = d.Compute.Submit(gpu.SubmitInfo{CommandBuffers: cmds})
				}
			},
		},
		{
			name: "double destroy",
			run: func(t *testing.T, d *Device) {
				s, _ := d.CreateSemaphore()
				d.DestroySemaphore(s)
				d.DestroySemaphore(s)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New()
			tt.run(t, d)
			assert.NotEmpty(t, d.Violations())
		})
	}
}

func TestAcquireAndPresent(t *testing.T) {
	d := New()
	sc, err := d.CreateSwapchain(gpu.SwapchainInfo{Extent: gpu.Extent{Width: 8, Height: 8}, ImageCount: 3})
	require.NoError(t, err)
	sem, _ := d.CreateSemaphore()

	d.FailAcquire(2, gpu.ErrSurfaceOutdated)
	d.FailPresent(1, gpu.ErrSurfaceSuboptimal)

	idx, err := d.AcquireNextImage(sc, sem, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), idx)
	assert.True(t, d.Signaled(uint64(sem)))

	err = d.Graphics.Present(gpu.PresentInfo{Wait: sem, Swapchain: sc, ImageIndex: idx})
	assert.ErrorIs(t, err, gpu.ErrSurfaceSuboptimal)
	assert.False(t, d.Signaled(uint64(sem)), "present consumes its wait even on error")

	_, err = d.AcquireNextImage(sc, sem, 0)
	assert.ErrorIs(t, err, gpu.ErrSurfaceOutdated)
	assert.False(t, d.Signaled(uint64(sem)))

	idx, err = d.AcquireNextImage(sc, sem, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), idx)

	assert.Equal(t, 3, d.Acquires())
	assert.Equal(t, 1, d.Presents())
	assert.Empty(t, d.Violations())
}
