package gpu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NOT-REAL-GAMES/plume/gpu"
	"github.com/NOT-REAL-GAMES/plume/gpu/gputest"
)

func TestScopedTransfer(t *testing.T) {
	dev := gputest.New()
	ctx := dev.Context()

	var recorded gpu.CommandBuffer
	err := ctx.ScopedTransfer(func(cmd gpu.CommandBuffer) error {
		recorded = cmd
		cmd.Dispatch(1, 1, 1)
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, recorded)

	assert.Equal(t, 1, dev.Graphics.Submits())
	assert.Zero(t, dev.Compute.Submits())
	assert.Zero(t, dev.Graphics.Outstanding())
	assert.Zero(t, dev.Live(gputest.KindCommandBuffer))
	assert.Empty(t, dev.Violations())
}

func TestScopedTransferFreesOnFailure(t *testing.T) {
	dev := gputest.New()
	ctx := dev.Context()

	err := ctx.ScopedTransfer(func(cmd gpu.CommandBuffer) error {
		return errInjected
	})
	assert.ErrorIs(t, err, errInjected)
	var opErr *gpu.OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "scoped transfer: record", opErr.Op)
	assert.Zero(t, dev.Graphics.Submits())
	assert.Zero(t, dev.Live(gputest.KindCommandBuffer))

	assert.Panics(t, func() {
		_ = ctx.ScopedTransfer(func(cmd gpu.CommandBuffer) error {
			panic("record failed")
		})
	})
	assert.Zero(t, dev.Live(gputest.KindCommandBuffer))

	dev.FailNext("graphics.Submit", errInjected)
	err = ctx.ScopedTransfer(func(cmd gpu.CommandBuffer) error { return nil })
	assert.ErrorIs(t, err, errInjected)
	assert.Zero(t, dev.Live(gputest.KindCommandBuffer))
	assert.Empty(t, dev.Violations())
}

func TestUploadBuffer(t *testing.T) {
	dev := gputest.New()
	ctx := dev.Context()

	dst, err := gpu.NewBuffer(dev, 32, gpu.BufferUsageStorage|gpu.BufferUsageTransferDst, gpu.MemoryDeviceLocal)
	require.NoError(t, err)
	defer dst.Destroy()

	require.NoError(t, gpu.UploadBuffer(ctx, dst, make([]byte, 24)))

	history := dev.Graphics.History()
	require.Len(t, history, 1)
	copyCmd := history[0].Commands[0][0]
	assert.Equal(t, gputest.OpCopyBuffer, copyCmd.Op)
	assert.Equal(t, dst.Handle, copyCmd.DstBuffer)
	assert.Equal(t, []gpu.BufferCopy{{Size: 24}}, copyCmd.Copies)

	assert.Equal(t, 1, dev.Live(gputest.KindBuffer), "staging buffer released")
	assert.Error(t, gpu.UploadBuffer(ctx, dst, make([]byte, 33)))
	assert.Empty(t, dev.Violations())
}

func TestUploadImage(t *testing.T) {
	dev := gputest.New()
	ctx := dev.Context()
	img := newTestImage(t, dev)

	assert.Error(t, gpu.UploadImage(ctx, img, make([]byte, 10)))
	assert.Zero(t, dev.Graphics.Submits())

	require.NoError(t, gpu.UploadImage(ctx, img, make([]byte, 8*8*4)))
	assert.Equal(t, gpu.LayoutShaderReadOnly, img.Layout())

	history := dev.Graphics.History()
	require.Len(t, history, 1)
	cmds := history[0].Commands[0]
	assert.Equal(t, []string{gputest.OpBarrier, gputest.OpCopyBufferToImage, gputest.OpBarrier}, gputest.Ops(cmds))
	assert.Equal(t, gpu.LayoutTransferDst, cmds[0].Barriers.Image[0].New)
	assert.Equal(t, gpu.Extent{Width: 8, Height: 8}, cmds[1].Extent)
	assert.Equal(t, gpu.LayoutShaderReadOnly, cmds[2].Barriers.Image[0].New)

	assert.Zero(t, dev.Live(gputest.KindBuffer))
	assert.Empty(t, dev.Violations())
}

func TestClearImage(t *testing.T) {
	dev := gputest.New()
	ctx := dev.Context()
	img := newTestImage(t, dev)

	err := gpu.ClearImage(ctx, img, [4]float32{}, gpu.LayoutPresentSrc)
	require.ErrorIs(t, err, gpu.ErrUnsupportedTransition)
	assert.Zero(t, dev.Graphics.Submits())

	red := [4]float32{1, 0, 0, 1}
	require.NoError(t, gpu.ClearImage(ctx, img, red, gpu.LayoutGeneral))
	assert.Equal(t, gpu.LayoutGeneral, img.Layout())

	history := dev.Graphics.History()
	require.Len(t, history, 1)
	cmds := history[0].Commands[0]
	assert.Equal(t, []string{gputest.OpBarrier, gputest.OpClearColorImage, gputest.OpBarrier}, gputest.Ops(cmds))
	assert.Equal(t, img.Handle, cmds[1].Image)
	assert.Equal(t, gpu.LayoutTransferDst, cmds[1].Layout)
	assert.Equal(t, red, cmds[1].Color)
	assert.Equal(t, gpu.LayoutGeneral, cmds[2].Barriers.Image[0].New)
	assert.Empty(t, dev.Violations())
}
