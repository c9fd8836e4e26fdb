package gpu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NOT-REAL-GAMES/plume/gpu"
	"github.com/NOT-REAL-GAMES/plume/gpu/gputest"
)

func newTestImage(t *testing.T, dev *gputest.Device) *gpu.Image {
	t.Helper()
	img, err := gpu.NewImage(dev, gpu.ImageDesc{
		Width:  8,
		Height: 8,
		Format: gpu.FormatR8G8B8A8Unorm,
		Usage:  gpu.ImageUsageSampled | gpu.ImageUsageStorage | gpu.ImageUsageTransferDst,
		Memory: gpu.MemoryDeviceLocal,
		View:   true,
	})
	require.NoError(t, err)
	t.Cleanup(img.Destroy)
	return img
}

func TestTransitionLayoutRoundTrip(t *testing.T) {
	tests := []struct {
		a, b gpu.ImageLayout
	}{
		{gpu.LayoutTransferDst, gpu.LayoutShaderReadOnly},
		{gpu.LayoutGeneral, gpu.LayoutShaderReadOnly},
		{gpu.LayoutGeneral, gpu.LayoutTransferDst},
		{gpu.LayoutTransferDst, gpu.LayoutGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.a.String()+"<->"+tt.b.String(), func(t *testing.T) {
			dev := gputest.New()
			ctx := dev.Context()
			img := newTestImage(t, dev)

			require.NoError(t, ctx.TransitionLayout(img, gpu.LayoutUndefined, tt.a))
			require.NoError(t, ctx.TransitionLayout(img, tt.a, tt.b))
			assert.Equal(t, tt.b, img.Layout())
			require.NoError(t, ctx.TransitionLayout(img, tt.b, tt.a))
			assert.Equal(t, tt.a, img.Layout())

			assert.Equal(t, 3, dev.Graphics.Submits())
			assert.Zero(t, dev.Graphics.Outstanding())
			assert.Zero(t, dev.Live(gputest.KindCommandBuffer))
			assert.Empty(t, dev.Violations())
		})
	}
}

func TestTransitionLayoutEmitsOneBarrier(t *testing.T) {
	dev := gputest.New()
	ctx := dev.Context()
	img := newTestImage(t, dev)

	require.NoError(t, ctx.TransitionLayout(img, gpu.LayoutUndefined, gpu.LayoutTransferDst))

	history := dev.Graphics.History()
	require.Len(t, history, 1)
	require.Len(t, history[0].Commands, 1)
	cmds := history[0].Commands[0]
	require.Equal(t, []string{gputest.OpBarrier}, gputest.Ops(cmds))

	barrier := cmds[0]
	assert.Equal(t, gpu.StageTopOfPipe, barrier.Src)
	assert.Equal(t, gpu.StageTransfer, barrier.Dst)
	require.Len(t, barrier.Barriers.Image, 1)
	assert.Equal(t, gpu.ImageBarrier{
		Src:   0,
		Dst:   gpu.AccessTransferWrite,
		Old:   gpu.LayoutUndefined,
		New:   gpu.LayoutTransferDst,
		Image: img.Handle,
	}, barrier.Barriers.Image[0])
	assert.Zero(t, history[0].Fence)
}

func TestTransitionLayoutRejects(t *testing.T) {
	tests := []struct {
		name     string
		old, new gpu.ImageLayout
		wantErr  error
	}{
		{
			name:    "unlisted pair",
			old:     gpu.LayoutUndefined,
			new:     gpu.LayoutPresentSrc,
			wantErr: gpu.ErrUnsupportedTransition,
		},
		{
			name: "old layout does not match",
			old:  gpu.LayoutGeneral,
			new:  gpu.LayoutShaderReadOnly,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := gputest.New()
			img := newTestImage(t, dev)

			err := dev.Context().TransitionLayout(img, tt.old, tt.new)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, gpu.LayoutUndefined, img.Layout())
			assert.Zero(t, dev.Graphics.Submits())
		})
	}
}

func TestRecordTransitionPresentPair(t *testing.T) {
	dev := gputest.New()
	cmds, err := dev.AllocateCommandBuffers(1)
	require.NoError(t, err)
	cmd := cmds[0]
	require.NoError(t, cmd.Begin(false))

	require.NoError(t, gpu.RecordTransition(cmd, 42, gpu.LayoutUndefined, gpu.LayoutColorAttachment))
	require.NoError(t, gpu.RecordTransition(cmd, 42, gpu.LayoutColorAttachment, gpu.LayoutPresentSrc))
	assert.ErrorIs(t, gpu.RecordTransition(cmd, 42, gpu.LayoutPresentSrc, gpu.LayoutGeneral), gpu.ErrUnsupportedTransition)
	require.NoError(t, cmd.End())

	recorded := cmd.(*gputest.CommandBuffer).Commands()
	require.Len(t, recorded, 2)
	assert.Equal(t, gpu.StageColorAttachmentOutput, recorded[0].Src)
	assert.Equal(t, gpu.StageColorAttachmentOutput, recorded[0].Dst)
	assert.Zero(t, recorded[0].Barriers.Image[0].Src)
	assert.Equal(t, gpu.AccessColorAttachmentWrite, recorded[0].Barriers.Image[0].Dst)
	assert.Equal(t, gpu.StageBottomOfPipe, recorded[1].Dst)
	assert.Equal(t, gpu.LayoutPresentSrc, recorded[1].Barriers.Image[0].New)
}
