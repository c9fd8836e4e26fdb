package gpu

import "fmt"

type transitionKey struct {
	old, new ImageLayout
}

type transition struct {
	srcAccess, dstAccess Access
	srcStage, dstStage   Stage
}

var transitions = map[transitionKey]transition{
	{LayoutUndefined, LayoutTransferDst}: {
		0, AccessTransferWrite,
		StageTopOfPipe, StageTransfer,
	},
	{LayoutTransferDst, LayoutShaderReadOnly}: {
		AccessTransferWrite, AccessShaderRead,
		StageTransfer, StageFragmentShader | StageComputeShader,
	},
	{LayoutShaderReadOnly, LayoutTransferDst}: {
		AccessShaderRead, AccessTransferWrite,
		StageFragmentShader | StageComputeShader, StageTransfer,
	},
	{LayoutUndefined, LayoutGeneral}: {
		0, AccessShaderRead | AccessShaderWrite,
		StageTopOfPipe, StageComputeShader,
	},
	{LayoutGeneral, LayoutShaderReadOnly}: {
		AccessShaderWrite, AccessShaderRead,
		StageComputeShader, StageFragmentShader,
	},
	{LayoutShaderReadOnly, LayoutGeneral}: {
		AccessShaderRead, AccessShaderWrite,
		StageFragmentShader, StageComputeShader,
	},
	{LayoutTransferDst, LayoutGeneral}: {
		AccessTransferWrite, AccessShaderRead | AccessShaderWrite,
		StageTransfer, StageComputeShader,
	},
	{LayoutGeneral, LayoutTransferDst}: {
		AccessShaderRead | AccessShaderWrite, AccessTransferWrite,
		StageComputeShader, StageTransfer,
	},
	// Swapchain images: the source stage matches the stage the
	// image-available semaphore is waited at, so the layout change runs
	// after the presentation engine releases the image.
	{LayoutUndefined, LayoutColorAttachment}: {
		0, AccessColorAttachmentWrite,
		StageColorAttachmentOutput, StageColorAttachmentOutput,
	},
	{LayoutColorAttachment, LayoutPresentSrc}: {
		AccessColorAttachmentWrite, 0,
		StageColorAttachmentOutput, StageBottomOfPipe,
	},
}

func unsupported(old, new ImageLayout) error {
	return fmt.Errorf("%w: %s -> %s", ErrUnsupportedTransition, old, new)
}

// RecordTransition records the barrier for old->new on img into cmd. It
// returns ErrUnsupportedTransition without recording anything when the pair
// has no table entry.
func RecordTransition(cmd CommandBuffer, img ImageHandle, old, new ImageLayout) error {
	t, ok := transitions[transitionKey{old, new}]
	if !ok {
		return unsupported(old, new)
	}

	cmd.PipelineBarrier(t.srcStage, t.dstStage, Barriers{
		Image: []ImageBarrier{{
			Src:   t.srcAccess,
			Dst:   t.dstAccess,
			Old:   old,
			New:   new,
			Image: img,
		}},
	})
	return nil
}
