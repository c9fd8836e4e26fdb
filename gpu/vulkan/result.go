package vulkan

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/NOT-REAL-GAMES/plume/gpu"
	"github.com/NOT-REAL-GAMES/plume/vk"
)

// translate maps the VkResults the renderer reacts to onto gpu sentinels.
// The original result stays in the chain.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var r vk.Result
	if !errors.As(err, &r) {
		return err
	}
	switch r {
	case vk.OUT_OF_DATE:
		return fmt.Errorf("%w: %w", gpu.ErrSurfaceOutdated, r)
	case vk.SUBOPTIMAL:
		return fmt.Errorf("%w: %w", gpu.ErrSurfaceSuboptimal, r)
	case vk.TIMEOUT, vk.NOT_READY:
		return fmt.Errorf("%w: %w", gpu.ErrTimeout, r)
	case vk.DEVICE_LOST:
		return fmt.Errorf("%w: %w", gpu.ErrDeviceLost, r)
	}
	return err
}

// nanos converts a wait timeout; zero means wait forever.
func nanos(d time.Duration) uint64 {
	if d <= 0 {
		return math.MaxUint64
	}
	return uint64(d.Nanoseconds())
}
