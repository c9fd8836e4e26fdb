package gpu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NOT-REAL-GAMES/plume/gpu"
	"github.com/NOT-REAL-GAMES/plume/gpu/gputest"
)

func TestSelectMemoryType(t *testing.T) {
	props := gputest.DefaultMemory()

	tests := []struct {
		name     string
		typeBits uint32
		required gpu.MemoryProperty
		want     uint32
		wantErr  error
	}{
		{
			name:     "device local picks the first type",
			typeBits: 0b111,
			required: gpu.MemoryDeviceLocal,
			want:     0,
		},
		{
			name:     "host visible coherent picks the lowest match",
			typeBits: 0b111,
			required: gpu.MemoryHostVisible | gpu.MemoryHostCoherent,
			want:     1,
		},
		{
			name:     "filter skips lower matching types",
			typeBits: 0b100,
			required: gpu.MemoryHostVisible,
			want:     2,
		},
		{
			name:     "no required flags takes the lowest allowed index",
			typeBits: 0b010,
			required: 0,
			want:     1,
		},
		{
			name:     "flags outside the filter",
			typeBits: 0b110,
			required: gpu.MemoryDeviceLocal,
			wantErr:  gpu.ErrNoSuitableMemoryType,
		},
		{
			name:     "empty filter",
			typeBits: 0,
			required: 0,
			wantErr:  gpu.ErrNoSuitableMemoryType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := gpu.SelectMemoryType(props, tt.typeBits, tt.required)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := gpu.SelectMemoryType(props, tt.typeBits, tt.required)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}
