package window

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"

	"github.com/NOT-REAL-GAMES/plume/sim"
)

func TestKeyMapCoversInput(t *testing.T) {
	keys := []sim.Key{
		sim.KeyW, sim.KeyA, sim.KeyS, sim.KeyD, sim.KeySpace, sim.KeyCtrl,
		sim.KeyTab, sim.KeyUp, sim.KeyDown, sim.KeyLeft, sim.KeyRight,
		sim.KeyBracketLeft, sim.KeyBracketRight,
	}
	assert.Len(t, keyMap, len(keys))

	seen := make(map[glfw.Key]sim.Key)
	for _, k := range keys {
		gk, ok := keyMap[k]
		if !assert.True(t, ok, "key %d unmapped", k) {
			continue
		}
		prev, dup := seen[gk]
		assert.False(t, dup, "keys %d and %d share glfw key %d", prev, k, gk)
		seen[gk] = k
	}
}
