package ui_test

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NOT-REAL-GAMES/plume/gpu"
	"github.com/NOT-REAL-GAMES/plume/gpu/gputest"
	"github.com/NOT-REAL-GAMES/plume/sim"
	"github.com/NOT-REAL-GAMES/plume/ui"
)

var _ ui.Overlay = (*ui.Panel)(nil)
var _ ui.Parameters = (*ui.Panel)(nil)

// press runs one frame with k held after a frame with it released.
func press(p *ui.Panel, in *sim.InputState, k sim.Key) {
	in.BeginFrame()
	in.SetKey(k, true)
	p.RenderFrame()
	in.BeginFrame()
	in.SetKey(k, false)
	p.RenderFrame()
}

func TestPanelDefaults(t *testing.T) {
	p := ui.NewPanel(ui.PanelOptions{Mode: sim.Smoke})
	assert.Equal(t, ui.DefaultSun, p.SunPosition())
	assert.Equal(t, ui.DefaultWind, p.WindDirection())
	assert.Equal(t, sim.Smoke, p.Mode())
}

func TestPanelTabCyclesMode(t *testing.T) {
	in := &sim.InputState{}
	p := ui.NewPanel(ui.PanelOptions{Input: in})
	require.NoError(t, p.Init(2, ui.Target{}))

	press(p, in, sim.KeyTab)
	assert.Equal(t, sim.Smoke, p.Mode())

	in.BeginFrame()
	in.SetKey(sim.KeyTab, true)
	p.RenderFrame()
	in.BeginFrame()
	p.RenderFrame()
	assert.Equal(t, sim.Fluid, p.Mode(), "a held key toggles once")
}

func TestPanelMovesSun(t *testing.T) {
	tests := []struct {
		name string
		key  sim.Key
		want mgl32.Vec3
	}{
		{"left", sim.KeyLeft, mgl32.Vec3{2 - ui.SunStep, -4, 1}},
		{"right", sim.KeyRight, mgl32.Vec3{2 + ui.SunStep, -4, 1}},
		{"up", sim.KeyUp, mgl32.Vec3{2, -4 - ui.SunStep, 1}},
		{"down", sim.KeyDown, mgl32.Vec3{2, -4 + ui.SunStep, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := &sim.InputState{}
			p := ui.NewPanel(ui.PanelOptions{Input: in})
			press(p, in, tt.key)
			got := p.SunPosition()
			assert.InDeltaSlice(t, tt.want[:], got[:], 1e-6)
		})
	}
}

func TestPanelKeepsSunBelowHorizon(t *testing.T) {
	in := &sim.InputState{}
	p := ui.NewPanel(ui.PanelOptions{Input: in})
	for i := 0; i < 40; i++ {
		press(p, in, sim.KeyDown)
	}
	assert.Equal(t, float32(ui.MaxSunY), p.SunPosition().Y())

	for i := 0; i < 200; i++ {
		press(p, in, sim.KeyUp)
		press(p, in, sim.KeyLeft)
	}
	assert.Equal(t, float32(-ui.SunLimit), p.SunPosition().Y())
	assert.Equal(t, float32(-ui.SunLimit), p.SunPosition().X())
}

func TestPanelRotatesWind(t *testing.T) {
	in := &sim.InputState{}
	p := ui.NewPanel(ui.PanelOptions{Input: in})

	for i := 0; i < 6; i++ {
		press(p, in, sim.KeyBracketRight)
	}
	w := p.WindDirection()
	assert.InDelta(t, 0, w.X(), 1e-5)
	assert.InDelta(t, 1, w.Len(), 1e-5)

	for i := 0; i < 6; i++ {
		press(p, in, sim.KeyBracketLeft)
	}
	w = p.WindDirection()
	assert.InDeltaSlice(t, ui.DefaultWind[:], w[:], 1e-5)
}

func TestBarEncode(t *testing.T) {
	b := ui.Bar{Rect: mgl32.Vec4{1, 2, 3, 4}, Color: mgl32.Vec4{5, 6, 7, 8}}
	data := b.Encode()
	require.Len(t, data, ui.BarSize)
	for i := 0; i < 8; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
		assert.Equal(t, float32(i+1), got)
	}
}

func TestPanelWithoutShadersRecordsNothing(t *testing.T) {
	dev := gputest.New()
	p := ui.NewPanel(ui.PanelOptions{Pipelines: dev})
	require.NoError(t, p.Init(2, ui.Target{ColorFormat: gpu.FormatB8G8R8A8Srgb}))
	p.RenderFrame()
	assert.NotEmpty(t, p.Bars())

	cmds, err := dev.AllocateCommandBuffers(1)
	require.NoError(t, err)
	require.NoError(t, cmds[0].Begin(true))
	p.AppendToCommandBuffer(cmds[0])
	assert.Empty(t, cmds[0].(*gputest.CommandBuffer).Commands())
	assert.Empty(t, dev.GraphicsPipelines())
}

func TestPanelDrawsBars(t *testing.T) {
	dev := gputest.New()
	p := ui.NewPanel(ui.PanelOptions{
		Pipelines: dev,
		Vertex:    make([]byte, 16),
		Fragment:  make([]byte, 16),
	})
	require.NoError(t, p.Init(3, ui.Target{ColorFormat: gpu.FormatB8G8R8A8Srgb}))
	assert.Error(t, p.Init(3, ui.Target{}))

	infos := dev.GraphicsPipelines()
	require.Len(t, infos, 1)
	assert.True(t, infos[0].Blend)
	assert.Equal(t, gpu.FormatB8G8R8A8Srgb, infos[0].ColorFormat)
	assert.Zero(t, dev.Live(gputest.KindShader))

	p.RenderFrame()
	cmds, err := dev.AllocateCommandBuffers(1)
	require.NoError(t, err)
	require.NoError(t, cmds[0].Begin(true))
	p.AppendToCommandBuffer(cmds[0])

	recorded := cmds[0].(*gputest.CommandBuffer).Commands()
	ops := gputest.Ops(recorded)
	require.NotEmpty(t, ops)
	assert.Equal(t, gputest.OpBindPipeline, ops[0])

	draws := 0
	for _, c := range recorded {
		if c.Op == gputest.OpPushConstants {
			assert.Len(t, c.Data, ui.BarSize)
		}
		if c.Op == gputest.OpDraw {
			draws++
			assert.Equal(t, uint32(6), c.Vertices)
		}
	}
	assert.Equal(t, len(p.Bars()), draws)

	p.Shutdown()
	assert.Zero(t, dev.Live(gputest.KindPipeline))
	assert.Zero(t, dev.Live(gputest.KindPipelineLayout))
}

func TestPanelTitleRefreshesEverySecond(t *testing.T) {
	now := time.Unix(0, 0)
	var titles []string
	p := ui.NewPanel(ui.PanelOptions{
		Now:      func() time.Time { return now },
		SetTitle: func(s string) { titles = append(titles, s) },
	})
	require.NoError(t, p.Init(2, ui.Target{}))

	for i := 0; i < 50; i++ {
		now = now.Add(20 * time.Millisecond)
		p.RenderFrame()
	}
	require.Len(t, titles, 1)
	assert.Equal(t, "plume | fluid | 50 fps", titles[0])
	assert.Equal(t, titles[0], p.Status())
}
