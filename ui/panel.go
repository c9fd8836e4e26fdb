package ui

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/NOT-REAL-GAMES/plume/gpu"
	"github.com/NOT-REAL-GAMES/plume/sim"
)

const (
	SunStep   = 0.25
	SunLimit  = 10
	MaxSunY   = -0.001
	WindStep  = math.Pi / 12
	BarSize   = 32
	barHeight = 0.04
)

var (
	DefaultSun  = mgl32.Vec3{2, -4, 1}
	DefaultWind = mgl32.Vec3{1, 0, 0}
)

var modeColors = map[sim.Mode]mgl32.Vec4{
	sim.Fluid: {0.2, 0.5, 1, 0.8},
	sim.Smoke: {0.7, 0.7, 0.7, 0.8},
}

// Bar is one filled rectangle in normalized device coordinates.
type Bar struct {
	Rect  mgl32.Vec4 // x, y, width, height
	Color mgl32.Vec4
}

// Encode packs the bar as the overlay shaders' push constant block.
func (b Bar) Encode() []byte {
	out := make([]byte, BarSize)
	for i, v := range append(b.Rect[:], b.Color[:]...) {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
	}
	return out
}

type PanelOptions struct {
	Input *sim.InputState
	Mode  sim.Mode

	// Pipelines, Vertex and Fragment build the bar pipeline. Without them
	// the panel edits parameters but draws nothing.
	Pipelines gpu.Pipelines
	Vertex    []byte
	Fragment  []byte

	SetTitle func(string)
	Now      func() time.Time
	Log      *zap.Logger
}

// Panel is a keyboard driven overlay. Tab cycles the simulation mode, the
// arrow keys move the sun and the bracket keys turn the wind.
type Panel struct {
	opts PanelOptions
	log  *zap.Logger

	sun  mgl32.Vec3
	wind mgl32.Vec3
	mode sim.Mode

	bars   []Bar
	status string

	frames      int
	windowStart time.Time
	fps         float64

	frameCount int
	layout     gpu.PipelineLayout
	pipeline   gpu.Pipeline
	ready      bool
}

func NewPanel(opts PanelOptions) *Panel {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Input == nil {
		opts.Input = &sim.InputState{}
	}
	return &Panel{
		opts: opts,
		log:  opts.Log.Named("ui"),
		sun:  DefaultSun,
		wind: DefaultWind,
		mode: opts.Mode,
	}
}

func (p *Panel) Init(frameCount int, target Target) error {
	if p.ready {
		return errors.New("overlay already initialized")
	}
	p.frameCount = frameCount
	p.windowStart = p.opts.Now()
	p.ready = true

	if p.opts.Pipelines == nil || len(p.opts.Vertex) == 0 || len(p.opts.Fragment) == 0 {
		p.log.Debug("overlay shaders not configured, bars disabled")
		return nil
	}
	if err := p.buildPipeline(target); err != nil {
		p.Shutdown()
		return err
	}
	return nil
}

func (p *Panel) buildPipeline(target Target) error {
	dev := p.opts.Pipelines

	layout, err := dev.CreatePipelineLayout(nil, []gpu.PushRange{{
		Stages: gpu.ShaderStageVertex | gpu.ShaderStageFragment,
		Size:   BarSize,
	}})
	if err != nil {
		return gpu.Wrap("create overlay pipeline layout", err)
	}
	p.layout = layout

	vert, err := dev.CreateShaderModule(p.opts.Vertex)
	if err != nil {
		return gpu.Wrap("create overlay vertex shader", err)
	}
	defer dev.DestroyShaderModule(vert)
	frag, err := dev.CreateShaderModule(p.opts.Fragment)
	if err != nil {
		return gpu.Wrap("create overlay fragment shader", err)
	}
	defer dev.DestroyShaderModule(frag)

	p.pipeline, err = dev.CreateGraphicsPipeline(gpu.GraphicsPipelineInfo{
		Layout:      layout,
		Vertex:      vert,
		Fragment:    frag,
		ColorFormat: target.ColorFormat,
		Blend:       true,
	})
	if err != nil {
		return gpu.Wrap("create overlay pipeline", err)
	}
	return nil
}

// RenderFrame applies this frame's key presses and snapshots the bars.
func (p *Panel) RenderFrame() {
	in := p.opts.Input

	if in.Pressed(sim.KeyTab) {
		p.mode = p.mode.Next()
	}
	if in.Pressed(sim.KeyLeft) {
		p.sun[0] -= SunStep
	}
	if in.Pressed(sim.KeyRight) {
		p.sun[0] += SunStep
	}
	if in.Pressed(sim.KeyUp) {
		p.sun[1] -= SunStep
	}
	if in.Pressed(sim.KeyDown) {
		p.sun[1] += SunStep
	}
	if in.Pressed(sim.KeyBracketLeft) {
		p.wind = mgl32.Rotate3DY(-WindStep).Mul3x1(p.wind)
	}
	if in.Pressed(sim.KeyBracketRight) {
		p.wind = mgl32.Rotate3DY(WindStep).Mul3x1(p.wind)
	}
	p.sun = clampSun(p.sun)

	p.bars = p.layoutBars()
	p.tick()
}

// clampSun keeps every component in [-SunLimit, SunLimit] and the sun
// strictly above the horizon.
func clampSun(v mgl32.Vec3) mgl32.Vec3 {
	for i := range v {
		v[i] = mgl32.Clamp(v[i], -SunLimit, SunLimit)
	}
	v[1] = min(v[1], MaxSunY)
	return v
}

func fraction(v float32) float32 {
	return (v + SunLimit) / (2 * SunLimit)
}

func (p *Panel) layoutBars() []Bar {
	angle := float32(math.Atan2(float64(p.wind[2]), float64(p.wind[0])))
	if angle < 0 {
		angle += 2 * math.Pi
	}
	values := []struct {
		fill  float32
		color mgl32.Vec4
	}{
		{fraction(p.sun[0]), mgl32.Vec4{1, 0.8, 0.2, 0.8}},
		{fraction(p.sun[1]), mgl32.Vec4{1, 0.6, 0.1, 0.8}},
		{fraction(p.sun[2]), mgl32.Vec4{1, 0.4, 0.1, 0.8}},
		{angle / (2 * math.Pi), mgl32.Vec4{0.4, 1, 0.6, 0.8}},
		{1, modeColors[p.mode]},
	}

	bars := make([]Bar, len(values))
	for i, v := range values {
		bars[i] = Bar{
			Rect:  mgl32.Vec4{-0.95, -0.95 + float32(i)*1.5*barHeight, 0.5 * v.fill, barHeight},
			Color: v.color,
		}
	}
	return bars
}

func (p *Panel) tick() {
	p.frames++
	now := p.opts.Now()
	elapsed := now.Sub(p.windowStart)
	if elapsed < time.Second {
		return
	}
	p.fps = float64(p.frames) / elapsed.Seconds()
	p.frames = 0
	p.windowStart = now

	p.status = fmt.Sprintf("plume | %s | %.0f fps", p.mode, p.fps)
	if p.opts.SetTitle != nil {
		p.opts.SetTitle(p.status)
	}
}

// AppendToCommandBuffer draws the bars snapshotted by the last RenderFrame.
func (p *Panel) AppendToCommandBuffer(cmd gpu.CommandBuffer) {
	if p.pipeline == 0 {
		return
	}
	cmd.BindPipeline(gpu.BindGraphics, p.pipeline)
	for _, b := range p.bars {
		cmd.PushConstants(p.layout, gpu.ShaderStageVertex|gpu.ShaderStageFragment, 0, b.Encode())
		cmd.Draw(6, 1)
	}
}

func (p *Panel) Shutdown() {
	dev := p.opts.Pipelines
	if p.pipeline != 0 {
		dev.DestroyPipeline(p.pipeline)
		p.pipeline = 0
	}
	if p.layout != 0 {
		dev.DestroyPipelineLayout(p.layout)
		p.layout = 0
	}
	p.ready = false
}

func (p *Panel) SunPosition() mgl32.Vec3 {
	return p.sun
}

func (p *Panel) WindDirection() mgl32.Vec3 {
	return p.wind
}

func (p *Panel) Mode() sim.Mode {
	return p.mode
}

// Bars returns the geometry snapshotted by the last RenderFrame.
func (p *Panel) Bars() []Bar {
	return p.bars
}

// Status is the title line, refreshed once per second.
func (p *Panel) Status() string {
	return p.status
}
