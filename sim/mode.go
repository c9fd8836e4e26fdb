// Package sim holds the simulation parameters shared by the CPU and the
// compute shaders: the mode variant, the uniform block, particle seeding,
// input and the camera, plus the per-slot GPU resources they live in.
package sim

import (
	"fmt"
	"strings"
)

// Mode selects the compute pipeline variant.
type Mode int

const (
	Fluid Mode = iota
	Smoke
)

// Modes lists every variant in pipeline order.
var Modes = []Mode{Fluid, Smoke}

func (m Mode) String() string {
	switch m {
	case Fluid:
		return "fluid"
	case Smoke:
		return "smoke"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

func (m Mode) Valid() bool {
	return m == Fluid || m == Smoke
}

// Next cycles Fluid -> Smoke -> Fluid.
func (m Mode) Next() Mode {
	return Modes[(int(m)+1)%len(Modes)]
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fluid":
		return Fluid, nil
	case "smoke":
		return Smoke, nil
	}
	return 0, fmt.Errorf("unknown simulation mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid simulation mode %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
