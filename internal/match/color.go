package match

import (
	"fmt"
	"math"

	"github.com/twinmaps/twinmap/internal/model"
)

// Palette holds the constants for deterministic color assignment.
// Frequency amplifies coordinate variation before the modulo wrap:
// higher values spread nearby pairings across more hues at the cost of
// color stability under small coordinate perturbations. Saturation and
// lightness ranges are chosen to keep every generated color legible
// against a light map background.
type Palette struct {
	Frequency float64
	SatMin    float64
	SatMax    float64
	LightMin  float64
	LightMax  float64
}

// DefaultPalette is used everywhere a caller does not configure its own.
var DefaultPalette = Palette{
	Frequency: 7,
	SatMin:    70,
	SatMax:    100,
	LightMin:  50,
	LightMax:  70,
}

// ColorFor derives a stable HSL color for the pairing of a and b. It is
// a pure function: the same two coordinates always yield the same color
// string, across calls, processes, and sessions, with no shared state.
// It is also symmetric, so ColorFor(a, b) == ColorFor(b, a) and two maps
// hovering the same pairing from opposite ends agree on the color.
//
// Hue follows longitude and saturation/lightness follow latitude, so
// pairings in similar regions get related but distinct colors.
func (p Palette) ColorFor(a, b model.LatLng) string {
	midLat := (a.Lat() + b.Lat()) / 2
	midLng := (a.Lng() + b.Lng()) / 2

	// Nudge the midpoint by the pairing's extent so pairings whose
	// midpoints coincide but whose spans differ still diverge.
	spread := math.Abs(a.Lat()-b.Lat()) + math.Abs(a.Lng()-b.Lng())
	midLat += spread / 2
	midLng += spread / 2

	u := frac((midLat + 90) / 180 * p.Frequency)
	v := frac((midLng + 180) / 360 * p.Frequency)

	hue := int(v*360) % 360
	sat := p.SatMin + frac(u+v)*(p.SatMax-p.SatMin)
	light := p.LightMin + u*(p.LightMax-p.LightMin)

	return fmt.Sprintf("hsl(%d, %d%%, %d%%)", hue, int(math.Round(sat)), int(math.Round(light)))
}

// frac wraps x into [0, 1).
func frac(x float64) float64 {
	f := math.Mod(x, 1)
	if f < 0 {
		f++
	}
	return f
}
