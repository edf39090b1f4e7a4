// Package sim provides a simulated arena for the edge follower: a light/dark
// surface, differential-drive kinematics, reflectance sensors and a virtual
// clock. A World satisfies every hardware interface of pkg/edge, so the real
// Runner can be exercised without a board.
package sim

import "math"

// edgeBlur is the width (meters) over which the sensors see the boundary
// fade from one colour to the other.
const edgeBlur = 0.003

// Field is a surface with one light/dark boundary.
type Field interface {
	// Reflectance returns the surface reflectance (0..1) at (x, y).
	Reflectance(x, y float64) float64
	// Distance is the signed distance to the boundary, positive on dark.
	Distance(x, y float64) float64
}

// Disc is a dark disc centred at the origin on a light floor.
type Disc struct {
	Radius      float64
	Light, Dark float64
}

func (d Disc) Distance(x, y float64) float64 {
	return d.Radius - math.Hypot(x, y)
}

func (d Disc) Reflectance(x, y float64) float64 {
	return blend(d.Light, d.Dark, d.Distance(x, y))
}

// HalfPlane is dark for x > 0 and light for x < 0.
type HalfPlane struct {
	Light, Dark float64
}

func (h HalfPlane) Distance(x, _ float64) float64 {
	return x
}

func (h HalfPlane) Reflectance(x, y float64) float64 {
	return blend(h.Light, h.Dark, h.Distance(x, y))
}

// blend fades linearly from light to dark across edgeBlur around dist == 0.
func blend(light, dark, dist float64) float64 {
	t := dist/edgeBlur + 0.5
	switch {
	case t <= 0:
		return light
	case t >= 1:
		return dark
	}
	return light + (dark-light)*t
}
