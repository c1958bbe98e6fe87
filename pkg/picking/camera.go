package picking

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/exanvub/photogrammetry/pkg/geometry"
)

// Camera represents a perspective view onto the scene. It exists to
// turn screen clicks into world rays; rendering stays external.
type Camera struct {
	Position r3.Vec
	Target   r3.Vec
	Up       r3.Vec
	FOV      float64 // vertical field of view in radians
}

// NewCamera creates a camera looking at the center of a bounding box
// from a distance proportional to its largest dimension
func NewCamera(bbox geometry.BoundingBox) *Camera {
	center := bbox.Center()
	size := bbox.Size()
	distance := math.Max(size.X, math.Max(size.Y, size.Z)) * 2.0

	return &Camera{
		Position: r3.Add(center, r3.Vec{Z: distance}),
		Target:   center,
		Up:       r3.Vec{Y: 1},
		FOV:      math.Pi / 4,
	}
}

// basis returns the camera's right, up and forward unit vectors
func (c *Camera) basis() (right, up, forward r3.Vec) {
	forward = r3.Unit(r3.Sub(c.Target, c.Position))
	right = r3.Unit(r3.Cross(forward, c.Up))
	up = r3.Cross(right, forward)
	return right, up, forward
}

// Unproject converts 2D screen coordinates into a world-space ray
// suitable for picking
func (c *Camera) Unproject(screenX, screenY, width, height float64) geometry.Ray {
	// Normalized device coordinates (-1 to 1)
	ndcX := (2.0*screenX)/width - 1.0
	ndcY := 1.0 - (2.0*screenY)/height

	aspect := width / height
	fovScale := math.Tan(c.FOV / 2)

	right, up, forward := c.basis()
	dir := r3.Add(forward,
		r3.Add(
			r3.Scale(ndcX*fovScale*aspect, right),
			r3.Scale(ndcY*fovScale, up),
		))

	return geometry.Ray{Origin: c.Position, Direction: r3.Unit(dir)}
}

// Project projects a world point to screen coordinates, returning the
// view-space depth as the third value
func (c *Camera) Project(point r3.Vec, width, height float64) (float64, float64, float64) {
	right, up, forward := c.basis()

	relative := r3.Sub(point, c.Position)
	x := r3.Dot(relative, right)
	y := r3.Dot(relative, up)
	z := r3.Dot(relative, forward)

	if z <= 0.01 {
		z = 0.01
	}

	aspect := width / height
	fovScale := math.Tan(c.FOV / 2)

	screenX := (x/(z*fovScale*aspect))*(width/2) + width/2
	screenY := (-y/(z*fovScale))*(height/2) + height/2
	return screenX, screenY, z
}
