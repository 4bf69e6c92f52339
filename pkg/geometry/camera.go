package geometry

import (
	"math"

	"github.com/df07/go-subsurface-raytracer/pkg/core"
)

// Camera generates primary rays. x and y are continuous pixel coordinates with
// (0,0) at the top-left of the image; lens is a uniform sample on [0,1)^2 that
// cameras without an aperture ignore.
type Camera interface {
	GetRay(x, y float64, lens core.Vec2) core.Ray
}

// CameraConfig describes the camera pose and image plane
type CameraConfig struct {
	Position      core.Vec3 // Eye position
	ViewDirection core.Vec3 // Direction the camera looks along
	Up            core.Vec3 // Approximate up direction
	VerticalFOV   float64   // Total vertical field of view in radians
	FocalDistance float64   // Distance from the eye to the focal plane
	LensRadius    float64   // Aperture radius, 0 for a pinhole
	Width         int       // Image width in pixels
	Height        int       // Image height in pixels
}

// frame is the orthonormal camera basis and image plane extents
type frame struct {
	position core.Vec3
	view     core.Vec3 // V
	right    core.Vec3 // A
	up       core.Vec3 // B
	width    float64
	height   float64
}

func newFrame(cfg CameraConfig) frame {
	view := cfg.ViewDirection.Normalize()
	right := view.Cross(cfg.Up.Normalize()).Normalize()
	return frame{
		position: cfg.Position,
		view:     view,
		right:    right,
		up:       right.Cross(view).Normalize(),
		width:    float64(cfg.Width),
		height:   float64(cfg.Height),
	}
}

// extents returns the half-width and half-height vectors of an image plane at
// distance d from the eye. The half-width is the half-height scaled by the
// aspect ratio, so square pixels hold for any vertical fov below pi.
func (f frame) extents(fov, d float64) (horizontal, vertical core.Vec3) {
	halfHeight := d * math.Tan(fov/2)
	vertical = f.up.Multiply(halfHeight)
	horizontal = f.right.Multiply(halfHeight * f.width / f.height)
	return horizontal, vertical
}

// PinholeCamera projects through a single point onto an image plane placed at
// the focal distance in front of the eye
type PinholeCamera struct {
	frame
	center     core.Vec3 // M
	horizontal core.Vec3 // X
	vertical   core.Vec3 // Y
}

// NewPinholeCamera creates a pinhole camera
func NewPinholeCamera(cfg CameraConfig) *PinholeCamera {
	f := newFrame(cfg)
	horizontal, vertical := f.extents(cfg.VerticalFOV, cfg.FocalDistance)
	return &PinholeCamera{
		frame:      f,
		center:     f.position.Add(f.view.Multiply(cfg.FocalDistance)),
		horizontal: horizontal,
		vertical:   vertical,
	}
}

// GetRay returns the ray from the eye through pixel (x, y)
func (c *PinholeCamera) GetRay(x, y float64, _ core.Vec2) core.Ray {
	sx := x / c.width
	sy := y / c.height

	// y is inverted so row 0 is the top of the image
	p := c.center.
		Add(c.horizontal.Multiply(2*sx - 1)).
		Subtract(c.vertical.Multiply(2*sy - 1))

	return core.NewRay(c.position, p.Subtract(c.position).Normalize())
}

// ThinLensCamera models depth of field. The image plane sits one unit behind
// the lens and points on it are focused onto a plane at the focal distance.
type ThinLensCamera struct {
	frame
	center        core.Vec3
	horizontal    core.Vec3
	vertical      core.Vec3
	focalPoint    core.Vec3 // A point on the focal plane
	lensRadius    float64
	focalDistance float64
}

// imageDistance separates the lens from the image plane
const imageDistance = 1.0

// planeEpsilon is the smallest cosine accepted between a ray and the focal plane normal
const planeEpsilon = 1.1920929e-07

// NewThinLensCamera creates a thin lens camera
func NewThinLensCamera(cfg CameraConfig) *ThinLensCamera {
	f := newFrame(cfg)
	horizontal, vertical := f.extents(cfg.VerticalFOV, imageDistance)
	return &ThinLensCamera{
		frame:         f,
		center:        f.position.Subtract(f.view.Multiply(imageDistance)),
		horizontal:    horizontal,
		vertical:      vertical,
		focalPoint:    f.position.Add(f.view.Multiply(cfg.FocalDistance)),
		lensRadius:    cfg.LensRadius,
		focalDistance: cfg.FocalDistance,
	}
}

// GetRay returns a ray from a point on the lens through the focused image of pixel (x, y)
func (c *ThinLensCamera) GetRay(x, y float64, lens core.Vec2) core.Ray {
	sx := x / c.width
	sy := y / c.height

	// The image behind the lens is flipped on both axes
	p := c.center.
		Subtract(c.horizontal.Multiply(2*sx - 1)).
		Add(c.vertical.Multiply(2*sy - 1))

	// The chief ray through the lens center stays unbent
	focusDir := c.position.Subtract(p).Normalize()
	t, ok := intersectPlane(p, focusDir, c.view, c.focalPoint)
	if !ok {
		t = 0
	}
	q := p.Add(focusDir.Multiply(t))

	origin := c.position.
		Add(c.right.Multiply(2*lens.X*c.lensRadius - c.lensRadius)).
		Add(c.up.Multiply(2*lens.Y*c.lensRadius - c.lensRadius))

	return core.NewRay(origin, q.Subtract(origin).Normalize())
}

// intersectPlane returns the distance along dir from origin to the plane with the
// given normal through point. Planes facing away from dir are missed.
func intersectPlane(origin, dir, normal, point core.Vec3) (float64, bool) {
	cos := normal.Dot(dir)
	if cos <= planeEpsilon {
		return 0, false
	}
	t := point.Subtract(origin).Dot(normal) / cos
	return t, t >= 0
}

// NewCamera returns a thin lens camera, or a pinhole camera when the lens radius is zero
func NewCamera(cfg CameraConfig) Camera {
	if cfg.LensRadius <= 0 {
		return NewPinholeCamera(cfg)
	}
	return NewThinLensCamera(cfg)
}
