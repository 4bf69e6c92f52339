package renderer

import (
	"github.com/df07/go-subsurface-raytracer/pkg/core"
	"github.com/df07/go-subsurface-raytracer/pkg/material"
)

// Segment is one traced ray from its origin to the surface it hit
type Segment struct {
	Bounce   int       `yaml:"bounce"`
	Origin   core.Vec3 `yaml:"origin,flow"`
	Hit      core.Vec3 `yaml:"hit,flow"`
	Normal   core.Vec3 `yaml:"normal,flow"`
	Distance float64   `yaml:"distance"`
}

// SegmentRecorder collects the segments traced for a single pixel
type SegmentRecorder struct {
	Segments []Segment
}

// RecordSegment implements Recorder
func (r *SegmentRecorder) RecordSegment(origin core.Vec3, hit material.HitData, bounces int) {
	r.Segments = append(r.Segments, Segment{
		Bounce:   bounces,
		Origin:   origin,
		Hit:      hit.Position,
		Normal:   hit.Normal,
		Distance: hit.Position.Subtract(origin).Length(),
	})
}
