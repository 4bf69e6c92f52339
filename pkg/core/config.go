package core

// TracerConfig collects the tuning constants shared by the spatial tree and the
// integrator. It is passed in at construction and never mutated during a render.
type TracerConfig struct {
	MaxBounces        int     `toml:"max_bounces" yaml:"max_bounces"`                 // Recursion stops once the bounce count exceeds this
	MinSpecular       float64 `toml:"min_specular" yaml:"min_specular"`               // Max specular channel needed to spawn a reflection ray
	MinTransparency   float64 `toml:"min_transparency" yaml:"min_transparency"`       // ktran needed to spawn a refraction ray
	RayPush           float64 `toml:"ray_push" yaml:"ray_push"`                       // Offset along the normal for spawned rays
	MinShadowDistance float64 `toml:"min_shadow_distance" yaml:"min_shadow_distance"` // Shadow hits closer than this are ignored
	OpaqueThreshold   float64 `toml:"opaque_threshold" yaml:"opaque_threshold"`       // ktran below this blocks a shadow ray completely
	TreeStopFraction  float64 `toml:"tree_stop_fraction" yaml:"tree_stop_fraction"`   // Shared fraction at which tree subdivision stops
	SubsurfaceSamples int     `toml:"subsurface_samples" yaml:"subsurface_samples"`   // Monte Carlo samples per subsurface term
	SamplingPatterns  int     `toml:"sampling_patterns" yaml:"sampling_patterns"`     // Distinct jittered pixel patterns
	TangentEpsilon    float64 `toml:"tangent_epsilon" yaml:"tangent_epsilon"`         // Discriminant band treated as a single sphere root
	TriangleEpsilon   float64 `toml:"triangle_epsilon" yaml:"triangle_epsilon"`       // Determinant and t cutoff for ray-triangle tests
}

// DefaultTracerConfig returns the reference tuning values
func DefaultTracerConfig() TracerConfig {
	return TracerConfig{
		MaxBounces:        10,
		MinSpecular:       0.01,
		MinTransparency:   0.01,
		RayPush:           1e-4,
		MinShadowDistance: 1e-4,
		OpaqueThreshold:   0.01,
		TreeStopFraction:  0.6,
		SubsurfaceSamples: 32,
		SamplingPatterns:  64,
		TangentEpsilon:    1e-7,
		TriangleEpsilon:   1e-7,
	}
}

// Merge overrides the zero-valued fields of cfg with values from defaults
func (cfg TracerConfig) Merge(defaults TracerConfig) TracerConfig {
	if cfg.MaxBounces == 0 {
		cfg.MaxBounces = defaults.MaxBounces
	}
	if cfg.MinSpecular == 0 {
		cfg.MinSpecular = defaults.MinSpecular
	}
	if cfg.MinTransparency == 0 {
		cfg.MinTransparency = defaults.MinTransparency
	}
	if cfg.RayPush == 0 {
		cfg.RayPush = defaults.RayPush
	}
	if cfg.MinShadowDistance == 0 {
		cfg.MinShadowDistance = defaults.MinShadowDistance
	}
	if cfg.OpaqueThreshold == 0 {
		cfg.OpaqueThreshold = defaults.OpaqueThreshold
	}
	if cfg.TreeStopFraction == 0 {
		cfg.TreeStopFraction = defaults.TreeStopFraction
	}
	if cfg.SubsurfaceSamples == 0 {
		cfg.SubsurfaceSamples = defaults.SubsurfaceSamples
	}
	if cfg.SamplingPatterns == 0 {
		cfg.SamplingPatterns = defaults.SamplingPatterns
	}
	if cfg.TangentEpsilon == 0 {
		cfg.TangentEpsilon = defaults.TangentEpsilon
	}
	if cfg.TriangleEpsilon == 0 {
		cfg.TriangleEpsilon = defaults.TriangleEpsilon
	}
	return cfg
}
