package lights

// UniformLightSampler picks one of the scene's lights with probability 1/N
type UniformLightSampler struct {
	lights []Light
}

// NewUniformLightSampler creates a sampler over lights. The slice is not copied.
func NewUniformLightSampler(lights []Light) *UniformLightSampler {
	return &UniformLightSampler{lights: lights}
}

// SampleLight selects a light for a uniform u in [0,1).
// Returns the selected light, its selection probability, and its index.
func (s *UniformLightSampler) SampleLight(u float64) (Light, float64, int) {
	n := len(s.lights)
	if n == 0 {
		return nil, 0, -1
	}

	index := int(u * float64(n))
	// u of exactly 1, or rounding just below it, lands past the end
	if index >= n {
		index = n - 1
	}
	if index < 0 {
		index = 0
	}
	return s.lights[index], 1 / float64(n), index
}

// Count returns the number of lights in this sampler
func (s *UniformLightSampler) Count() int {
	return len(s.lights)
}
