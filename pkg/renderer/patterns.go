package renderer

import (
	"fmt"
	"math/bits"
	"math/rand"

	"github.com/df07/go-subsurface-raytracer/pkg/core"
)

// SamplePatterns holds precomputed sub-pixel offsets. Adjacent pixels cycle
// through different patterns so stratification artifacts do not line up.
type SamplePatterns struct {
	patterns [][]core.Vec2
}

// NewSamplePatterns creates the sample offsets for samplesPerPixel samples.
// A single sample goes through the pixel center. Otherwise samplesPerPixel must
// be a power of two and count jittered grids are generated. Square counts use a
// sqrt(spp) x sqrt(spp) grid; the others use twice as many rows as columns.
func NewSamplePatterns(samplesPerPixel, count int, random *rand.Rand) (*SamplePatterns, error) {
	if samplesPerPixel < 1 || samplesPerPixel&(samplesPerPixel-1) != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSampleCount, samplesPerPixel)
	}

	if samplesPerPixel == 1 {
		return &SamplePatterns{patterns: [][]core.Vec2{{core.NewVec2(0.5, 0.5)}}}, nil
	}

	if count < 1 {
		count = 1
	}
	columns := 1 << (bits.TrailingZeros(uint(samplesPerPixel)) / 2)
	rows := samplesPerPixel / columns

	patterns := make([][]core.Vec2, count)
	for p := range patterns {
		pattern := make([]core.Vec2, 0, samplesPerPixel)
		for x := 0; x < columns; x++ {
			for y := 0; y < rows; y++ {
				pattern = append(pattern, core.NewVec2(
					(float64(x)+random.Float64())/float64(columns),
					(float64(y)+random.Float64())/float64(rows),
				))
			}
		}
		patterns[p] = pattern
	}
	return &SamplePatterns{patterns: patterns}, nil
}

// Count returns the number of distinct patterns
func (sp *SamplePatterns) Count() int {
	return len(sp.patterns)
}

// ForPixel returns the pattern used by pixel (i, j) of an image width pixels wide
func (sp *SamplePatterns) ForPixel(i, j, width int) []core.Vec2 {
	return sp.patterns[(j*width+i)%len(sp.patterns)]
}
