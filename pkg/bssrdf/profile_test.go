package bssrdf

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-subsurface-raytracer/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skinProfile() *Profile {
	return NewProfile(core.NewVec3(0.032, 0.17, 0.48), core.NewVec3(0.74, 0.88, 1.01), 0, 1.3)
}

func TestNewProfile_DerivedConstants(t *testing.T) {
	sigmaA := core.NewVec3(0.032, 0.17, 0.48)
	sigmaSPrime := core.NewVec3(0.74, 0.88, 1.01)
	p := NewProfile(sigmaA, sigmaSPrime, 0.2, 1.3)

	sigmaTPrime := sigmaA.Add(sigmaSPrime)
	assert.InDelta(t, sigmaSPrime.X/0.8, p.SigmaS().X, 1e-12)
	assert.InDelta(t, sigmaA.X+sigmaSPrime.X/0.8, p.SigmaT().X, 1e-12)
	assert.InDelta(t, math.Sqrt(3*sigmaA.Y*sigmaTPrime.Y), p.SigmaTr().Y, 1e-12)
	assert.InDelta(t, 1/(3*sigmaTPrime.Z), p.DiffusionConstant().Z, 1e-12)

	fdr := FresnelDiffuseReflectance(1.3)
	a := (1 + fdr) / (1 - fdr)
	assert.InDelta(t, a, p.InternalReflection(), 1e-12)

	zr, zv := p.DipoleDepths()
	assert.InDelta(t, 1/sigmaTPrime.X, zr.X, 1e-12)
	assert.InDelta(t, zr.X*(1+4*a/3), zv.X, 1e-12)

	expectedRMax := math.Sqrt(math.Log(0.01) / -p.SigmaTr().Luminance())
	assert.InDelta(t, expectedRMax, p.MaxRadius(), 1e-12)
	assert.Greater(t, p.MaxRadius(), 0.0)
}

func TestFresnelDiffuseReflectance(t *testing.T) {
	for _, eta := range []float64{0.7, 1.0, 1.3, 1.5, 2.0} {
		fdr := FresnelDiffuseReflectance(eta)
		assert.Greater(t, fdr, -0.1, "eta %v", eta)
		assert.Less(t, fdr, 1.0, "eta %v", eta)
	}
	assert.Greater(t, FresnelDiffuseReflectance(1.5), FresnelDiffuseReflectance(1.3))
}

func TestDiffuseReflectance_NonNegativeAndDecreasing(t *testing.T) {
	for _, preset := range Presets() {
		t.Run(preset.Name, func(t *testing.T) {
			p := preset.Profile()
			prev := p.DiffuseReflectance(0)
			for r := 0.01; r < 10; r += 0.01 {
				rd := p.DiffuseReflectance(r)
				for axis := 0; axis < 3; axis++ {
					assert.GreaterOrEqual(t, rd.Get(axis), 0.0)
					assert.LessOrEqual(t, rd.Get(axis), 1.0)
					require.LessOrEqual(t, rd.Get(axis), prev.Get(axis)+1e-15, "r=%v axis=%d", r, axis)
				}
				prev = rd
			}
		})
	}
}

func TestImportanceSampleDiffusion_WithinMaxRadius(t *testing.T) {
	random := rand.New(rand.NewSource(7))
	for _, preset := range Presets() {
		p := preset.Profile()
		for i := 0; i < 2000; i++ {
			sample := p.ImportanceSampleDiffusion(random.Float64(), random.Float64())
			assert.Equal(t, 0.0, sample.Z)
			assert.LessOrEqual(t, math.Hypot(sample.X, sample.Y), p.MaxRadius()*(1+1e-9), preset.Name)
		}
		edge := p.ImportanceSampleDiffusion(0.25, 1)
		assert.InDelta(t, p.MaxRadius(), edge.Length(), 1e-6, preset.Name)
	}
}

func TestSampleSingleScatterPDF_IntegratesToOne(t *testing.T) {
	p := skinProfile()
	const step = 1e-3
	integral := 0.0
	for x := 0.0; x < 60; x += step {
		integral += 0.5 * (p.SampleSingleScatterPDF(x) + p.SampleSingleScatterPDF(x+step)) * step
	}
	assert.InDelta(t, 1.0, integral, 1e-4)
}

func TestImportanceSampleSingleScatter_MatchesPDF(t *testing.T) {
	p := skinProfile()
	s := p.SigmaT().Luminance()

	// The median of an exponential distribution is ln2/s
	assert.InDelta(t, math.Ln2/s, p.ImportanceSampleSingleScatter(0.5), 1e-12)
	assert.Equal(t, 0.0, p.ImportanceSampleSingleScatter(1))
	assert.True(t, math.IsInf(p.ImportanceSampleSingleScatter(0), 1), "u=0 is outside the domain")
	assert.InDelta(t, s, p.SampleSingleScatterPDF(0), 1e-12)
}

func TestSampleDiffusionPDF_IntegratesToOneOverDisk(t *testing.T) {
	p := skinProfile()
	rMax := p.MaxRadius()
	const steps = 20000
	step := rMax / steps
	integral := 0.0
	for i := 0; i < steps; i++ {
		r := (float64(i) + 0.5) * step
		integral += p.SampleDiffusionPDF(r, 0) * 2 * math.Pi * r * step
	}
	assert.InDelta(t, 1.0, integral, 1e-4)
}

func TestFresnelReflectance(t *testing.T) {
	p := skinProfile()
	r0 := 0.04

	assert.InDelta(t, r0, p.FresnelReflectance(1, 1.5), 1e-12)
	assert.InDelta(t, r0, p.FresnelReflectance(1, 1/1.5), 1e-12, "R0 is symmetric in eta")
	assert.InDelta(t, 1.0, p.FresnelReflectance(0, 1.5), 1e-12)
	assert.InDelta(t, 1.0, p.FresnelReflectance(-0.5, 1.5), 1e-12, "negative cosines clamp to grazing")
	assert.Less(t, p.FresnelReflectance(0.9, 1.5), p.FresnelReflectance(0.3, 1.5))
}

func TestTrueRefractedDistance(t *testing.T) {
	p := skinProfile()
	// At normal exit the correction is si*cosI/sqrt(1)
	assert.InDelta(t, 2.0*0.5, p.TrueRefractedDistance(2, 0.5, 1), 1e-12)
	assert.Greater(t, p.TrueRefractedDistance(2, 0.5, 0), p.TrueRefractedDistance(2, 0.5, 1))
}

func TestPhase_NormalizedOverSphere(t *testing.T) {
	for _, g := range []float64{0, 0.3, -0.5, 0.8} {
		p := NewProfile(core.Splat(0.1), core.Splat(1), g, 1.3)
		const steps = 200000
		step := 2.0 / steps
		integral := 0.0
		for i := 0; i < steps; i++ {
			cosTheta := -1 + (float64(i)+0.5)*step
			integral += 2 * math.Pi * p.Phase(cosTheta) * step
		}
		assert.InDelta(t, 1.0, integral, 1e-3, "g=%v", g)
	}

	isotropic := skinProfile()
	assert.InDelta(t, 1/(4*math.Pi), isotropic.Phase(0.3), 1e-12)
}
