package bssrdf

import (
	"fmt"
	"sort"
	"strings"

	"github.com/df07/go-subsurface-raytracer/pkg/core"
)

// Preset holds measured scattering coefficients (per mm) for a named material
type Preset struct {
	Name        string
	SigmaA      core.Vec3
	SigmaSPrime core.Vec3
	G           float64
	Eta         float64
}

// Profile builds a new profile from the preset coefficients
func (p Preset) Profile() *Profile {
	return NewProfile(p.SigmaA, p.SigmaSPrime, p.G, p.Eta)
}

var presets = map[string]Preset{
	"chicken": {"chicken", core.NewVec3(0.018, 0.088, 0.20), core.NewVec3(0.19, 0.25, 0.32), 0, 1.3},
	"potato":  {"potato", core.NewVec3(0.0024, 0.0090, 0.12), core.NewVec3(0.68, 0.70, 0.55), 0, 1.3},
	"skin":    {"skin", core.NewVec3(0.032, 0.17, 0.48), core.NewVec3(0.74, 0.88, 1.01), 0, 1.3},
	"marble":  {"marble", core.NewVec3(0.0021, 0.0041, 0.0071), core.NewVec3(2.19, 2.62, 3.0), 0, 1.5},
	"apple":   {"apple", core.NewVec3(0.0030, 0.0034, 0.046), core.NewVec3(2.29, 2.39, 1.97), 0, 1.3},
	"ketchup": {"ketchup", core.NewVec3(0.0061, 0.97, 1.45), core.NewVec3(0.18, 0.07, 0.03), 0, 1.3},
}

// LookupPreset finds a preset by case-insensitive name
func LookupPreset(name string) (Preset, error) {
	preset, ok := presets[strings.ToLower(name)]
	if !ok {
		return Preset{}, fmt.Errorf("unknown subsurface preset %q (available: %s)", name, strings.Join(PresetNames(), ", "))
	}
	return preset, nil
}

// Presets returns every preset sorted by name
func Presets() []Preset {
	list := make([]Preset, 0, len(presets))
	for _, name := range PresetNames() {
		list = append(list, presets[name])
	}
	return list
}

// PresetNames returns the sorted preset names
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
