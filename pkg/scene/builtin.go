package scene

import (
	"fmt"
	"math"

	"github.com/df07/go-subsurface-raytracer/pkg/bssrdf"
	"github.com/df07/go-subsurface-raytracer/pkg/core"
	"github.com/df07/go-subsurface-raytracer/pkg/geometry"
	"github.com/df07/go-subsurface-raytracer/pkg/material"
)

// Options describes the image a scene's camera renders into
type Options struct {
	Width         int
	Height        int
	FocalDistance float64 // 0 keeps the scene's own focal distance
	LensRadius    float64 // 0 renders with a pinhole camera
	Config        core.TracerConfig
}

// CameraConfig merges the image options into a scene's default camera
func (o Options) CameraConfig(defaults geometry.CameraConfig) geometry.CameraConfig {
	cfg := defaults
	cfg.Width = o.Width
	cfg.Height = o.Height
	if o.FocalDistance > 0 {
		cfg.FocalDistance = o.FocalDistance
	}
	cfg.LensRadius = o.LensRadius
	return cfg
}

// degrees converts an angle to radians
func degrees(d float64) float64 {
	return d * math.Pi / 180
}

type builtin struct {
	info  Info
	build func(opts Options) *Scene
}

var builtins = []builtin{
	{Info{ID: "subsurface", Name: "Subsurface Spheres", Description: "Marble, skin and ketchup spheres next to a glass ball on a checkerboard", Group: BuiltinGroup, Type: TypeBuiltin}, NewSubsurfaceScene},
	{Info{ID: "cornell", Name: "Cornell Box", Description: "Triangle-walled box with a potato sphere and a glass sphere", Group: BuiltinGroup, Type: TypeBuiltin}, NewCornellScene},
	{Info{ID: "sphere-grid", Name: "Sphere Grid", Description: "Grid of glossy spheres colored across the OKLCH hue wheel", Group: BuiltinGroup, Type: TypeBuiltin}, NewSphereGridScene},
	{Info{ID: "meshes", Name: "Triangle Meshes", Description: "Box, pyramid and icosahedron meshes with shaders and subsurface", Group: BuiltinGroup, Type: TypeBuiltin}, NewMeshScene},
	{Info{ID: "textures", Name: "Textures", Description: "Texture, glass and cutout shaders", Group: BuiltinGroup, Type: TypeBuiltin}, NewTextureScene},
}

// Builtins lists the scenes that are constructed in code
func Builtins() []Info {
	infos := make([]Info, len(builtins))
	for i, b := range builtins {
		infos[i] = b.info
	}
	return infos
}

// NewBuiltin constructs the built-in scene with the given ID
func NewBuiltin(id string, opts Options) (*Scene, error) {
	for _, b := range builtins {
		if b.info.ID == id {
			return b.build(opts), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
}

// addSphere adds a single-sphere object and registers its material
func (s *Scene) addSphere(name string, center core.Vec3, radius float64, mat *material.Material) *geometry.Object {
	s.AddMaterial(mat)
	object := geometry.NewObject(name)
	object.Add(geometry.NewSphere(center, radius, mat))
	s.AddObject(object)
	return object
}

// addMesh adds a mesh object and registers its material
func (s *Scene) addMesh(name string, vertices []core.Vec3, faces []int, mat *material.Material, options *geometry.MeshOptions) *geometry.Object {
	object, err := geometry.NewTriangleMesh(name, vertices, faces, mat, options)
	if err != nil {
		panic(fmt.Sprintf("built-in mesh %s: %v", name, err))
	}
	s.AddMaterial(mat)
	s.AddObject(object)
	return object
}

// builtinProfile returns a fresh profile for a preset the built-in scenes rely on
func builtinProfile(name string) *bssrdf.Profile {
	preset, err := bssrdf.LookupPreset(name)
	if err != nil {
		panic(fmt.Sprintf("built-in scene: %v", err))
	}
	return preset.Profile()
}

// addGroundQuad adds a horizontal square centered at center facing up
func (s *Scene) addGroundQuad(center core.Vec3, size float64, mat *material.Material) *geometry.Object {
	h := size / 2
	vertices := []core.Vec3{
		center.Add(core.NewVec3(-h, 0, -h)),
		center.Add(core.NewVec3(-h, 0, h)),
		center.Add(core.NewVec3(h, 0, h)),
		center.Add(core.NewVec3(h, 0, -h)),
	}
	return s.addMesh("ground", vertices, []int{0, 1, 2, 0, 2, 3}, mat, nil)
}

// glass returns a clear, highly specular material
func glass() *material.Material {
	return &material.Material{
		Diffuse:      core.Splat(0.05),
		Specular:     core.Splat(0.6),
		Shininess:    0.9,
		Transparency: 0.9,
	}
}

// glossy returns a diffuse material with a white highlight
func glossy(diffuse core.Vec3, specular, shininess float64) *material.Material {
	return &material.Material{
		Diffuse:   diffuse,
		Ambient:   core.Splat(0.05),
		Specular:  core.Splat(specular),
		Shininess: shininess,
	}
}
