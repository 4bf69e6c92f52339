package loaders

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-subsurface-raytracer/pkg/bssrdf"
	"github.com/df07/go-subsurface-raytracer/pkg/core"
	"github.com/df07/go-subsurface-raytracer/pkg/geometry"
	"github.com/df07/go-subsurface-raytracer/pkg/lights"
	"github.com/df07/go-subsurface-raytracer/pkg/material"
	"github.com/df07/go-subsurface-raytracer/pkg/scene"
	"gopkg.in/yaml.v3"
)

// Vec3 decodes a three element YAML sequence
type Vec3 core.Vec3

// UnmarshalYAML implements yaml.Unmarshaler
func (v *Vec3) UnmarshalYAML(node *yaml.Node) error {
	var values []float64
	if err := node.Decode(&values); err != nil {
		return err
	}
	if len(values) != 3 {
		return fmt.Errorf("line %d: expected 3 components, got %d", node.Line, len(values))
	}
	*v = Vec3{X: values[0], Y: values[1], Z: values[2]}
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (v Vec3) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, c := range []float64{v.X, v.Y, v.Z} {
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: fmt.Sprint(c)})
	}
	return node, nil
}

func (v *Vec3) vec(fallback core.Vec3) core.Vec3 {
	if v == nil {
		return fallback
	}
	return core.Vec3(*v)
}

// SceneFile is the YAML scene description
type SceneFile struct {
	Camera    CameraSpec              `yaml:"camera"`
	Tracer    *core.TracerConfig      `yaml:"tracer,omitempty"`
	Materials map[string]MaterialSpec `yaml:"materials"`
	Lights    []LightSpec             `yaml:"lights"`
	Objects   []ObjectSpec            `yaml:"objects"`
}

// CameraSpec places the camera. Angles are in radians.
type CameraSpec struct {
	Position      Vec3    `yaml:"position"`
	ViewDirection Vec3    `yaml:"view_direction"`
	Up            *Vec3   `yaml:"up,omitempty"`
	VerticalFOV   float64 `yaml:"vertical_fov"`
	FocalDistance float64 `yaml:"focal_distance"`
	LensRadius    float64 `yaml:"lens_radius,omitempty"`
}

// MaterialSpec describes a named material
type MaterialSpec struct {
	Diffuse      *Vec3   `yaml:"diffuse,omitempty"`
	Ambient      *Vec3   `yaml:"ambient,omitempty"`
	Specular     *Vec3   `yaml:"specular,omitempty"`
	Emissive     *Vec3   `yaml:"emissive,omitempty"`
	Shininess    float64 `yaml:"shininess,omitempty"`
	Transparency float64 `yaml:"transparency,omitempty"`
	Subsurface   string  `yaml:"subsurface,omitempty"` // Preset name
}

// LightSpec describes a point, directional or spot light
type LightSpec struct {
	Type      string `yaml:"type"`
	Position  *Vec3  `yaml:"position,omitempty"`
	Direction *Vec3  `yaml:"direction,omitempty"`
	Color     *Vec3  `yaml:"color,omitempty"`
}

// ShaderSpec selects an object color or cutout shader
type ShaderSpec struct {
	Type string  `yaml:"type"` // checkerboard, glass or texture
	U    float64 `yaml:"u,omitempty"`
	V    float64 `yaml:"v,omitempty"`
	File string  `yaml:"file,omitempty"` // Texture image, relative to the scene file
}

// ObjectSpec describes a sphere or a triangle mesh
type ObjectSpec struct {
	Type       string      `yaml:"type"` // sphere or mesh
	Name       string      `yaml:"name"`
	Material   string      `yaml:"material"`
	IOR        float64     `yaml:"ior,omitempty"`
	Subsurface string      `yaml:"subsurface,omitempty"` // Preset set on every material the object uses
	Shader     *ShaderSpec `yaml:"shader,omitempty"`
	Cutout     *ShaderSpec `yaml:"cutout,omitempty"`

	// Sphere
	Center Vec3    `yaml:"center"`
	Radius float64 `yaml:"radius"`

	// Mesh
	File            string   `yaml:"file,omitempty"` // PLY file, relative to the scene file
	Vertices        []Vec3   `yaml:"vertices,omitempty"`
	Faces           [][]int  `yaml:"faces,omitempty"`
	Normals         []Vec3   `yaml:"normals,omitempty"`
	VertexMaterials []string `yaml:"vertex_materials,omitempty"`
	Rotation        *Vec3    `yaml:"rotation,omitempty"`    // Degrees about X, then Y, then Z
	TextureMap      string   `yaml:"texture_map,omitempty"` // quad (default) or spherical
}

// sceneLoader resolves names while building a scene
type sceneLoader struct {
	dir       string
	scene     *scene.Scene
	materials map[string]*material.Material
	textures  map[string]*material.ImageTexture
}

// LoadSceneFile reads a YAML scene description. Relative paths inside the file
// resolve against its directory.
func LoadSceneFile(filename string, opts scene.Options) (*scene.Scene, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	s, err := ReadScene(file, filepath.Dir(filename), opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return s, nil
}

// ReadScene decodes a YAML scene description from r
func ReadScene(r io.Reader, dir string, opts scene.Options) (*scene.Scene, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var spec SceneFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}
	return BuildScene(spec, dir, opts)
}

// BuildScene creates a scene from a decoded description
func BuildScene(spec SceneFile, dir string, opts scene.Options) (*scene.Scene, error) {
	cfg := opts.Config
	if spec.Tracer != nil {
		cfg = spec.Tracer.Merge(opts.Config)
	}

	l := &sceneLoader{
		dir:       dir,
		scene:     scene.New(cfg),
		materials: make(map[string]*material.Material),
		textures:  make(map[string]*material.ImageTexture),
	}

	if err := l.camera(spec.Camera, opts); err != nil {
		return nil, err
	}
	for name, m := range spec.Materials {
		mat, err := newMaterial(m)
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		l.materials[name] = mat
		l.scene.AddMaterial(mat)
	}
	for i, light := range spec.Lights {
		if err := l.light(light); err != nil {
			return nil, fmt.Errorf("light %d: %w", i, err)
		}
	}
	for i, object := range spec.Objects {
		if err := l.object(object); err != nil {
			name := object.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("object %s: %w", name, err)
		}
	}

	logger.Infof("loaded scene: %d objects, %d primitives, %d lights",
		len(l.scene.Objects), l.scene.PrimitiveCount(), len(l.scene.Lights))
	return l.scene, nil
}

func (l *sceneLoader) camera(spec CameraSpec, opts scene.Options) error {
	if spec.VerticalFOV <= 0 || spec.VerticalFOV >= math.Pi {
		return fmt.Errorf("camera vertical_fov must be in (0, pi) radians, got %g", spec.VerticalFOV)
	}
	if core.Vec3(spec.ViewDirection).IsZero() {
		return fmt.Errorf("camera view_direction must not be zero")
	}
	focal := spec.FocalDistance
	if focal <= 0 {
		focal = 1
	}
	cfg := opts.CameraConfig(geometry.CameraConfig{
		Position:      core.Vec3(spec.Position),
		ViewDirection: core.Vec3(spec.ViewDirection),
		Up:            spec.Up.vec(core.NewVec3(0, 1, 0)),
		VerticalFOV:   spec.VerticalFOV,
		FocalDistance: focal,
	})
	if opts.LensRadius == 0 {
		cfg.LensRadius = spec.LensRadius
	}
	l.scene.Camera = geometry.NewCamera(cfg)
	return nil
}

func newMaterial(spec MaterialSpec) (*material.Material, error) {
	m := &material.Material{
		Diffuse:      spec.Diffuse.vec(core.Vec3{}),
		Ambient:      spec.Ambient.vec(core.Vec3{}),
		Specular:     spec.Specular.vec(core.Vec3{}),
		Emissive:     spec.Emissive.vec(core.Vec3{}),
		Shininess:    spec.Shininess,
		Transparency: spec.Transparency,
	}
	if spec.Subsurface != "" {
		preset, err := bssrdf.LookupPreset(spec.Subsurface)
		if err != nil {
			return nil, err
		}
		m.Subsurface = preset.Profile()
	}
	return m, nil
}

func (l *sceneLoader) material(name string) (*material.Material, error) {
	if name == "" {
		return material.NewDiffuse(core.Splat(0.8)), nil
	}
	mat, ok := l.materials[name]
	if !ok {
		return nil, fmt.Errorf("unknown material %q", name)
	}
	return mat, nil
}

func (l *sceneLoader) light(spec LightSpec) error {
	color := spec.Color.vec(core.Splat(1))
	switch strings.ToLower(spec.Type) {
	case "point":
		if spec.Position == nil {
			return fmt.Errorf("point light needs a position")
		}
		l.scene.AddLight(lights.NewPointLight(core.Vec3(*spec.Position), color))
	case "directional":
		if spec.Direction == nil || core.Vec3(*spec.Direction).IsZero() {
			return fmt.Errorf("directional light needs a non-zero direction")
		}
		l.scene.AddLight(lights.NewDirectionalLight(core.Vec3(*spec.Direction), color))
	case "spot":
		logger.Warning("spot lights are not supported, skipping")
	default:
		return fmt.Errorf("unknown light type %q", spec.Type)
	}
	return nil
}

func (l *sceneLoader) object(spec ObjectSpec) error {
	mat, err := l.material(spec.Material)
	if err != nil {
		return err
	}

	var object *geometry.Object
	switch strings.ToLower(spec.Type) {
	case "sphere":
		if spec.Radius <= 0 {
			return fmt.Errorf("sphere radius must be positive, got %g", spec.Radius)
		}
		object = geometry.NewObject(spec.Name)
		object.Add(geometry.NewSphere(core.Vec3(spec.Center), spec.Radius, mat))
	case "mesh":
		object, err = l.mesh(spec, mat)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownShape, spec.Type)
	}

	if spec.IOR > 0 {
		object.IndexOfRefraction = spec.IOR
	}
	if spec.Subsurface != "" {
		preset, err := bssrdf.LookupPreset(spec.Subsurface)
		if err != nil {
			return err
		}
		object.SetSubsurface(preset.Profile())
	}
	if spec.Shader != nil {
		if object.ColorShader, err = l.colorShader(*spec.Shader); err != nil {
			return err
		}
	}
	if spec.Cutout != nil {
		if spec.Cutout.U <= 0 || spec.Cutout.V <= 0 {
			return fmt.Errorf("cutout needs positive u and v")
		}
		object.IntersectionShader = material.NewCheckerboardIntersectionShader(spec.Cutout.U, spec.Cutout.V)
	}

	l.scene.AddObject(object)
	return nil
}

func (l *sceneLoader) mesh(spec ObjectSpec, mat *material.Material) (*geometry.Object, error) {
	var options geometry.MeshOptions
	if spec.Rotation != nil {
		r := core.Vec3(*spec.Rotation).Multiply(math.Pi / 180)
		options.Rotation = &r
	}

	var object *geometry.Object
	var err error
	if spec.File != "" {
		data, err := LoadPLY(l.path(spec.File))
		if err != nil {
			return nil, err
		}
		object, err = data.Mesh(spec.Name, mat, &options)
		if err != nil {
			return nil, err
		}
	} else {
		vertices := make([]core.Vec3, len(spec.Vertices))
		for i, v := range spec.Vertices {
			vertices[i] = core.Vec3(v)
		}
		for _, n := range spec.Normals {
			options.Normals = append(options.Normals, core.Vec3(n))
		}
		for _, name := range spec.VertexMaterials {
			m, err := l.material(name)
			if err != nil {
				return nil, err
			}
			options.Materials = append(options.Materials, m)
		}
		object, err = geometry.NewTriangleMesh(spec.Name, vertices, triangulate(spec.Name, spec.Faces), mat, &options)
		if err != nil {
			return nil, err
		}
	}

	switch strings.ToLower(spec.TextureMap) {
	case "", "quad":
	case "spherical":
		object.SphericalTextureMap()
	default:
		return nil, fmt.Errorf("unknown texture_map %q", spec.TextureMap)
	}
	return object, nil
}

// triangulate flattens faces into triangle indices, fanning polygons
func triangulate(name string, faces [][]int) []int {
	indices := make([]int, 0, 3*len(faces))
	for _, face := range faces {
		if len(face) != 3 {
			logger.Warningf("mesh %s: face with %d vertices is not a triangle", name, len(face))
		}
		for i := 1; i+1 < len(face); i++ {
			indices = append(indices, face[0], face[i], face[i+1])
		}
	}
	return indices
}

func (l *sceneLoader) colorShader(spec ShaderSpec) (material.ColorShader, error) {
	switch strings.ToLower(spec.Type) {
	case "checkerboard":
		if spec.U <= 0 || spec.V <= 0 {
			return nil, fmt.Errorf("checkerboard shader needs positive u and v")
		}
		return material.NewCheckerboardColorShader(spec.U, spec.V), nil
	case "glass":
		return material.GlassColorShader{}, nil
	case "texture":
		if spec.File == "" {
			return nil, fmt.Errorf("texture shader needs a file")
		}
		path := l.path(spec.File)
		texture, ok := l.textures[path]
		if !ok {
			var err error
			if texture, err = LoadTexture(path); err != nil {
				return nil, err
			}
			l.textures[path] = texture
		}
		return material.NewTextureColorShader(texture), nil
	default:
		return nil, fmt.Errorf("unknown shader type %q", spec.Type)
	}
}

func (l *sceneLoader) path(name string) string {
	if filepath.IsAbs(name) || l.dir == "" {
		return name
	}
	return filepath.Join(l.dir, name)
}
