package scene

import (
	"github.com/ivlev/dirtsynth/internal/animation"
	"github.com/ivlev/dirtsynth/internal/material"
	"github.com/ivlev/dirtsynth/internal/nodegraph"
	"github.com/ivlev/dirtsynth/internal/sampler"
)

// Descriptor is the complete, host-independent description of one run's
// scene. Built in memory, persisted, then discarded.
type Descriptor struct {
	Version    string               `yaml:"version"`
	Run        string               `yaml:"run"`
	ID         string               `yaml:"id"`
	Seed       uint64               `yaml:"seed"`
	Params     sampler.RunConfig    `yaml:"params"`
	Render     RenderSettings       `yaml:"render"`
	World      World                `yaml:"world"`
	Objects    []*Object            `yaml:"objects"`
	Materials  []*material.Material `yaml:"materials"`
	Textures   []Texture            `yaml:"textures"`
	Compositor *nodegraph.Graph     `yaml:"compositor"`
}

// RenderSettings are the scene-level render options.
type RenderSettings struct {
	Engine          string `yaml:"engine"`
	Device          string `yaml:"device"`
	DeviceType      string `yaml:"device_type"`
	ResolutionX     int    `yaml:"resolution_x"`
	ResolutionY     int    `yaml:"resolution_y"`
	FrameStart      int    `yaml:"frame_start"`
	FrameEnd        int    `yaml:"frame_end"`
	FPS             int    `yaml:"fps"`
	FilmTransparent bool   `yaml:"film_transparent"`
	ColorMode       string `yaml:"color_mode"`
	FileFormat      string `yaml:"file_format"`
	OutputPath      string `yaml:"output_path"` // префикс кадров, нумерацию добавляет хост
}

// World is the scene background.
type World struct {
	Color [4]float64 `yaml:"color,flow"`
}

// ObjectType is the host object category.
type ObjectType string

const (
	ObjectCamera ObjectType = "CAMERA"
	ObjectMesh   ObjectType = "MESH"
	ObjectEmpty  ObjectType = "EMPTY"
	ObjectLight  ObjectType = "LIGHT"
)

// Transform is a local transform relative to the parent (or world). It is
// applied in the parent's space as is, without an inverse of the parent
// matrix at parenting time.
type Transform struct {
	Location [3]float64 `yaml:"location,flow"`
	Rotation [3]float64 `yaml:"rotation,flow"` // радианы, XYZ Euler
	Scale    [3]float64 `yaml:"scale,flow"`
}

// Object is one scene object. Exactly one of the type-specific blocks is set
// for cameras, meshes and lights.
type Object struct {
	Name      string                `yaml:"name"`
	Type      ObjectType            `yaml:"type"`
	Parent    string                `yaml:"parent,omitempty"`
	Transform Transform             `yaml:"transform"`
	Camera    *Camera               `yaml:"camera,omitempty"`
	Mesh      *Mesh                 `yaml:"mesh,omitempty"`
	Light     *Light                `yaml:"light,omitempty"`
	Material  string                `yaml:"material,omitempty"`
	Modifiers []Modifier            `yaml:"modifiers,omitempty"`
	Animation []*animation.Sequence `yaml:"animation,omitempty"`
}

type Camera struct {
	Projection string  `yaml:"projection"`
	ClipStart  float64 `yaml:"clip_start"`
}

// Mesh is a primitive mesh.
type Mesh struct {
	Primitive    string `yaml:"primitive"`
	Subdivisions int    `yaml:"subdivisions,omitempty"`
}

type Light struct {
	Kind   string  `yaml:"kind"`
	Radius float64 `yaml:"radius"`
}

// ModifierKind is the host modifier type.
type ModifierKind string

const (
	ModifierSubsurf  ModifierKind = "SUBSURF"
	ModifierDisplace ModifierKind = "DISPLACE"
)

// TextureCoordsObject maps a texture through another object's local space.
const TextureCoordsObject = "OBJECT"

// Modifier is a mesh modifier. Only the fields of its kind are set.
type Modifier struct {
	Name          string       `yaml:"name"`
	Kind          ModifierKind `yaml:"kind"`
	Levels        int          `yaml:"levels,omitempty"`
	RenderLevels  int          `yaml:"render_levels,omitempty"`
	Strength      float64      `yaml:"strength,omitempty"`
	Texture       string       `yaml:"texture,omitempty"`
	TextureCoords string       `yaml:"texture_coords,omitempty"`
	CoordsObject  string       `yaml:"coords_object,omitempty"`
}

// Texture is a procedural texture used by modifiers.
type Texture struct {
	Name       string  `yaml:"name"`
	Kind       string  `yaml:"kind"`
	NoiseScale float64 `yaml:"noise_scale"`
}

// Object returns the object with the given name.
func (d *Descriptor) Object(name string) (*Object, bool) {
	for _, o := range d.Objects {
		if o.Name == name {
			return o, true
		}
	}
	return nil, false
}

// Material returns the material with the given name.
func (d *Descriptor) Material(name string) (*material.Material, bool) {
	for _, m := range d.Materials {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}
