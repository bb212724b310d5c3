// Package scene assembles the host-independent scene descriptor of a run and
// persists it.
package scene

import (
	"fmt"
	"math"
	"math/rand/v2"
	"path/filepath"

	"github.com/ivlev/dirtsynth/internal/animation"
	"github.com/ivlev/dirtsynth/internal/compositor"
	"github.com/ivlev/dirtsynth/internal/config"
	"github.com/ivlev/dirtsynth/internal/material"
	"github.com/ivlev/dirtsynth/internal/sampler"
)

const DescriptorVersion = "1.0"

// Имена объектов сцены
const (
	CameraName   = "Camera"
	ScreenName   = "Plane"
	SpheroidName = "Icosphere"
	AnchorName   = "EmptyObject"
	LightName    = "Sun"

	SubdivName       = "SubDiv"
	DisplaceName     = "Displace.001"
	DisplaceTexture  = "DisplaceTex.001"
	SpheroidSubdiv   = 3
	SubsurfLevels    = 5
	RenderFrameStart = 1
)

// Глубины перед камерой вдоль ее оси взгляда (локальная -Z).
const (
	ScreenDepth     = 0.1
	SpheroidDepth   = 5.0
	CameraClipStart = 0.01
)

var (
	cameraLocation = [3]float64{0, -5, 0}
	facingY        = [3]float64{math.Pi / 2, 0, 0}
	unitScale      = [3]float64{1, 1, 1}

	// Дочерние объекты камеры задаются в ее локальных координатах: экран
	// в мире оказывается в (0,-4.9,0) лицом к камере, сфероид в начале
	// координат.
	screenLocation   = [3]float64{0, 0, -ScreenDepth}
	screenScale      = [3]float64{3, 3, 1}
	spheroidLocation = [3]float64{0, 0, -SpheroidDepth}
)

// Assembler builds descriptors for one batch configuration.
type Assembler struct {
	Config *config.Config
}

// NewAssembler creates an assembler for the batch configuration.
func NewAssembler(cfg *config.Config) *Assembler {
	return &Assembler{Config: cfg}
}

// Assemble builds the descriptor of run from its parameters. Rotation keys
// and the scroll offset are drawn from r, in that order.
func (a *Assembler) Assemble(run string, rc sampler.RunConfig, r *rand.Rand) (*Descriptor, error) {
	cfg := a.Config

	// 1-2. Настройки рендера и белый фон с прозрачной пленкой
	d := &Descriptor{
		Version: DescriptorVersion,
		Run:     run,
		ID:      RunID(cfg.Seed, run),
		Seed:    cfg.Seed,
		Params:  rc,
		Render: RenderSettings{
			Engine:          "CYCLES",
			Device:          "GPU",
			DeviceType:      cfg.Blender.DeviceType,
			ResolutionX:     cfg.Resolution,
			ResolutionY:     cfg.Resolution,
			FrameStart:      RenderFrameStart,
			FrameEnd:        cfg.Frames,
			FPS:             cfg.FPS,
			FilmTransparent: true,
			ColorMode:       "BW",
			FileFormat:      cfg.FileFormat,
			OutputPath:      filepath.Join(RunRenderDir(cfg.RendersDir, run), "frame"),
		},
		World: World{Color: compositor.Background},
	}

	// 3. Ортографическая камера, смотрит вдоль +Y
	camera := &Object{
		Name:      CameraName,
		Type:      ObjectCamera,
		Transform: Transform{Location: cameraLocation, Rotation: facingY, Scale: unitScale},
		Camera:    &Camera{Projection: "ORTHO", ClipStart: CameraClipStart},
	}

	// 4. Экран: дочерний объект камеры
	screen := &Object{
		Name:      ScreenName,
		Type:      ObjectMesh,
		Parent:    CameraName,
		Transform: Transform{Location: screenLocation, Scale: screenScale},
		Mesh:      &Mesh{Primitive: "plane"},
		Material:  material.ScreenName,
	}

	// 5. Сфероид
	spheroid := &Object{
		Name:      SpheroidName,
		Type:      ObjectMesh,
		Parent:    CameraName,
		Transform: Transform{Location: spheroidLocation, Scale: unitScale},
		Mesh:      &Mesh{Primitive: "ico_sphere", Subdivisions: SpheroidSubdiv},
		Material:  material.SpheroidName,
	}

	// 6. Вращение
	rotation, err := animation.Rotation(r, animation.RotationParams{
		Object:  SpheroidName,
		Speed:   rc.RotationSpeed,
		Changes: rc.RotationChanges,
		Frames:  cfg.Frames,
		FPS:     cfg.FPS,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: rotation: %w", run, err)
	}
	spheroid.Animation = []*animation.Sequence{rotation}

	// 7. Материалы
	spheroidMat, err := material.Spheroid()
	if err != nil {
		return nil, fmt.Errorf("%s: spheroid material: %w", run, err)
	}
	screenMat, err := material.Screen(material.ScreenParams{
		DirtLevel: rc.DirtLevel,
		FallSpeed: rc.FallSpeed,
		Frames:    cfg.Frames,
		FPS:       cfg.FPS,
		ScrollZ:   material.SampleScrollZ(r),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: screen material: %w", run, err)
	}
	d.Materials = []*material.Material{spheroidMat, screenMat}

	// 8. Subdivision + displacement, координаты текстуры от якоря
	anchor := &Object{
		Name:      AnchorName,
		Type:      ObjectEmpty,
		Parent:    SpheroidName,
		Transform: Transform{Location: rc.AnchorOffset, Scale: unitScale},
	}
	spheroid.Modifiers = []Modifier{
		{Name: SubdivName, Kind: ModifierSubsurf, Levels: SubsurfLevels, RenderLevels: SubsurfLevels},
		{
			Name:          DisplaceName,
			Kind:          ModifierDisplace,
			Strength:      rc.DisplaceStrength,
			Texture:       DisplaceTexture,
			TextureCoords: TextureCoordsObject,
			CoordsObject:  AnchorName,
		},
	}
	d.Textures = []Texture{{Name: DisplaceTexture, Kind: "CLOUDS", NoiseScale: rc.CloudsScale}}

	// 9. Солнце в начале координат
	sun := &Object{
		Name:      LightName,
		Type:      ObjectLight,
		Transform: Transform{Scale: unitScale},
		Light:     &Light{Kind: "SUN", Radius: 1},
	}

	d.Objects = []*Object{camera, screen, spheroid, anchor, sun}

	// 10. Композитинг
	comp, err := compositor.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: compositor: %w", run, err)
	}
	d.Compositor = comp

	return d, nil
}
