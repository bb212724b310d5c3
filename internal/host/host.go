// Package host replays a scene descriptor against a 3D host application.
package host

import (
	"context"
	"fmt"

	"github.com/ivlev/dirtsynth/internal/animation"
	"github.com/ivlev/dirtsynth/internal/material"
	"github.com/ivlev/dirtsynth/internal/nodegraph"
	"github.com/ivlev/dirtsynth/internal/scene"
)

// Host is the capability surface a scene is built against. Every call
// mutates host state in place; failures are final.
type Host interface {
	Reset(ctx context.Context, settings scene.RenderSettings) error
	SetWorld(ctx context.Context, world scene.World) error
	CreateMaterial(ctx context.Context, m *material.Material) error
	CreateTexture(ctx context.Context, t scene.Texture) error
	// CreateObject creates obj; its parent, if any, already exists.
	CreateObject(ctx context.Context, obj *scene.Object) error
	AssignMaterial(ctx context.Context, object, material string) error
	// Animate inserts the keys of seq on owner, an object or a material.
	Animate(ctx context.Context, owner string, seq *animation.Sequence) error
	AddModifier(ctx context.Context, object string, m scene.Modifier) error
	SetCompositor(ctx context.Context, g *nodegraph.Graph) error
	Save(ctx context.Context, path string) error
}

// Renderer renders a saved scene into its configured output path.
type Renderer interface {
	Render(ctx context.Context, scenePath string) error
}

// Replay builds d on h and saves it to path.
//
// Материалы и текстуры создаются до объектов, модификаторы после всех
// объектов: displace ссылается на якорь, который создается позже сфероида.
func Replay(ctx context.Context, h Host, d *scene.Descriptor, path string) error {
	if err := h.Reset(ctx, d.Render); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if err := h.SetWorld(ctx, d.World); err != nil {
		return fmt.Errorf("world: %w", err)
	}

	for _, m := range d.Materials {
		if err := h.CreateMaterial(ctx, m); err != nil {
			return fmt.Errorf("material %s: %w", m.Name, err)
		}
		for _, seq := range m.Animation {
			if err := h.Animate(ctx, m.Name, seq); err != nil {
				return fmt.Errorf("material %s animation: %w", m.Name, err)
			}
		}
	}
	for _, t := range d.Textures {
		if err := h.CreateTexture(ctx, t); err != nil {
			return fmt.Errorf("texture %s: %w", t.Name, err)
		}
	}

	created := make(map[string]bool, len(d.Objects))
	for _, obj := range d.Objects {
		if obj.Parent != "" && !created[obj.Parent] {
			return fmt.Errorf("object %s: parent %s is not created yet", obj.Name, obj.Parent)
		}
		if err := h.CreateObject(ctx, obj); err != nil {
			return fmt.Errorf("object %s: %w", obj.Name, err)
		}
		created[obj.Name] = true

		if obj.Material != "" {
			if err := h.AssignMaterial(ctx, obj.Name, obj.Material); err != nil {
				return fmt.Errorf("object %s material: %w", obj.Name, err)
			}
		}
		for _, seq := range obj.Animation {
			if err := h.Animate(ctx, obj.Name, seq); err != nil {
				return fmt.Errorf("object %s animation: %w", obj.Name, err)
			}
		}
	}

	for _, obj := range d.Objects {
		for _, m := range obj.Modifiers {
			if m.CoordsObject != "" && !created[m.CoordsObject] {
				return fmt.Errorf("modifier %s: unknown coordinates object %s", m.Name, m.CoordsObject)
			}
			if err := h.AddModifier(ctx, obj.Name, m); err != nil {
				return fmt.Errorf("object %s modifier %s: %w", obj.Name, m.Name, err)
			}
		}
	}

	if d.Compositor != nil {
		if err := h.SetCompositor(ctx, d.Compositor); err != nil {
			return fmt.Errorf("compositor: %w", err)
		}
	}

	if err := h.Save(ctx, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
