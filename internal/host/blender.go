package host

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ivlev/dirtsynth/internal/animation"
	"github.com/ivlev/dirtsynth/internal/material"
	"github.com/ivlev/dirtsynth/internal/nodegraph"
	"github.com/ivlev/dirtsynth/internal/scene"
)

// Blender replays a scene as a bpy script. Save writes the script next to
// the target .blend and, when Binary is set, runs Blender in background mode
// to produce the .blend file.
type Blender struct {
	Binary string
	logger *zap.Logger
	s      script
	graphs map[string]*nodegraph.Graph // для индексов сокетов в Animate
}

func NewBlender(binary string, logger *zap.Logger) *Blender {
	return &Blender{
		Binary: binary,
		logger: logger.Named("blender"),
		graphs: make(map[string]*nodegraph.Graph),
	}
}

// ScriptPath returns the replay script written for a .blend path.
func ScriptPath(blendPath string) string {
	return strings.TrimSuffix(blendPath, filepath.Ext(blendPath)) + ".py"
}

// Script returns the script accumulated so far.
func (b *Blender) Script() string {
	return b.s.String()
}

func objRef(name string) string {
	return fmt.Sprintf("objs[%s]", pyStr(name))
}

func matRef(name string) string {
	return fmt.Sprintf("mats[%s]", pyStr(name))
}

func (b *Blender) Reset(_ context.Context, rs scene.RenderSettings) error {
	output, err := filepath.Abs(rs.OutputPath)
	if err != nil {
		return err
	}

	b.s = script{}
	b.graphs = make(map[string]*nodegraph.Graph)
	s := &b.s
	s.line("import bpy")
	s.line("")
	s.line("bpy.ops.wm.read_factory_settings(use_empty=True)")
	s.line("scene = bpy.context.scene")
	s.line("objs, mats, texs = {}, {}, {}")
	s.line("")
	s.line("scene.render.engine = %s", pyStr(rs.Engine))
	s.line("scene.cycles.device = %s", pyStr(rs.Device))
	s.line("prefs = bpy.context.preferences.addons['cycles'].preferences")
	s.line("prefs.compute_device_type = %s", pyStr(rs.DeviceType))
	s.line("prefs.get_devices()")
	s.line("for d in prefs.devices:")
	s.line("    d.use = True")
	s.line("scene.render.resolution_x = %d", rs.ResolutionX)
	s.line("scene.render.resolution_y = %d", rs.ResolutionY)
	s.line("scene.render.resolution_percentage = 100")
	s.line("scene.frame_start = %d", rs.FrameStart)
	s.line("scene.frame_end = %d", rs.FrameEnd)
	s.line("scene.render.fps = %d", rs.FPS)
	s.line("scene.render.film_transparent = %s", pyBool(rs.FilmTransparent))
	s.line("scene.render.image_settings.file_format = %s", pyStr(rs.FileFormat))
	s.line("scene.render.image_settings.color_mode = %s", pyStr(rs.ColorMode))
	s.line("scene.render.filepath = %s", pyStr(output))
	return nil
}

func (b *Blender) SetWorld(_ context.Context, w scene.World) error {
	s := &b.s
	s.line("")
	s.line("world = bpy.data.worlds.new('World')")
	s.line("scene.world = world")
	s.line("world.use_nodes = True")
	s.line("world.node_tree.nodes['Background'].inputs[0].default_value = %s", pyValue(w.Color[:]))
	return nil
}

func (b *Blender) CreateMaterial(_ context.Context, m *material.Material) error {
	s := &b.s
	s.line("")
	s.line("mat = bpy.data.materials.new(%s)", pyStr(m.Name))
	s.line("mat.use_nodes = True")
	if err := s.graph("mat.node_tree", m.Graph); err != nil {
		return fmt.Errorf("material %s: %w", m.Name, err)
	}
	s.line("%s = mat", matRef(m.Name))
	b.graphs[m.Name] = m.Graph
	return nil
}

func (b *Blender) CreateTexture(_ context.Context, t scene.Texture) error {
	s := &b.s
	s.line("")
	s.line("tex = bpy.data.textures.new(%s, type=%s)", pyStr(t.Name), pyStr(t.Kind))
	s.line("tex.noise_scale = %s", pyFloat(t.NoiseScale))
	s.line("texs[%s] = tex", pyStr(t.Name))
	return nil
}

func (b *Blender) CreateObject(_ context.Context, obj *scene.Object) error {
	s := &b.s
	s.line("")
	switch obj.Type {
	case scene.ObjectCamera:
		s.line("bpy.ops.object.camera_add()")
	case scene.ObjectEmpty:
		s.line("bpy.ops.object.empty_add(type='PLAIN_AXES')")
	case scene.ObjectLight:
		if obj.Light == nil {
			return fmt.Errorf("light %s has no light block", obj.Name)
		}
		s.line("bpy.ops.object.light_add(type=%s, radius=%s)", pyStr(obj.Light.Kind), pyFloat(obj.Light.Radius))
	case scene.ObjectMesh:
		if obj.Mesh == nil {
			return fmt.Errorf("mesh %s has no mesh block", obj.Name)
		}
		switch obj.Mesh.Primitive {
		case "plane":
			s.line("bpy.ops.mesh.primitive_plane_add()")
		case "ico_sphere":
			s.line("bpy.ops.mesh.primitive_ico_sphere_add(subdivisions=%d)", obj.Mesh.Subdivisions)
		default:
			return fmt.Errorf("mesh %s: unknown primitive %q", obj.Name, obj.Mesh.Primitive)
		}
	default:
		return fmt.Errorf("object %s: unknown type %q", obj.Name, obj.Type)
	}

	s.line("obj = bpy.context.active_object")
	s.line("obj.name = %s", pyStr(obj.Name))
	if obj.Camera != nil {
		s.line("obj.data.type = %s", pyStr(obj.Camera.Projection))
		if obj.Camera.ClipStart > 0 {
			s.line("obj.data.clip_start = %s", pyFloat(obj.Camera.ClipStart))
		}
		s.line("scene.camera = obj")
	}
	if obj.Parent != "" {
		s.line("obj.parent = %s", objRef(obj.Parent))
		s.line("obj.matrix_parent_inverse.identity()")
	}
	s.line("obj.location = %s", pyValue(obj.Transform.Location[:]))
	s.line("obj.rotation_euler = %s", pyValue(obj.Transform.Rotation[:]))
	s.line("obj.scale = %s", pyValue(obj.Transform.Scale[:]))
	s.line("%s = obj", objRef(obj.Name))
	return nil
}

func (b *Blender) AssignMaterial(_ context.Context, object, mat string) error {
	b.s.line("%s.data.materials.append(%s)", objRef(object), matRef(mat))
	return nil
}

func (b *Blender) Animate(_ context.Context, owner string, seq *animation.Sequence) error {
	t := seq.Target
	s := &b.s
	s.line("")
	switch {
	case t.Node != "":
		ref := matRef(owner)
		g, ok := b.graphs[owner]
		if !ok {
			return fmt.Errorf("material %s is not created", owner)
		}
		n, ok := g.Node(t.Node)
		if !ok {
			return fmt.Errorf("material %s: no node %s", owner, t.Node)
		}
		spec, _ := n.Kind.Spec()
		in, ok := spec.Input(t.Socket)
		if !ok {
			return fmt.Errorf("material %s node %s: no input %s", owner, t.Node, t.Socket)
		}
		holder := fmt.Sprintf("%s.node_tree.nodes[%s].inputs[%d]", ref, pyStr(t.Node), in.Index)
		dataPath := fmt.Sprintf("nodes[%s].inputs[%d].default_value", pyStr(t.Node), in.Index)
		s.keys(holder, "default_value", dataPath, ref+".node_tree", seq)
	case t.Property != "":
		ref := objRef(owner)
		s.keys(ref, t.Property, t.Property, ref, seq)
	default:
		return fmt.Errorf("%s: sequence has no target", owner)
	}
	return nil
}

func (b *Blender) AddModifier(_ context.Context, object string, m scene.Modifier) error {
	s := &b.s
	s.line("")
	s.line("m = %s.modifiers.new(%s, %s)", objRef(object), pyStr(m.Name), pyStr(string(m.Kind)))
	switch m.Kind {
	case scene.ModifierSubsurf:
		s.line("m.levels = %d", m.Levels)
		s.line("m.render_levels = %d", m.RenderLevels)
	case scene.ModifierDisplace:
		s.line("m.strength = %s", pyFloat(m.Strength))
		if m.Texture != "" {
			s.line("m.texture = texs[%s]", pyStr(m.Texture))
		}
		if m.TextureCoords != "" {
			s.line("m.texture_coords = %s", pyStr(m.TextureCoords))
		}
		if m.CoordsObject != "" {
			s.line("m.texture_coords_object = %s", objRef(m.CoordsObject))
		}
	default:
		return fmt.Errorf("modifier %s: unknown kind %q", m.Name, m.Kind)
	}
	return nil
}

func (b *Blender) SetCompositor(_ context.Context, g *nodegraph.Graph) error {
	s := &b.s
	s.line("")
	s.line("scene.use_nodes = True")
	return s.graph("scene.node_tree", g)
}

// Save writes the replay script and, with a Blender binary configured, runs
// it to produce path.
func (b *Blender) Save(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	b.s.line("")
	b.s.line("bpy.ops.wm.save_as_mainfile(filepath=%s)", pyStr(abs))

	scriptPath := ScriptPath(path)
	if err := os.WriteFile(scriptPath, []byte(b.s.String()), 0644); err != nil {
		return err
	}
	if b.Binary == "" {
		b.logger.Debug("Blender не задан, записан только сценарий", zap.String("script", scriptPath))
		return nil
	}

	cmd := exec.CommandContext(ctx, b.Binary, "-b", "--factory-startup", "--python-exit-code", "1", "-P", scriptPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("blender error: %v, output: %s", err, string(out))
	}
	b.logger.Debug("Сцена сохранена", zap.String("blend", abs))
	return nil
}

// Render renders the animation of a saved .blend into its output path.
func (b *Blender) Render(ctx context.Context, scenePath string) error {
	if b.Binary == "" {
		return fmt.Errorf("render %s: blender binary is not configured", scenePath)
	}
	cmd := exec.CommandContext(ctx, b.Binary, "-b", scenePath, "-a")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("blender render error: %v, output: %s", err, string(out))
	}
	return nil
}
