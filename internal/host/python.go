package host

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ivlev/dirtsynth/internal/animation"
	"github.com/ivlev/dirtsynth/internal/nodegraph"
)

// bl_idname узлов Blender
var blenderNodeTypes = map[nodegraph.Kind]string{
	nodegraph.KindTexCoord:         "ShaderNodeTexCoord",
	nodegraph.KindMapping:          "ShaderNodeMapping",
	nodegraph.KindNoiseTexture:     "ShaderNodeTexNoise",
	nodegraph.KindMath:             "ShaderNodeMath",
	nodegraph.KindValue:            "ShaderNodeValue",
	nodegraph.KindInvert:           "ShaderNodeInvert",
	nodegraph.KindPrincipledBSDF:   "ShaderNodeBsdfPrincipled",
	nodegraph.KindPrincipledVolume: "ShaderNodeVolumePrincipled",
	nodegraph.KindMaterialOutput:   "ShaderNodeOutputMaterial",
	nodegraph.KindRenderLayers:     "CompositorNodeRLayers",
	nodegraph.KindDenoise:          "CompositorNodeDenoise",
	nodegraph.KindAlphaOver:        "CompositorNodeAlphaOver",
	nodegraph.KindComposite:        "CompositorNodeComposite",
}

func pyFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func pyStr(s string) string {
	return strconv.Quote(s)
}

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// pyValue renders one component as a scalar and more as a tuple.
func pyValue(v []float64) string {
	if len(v) == 1 {
		return pyFloat(v[0])
	}
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = pyFloat(x)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// script накапливает текст Python-сценария.
type script struct {
	b strings.Builder
}

func (s *script) line(format string, args ...any) {
	fmt.Fprintf(&s.b, format, args...)
	s.b.WriteByte('\n')
}

func (s *script) String() string {
	return s.b.String()
}

// graph emits the nodes and links of g into the node tree held by the Python
// variable tree. Sockets are addressed by host index.
func (s *script) graph(tree string, g *nodegraph.Graph) error {
	s.line("%s.nodes.clear()", tree)
	s.line("nodes = {}")

	for _, n := range g.Nodes {
		typ, ok := blenderNodeTypes[n.Kind]
		if !ok {
			return fmt.Errorf("node %s: kind %s has no Blender type", n.Name, n.Kind)
		}
		spec, _ := n.Kind.Spec()

		s.line("n = %s.nodes.new(%s)", tree, pyStr(typ))
		s.line("n.name = %s", pyStr(n.Name))
		s.line("n.location = (%s, %s)", pyFloat(n.Location[0]), pyFloat(n.Location[1]))
		if n.Operation != "" {
			s.line("n.operation = %s", pyStr(string(n.Operation)))
		}
		for _, in := range spec.Inputs {
			v, ok := n.Defaults[in.Name]
			if !ok {
				continue
			}
			s.line("n.inputs[%d].default_value = %s", in.Index, pyValue(v))
		}
		if len(n.Output) > 0 {
			s.line("n.outputs[0].default_value = %s", pyValue(n.Output))
		}
		s.line("nodes[%s] = n", pyStr(n.Name))
	}

	for _, l := range g.Links {
		from, _ := g.Node(l.From)
		to, _ := g.Node(l.To)
		fromSpec, _ := from.Kind.Spec()
		toSpec, _ := to.Kind.Spec()
		out, _ := fromSpec.Output(l.FromSocket)
		in, _ := toSpec.Input(l.ToSocket)
		s.line("%s.links.new(nodes[%s].outputs[%d], nodes[%s].inputs[%d])",
			tree, pyStr(l.From), out.Index, pyStr(l.To), in.Index)
	}
	return nil
}

// keys emits keyframe_insert calls on holder.attr, then copies interpolation
// and handle types from the sequence onto the F-curves of dataPath.
func (s *script) keys(holder, attr, dataPath, animData string, seq *animation.Sequence) {
	for _, k := range seq.Keys {
		s.line("%s.%s = %s", holder, attr, pyValue(k.Value))
		s.line("%s.keyframe_insert(data_path=%s, frame=%d)", holder, pyStr(attr), k.Frame)
	}

	modes := make([]string, len(seq.Keys))
	for i, k := range seq.Keys {
		modes[i] = fmt.Sprintf("(%s, %s, %s)", pyStr(string(k.Interpolation)), pyStr(string(k.HandleLeft)), pyStr(string(k.HandleRight)))
	}
	s.line("for fc in %s.animation_data.action.fcurves:", animData)
	s.line("    if fc.data_path != %s:", pyStr(dataPath))
	s.line("        continue")
	s.line("    fc.extrapolation = %s", pyStr(string(seq.Extrapolation)))
	s.line("    for kp, (interp, left, right) in zip(fc.keyframe_points, [%s]):", strings.Join(modes, ", "))
	s.line("        kp.interpolation = interp")
	s.line("        kp.handle_left_type = left")
	s.line("        kp.handle_right_type = right")
}
