package nodegraph

// SocketType is the data type carried by a socket.
type SocketType string

const (
	TypeFloat  SocketType = "float"
	TypeVector SocketType = "vector"
	TypeColor  SocketType = "color"
	TypeShader SocketType = "shader"
)

// Width returns the number of components of a default value of this type.
func (t SocketType) Width() int {
	switch t {
	case TypeFloat:
		return 1
	case TypeVector:
		return 3
	case TypeColor:
		return 4
	}
	return 0
}

// compatible повторяет неявные преобразования хоста: float/vector/color
// приводятся друг к другу, shader соединяется только с shader.
func compatible(from, to SocketType) bool {
	if from == to {
		return true
	}
	return from != TypeShader && to != TypeShader
}

// Socket declares one input or output of a node kind. Index is the host-side
// positional index of the socket.
type Socket struct {
	Name     string
	Index    int
	Type     SocketType
	Required bool
}

// Kind identifies a node type.
type Kind string

const (
	KindTexCoord         Kind = "tex_coord"
	KindMapping          Kind = "mapping"
	KindNoiseTexture     Kind = "noise_texture"
	KindMath             Kind = "math"
	KindValue            Kind = "value"
	KindInvert           Kind = "invert"
	KindPrincipledBSDF   Kind = "principled_bsdf"
	KindPrincipledVolume Kind = "principled_volume"
	KindMaterialOutput   Kind = "material_output"

	KindRenderLayers Kind = "render_layers"
	KindDenoise      Kind = "denoise"
	KindAlphaOver    Kind = "alpha_over"
	KindComposite    Kind = "composite"
)

// Operation selects the function of a math node.
type Operation string

const (
	OpAdd         Operation = "ADD"
	OpPower       Operation = "POWER"
	OpMultiplyAdd Operation = "MULTIPLY_ADD"
)

// arity is the number of math inputs each operation consumes.
var arity = map[Operation]int{
	OpAdd:         2,
	OpPower:       2,
	OpMultiplyAdd: 3,
}

// KindSpec declares the sockets of a node kind. Terminal kinds are graph
// outputs; a graph has exactly one.
type KindSpec struct {
	Inputs   []Socket
	Outputs  []Socket
	Terminal bool
}

var specs = map[Kind]KindSpec{
	KindTexCoord: {
		Outputs: []Socket{
			{Name: "Generated", Index: 0, Type: TypeVector},
			{Name: "Normal", Index: 1, Type: TypeVector},
			{Name: "UV", Index: 2, Type: TypeVector},
			{Name: "Object", Index: 3, Type: TypeVector},
		},
	},
	KindMapping: {
		Inputs: []Socket{
			{Name: "Vector", Index: 0, Type: TypeVector, Required: true},
			{Name: "Location", Index: 1, Type: TypeVector},
			{Name: "Rotation", Index: 2, Type: TypeVector},
			{Name: "Scale", Index: 3, Type: TypeVector},
		},
		Outputs: []Socket{{Name: "Vector", Index: 0, Type: TypeVector}},
	},
	KindNoiseTexture: {
		Inputs: []Socket{
			{Name: "Vector", Index: 0, Type: TypeVector, Required: true},
			{Name: "Scale", Index: 2, Type: TypeFloat},
			{Name: "Detail", Index: 3, Type: TypeFloat},
			{Name: "Roughness", Index: 4, Type: TypeFloat},
			{Name: "Distortion", Index: 5, Type: TypeFloat},
		},
		Outputs: []Socket{
			{Name: "Fac", Index: 0, Type: TypeFloat},
			{Name: "Color", Index: 1, Type: TypeColor},
		},
	},
	// Обязательность входов math определяется операцией, см. requiredInputs.
	KindMath: {
		Inputs: []Socket{
			{Name: "Value", Index: 0, Type: TypeFloat},
			{Name: "Value_001", Index: 1, Type: TypeFloat},
			{Name: "Value_002", Index: 2, Type: TypeFloat},
		},
		Outputs: []Socket{{Name: "Value", Index: 0, Type: TypeFloat}},
	},
	KindValue: {
		Outputs: []Socket{{Name: "Value", Index: 0, Type: TypeFloat}},
	},
	KindInvert: {
		Inputs: []Socket{
			{Name: "Fac", Index: 0, Type: TypeFloat, Required: true},
			{Name: "Color", Index: 1, Type: TypeColor, Required: true},
		},
		Outputs: []Socket{{Name: "Color", Index: 0, Type: TypeColor}},
	},
	KindPrincipledBSDF: {
		Inputs: []Socket{
			{Name: "Base Color", Index: 0, Type: TypeColor, Required: true},
			{Name: "Metallic", Index: 6, Type: TypeFloat},
			{Name: "Roughness", Index: 9, Type: TypeFloat},
			{Name: "Alpha", Index: 21, Type: TypeFloat},
		},
		Outputs: []Socket{{Name: "BSDF", Index: 0, Type: TypeShader}},
	},
	KindPrincipledVolume: {
		Inputs: []Socket{
			{Name: "Color", Index: 0, Type: TypeColor, Required: true},
			{Name: "Density", Index: 2, Type: TypeFloat, Required: true},
		},
		Outputs: []Socket{{Name: "Volume", Index: 0, Type: TypeShader}},
	},
	KindMaterialOutput: {
		Inputs: []Socket{
			{Name: "Surface", Index: 0, Type: TypeShader},
			{Name: "Volume", Index: 1, Type: TypeShader},
		},
		Terminal: true,
	},

	KindRenderLayers: {
		Outputs: []Socket{
			{Name: "Image", Index: 0, Type: TypeColor},
			{Name: "Alpha", Index: 1, Type: TypeFloat},
		},
	},
	KindDenoise: {
		Inputs: []Socket{
			{Name: "Image", Index: 0, Type: TypeColor, Required: true},
			{Name: "Normal", Index: 1, Type: TypeVector},
			{Name: "Albedo", Index: 2, Type: TypeColor},
		},
		Outputs: []Socket{{Name: "Image", Index: 0, Type: TypeColor}},
	},
	KindAlphaOver: {
		Inputs: []Socket{
			{Name: "Fac", Index: 0, Type: TypeFloat},
			{Name: "Image", Index: 1, Type: TypeColor, Required: true},
			{Name: "Image_001", Index: 2, Type: TypeColor, Required: true},
		},
		Outputs: []Socket{{Name: "Image", Index: 0, Type: TypeColor}},
	},
	KindComposite: {
		Inputs: []Socket{
			{Name: "Image", Index: 0, Type: TypeColor, Required: true},
			{Name: "Alpha", Index: 1, Type: TypeFloat},
		},
		Terminal: true,
	},
}

// Spec returns the socket declaration of k.
func (k Kind) Spec() (KindSpec, bool) {
	s, ok := specs[k]
	return s, ok
}

// Input looks up an input socket by name.
func (s KindSpec) Input(name string) (Socket, bool) {
	return find(s.Inputs, name)
}

// Output looks up an output socket by name.
func (s KindSpec) Output(name string) (Socket, bool) {
	return find(s.Outputs, name)
}

func find(sockets []Socket, name string) (Socket, bool) {
	for _, s := range sockets {
		if s.Name == name {
			return s, true
		}
	}
	return Socket{}, false
}
