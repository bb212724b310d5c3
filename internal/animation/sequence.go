package animation

import (
	"errors"
	"fmt"
)

// Interpolation is the curve mode between a key and the next one.
type Interpolation string

const (
	InterpBezier Interpolation = "BEZIER"
	InterpLinear Interpolation = "LINEAR"
)

// HandleType is the tangent handle type of a key.
type HandleType string

const (
	HandleAutoClamped HandleType = "AUTO_CLAMPED"
	HandleVector      HandleType = "VECTOR"
)

// Extrapolation controls the curve outside the key range.
type Extrapolation string

const (
	ExtrapConstant Extrapolation = "CONSTANT"
	ExtrapLinear   Extrapolation = "LINEAR"
)

// Keyframe is one (frame, value) pair of an animated property.
type Keyframe struct {
	Frame         int           `yaml:"frame"`
	Value         []float64     `yaml:"value,flow"`
	Interpolation Interpolation `yaml:"interpolation"`
	HandleLeft    HandleType    `yaml:"handle_left"`
	HandleRight   HandleType    `yaml:"handle_right"`
}

// Target names the animated property: an object property, or an input
// socket of a material node when Node is set.
type Target struct {
	Object   string `yaml:"object,omitempty"`
	Property string `yaml:"property,omitempty"`
	Node     string `yaml:"node,omitempty"`
	Socket   string `yaml:"socket,omitempty"`
}

// Sequence is the ordered key list of one animated property.
type Sequence struct {
	Target        Target        `yaml:"target"`
	Extrapolation Extrapolation `yaml:"extrapolation"`
	Keys          []Keyframe    `yaml:"keys"`
}

var ErrFrameOrder = errors.New("keyframe frames must be strictly increasing")

// NewSequence creates an empty sequence with host defaults (bezier keys,
// constant extrapolation).
func NewSequence(target Target) *Sequence {
	return &Sequence{Target: target, Extrapolation: ExtrapConstant}
}

// Insert appends a key with the host's default interpolation. Frames must
// be strictly increasing.
func (s *Sequence) Insert(frame int, value ...float64) error {
	if n := len(s.Keys); n > 0 && frame <= s.Keys[n-1].Frame {
		return fmt.Errorf("%w: frame %d after %d", ErrFrameOrder, frame, s.Keys[n-1].Frame)
	}
	if n := len(s.Keys); n > 0 && len(value) != len(s.Keys[0].Value) {
		return fmt.Errorf("keyframe at %d: value width %d, want %d", frame, len(value), len(s.Keys[0].Value))
	}
	s.Keys = append(s.Keys, Keyframe{
		Frame:         frame,
		Value:         append([]float64(nil), value...),
		Interpolation: InterpBezier,
		HandleLeft:    HandleAutoClamped,
		HandleRight:   HandleAutoClamped,
	})
	return nil
}

// Linearize forces every key to linear interpolation with vector handles and
// the curve to linear extrapolation. Runs after all keys are inserted.
func (s *Sequence) Linearize() {
	s.Extrapolation = ExtrapLinear
	for i := range s.Keys {
		s.Keys[i].Interpolation = InterpLinear
		s.Keys[i].HandleLeft = HandleVector
		s.Keys[i].HandleRight = HandleVector
	}
}

// Linear reports whether every key is linear with vector handles.
func (s *Sequence) Linear() bool {
	for _, k := range s.Keys {
		if k.Interpolation != InterpLinear || k.HandleLeft != HandleVector || k.HandleRight != HandleVector {
			return false
		}
	}
	return true
}

// Frames returns the key frame indices.
func (s *Sequence) Frames() []int {
	frames := make([]int, len(s.Keys))
	for i, k := range s.Keys {
		frames[i] = k.Frame
	}
	return frames
}

// Validate checks strict ordering and that the sequence starts at first.
// When it holds more than one key the last must be at last.
func (s *Sequence) Validate(first, last int) error {
	if len(s.Keys) == 0 {
		return errors.New("sequence has no keys")
	}
	if s.Keys[0].Frame != first {
		return fmt.Errorf("first key at frame %d, want %d", s.Keys[0].Frame, first)
	}
	for i := 1; i < len(s.Keys); i++ {
		if s.Keys[i].Frame <= s.Keys[i-1].Frame {
			return fmt.Errorf("%w: %d then %d", ErrFrameOrder, s.Keys[i-1].Frame, s.Keys[i].Frame)
		}
	}
	if len(s.Keys) > 1 && s.Keys[len(s.Keys)-1].Frame != last {
		return fmt.Errorf("last key at frame %d, want %d", s.Keys[len(s.Keys)-1].Frame, last)
	}
	return nil
}
