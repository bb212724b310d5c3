// Package nodegraph builds typed shader and compositing node graphs and
// enforces their structural invariants at construction time.
package nodegraph

import (
	"errors"
	"fmt"
	"sort"
)

// Value is an explicit socket default: 1 component for float, 3 for vector,
// 4 for color.
type Value []float64

// Node is one computation node of a graph.
type Node struct {
	Name      string           `yaml:"name"`
	Kind      Kind             `yaml:"kind"`
	Operation Operation        `yaml:"operation,omitempty"`
	Location  [2]float64       `yaml:"location,flow"`
	Defaults  map[string]Value `yaml:"defaults,omitempty"`
	Output    Value            `yaml:"output,omitempty,flow"`
}

// Link connects an output socket to an input socket.
type Link struct {
	From       string `yaml:"from"`
	FromSocket string `yaml:"from_socket"`
	To         string `yaml:"to"`
	ToSocket   string `yaml:"to_socket"`
}

func (l Link) String() string {
	return fmt.Sprintf("%s.%s -> %s.%s", l.From, l.FromSocket, l.To, l.ToSocket)
}

// Graph is a validated DAG with exactly one terminal node.
type Graph struct {
	Name  string  `yaml:"name"`
	Nodes []*Node `yaml:"nodes"`
	Links []Link  `yaml:"links"`
}

// Node returns the node with the given name.
func (g *Graph) Node(name string) (*Node, bool) {
	for _, n := range g.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return nil, false
}

// Terminal returns the graph's output node.
func (g *Graph) Terminal() *Node {
	for _, n := range g.Nodes {
		if spec, ok := n.Kind.Spec(); ok && spec.Terminal {
			return n
		}
	}
	return nil
}

// LinkInto returns the link feeding the given input, if any.
func (g *Graph) LinkInto(node, socket string) (Link, bool) {
	for _, l := range g.Links {
		if l.To == node && l.ToSocket == socket {
			return l, true
		}
	}
	return Link{}, false
}

var (
	ErrCycle        = errors.New("link would create a cycle")
	ErrMissingInput = errors.New("required input is neither linked nor set")
	ErrNoOutput     = errors.New("graph must have exactly one output node")
)

// LinkError describes a rejected link.
type LinkError struct {
	Link   Link
	Reason string
	Err    error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("invalid link %s: %s", e.Link, e.Reason)
}

func (e *LinkError) Unwrap() error { return e.Err }

// Builder assembles a Graph. The first error is sticky: later calls are
// ignored and Build reports it.
type Builder struct {
	g     *Graph
	nodes map[string]*Node
	err   error
}

// NewBuilder starts an empty graph.
func NewBuilder(name string) *Builder {
	return &Builder{
		g:     &Graph{Name: name},
		nodes: make(map[string]*Node),
	}
}

// Add creates a node of the given kind at a 2-D editor location.
func (b *Builder) Add(name string, kind Kind, x, y float64) *Builder {
	if b.err != nil {
		return b
	}
	if _, ok := kind.Spec(); !ok {
		b.err = fmt.Errorf("node %q: unknown kind %q", name, kind)
		return b
	}
	if _, dup := b.nodes[name]; dup {
		b.err = fmt.Errorf("node %q already exists", name)
		return b
	}
	n := &Node{Name: name, Kind: kind, Location: [2]float64{x, y}}
	b.nodes[name] = n
	b.g.Nodes = append(b.g.Nodes, n)
	return b
}

// SetOperation sets the operation of a math node.
func (b *Builder) SetOperation(name string, op Operation) *Builder {
	n := b.lookup(name)
	if n == nil {
		return b
	}
	if n.Kind != KindMath {
		b.err = fmt.Errorf("node %q: operation is only valid on math nodes", name)
		return b
	}
	if _, ok := arity[op]; !ok {
		b.err = fmt.Errorf("node %q: unknown operation %q", name, op)
		return b
	}
	n.Operation = op
	return b
}

// SetDefault sets an explicit default on an input socket.
func (b *Builder) SetDefault(name, socket string, v ...float64) *Builder {
	n := b.lookup(name)
	if n == nil {
		return b
	}
	spec, _ := n.Kind.Spec()
	in, ok := spec.Input(socket)
	if !ok {
		b.err = fmt.Errorf("node %q: no input %q", name, socket)
		return b
	}
	if len(v) != in.Type.Width() {
		b.err = fmt.Errorf("node %q input %q: want %d components, got %d", name, socket, in.Type.Width(), len(v))
		return b
	}
	if n.Defaults == nil {
		n.Defaults = make(map[string]Value)
	}
	n.Defaults[socket] = append(Value(nil), v...)
	return b
}

// SetOutput sets the constant emitted by a value node.
func (b *Builder) SetOutput(name string, v float64) *Builder {
	n := b.lookup(name)
	if n == nil {
		return b
	}
	if n.Kind != KindValue {
		b.err = fmt.Errorf("node %q: output constant is only valid on value nodes", name)
		return b
	}
	n.Output = Value{v}
	return b
}

// Link connects from.fromSocket to to.toSocket. Sockets must exist, types
// must be compatible, an input takes at most one link, and the link must not
// close a cycle.
func (b *Builder) Link(from, fromSocket, to, toSocket string) *Builder {
	if b.err != nil {
		return b
	}
	l := Link{From: from, FromSocket: fromSocket, To: to, ToSocket: toSocket}

	src, ok := b.nodes[from]
	if !ok {
		b.err = &LinkError{Link: l, Reason: "source node not found"}
		return b
	}
	dst, ok := b.nodes[to]
	if !ok {
		b.err = &LinkError{Link: l, Reason: "destination node not found"}
		return b
	}
	if from == to {
		b.err = &LinkError{Link: l, Reason: "self-referential link", Err: ErrCycle}
		return b
	}

	srcSpec, _ := src.Kind.Spec()
	out, ok := srcSpec.Output(fromSocket)
	if !ok {
		b.err = &LinkError{Link: l, Reason: "no such output socket"}
		return b
	}
	dstSpec, _ := dst.Kind.Spec()
	in, ok := dstSpec.Input(toSocket)
	if !ok {
		b.err = &LinkError{Link: l, Reason: "no such input socket"}
		return b
	}
	if !compatible(out.Type, in.Type) {
		b.err = &LinkError{Link: l, Reason: fmt.Sprintf("type %s cannot feed %s", out.Type, in.Type)}
		return b
	}
	if _, taken := b.g.LinkInto(to, toSocket); taken {
		b.err = &LinkError{Link: l, Reason: "input already linked"}
		return b
	}
	if b.reaches(to, from) {
		b.err = &LinkError{Link: l, Reason: "cycle", Err: ErrCycle}
		return b
	}

	b.g.Links = append(b.g.Links, l)
	return b
}

// Build validates the graph and returns it.
func (b *Builder) Build() (*Graph, error) {
	if b.err != nil {
		return nil, fmt.Errorf("graph %s: %w", b.g.Name, b.err)
	}
	if err := Validate(b.g); err != nil {
		return nil, err
	}
	return b.g, nil
}

func (b *Builder) lookup(name string) *Node {
	if b.err != nil {
		return nil
	}
	n, ok := b.nodes[name]
	if !ok {
		b.err = fmt.Errorf("node %q not found", name)
		return nil
	}
	return n
}

// reaches reports whether there is a directed path from -> to.
func (b *Builder) reaches(from, to string) bool {
	seen := map[string]bool{}
	var walk func(n string) bool
	walk = func(n string) bool {
		if n == to {
			return true
		}
		if seen[n] {
			return false
		}
		seen[n] = true
		for _, l := range b.g.Links {
			if l.From == n && walk(l.To) {
				return true
			}
		}
		return false
	}
	return walk(from)
}

// Validate checks the structural invariants of a graph: exactly one terminal
// node, no cycles, every math node has an operation, every value node a
// constant, and every required input is linked or set explicitly.
func Validate(g *Graph) error {
	terminals := 0
	for _, n := range g.Nodes {
		spec, ok := n.Kind.Spec()
		if !ok {
			return fmt.Errorf("graph %s: node %q has unknown kind %q", g.Name, n.Name, n.Kind)
		}
		if spec.Terminal {
			terminals++
		}
	}
	if terminals != 1 {
		return fmt.Errorf("graph %s: %w (found %d)", g.Name, ErrNoOutput, terminals)
	}

	if err := detectCycles(g); err != nil {
		return fmt.Errorf("graph %s: %w", g.Name, err)
	}

	for _, n := range g.Nodes {
		switch n.Kind {
		case KindMath:
			if n.Operation == "" {
				return fmt.Errorf("graph %s: math node %q has no operation", g.Name, n.Name)
			}
		case KindValue:
			if len(n.Output) != 1 {
				return fmt.Errorf("graph %s: value node %q has no constant", g.Name, n.Name)
			}
		}

		for _, in := range requiredInputs(n) {
			if _, linked := g.LinkInto(n.Name, in.Name); linked {
				continue
			}
			if _, set := n.Defaults[in.Name]; set {
				continue
			}
			return fmt.Errorf("graph %s: node %q input %q: %w", g.Name, n.Name, in.Name, ErrMissingInput)
		}

		spec, _ := n.Kind.Spec()
		if spec.Terminal && !hasIncoming(g, n.Name) {
			return fmt.Errorf("graph %s: output node %q: %w", g.Name, n.Name, ErrMissingInput)
		}
	}
	return nil
}

// requiredInputs returns the inputs that must be linked or set on n.
func requiredInputs(n *Node) []Socket {
	spec, _ := n.Kind.Spec()
	if n.Kind == KindMath {
		return spec.Inputs[:arity[n.Operation]]
	}
	var req []Socket
	for _, in := range spec.Inputs {
		if in.Required {
			req = append(req, in)
		}
	}
	return req
}

func hasIncoming(g *Graph, name string) bool {
	for _, l := range g.Links {
		if l.To == name {
			return true
		}
	}
	return false
}

// detectCycles is a depth-first search with temporary/permanent marks.
func detectCycles(g *Graph) error {
	next := make(map[string][]string)
	for _, l := range g.Links {
		next[l.From] = append(next[l.From], l.To)
	}

	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(n string) error
	visit = func(n string) error {
		if permanent[n] {
			return nil
		}
		if temporary[n] {
			return fmt.Errorf("%w involving node %q", ErrCycle, n)
		}
		temporary[n] = true
		for _, m := range next[n] {
			if err := visit(m); err != nil {
				return err
			}
		}
		delete(temporary, n)
		permanent[n] = true
		return nil
	}

	names := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		names = append(names, n.Name)
	}
	sort.Strings(names)
	for _, n := range names {
		if err := visit(n); err != nil {
			return err
		}
	}
	return nil
}
