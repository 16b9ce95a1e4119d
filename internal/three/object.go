// Package three is a small scene-graph library with the vocabulary of three.js:
// scenes, groups, meshes built from primitive geometries and materials, and
// punctual lights. Scene scripts receive it as their only import, and
// GLTFExporter serializes a finished scene to glTF 2.0.
package three

// Node is anything that can be placed in a scene graph. Only types from this
// package implement it.
type Node interface {
	object() *Object3D
}

// Object3D holds the transform and hierarchy shared by every node.
type Object3D struct {
	Name     string
	Position Vector3
	Rotation Euler
	Scale    Vector3
	Visible  bool

	parent   *Object3D
	children []Node
}

func newObject3D() Object3D {
	return Object3D{
		Scale:   Vector3{1, 1, 1},
		Visible: true,
	}
}

func (o *Object3D) object() *Object3D { return o }

// Add attaches nodes as children, detaching each from any previous parent.
// Nil nodes and the object itself are ignored.
func (o *Object3D) Add(nodes ...Node) *Object3D {
	for _, n := range nodes {
		if isNilNode(n) {
			continue
		}
		child := n.object()
		if child == o || child.isAncestorOf(o) {
			continue
		}
		if child.parent != nil {
			child.parent.Remove(n)
		}
		child.parent = o
		o.children = append(o.children, n)
	}
	return o
}

// Remove detaches nodes that are direct children.
func (o *Object3D) Remove(nodes ...Node) *Object3D {
	for _, n := range nodes {
		if isNilNode(n) {
			continue
		}
		target := n.object()
		for i, c := range o.children {
			if c.object() == target {
				o.children = append(o.children[:i], o.children[i+1:]...)
				target.parent = nil
				break
			}
		}
	}
	return o
}

// Children returns a copy of the direct children.
func (o *Object3D) Children() []Node {
	out := make([]Node, len(o.children))
	copy(out, o.children)
	return out
}

// GetObjectByName returns the first descendant (depth first) with the name.
func (o *Object3D) GetObjectByName(name string) Node {
	for _, c := range o.children {
		if c.object().Name == name {
			return c
		}
		if found := c.object().GetObjectByName(name); found != nil {
			return found
		}
	}
	return nil
}

func (o *Object3D) isAncestorOf(other *Object3D) bool {
	for p := other.parent; p != nil; p = p.parent {
		if p == o {
			return true
		}
	}
	return false
}

func isNilNode(n Node) bool {
	if n == nil {
		return true
	}
	switch v := n.(type) {
	case *Object3D:
		return v == nil
	case *Scene:
		return v == nil
	case *Group:
		return v == nil
	case *Mesh:
		return v == nil
	case *AmbientLight:
		return v == nil
	case *DirectionalLight:
		return v == nil
	case *PointLight:
		return v == nil
	case *SpotLight:
		return v == nil
	}
	return false
}

// Traverse calls fn for n and every descendant, parents first.
func Traverse(n Node, fn func(Node)) {
	if isNilNode(n) {
		return
	}
	fn(n)
	for _, c := range n.object().children {
		Traverse(c, fn)
	}
}

// Scene is the root of a scene graph.
type Scene struct {
	Object3D
	Background *Color
}

// NewScene creates an empty scene.
func NewScene() *Scene {
	return &Scene{Object3D: newObject3D()}
}

// IsScene reports whether v is a non-nil *Scene.
func IsScene(v any) bool {
	s, ok := v.(*Scene)
	return ok && s != nil
}

// Group is a transform-only container.
type Group struct {
	Object3D
}

// NewGroup creates an empty group.
func NewGroup() *Group {
	return &Group{Object3D: newObject3D()}
}

// Mesh renders a geometry with a material.
type Mesh struct {
	Object3D
	Geometry *BufferGeometry
	Material Material
}

// NewMesh creates a mesh. Either argument may be nil and set later.
func NewMesh(geometry *BufferGeometry, material Material) *Mesh {
	return &Mesh{Object3D: newObject3D(), Geometry: geometry, Material: material}
}

// CountMeshes returns the number of meshes in the graph under n.
func CountMeshes(n Node) int {
	count := 0
	Traverse(n, func(c Node) {
		if _, ok := c.(*Mesh); ok {
			count++
		}
	})
	return count
}
