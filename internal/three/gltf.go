package three

import (
	"bytes"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

const (
	extLightsPunctual = "KHR_lights_punctual"
	extMaterialsUnlit = "KHR_materials_unlit"
	generatorName     = "scenegen"
)

// ExportOptions configures a serialization.
type ExportOptions struct {
	// Binary requests a .glb payload. Scenes without mesh geometry have no
	// binary chunk to carry and are always returned as JSON.
	Binary bool
}

// ExportResult holds exactly one of Binary or JSON.
type ExportResult struct {
	Binary   []byte
	JSON     []byte
	Warnings []string
}

// IsBinary reports whether the payload is a .glb container.
func (r *ExportResult) IsBinary() bool { return r.Binary != nil }

// Serializer turns a scene into glTF bytes.
type Serializer interface {
	Serialize(scene *Scene, opts ExportOptions) (*ExportResult, error)
}

// GLTFExporter is the Serializer backed by qmuntal/gltf. It is stateless and
// safe for concurrent use; equal scenes serialize to equal bytes.
type GLTFExporter struct{}

// NewGLTFExporter creates an exporter.
func NewGLTFExporter() *GLTFExporter { return &GLTFExporter{} }

// Serialize encodes scene according to opts.
func (e *GLTFExporter) Serialize(scene *Scene, opts ExportOptions) (*ExportResult, error) {
	doc, warnings, err := e.Document(scene)
	if err != nil {
		return nil, err
	}

	hasBinChunk := len(doc.Buffers) > 0 && len(doc.Buffers[0].Data) > 0
	binary := opts.Binary && hasBinChunk
	if opts.Binary && !binary {
		warnings = append(warnings, "scene has no mesh geometry; emitting JSON glTF")
	}
	if !binary {
		for _, b := range doc.Buffers {
			b.EmbeddedResource()
		}
	}

	var buf bytes.Buffer
	enc := gltf.NewEncoder(&buf)
	enc.AsBinary = binary
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode glTF: %w", err)
	}

	out := &ExportResult{Warnings: warnings}
	if binary {
		out.Binary = buf.Bytes()
	} else {
		out.JSON = buf.Bytes()
	}
	return out, nil
}

// Document builds the glTF document for scene without encoding it.
func (e *GLTFExporter) Document(scene *Scene) (*gltf.Document, []string, error) {
	if scene == nil {
		return nil, nil, fmt.Errorf("nil scene")
	}

	b := &docBuilder{
		doc:        gltf.NewDocument(),
		geometries: make(map[*BufferGeometry]geometryAccessors),
		materials:  make(map[Material]int),
		meshes:     make(map[meshKey]int),
	}
	b.doc.Asset.Generator = generatorName

	name := scene.Name
	if name == "" {
		name = "Scene"
	}
	b.doc.Scenes[0].Name = name

	for _, child := range scene.children {
		if idx, ok := b.node(child); ok {
			b.doc.Scenes[0].Nodes = append(b.doc.Scenes[0].Nodes, idx)
		}
	}

	if len(b.lights) > 0 {
		b.doc.Extensions = gltf.Extensions{
			extLightsPunctual: map[string]any{"lights": b.lights},
		}
		b.useExtension(extLightsPunctual)
	} else if b.litMaterials {
		b.warn("scene uses lit materials but has no directional, point or spot light")
	}

	return b.doc, b.warnings, nil
}

type geometryAccessors struct {
	position, normal, indices int
}

type meshKey struct {
	geometry *BufferGeometry
	material Material
}

type docBuilder struct {
	doc          *gltf.Document
	geometries   map[*BufferGeometry]geometryAccessors
	materials    map[Material]int
	meshes       map[meshKey]int
	lights       []map[string]any
	warnings     []string
	litMaterials bool
}

func (b *docBuilder) warn(format string, args ...any) {
	b.warnings = append(b.warnings, fmt.Sprintf(format, args...))
}

func (b *docBuilder) useExtension(name string) {
	for _, e := range b.doc.ExtensionsUsed {
		if e == name {
			return
		}
	}
	b.doc.ExtensionsUsed = append(b.doc.ExtensionsUsed, name)
}

// node appends n and its visible descendants; invisible nodes are skipped.
func (b *docBuilder) node(n Node) (int, bool) {
	if isNilNode(n) {
		return 0, false
	}
	o := n.object()
	if !o.Visible {
		return 0, false
	}

	gn := &gltf.Node{
		Name:        o.Name,
		Translation: o.Position.array(),
		Rotation:    o.Rotation.quaternion(),
		Scale:       o.Scale.array(),
	}

	switch v := n.(type) {
	case *Mesh:
		if idx, ok := b.mesh(v); ok {
			gn.Mesh = gltf.Index(idx)
		}
	case *AmbientLight:
		b.warn("ambient light %q dropped: glTF supports only directional, point and spot lights", o.Name)
		if len(o.children) == 0 {
			return 0, false
		}
	case *DirectionalLight:
		gn.Rotation = lookRotation(v.Target.sub(v.Position))
		b.light(gn, map[string]any{
			"type":      "directional",
			"color":     v.Color.linear(),
			"intensity": v.Intensity,
		}, o.Name)
	case *PointLight:
		def := map[string]any{
			"type":      "point",
			"color":     v.Color.linear(),
			"intensity": v.Intensity,
		}
		if v.Distance > 0 {
			def["range"] = v.Distance
		}
		b.light(gn, def, o.Name)
	case *SpotLight:
		gn.Rotation = lookRotation(v.Target.sub(v.Position))
		penumbra := clamp01(v.Penumbra)
		def := map[string]any{
			"type":      "spot",
			"color":     v.Color.linear(),
			"intensity": v.Intensity,
			"spot": map[string]any{
				"innerConeAngle": v.Angle * (1 - penumbra),
				"outerConeAngle": v.Angle,
			},
		}
		if v.Distance > 0 {
			def["range"] = v.Distance
		}
		b.light(gn, def, o.Name)
	}

	idx := len(b.doc.Nodes)
	b.doc.Nodes = append(b.doc.Nodes, gn)

	for _, c := range o.children {
		if ci, ok := b.node(c); ok {
			gn.Children = append(gn.Children, ci)
		}
	}
	return idx, true
}

func (b *docBuilder) light(gn *gltf.Node, def map[string]any, name string) {
	if name != "" {
		def["name"] = name
	}
	idx := len(b.lights)
	b.lights = append(b.lights, def)
	gn.Extensions = gltf.Extensions{extLightsPunctual: map[string]any{"light": idx}}
}

func (b *docBuilder) mesh(m *Mesh) (int, bool) {
	if m.Geometry == nil || len(m.Geometry.Positions) == 0 {
		b.warn("mesh %q has no geometry", m.Name)
		return 0, false
	}

	key := meshKey{geometry: m.Geometry, material: m.Material}
	if idx, ok := b.meshes[key]; ok {
		return idx, true
	}

	acc := b.geometry(m.Geometry)
	prim := &gltf.Primitive{
		Indices: gltf.Index(acc.indices),
		Attributes: map[string]int{
			gltf.POSITION: acc.position,
			gltf.NORMAL:   acc.normal,
		},
	}
	if m.Material != nil {
		prim.Material = gltf.Index(b.material(m.Material))
	}

	idx := len(b.doc.Meshes)
	b.doc.Meshes = append(b.doc.Meshes, &gltf.Mesh{
		Name:       m.Name,
		Primitives: []*gltf.Primitive{prim},
	})
	b.meshes[key] = idx
	return idx, true
}

func (b *docBuilder) geometry(g *BufferGeometry) geometryAccessors {
	if acc, ok := b.geometries[g]; ok {
		return acc
	}
	acc := geometryAccessors{
		indices:  modeler.WriteIndices(b.doc, g.Indices),
		position: modeler.WritePosition(b.doc, g.Positions),
		normal:   modeler.WriteNormal(b.doc, g.Normals),
	}
	b.geometries[g] = acc
	return acc
}

func (b *docBuilder) material(m Material) int {
	if idx, ok := b.materials[m]; ok {
		return idx
	}

	base := m.base()
	lin := base.Color.linear()
	opacity := clamp01(base.Opacity)

	gm := &gltf.Material{
		Name:        base.Name,
		DoubleSided: base.Side == DoubleSide,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float64{lin[0], lin[1], lin[2], opacity},
		},
	}
	if base.Transparent && opacity < 1 {
		gm.AlphaMode = gltf.AlphaBlend
	}
	emissive := base.Emissive.linear()
	for i := range emissive {
		gm.EmissiveFactor[i] = clamp01(emissive[i] * base.EmissiveIntensity)
	}

	switch v := m.(type) {
	case *MeshBasicMaterial:
		gm.PBRMetallicRoughness.MetallicFactor = gltf.Float(0)
		gm.PBRMetallicRoughness.RoughnessFactor = gltf.Float(1)
		gm.Extensions = gltf.Extensions{extMaterialsUnlit: map[string]any{}}
		b.useExtension(extMaterialsUnlit)
	case *MeshStandardMaterial:
		gm.PBRMetallicRoughness.MetallicFactor = gltf.Float(clamp01(v.Metalness))
		gm.PBRMetallicRoughness.RoughnessFactor = gltf.Float(clamp01(v.Roughness))
	case *MeshPhongMaterial:
		// approximate specular highlights with roughness
		gm.PBRMetallicRoughness.MetallicFactor = gltf.Float(0)
		gm.PBRMetallicRoughness.RoughnessFactor = gltf.Float(phongRoughness(v.Shininess))
	default:
		gm.PBRMetallicRoughness.MetallicFactor = gltf.Float(0)
		gm.PBRMetallicRoughness.RoughnessFactor = gltf.Float(1)
	}
	if isLit(m) {
		b.litMaterials = true
	}

	idx := len(b.doc.Materials)
	b.doc.Materials = append(b.doc.Materials, gm)
	b.materials[m] = idx
	return idx
}

// phongRoughness maps shininess in [0, 100+] onto roughness in [0.05, 1].
func phongRoughness(shininess float64) float64 {
	if shininess <= 0 {
		return 1
	}
	r := 1 - shininess/100
	if r < 0.05 {
		r = 0.05
	}
	return r
}
