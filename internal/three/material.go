package three

// Side selects which faces are rendered.
type Side int

const (
	FrontSide Side = iota
	BackSide
	DoubleSide
)

// Material is implemented by the mesh materials of this package.
type Material interface {
	base() *MaterialBase
}

// MaterialBase holds properties common to all materials.
type MaterialBase struct {
	Name              string
	Color             Color
	Opacity           float64
	Transparent       bool
	Side              Side
	Emissive          Color
	EmissiveIntensity float64
}

func newMaterialBase(hex int) MaterialBase {
	return MaterialBase{
		Color:             NewColor(hex),
		Opacity:           1,
		EmissiveIntensity: 1,
	}
}

func (m *MaterialBase) base() *MaterialBase { return m }

// SetColor assigns a 0xRRGGBB color.
func (m *MaterialBase) SetColor(hex int) {
	m.Color.SetHex(hex)
}

// MeshBasicMaterial is unaffected by lights.
type MeshBasicMaterial struct {
	MaterialBase
}

// NewMeshBasicMaterial creates an unlit material of the given 0xRRGGBB color.
func NewMeshBasicMaterial(hex int) *MeshBasicMaterial {
	return &MeshBasicMaterial{MaterialBase: newMaterialBase(hex)}
}

// MeshStandardMaterial is a metallic-roughness PBR material.
type MeshStandardMaterial struct {
	MaterialBase
	Roughness float64
	Metalness float64
}

// NewMeshStandardMaterial creates a rough, non-metallic material.
func NewMeshStandardMaterial(hex int) *MeshStandardMaterial {
	return &MeshStandardMaterial{MaterialBase: newMaterialBase(hex), Roughness: 1, Metalness: 0}
}

// MeshPhongMaterial is a shiny material with specular highlights.
type MeshPhongMaterial struct {
	MaterialBase
	Shininess float64
	Specular  Color
}

// NewMeshPhongMaterial creates a phong material with three.js defaults.
func NewMeshPhongMaterial(hex int) *MeshPhongMaterial {
	return &MeshPhongMaterial{
		MaterialBase: newMaterialBase(hex),
		Shininess:    30,
		Specular:     NewColor(0x111111),
	}
}

// MeshLambertMaterial is a matte material.
type MeshLambertMaterial struct {
	MaterialBase
}

// NewMeshLambertMaterial creates a matte material.
func NewMeshLambertMaterial(hex int) *MeshLambertMaterial {
	return &MeshLambertMaterial{MaterialBase: newMaterialBase(hex)}
}

// isLit reports whether the material reacts to scene lights.
func isLit(m Material) bool {
	_, unlit := m.(*MeshBasicMaterial)
	return !unlit
}
