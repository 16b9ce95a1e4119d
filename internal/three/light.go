package three

// Light holds properties common to all lights.
type Light struct {
	Object3D
	Color     Color
	Intensity float64
}

func newLight(hex int, intensity float64) Light {
	return Light{Object3D: newObject3D(), Color: NewColor(hex), Intensity: intensity}
}

// AmbientLight lights every object equally. glTF has no ambient light, so the
// exporter drops it with a warning.
type AmbientLight struct {
	Light
}

// NewAmbientLight creates an ambient light.
func NewAmbientLight(hex int, intensity float64) *AmbientLight {
	return &AmbientLight{Light: newLight(hex, intensity)}
}

// DirectionalLight shines parallel rays from Position towards Target.
type DirectionalLight struct {
	Light
	Target Vector3
}

// NewDirectionalLight creates a directional light above the origin.
func NewDirectionalLight(hex int, intensity float64) *DirectionalLight {
	l := &DirectionalLight{Light: newLight(hex, intensity)}
	l.Position.Set(0, 1, 0)
	return l
}

// PointLight shines in every direction. Distance 0 means unlimited range.
type PointLight struct {
	Light
	Distance float64
	Decay    float64
}

// NewPointLight creates a point light.
func NewPointLight(hex int, intensity, distance float64) *PointLight {
	return &PointLight{Light: newLight(hex, intensity), Distance: distance, Decay: 2}
}

// SpotLight shines a cone from Position towards Target. Angle is the cone's
// half-angle in radians; Penumbra in [0, 1] softens its edge.
type SpotLight struct {
	Light
	Target   Vector3
	Distance float64
	Angle    float64
	Penumbra float64
	Decay    float64
}

// NewSpotLight creates a spot light above the origin.
func NewSpotLight(hex int, intensity, distance, angle, penumbra float64) *SpotLight {
	l := &SpotLight{
		Light:    newLight(hex, intensity),
		Distance: distance,
		Angle:    angle,
		Penumbra: penumbra,
		Decay:    2,
	}
	l.Position.Set(0, 1, 0)
	if l.Angle <= 0 {
		l.Angle = Pi / 3
	}
	return l
}

// CountLights returns the number of lights in the graph under n.
func CountLights(n Node) int {
	count := 0
	Traverse(n, func(c Node) {
		switch c.(type) {
		case *AmbientLight, *DirectionalLight, *PointLight, *SpotLight:
			count++
		}
	})
	return count
}
