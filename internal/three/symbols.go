package three

import (
	"go/constant"
	"go/token"
	"reflect"
	"sort"

	"github.com/traefik/yaegi/interp"
)

// ImportPath is the path scripts use to import this package.
const ImportPath = "three"

// Symbols exposes the package to the yaegi interpreter under ImportPath.
// Only constructors, value types and helpers that cannot reach outside the
// process are listed.
var Symbols = interp.Exports{
	ImportPath + "/three": {
		// constants
		"Pi":         reflect.ValueOf(constant.MakeFromLiteral("3.14159265358979323846264338327950288419716939937510582097494459", token.FLOAT, 0)),
		"FrontSide":  reflect.ValueOf(FrontSide),
		"BackSide":   reflect.ValueOf(BackSide),
		"DoubleSide": reflect.ValueOf(DoubleSide),

		// scene graph
		"NewScene": reflect.ValueOf(NewScene),
		"NewGroup": reflect.ValueOf(NewGroup),
		"NewMesh":  reflect.ValueOf(NewMesh),

		// geometries
		"NewBoxGeometry":      reflect.ValueOf(NewBoxGeometry),
		"NewSphereGeometry":   reflect.ValueOf(NewSphereGeometry),
		"NewCylinderGeometry": reflect.ValueOf(NewCylinderGeometry),
		"NewConeGeometry":     reflect.ValueOf(NewConeGeometry),
		"NewPlaneGeometry":    reflect.ValueOf(NewPlaneGeometry),
		"NewTorusGeometry":    reflect.ValueOf(NewTorusGeometry),

		// materials
		"NewMeshBasicMaterial":    reflect.ValueOf(NewMeshBasicMaterial),
		"NewMeshStandardMaterial": reflect.ValueOf(NewMeshStandardMaterial),
		"NewMeshPhongMaterial":    reflect.ValueOf(NewMeshPhongMaterial),
		"NewMeshLambertMaterial":  reflect.ValueOf(NewMeshLambertMaterial),

		// lights
		"NewAmbientLight":     reflect.ValueOf(NewAmbientLight),
		"NewDirectionalLight": reflect.ValueOf(NewDirectionalLight),
		"NewPointLight":       reflect.ValueOf(NewPointLight),
		"NewSpotLight":        reflect.ValueOf(NewSpotLight),

		// math
		"NewVector3": reflect.ValueOf(NewVector3),
		"NewColor":   reflect.ValueOf(NewColor),
		"DegToRad":   reflect.ValueOf(DegToRad),
		"Sin":        reflect.ValueOf(Sin),
		"Cos":        reflect.ValueOf(Cos),

		// types
		"AmbientLight":         reflect.ValueOf((*AmbientLight)(nil)),
		"BufferGeometry":       reflect.ValueOf((*BufferGeometry)(nil)),
		"Color":                reflect.ValueOf((*Color)(nil)),
		"DirectionalLight":     reflect.ValueOf((*DirectionalLight)(nil)),
		"Euler":                reflect.ValueOf((*Euler)(nil)),
		"Group":                reflect.ValueOf((*Group)(nil)),
		"Light":                reflect.ValueOf((*Light)(nil)),
		"Material":             reflect.ValueOf((*Material)(nil)),
		"MaterialBase":         reflect.ValueOf((*MaterialBase)(nil)),
		"Mesh":                 reflect.ValueOf((*Mesh)(nil)),
		"MeshBasicMaterial":    reflect.ValueOf((*MeshBasicMaterial)(nil)),
		"MeshLambertMaterial":  reflect.ValueOf((*MeshLambertMaterial)(nil)),
		"MeshPhongMaterial":    reflect.ValueOf((*MeshPhongMaterial)(nil)),
		"MeshStandardMaterial": reflect.ValueOf((*MeshStandardMaterial)(nil)),
		"Node":                 reflect.ValueOf((*Node)(nil)),
		"Object3D":             reflect.ValueOf((*Object3D)(nil)),
		"PointLight":           reflect.ValueOf((*PointLight)(nil)),
		"Scene":                reflect.ValueOf((*Scene)(nil)),
		"Side":                 reflect.ValueOf((*Side)(nil)),
		"SpotLight":            reflect.ValueOf((*SpotLight)(nil)),
		"Vector3":              reflect.ValueOf((*Vector3)(nil)),
	},
}

// Vocabulary lists the exported names scripts may use, for prompts.
func Vocabulary() []string {
	names := make([]string, 0, len(Symbols[ImportPath+"/three"]))
	for name := range Symbols[ImportPath+"/three"] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
