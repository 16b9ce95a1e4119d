package scriptgen

import (
	"encoding/json"
	"fmt"
	"strings"

	"scenegen/internal/three"
)

// exampleScript must stay executable by the sandbox; tests run it.
const exampleScript = `scene := three.NewScene()
cube := three.NewMesh(three.NewBoxGeometry(1, 1, 1), three.NewMeshStandardMaterial(0xff0000))
cube.Name = "red_cube"
cube.Position.X = -1
scene.Add(cube)
sphere := three.NewMesh(three.NewSphereGeometry(0.75, 32, 32), three.NewMeshStandardMaterial(0x0000ff))
sphere.Name = "blue_sphere"
sphere.Position.X = 1
scene.Add(sphere)
light := three.NewDirectionalLight(0xffffff, 1)
light.Position.Set(5, 10, 7)
scene.Add(light)
return scene`

const contractRules = `You are an expert 3D programmer. Your task is to write a script that builds a 3D scene from a textual description, and to suggest a filename for the result.
Follow these instructions carefully:
1. Your response must be a single JSON object with exactly two keys: "script" and "filename".
2. "script" is a string holding only the body of a Go function that returns interface{}. No package clause, no imports, no comments, no markdown fences.
3. The package "three" is already imported and is the only package available. The standard library is not. Goroutines and function literals (func() {...}) are not allowed; use plain loops instead.
4. Create one scene with scene := three.NewScene(), add every object to it with scene.Add, and end with the line: return scene
5. Give every mesh a short descriptive snake_case Name.
6. Objects are positioned through their Position, Rotation (radians) and Scale fields, for example cube.Position.Set(1, 0, 0) or cube.Rotation.Y = three.DegToRad(45).
7. Materials take a hex color, for example three.NewMeshStandardMaterial(0xff8800). Lit materials (Standard, Phong, Lambert) need a directional, point or spot light.
8. "filename" is a short URL-friendly name without extension, for example "red_cube_blue_sphere".
9. If the description is vague, make reasonable assumptions and build a visually interesting scene.

Available names in package three:
%s

Constructor signatures:
three.NewBoxGeometry(width, height, depth float64)
three.NewSphereGeometry(radius float64, segments ...int) // widthSegments, heightSegments
three.NewCylinderGeometry(radiusTop, radiusBottom, height float64, radialSegments ...int)
three.NewConeGeometry(radius, height float64, radialSegments ...int)
three.NewPlaneGeometry(width, height float64)
three.NewTorusGeometry(radius, tube float64, segments ...int) // radialSegments, tubularSegments
three.NewMesh(geometry *three.BufferGeometry, material three.Material)
three.NewMeshBasicMaterial(color int), NewMeshStandardMaterial, NewMeshPhongMaterial, NewMeshLambertMaterial
three.NewAmbientLight(color int, intensity float64)
three.NewDirectionalLight(color int, intensity float64)
three.NewPointLight(color int, intensity, distance float64)
three.NewSpotLight(color int, intensity, distance, angle, penumbra float64)

Example response for the description "a red cube and a blue sphere":
%s
`

const refineRules = `
You are refining an existing scene. The user message contains the current script followed by a change request.
Additional rules for refinement:
- Return a complete replacement script, not a diff.
- Keep every element of the current script that the change request does not mention, including all lighting.
- Do not add new lights.
`

var (
	systemInstruction = buildSystemInstruction()
	refineInstruction = systemInstruction + refineRules
)

func buildSystemInstruction() string {
	example, err := json.MarshalIndent(map[string]string{
		"script":   exampleScript,
		"filename": "red_cube_blue_sphere",
	}, "", "  ")
	if err != nil {
		panic(err) // static input
	}
	return fmt.Sprintf(contractRules, strings.Join(three.Vocabulary(), ", "), example)
}

// refineUserContent embeds the prior script verbatim ahead of the change.
func refineUserContent(priorScript, refinement string) string {
	var b strings.Builder
	b.WriteString("Current script:\n<script>\n")
	b.WriteString(priorScript)
	b.WriteString("\n</script>\n\nChange request:\n")
	b.WriteString(refinement)
	return b.String()
}
