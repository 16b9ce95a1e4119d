package sandbox

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traefik/yaegi/interp"
	"go.uber.org/goleak"

	"scenegen/internal/three"
	"scenegen/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const redCubeBlueSphere = `
scene := three.NewScene()

cube := three.NewMesh(three.NewBoxGeometry(1, 1, 1), three.NewMeshStandardMaterial(0xff0000))
cube.Name = "red_cube"
cube.Position.X = -1

sphere := three.NewMesh(three.NewSphereGeometry(0.5), three.NewMeshStandardMaterial(0x0000ff))
sphere.Name = "blue_sphere"
sphere.Position.Set(1, 0, 0)

scene.Add(cube, sphere)
return scene
`

func TestExecuteBuildsScene(t *testing.T) {
	result, err := NewExecutor().Execute(redCubeBlueSphere, SceneCapability())
	require.NoError(t, err)

	scene, ok := result.(*three.Scene)
	require.True(t, ok, "got %T", result)
	assert.Equal(t, 2, three.CountMeshes(scene))
	require.NotNil(t, scene.GetObjectByName("red_cube"))
	assert.Equal(t, -1.0, scene.GetObjectByName("red_cube").(*three.Mesh).Position.X)
}

func TestExecuteLoopsAndHelpers(t *testing.T) {
	script := `
scene := three.NewScene()
geom := three.NewCylinderGeometry(0.1, 0.1, 1)
mat := three.NewMeshLambertMaterial(0x888888)
for i := 0; i < 6; i++ {
	a := three.DegToRad(float64(i) * 60)
	post := three.NewMesh(geom, mat)
	post.Position.Set(three.Cos(a)*2, 0.5, three.Sin(a)*2)
	scene.Add(post)
}
scene.Add(three.NewPointLight(0xffffff, 1, 0))
return scene
`
	result, err := NewExecutor().Execute(script, SceneCapability())
	require.NoError(t, err)
	assert.Equal(t, 6, three.CountMeshes(result.(*three.Scene)))
}

func TestExecuteFailures(t *testing.T) {
	tests := []struct {
		name   string
		script string
		kind   types.ErrorKind
	}{
		{"unbalanced call", "scene := three.NewScene(\nreturn scene", types.KindScriptSyntax},
		{"undefined name", "return buildScene()", types.KindScriptSyntax},
		{"import in body", "import \"os\"\nreturn three.NewScene()", types.KindScriptSyntax},
		{"stdlib not reachable", "return os.Getenv(\"HOME\")", types.KindScriptSyntax},
		{"goroutine", "go func() {}()\nreturn three.NewScene()", types.KindScriptSyntax},
		{"escapes function body", "return three.NewScene()\n}\n\nfunc init() {\n", types.KindScriptSyntax},
		{"explicit panic", "panic(\"boom\")\nreturn three.NewScene()", types.KindScriptRuntime},
		{"nil map write", "var m map[string]int\nm[\"a\"] = 1\nreturn three.NewScene()", types.KindScriptRuntime},
		{"wrong return type", "return map[string]int{}", types.KindScriptContract},
		{"group instead of scene", "return three.NewGroup()", types.KindScriptContract},
		{"nil return", "return nil", types.KindScriptContract},
		{"no return", "three.NewScene()", types.KindScriptContract},
		{"closure", "f := func() interface{} { return three.NewScene() }\n_ = f", types.KindScriptSyntax},
		{"recursive closure", "var f func(int) int\nf = func(n int) int { return f(n+1) + 1 }\nf(0)\nreturn three.NewScene()", types.KindScriptSyntax},
		{"nil scene pointer declaration", "var s *three.Scene\nreturn s", types.KindScriptSyntax},
		{"unused nil mesh pointer", "var m *three.Mesh\n_ = m\nreturn three.NewScene()", types.KindScriptSyntax},
		{"index out of range", "n := 3\nparts := []int{1}\nparts[n] = 2\nreturn three.NewScene()", types.KindScriptRuntime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewExecutor().Execute(tt.script, SceneCapability())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.Equal(t, tt.kind, types.KindOf(err), err.Error())
		})
	}
}

func TestEvalErrorClassification(t *testing.T) {
	err := evalError(interp.Panic{Value: "boom"})
	assert.Equal(t, types.KindScriptRuntime, types.KindOf(err))
	assert.Contains(t, err.Error(), "boom")

	err = evalError(errors.New("undefined: x"))
	assert.Equal(t, types.KindScriptSyntax, types.KindOf(err))
}

func TestEvalRecoversInterpreterPanics(t *testing.T) {
	i := interp.New(interp.Options{})
	require.NotPanics(t, func() {
		_, err := eval(i, "package main\n\nvar x = 1")
		assert.NoError(t, err)
	})

	var nilInterp *interp.Interpreter
	require.NotPanics(t, func() {
		_, err := eval(nilInterp, "1 + 1")
		assert.ErrorContains(t, err, "interpreter rejected script")
	})
}

func TestExecuteIsolatedBetweenRuns(t *testing.T) {
	e := NewExecutor()
	a, err := e.Execute(redCubeBlueSphere, SceneCapability())
	require.NoError(t, err)
	b, err := e.Execute(redCubeBlueSphere, SceneCapability())
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	a.(*three.Scene).Add(three.NewGroup())
	assert.Len(t, b.(*three.Scene).Children(), 2)
}

func TestExecuteCustomCapability(t *testing.T) {
	calc := Capability{
		ImportPath: "calc",
		Symbols: interp.Exports{
			"calc/calc": {
				"Double": reflect.ValueOf(func(x int) int { return 2 * x }),
			},
		},
		IsRoot: func(v any) bool {
			_, ok := v.(int)
			return ok
		},
	}

	result, err := NewExecutor().Execute("return calc.Double(21)", calc)
	require.NoError(t, err)
	assert.Equal(t, 42, result)

	// the scene library is not visible to a calc script
	_, err = NewExecutor().Execute("return three.NewScene()", calc)
	assert.Equal(t, types.KindScriptSyntax, types.KindOf(err))
}

func TestCapabilityValidate(t *testing.T) {
	pkg, anchor, err := SceneCapability().validate()
	require.NoError(t, err)
	assert.Equal(t, "three", pkg)
	assert.NotEmpty(t, anchor)

	_, _, err = Capability{}.validate()
	assert.Error(t, err)

	_, _, err = Capability{ImportPath: "x", IsRoot: func(any) bool { return true }}.validate()
	assert.Error(t, err)

	_, err = NewExecutor().Execute("return 1", Capability{})
	assert.Error(t, err)
}

func TestWrapKeepsScriptLineNumbers(t *testing.T) {
	err := check(wrap("scene := three.NewScene()\nscene.Add(\nreturn scene", "three", "three", "NewScene"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "script:3")
}
