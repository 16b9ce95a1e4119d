package export

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenegen/internal/three"
	"scenegen/internal/types"
)

type stubSerializer struct {
	res *three.ExportResult
	err error
}

func (s stubSerializer) Serialize(*three.Scene, three.ExportOptions) (*three.ExportResult, error) {
	return s.res, s.err
}

func cubeScene() *three.Scene {
	scene := three.NewScene()
	cube := three.NewMesh(three.NewBoxGeometry(1, 1, 1), three.NewMeshBasicMaterial(0xff0000))
	cube.Name = "red_cube"
	scene.Add(cube)
	return scene
}

func TestExportBinaryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out", "cube.glb")

	art, err := NewExporter(nil).Export(cubeScene(), target)
	require.NoError(t, err)
	assert.Equal(t, target, art.Path)
	assert.Equal(t, FormatGLB, art.Format)
	assert.Equal(t, "model/gltf-binary", art.Format.ContentType())

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, art.Size, info.Size())

	doc, err := gltf.Open(target)
	require.NoError(t, err)
	require.Len(t, doc.Meshes, 1)
	assert.Equal(t, "red_cube", doc.Meshes[0].Name)

	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestExportIsByteIdentical(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(nil)
	a, err := e.Export(cubeScene(), filepath.Join(dir, "a.glb"))
	require.NoError(t, err)
	b, err := e.Export(cubeScene(), filepath.Join(dir, "b.glb"))
	require.NoError(t, err)

	da, err := os.ReadFile(a.Path)
	require.NoError(t, err)
	db, err := os.ReadFile(b.Path)
	require.NoError(t, err)
	assert.Equal(t, da, db)
}

func TestExportJSONFallbackRewritesExtension(t *testing.T) {
	dir := t.TempDir()
	scene := three.NewScene()
	scene.Add(three.NewPointLight(0xffffff, 1, 0))

	target := filepath.Join(dir, "lamp.GLB")
	art, err := NewExporter(nil).Export(scene, target)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "lamp.gltf"), art.Path)
	assert.Equal(t, FormatGLTF, art.Format)
	assert.Equal(t, "model/gltf+json", art.Format.ContentType())
	assert.NotEmpty(t, art.Warnings)

	assert.NoFileExists(t, target)
	doc, err := gltf.Open(art.Path)
	require.NoError(t, err)
	assert.Len(t, doc.Nodes, 1)
}

func TestExportFailures(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "x.glb")

	tests := []struct {
		name  string
		ser   three.Serializer
		scene *three.Scene
	}{
		{"serializer error", stubSerializer{err: errors.New("bad accessor")}, cubeScene()},
		{"empty payload", stubSerializer{res: &three.ExportResult{Binary: []byte{}}}, cubeScene()},
		{"nil scene", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExporter(tt.ser).Export(tt.scene, target)
			require.Error(t, err)
			assert.Equal(t, types.KindExportError, types.KindOf(err))
			assert.NoFileExists(t, target)
		})
	}
}

func TestExportWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := NewExporter(nil).Export(cubeScene(), filepath.Join(blocker, "cube.glb"))
	require.Error(t, err)
	assert.Equal(t, types.KindExportError, types.KindOf(err))
}

func TestWriteFileAtomicReplaces(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "data.bin")
	require.NoError(t, WriteFileAtomic(p, []byte("one")))
	require.NoError(t, WriteFileAtomic(p, []byte("two")))

	got, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGLTFPath(t *testing.T) {
	assert.Equal(t, "a/b.gltf", GLTFPath("a/b.glb"))
	assert.Equal(t, "b.gltf", GLTFPath("b.GLB"))
	assert.Equal(t, "b.gltf", GLTFPath("b"))
	assert.Equal(t, "b.bin.gltf", GLTFPath("b.bin"))
}

func TestUniquePath(t *testing.T) {
	pattern := regexp.MustCompile(`^scene-\d+-[0-9a-f]{8}\.glb$`)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		p := UniquePath("/tmp/x", "scene", "glb")
		assert.Equal(t, "/tmp/x", filepath.Dir(p))
		assert.Regexp(t, pattern, filepath.Base(p))
		assert.False(t, seen[p], "duplicate %s", p)
		seen[p] = true
	}
}

func TestCollisionFreePath(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, "tree.glb"), CollisionFreePath(dir, "tree", ".glb"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tree.glb"), nil, 0644))
	assert.Equal(t, filepath.Join(dir, "tree-1.glb"), CollisionFreePath(dir, "tree", "glb"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tree-1.gltf"), nil, 0644))
	assert.Equal(t, filepath.Join(dir, "tree-2.glb"), CollisionFreePath(dir, "tree", ".glb"))
}
