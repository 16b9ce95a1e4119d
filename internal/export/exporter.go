// Package export writes constructed scenes to disk as glTF assets.
package export

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"scenegen/internal/logging"
	"scenegen/internal/three"
	"scenegen/internal/types"
)

// Format is the container written for an artifact.
type Format string

const (
	FormatGLB  Format = "glb"
	FormatGLTF Format = "gltf"
)

// ContentType returns the registered media type of the format.
func (f Format) ContentType() string {
	if f == FormatGLTF {
		return "model/gltf+json"
	}
	return "model/gltf-binary"
}

// Artifact is a written asset. Path may differ from the requested path when
// the serializer fell back to JSON.
type Artifact struct {
	Path     string
	Format   Format
	Size     int64
	Warnings []string
}

// Exporter serializes scenes and writes them atomically.
type Exporter struct {
	serializer three.Serializer
}

// NewExporter creates an exporter. A nil serializer means three.GLTFExporter.
func NewExporter(serializer three.Serializer) *Exporter {
	if serializer == nil {
		serializer = three.NewGLTFExporter()
	}
	return &Exporter{serializer: serializer}
}

// Export writes scene to desiredPath as binary glTF. When the serializer
// returns JSON instead, the file goes to desiredPath with its extension
// replaced by .gltf.
func (e *Exporter) Export(scene *three.Scene, desiredPath string) (*Artifact, error) {
	if scene == nil {
		return nil, types.NewError(types.KindExportError, "export.Export", fmt.Errorf("nil scene"))
	}

	timer := logging.StartTimer(logging.CategoryExport, "Export")
	defer timer.Stop()

	res, err := e.serializer.Serialize(scene, three.ExportOptions{Binary: true})
	if err != nil {
		return nil, types.NewError(types.KindExportError, "export.Export", err)
	}
	for _, w := range res.Warnings {
		logging.ExportWarn("%s", w)
	}

	art := &Artifact{Path: desiredPath, Format: FormatGLB, Warnings: res.Warnings}
	data := res.Binary
	if !res.IsBinary() {
		art.Path = GLTFPath(desiredPath)
		art.Format = FormatGLTF
		data = res.JSON
	}
	if len(data) == 0 {
		return nil, types.NewError(types.KindExportError, "export.Export", fmt.Errorf("serializer returned no data"))
	}

	if err := WriteFileAtomic(art.Path, data); err != nil {
		return nil, types.NewError(types.KindExportError, "export.Export", err)
	}
	art.Size = int64(len(data))

	logging.Export("wrote %s (%s, %d bytes)", art.Path, art.Format, art.Size)
	return art, nil
}

// GLTFPath replaces a trailing .glb (any case) with .gltf, or appends .gltf.
func GLTFPath(p string) string {
	if ext := filepath.Ext(p); strings.EqualFold(ext, ".glb") {
		return strings.TrimSuffix(p, ext) + ".gltf"
	}
	return p + ".gltf"
}

// WriteFileAtomic writes data to a temp file next to path, syncs it and
// renames it into place. Nothing is left behind on failure.
func WriteFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err = os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// UniquePath returns <dir>/<base>-<unixMillis>-<8 hex>.<ext>, for transient
// files that concurrent requests write side by side.
func UniquePath(dir, base, ext string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	name := fmt.Sprintf("%s-%d-%s%s", base, time.Now().UnixMilli(), suffix, dotted(ext))
	return filepath.Join(dir, name)
}

// CollisionFreePath returns <dir>/<base><ext>, or the first <base>-N<ext>
// for which neither the .glb nor the .gltf variant exists yet.
func CollisionFreePath(dir, base, ext string) string {
	ext = dotted(ext)
	for n := 0; ; n++ {
		name := base
		if n > 0 {
			name = fmt.Sprintf("%s-%d", base, n)
		}
		candidate := filepath.Join(dir, name+ext)
		if !exists(candidate) && !exists(GLTFPath(candidate)) {
			return candidate
		}
	}
}

func dotted(ext string) string {
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return !errors.Is(err, fs.ErrNotExist)
}
