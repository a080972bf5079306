package loaders

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/df07/go-raytracy/pkg/core"
)

// MeshData is an indexed triangle list as read from a mesh file
type MeshData struct {
	Vertices []core.Vec3
	Indices  []uint32    // Triples, one per triangle
	UVs      []core.Vec2 // One per vertex, nil when the file has no texture coordinates
}

// TriangleCount returns the number of index triples
func (m *MeshData) TriangleCount() int {
	return len(m.Indices) / 3
}

// LoadMesh loads an OBJ or PLY mesh, choosing the format by file extension
func LoadMesh(dir, path string) (*MeshData, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return LoadOBJ(dir, path)
	case ".ply":
		return LoadPLY(dir, path)
	default:
		return nil, errors.Errorf("unsupported mesh format %q", path)
	}
}

// ResolvePath returns path if it exists as given, otherwise path joined onto
// dir. Scene files reference meshes and textures relative to themselves.
func ResolvePath(dir, path string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if dir != "" && !filepath.IsAbs(path) {
		joined := filepath.Join(dir, path)
		if _, err := os.Stat(joined); err == nil {
			return joined, nil
		}
	}
	return "", errors.Errorf("file %s not found", path)
}
