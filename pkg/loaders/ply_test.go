package loaders

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-raytracy/pkg/core"
)

// createTestPLY builds a binary PLY square made of two triangles
func createTestPLY(t *testing.T, order binary.ByteOrder, includeTexCoords bool) []byte {
	t.Helper()
	var buf bytes.Buffer

	format := "binary_little_endian"
	if order == binary.BigEndian {
		format = "binary_big_endian"
	}

	buf.WriteString("ply\n")
	buf.WriteString("format " + format + " 1.0\n")
	buf.WriteString("comment generated for tests\n")
	buf.WriteString("element vertex 4\n")
	buf.WriteString("property float x\n")
	buf.WriteString("property float y\n")
	buf.WriteString("property float z\n")
	buf.WriteString("property float nx\n")
	buf.WriteString("property float ny\n")
	buf.WriteString("property float nz\n")
	if includeTexCoords {
		buf.WriteString("property float u\n")
		buf.WriteString("property float v\n")
	}
	buf.WriteString("property uchar red\n")
	buf.WriteString("element face 2\n")
	buf.WriteString("property list uchar int vertex_indices\n")
	buf.WriteString("end_header\n")

	vertices := []struct{ x, y, z, u, v float32 }{
		{0, 0, 0, 0, 0},
		{1, 0, 0, 1, 0},
		{1, 1, 0, 1, 1},
		{0, 1, 0, 0, 1},
	}
	for _, v := range vertices {
		for _, value := range []float32{v.x, v.y, v.z, 0, 0, 1} {
			require.NoError(t, binary.Write(&buf, order, value))
		}
		if includeTexCoords {
			require.NoError(t, binary.Write(&buf, order, v.u))
			require.NoError(t, binary.Write(&buf, order, v.v))
		}
		buf.WriteByte(200)
	}

	for _, face := range [][3]int32{{0, 1, 2}, {0, 2, 3}} {
		buf.WriteByte(3)
		require.NoError(t, binary.Write(&buf, order, face))
	}

	return buf.Bytes()
}

func TestParsePLY_Binary(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		t.Run(order.String(), func(t *testing.T) {
			mesh, err := ParsePLY(bytes.NewReader(createTestPLY(t, order, true)))
			require.NoError(t, err)

			require.Len(t, mesh.Vertices, 4)
			assert.Equal(t, core.NewVec3(1, 1, 0), mesh.Vertices[2])
			assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, mesh.Indices)
			require.Len(t, mesh.UVs, 4)
			assert.Equal(t, core.NewVec2(0, 1), mesh.UVs[3])
		})
	}
}

func TestParsePLY_WithoutTexCoords(t *testing.T) {
	mesh, err := ParsePLY(bytes.NewReader(createTestPLY(t, binary.LittleEndian, false)))
	require.NoError(t, err)
	assert.Nil(t, mesh.UVs)
	assert.Equal(t, 2, mesh.TriangleCount())
}

func TestParsePLY_ASCIIPolygon(t *testing.T) {
	src := `ply
format ascii 1.0
element vertex 4
property float x
property float y
property float z
element face 1
property list uchar int vertex_indices
end_header
0 0 0
1 0 0
1 1 0
0 1 0
4 0 1 2 3
`
	mesh, err := ParsePLY(strings.NewReader(src))
	require.NoError(t, err)
	assert.Len(t, mesh.Vertices, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, mesh.Indices)
}

func TestParsePLY_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing magic", "format ascii 1.0\nend_header\n"},
		{"unterminated header", "ply\nformat ascii 1.0\n"},
		{"unknown format", "ply\nformat binary_middle_endian 1.0\nend_header\n"},
		{"truncated body", "ply\nformat ascii 1.0\nelement vertex 2\nproperty float x\nend_header\n1\n"},
		{"huge vertex count", "ply\nformat ascii 1.0\nelement vertex 4611686018427387904\nproperty float x\nend_header\n0\n"},
		{"huge face", "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nelement face 1\nproperty list uchar int vertex_indices\nend_header\n0\n4000000000000000000 0 0 0\n"},
		{"degenerate face", "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nelement face 1\nproperty list uchar int vertex_indices\nend_header\n0\n2 0 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePLY(strings.NewReader(tt.src))
			assert.Error(t, err)
		})
	}
}

func TestLoadPLY_FromFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "square.ply"), createTestPLY(t, binary.LittleEndian, false), 0o644))

	mesh, err := LoadMesh(dir, "square.ply")
	require.NoError(t, err)
	assert.Equal(t, 2, mesh.TriangleCount())
}
