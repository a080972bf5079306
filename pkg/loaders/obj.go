package loaders

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/df07/go-raytracy/pkg/core"
)

// objCorner is one face corner: 1-based vertex and texture coordinate numbers,
// with uv 0 when the corner has none
type objCorner struct {
	vertex int
	uv     int
}

// objKey identifies a unique (position, texture coordinate) pair
type objKey struct {
	position core.Vec3
	uv       core.Vec2
}

// LoadOBJ loads a Wavefront OBJ file. Only v, vt and f records are used;
// faces with more than three corners are fanned into triangles.
func LoadOBJ(dir, path string) (*MeshData, error) {
	resolved, err := ResolvePath(dir, path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open OBJ file")
	}
	defer file.Close()

	data, err := ParseOBJ(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", path)
	}
	return data, nil
}

// ParseOBJ reads OBJ records from r. Every distinct (position, texture
// coordinate) pair becomes one output vertex. Triangles referencing a
// position or texture coordinate that does not exist are skipped.
func ParseOBJ(r io.Reader) (*MeshData, error) {
	var positions []core.Vec3
	var uvs []core.Vec2
	var faces [][3]objCorner

	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			values, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, errors.Wrapf(err, "cannot parse vertex at line %d", lineNumber)
			}
			positions = append(positions, core.NewVec3(values[0], values[1], values[2]))
		case "vt":
			values, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, errors.Wrapf(err, "cannot parse texture coordinate at line %d", lineNumber)
			}
			uvs = append(uvs, core.NewVec2(values[0], values[1]))
		case "f":
			if len(fields) < 4 {
				return nil, errors.Errorf("face with fewer than 3 corners at line %d", lineNumber)
			}
			corners := make([]objCorner, 0, len(fields)-1)
			for _, field := range fields[1:] {
				corner, err := parseCorner(field)
				if err != nil {
					return nil, errors.Wrapf(err, "cannot parse face at line %d", lineNumber)
				}
				corners = append(corners, corner)
			}
			for i := 1; i+1 < len(corners); i++ {
				faces = append(faces, [3]objCorner{corners[0], corners[i], corners[i+1]})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read OBJ data")
	}

	return buildOBJMesh(positions, uvs, faces), nil
}

func buildOBJMesh(positions []core.Vec3, uvs []core.Vec2, faces [][3]objCorner) *MeshData {
	mesh := &MeshData{}
	cache := make(map[objKey]uint32)
	hasUVs := false

	inRange := func(c objCorner) bool {
		return c.vertex <= len(positions) && c.uv <= len(uvs)
	}

	for _, face := range faces {
		if !lo.EveryBy(face[:], inRange) {
			continue
		}

		for _, corner := range face {
			key := objKey{position: positions[corner.vertex-1]}
			if corner.uv > 0 {
				key.uv = uvs[corner.uv-1]
				hasUVs = true
			}

			index, ok := cache[key]
			if !ok {
				index = uint32(len(mesh.Vertices))
				cache[key] = index
				mesh.Vertices = append(mesh.Vertices, key.position)
				mesh.UVs = append(mesh.UVs, key.uv)
			}
			mesh.Indices = append(mesh.Indices, index)
		}
	}

	if !hasUVs {
		mesh.UVs = nil
	}
	return mesh
}

// parseCorner parses "v", "v/vt", "v/vt/vn" or "v//vn"
func parseCorner(field string) (objCorner, error) {
	parts := strings.Split(field, "/")

	vertex, err := strconv.Atoi(parts[0])
	if err != nil || vertex <= 0 {
		return objCorner{}, errors.Errorf("invalid vertex reference %q", field)
	}

	corner := objCorner{vertex: vertex}
	if len(parts) > 1 && parts[1] != "" {
		uv, err := strconv.Atoi(parts[1])
		if err != nil || uv <= 0 {
			return objCorner{}, errors.Errorf("invalid texture coordinate reference %q", field)
		}
		corner.uv = uv
	}
	return corner, nil
}

// parseFloats parses at least count leading values from fields
func parseFloats(fields []string, count int) ([]float64, error) {
	if len(fields) < count {
		return nil, errors.Errorf("expected %d values, got %d", count, len(fields))
	}

	values := make([]float64, count)
	for i := range values {
		value, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid number %q", fields[i])
		}
		values[i] = value
	}
	return values, nil
}
