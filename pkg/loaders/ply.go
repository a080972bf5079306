package loaders

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/df07/go-raytracy/pkg/core"
)

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format      string // "binary_little_endian", "binary_big_endian", or "ascii"
	Version     string // Usually "1.0"
	VertexCount int
	FaceCount   int
	VertexProps []PLYProperty
	FaceProps   []PLYProperty

	HasTexCoords bool
}

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // For list properties, the type of the count
	DataType string // For list properties, the type of the data
}

// plyValueReader reads one scalar of a PLY data type, in either encoding
type plyValueReader interface {
	read(dataType string) (float64, error)
}

// LoadPLY loads a PLY mesh. Vertex positions, optional texture coordinates
// and face index lists are read; every other property is skipped.
func LoadPLY(dir, path string) (*MeshData, error) {
	resolved, err := ResolvePath(dir, path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open PLY file")
	}
	defer file.Close()

	data, err := ParsePLY(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", path)
	}
	return data, nil
}

// ParsePLY reads a PLY header and body from r
func ParsePLY(r io.Reader) (*MeshData, error) {
	reader := bufio.NewReader(r)

	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse PLY header")
	}

	var values plyValueReader
	switch header.Format {
	case "binary_little_endian":
		values = &binaryPLYReader{reader: reader, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &binaryPLYReader{reader: reader, order: binary.BigEndian}
	case "ascii":
		values = &asciiPLYReader{scanner: newWordScanner(reader)}
	default:
		return nil, errors.Errorf("unsupported PLY format: %s", header.Format)
	}

	return readPLYBody(header, values)
}

// parsePLYHeader parses the header, leaving reader positioned at the first body byte
func parsePLYHeader(reader *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{}
	var currentElement string
	first := true

	for {
		raw, err := reader.ReadString('\n')
		if err != nil {
			return nil, errors.Wrap(err, "header is not terminated by end_header")
		}
		line := strings.TrimSpace(raw)

		if first {
			if line != "ply" {
				return nil, errors.New("missing ply magic number")
			}
			first = false
			continue
		}
		if line == "end_header" {
			break
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "format":
			if len(parts) >= 3 {
				header.Format = parts[1]
				header.Version = parts[2]
			}
		case "comment", "obj_info":
		case "element":
			if len(parts) < 3 {
				return nil, errors.Errorf("invalid element line %q", line)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, errors.Errorf("invalid element count: %s", parts[2])
			}

			currentElement = parts[1]
			switch currentElement {
			case "vertex":
				header.VertexCount = count
			case "face":
				header.FaceCount = count
			default:
				if count > 0 {
					return nil, errors.Errorf("unsupported element %q", currentElement)
				}
			}
		case "property":
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, errors.Wrap(err, "failed to parse property")
			}

			switch currentElement {
			case "vertex":
				header.VertexProps = append(header.VertexProps, prop)
				switch prop.Name {
				case "u", "s", "texture_u", "v", "t", "texture_v":
					header.HasTexCoords = true
				}
			case "face":
				header.FaceProps = append(header.FaceProps, prop)
			}
		}
	}

	return header, nil
}

// parsePLYProperty parses a property line from the PLY header
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) < 2 {
		return PLYProperty{}, errors.New("invalid property definition")
	}

	if parts[0] == "list" {
		if len(parts) < 4 {
			return PLYProperty{}, errors.New("invalid list property definition")
		}
		return PLYProperty{IsList: true, ListType: parts[1], DataType: parts[2], Name: parts[3]}, nil
	}
	return PLYProperty{Type: parts[0], Name: parts[1]}, nil
}

// maxPLYFaceVertices bounds the vertex count of a single face
const maxPLYFaceVertices = 1 << 16

func readPLYBody(header *PLYHeader, values plyValueReader) (*MeshData, error) {
	// Header counts are not trusted for allocation; slices grow as elements are read
	mesh := &MeshData{}
	if header.HasTexCoords {
		mesh.UVs = []core.Vec2{}
	}

	for i := 0; i < header.VertexCount; i++ {
		var position core.Vec3
		var uv core.Vec2
		for _, prop := range header.VertexProps {
			if prop.IsList {
				if err := skipPLYList(values, prop); err != nil {
					return nil, errors.Wrapf(err, "failed to skip vertex property %s at vertex %d", prop.Name, i)
				}
				continue
			}

			value, err := values.read(prop.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to read vertex %d", i)
			}
			switch prop.Name {
			case "x":
				position.X = value
			case "y":
				position.Y = value
			case "z":
				position.Z = value
			case "u", "s", "texture_u":
				uv.X = value
			case "v", "t", "texture_v":
				uv.Y = value
			}
		}
		mesh.Vertices = append(mesh.Vertices, position)
		if header.HasTexCoords {
			mesh.UVs = append(mesh.UVs, uv)
		}
	}

	for i := 0; i < header.FaceCount; i++ {
		for _, prop := range header.FaceProps {
			if !prop.IsList {
				if _, err := values.read(prop.Type); err != nil {
					return nil, errors.Wrapf(err, "failed to skip face property %s at face %d", prop.Name, i)
				}
				continue
			}
			if prop.Name != "vertex_indices" && prop.Name != "vertex_index" {
				if err := skipPLYList(values, prop); err != nil {
					return nil, errors.Wrapf(err, "failed to skip face property %s at face %d", prop.Name, i)
				}
				continue
			}

			count, err := values.read(prop.ListType)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to read face vertex count at face %d", i)
			}
			if count < 3 || count > maxPLYFaceVertices {
				return nil, errors.Errorf("face %d has %g vertices", i, count)
			}

			var polygon []uint32
			for j := 0; j < int(count); j++ {
				index, err := values.read(prop.DataType)
				if err != nil {
					return nil, errors.Wrapf(err, "failed to read face indices at face %d", i)
				}
				if index < 0 {
					return nil, errors.Errorf("negative vertex index at face %d", i)
				}
				polygon = append(polygon, uint32(index))
			}

			// Fan triangulation; triangles pass through unchanged
			for j := 1; j+1 < len(polygon); j++ {
				mesh.Indices = append(mesh.Indices, polygon[0], polygon[j], polygon[j+1])
			}
		}
	}

	return mesh, nil
}

func skipPLYList(values plyValueReader, prop PLYProperty) error {
	count, err := values.read(prop.ListType)
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		if _, err := values.read(prop.DataType); err != nil {
			return err
		}
	}
	return nil
}

// binaryPLYReader decodes scalars from a binary body
type binaryPLYReader struct {
	reader io.Reader
	order  binary.ByteOrder
	buffer [8]byte
}

func (b *binaryPLYReader) read(dataType string) (float64, error) {
	size := getTypeSize(dataType)
	if size == 0 {
		return 0, errors.Errorf("unsupported data type: %s", dataType)
	}
	buf := b.buffer[:size]
	if _, err := io.ReadFull(b.reader, buf); err != nil {
		return 0, err
	}

	switch dataType {
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(buf))), nil
	case "double", "float64":
		return math.Float64frombits(b.order.Uint64(buf)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(buf))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(buf)), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(buf))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(buf)), nil
	case "char", "int8":
		return float64(int8(buf[0])), nil
	default:
		return float64(buf[0]), nil
	}
}

// asciiPLYReader parses whitespace separated scalars from an ascii body
type asciiPLYReader struct {
	scanner *bufio.Scanner
}

func newWordScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	return scanner
}

func (a *asciiPLYReader) read(dataType string) (float64, error) {
	if getTypeSize(dataType) == 0 {
		return 0, errors.Errorf("unsupported data type: %s", dataType)
	}
	if !a.scanner.Scan() {
		if err := a.scanner.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	return strconv.ParseFloat(a.scanner.Text(), 64)
}

// getTypeSize returns the size in bytes of a PLY data type, or 0 if unknown
func getTypeSize(dataType string) int {
	switch dataType {
	case "float", "float32", "int", "int32", "uint", "uint32":
		return 4
	case "double", "float64":
		return 8
	case "short", "int16", "ushort", "uint16":
		return 2
	case "char", "int8", "uchar", "uint8":
		return 1
	default:
		return 0
	}
}
