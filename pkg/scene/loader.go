package scene

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/df07/go-raytracy/pkg/core"
	"github.com/df07/go-raytracy/pkg/geometry"
	"github.com/df07/go-raytracy/pkg/loaders"
	"github.com/df07/go-raytracy/pkg/material"
)

// LoadScene reads a scene file. Meshes and textures referenced by the file are
// resolved relative to its directory. On failure nothing is returned and any
// partially loaded meshes and textures are released.
func LoadScene(path string, logger core.Logger) (*Scene, error) {
	startTime := time.Now()

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open scene file")
	}
	defer file.Close()

	s, err := ParseScene(file, filepath.Dir(path), logger)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", path)
	}

	logger.Printf("Loaded scene %s: %d objects (%d primitives), %d lights, %d textures in %v\n",
		filepath.Base(path), len(s.Objects), s.GetPrimitiveCount(), len(s.Lights), len(s.Textures), time.Since(startTime))
	return s, nil
}

// ParseScene parses the block format from r. dir is used to resolve mesh and
// texture paths.
func ParseScene(r io.Reader, dir string, logger core.Logger) (*Scene, error) {
	p := &sceneParser{
		scanner: bufio.NewScanner(r),
		dir:     dir,
		scene:   NewScene(),
		logger:  logger,
	}

	if err := p.parse(); err != nil {
		p.scene.Clear()
		return nil, err
	}
	if err := p.scene.Validate(); err != nil {
		p.scene.Clear()
		return nil, errors.Wrap(err, "invalid scene")
	}
	return p.scene, nil
}

// sceneParser walks the file one line at a time. Blocks start with a keyword
// line and end at the first blank line.
type sceneParser struct {
	scanner    *bufio.Scanner
	lineNumber int
	dir        string
	scene      *Scene
	logger     core.Logger
	rest       string // raw text after the current field name
}

// next returns the next raw line
func (p *sceneParser) next() (string, bool) {
	if !p.scanner.Scan() {
		return "", false
	}
	p.lineNumber++
	return p.scanner.Text(), true
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func isComment(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#")
}

// splitTokens splits on the scene delimiters: space, tab, comma and colon
func splitTokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ',' || r == ':' || r == '\r'
	})
}

func (p *sceneParser) parse() error {
	for {
		line, ok := p.next()
		if !ok {
			break
		}
		if isBlank(line) || isComment(line) {
			continue
		}

		tokens := splitTokens(line)
		start := p.lineNumber
		if len(tokens) == 0 {
			return errors.Errorf("unknown token at line %d", start)
		}
		keyword := tokens[0]

		var err error
		switch keyword {
		case "Scene":
			err = p.parseSceneBlock()
		case "Sphere":
			err = p.parseSphere()
		case "Plane":
			err = p.parsePlane()
		case "Disk":
			err = p.parseDisk()
		case "Triangle":
			err = p.parseTriangle()
		case "Mesh":
			err = p.parseMesh()
		case "Light":
			err = p.parseLight()
		case "Texture":
			err = p.parseTexture()
		default:
			return errors.Errorf("unknown token %q at line %d", keyword, start)
		}
		if err != nil {
			return errors.Wrapf(err, "cannot parse %s at line %d", keyword, p.lineNumber)
		}
	}

	return errors.Wrap(p.scanner.Err(), "failed to read scene")
}

// fields calls handle for every "name: values" line up to the end of the block
func (p *sceneParser) fields(handle func(name string, values []string) error) error {
	for {
		line, ok := p.next()
		if !ok || isBlank(line) {
			return nil
		}
		if isComment(line) {
			continue
		}

		name, rest := splitField(line)
		p.rest = strings.TrimSpace(rest)
		if err := handle(name, splitTokens(rest)); err != nil {
			return err
		}
	}
}

// splitField separates the field name from the rest of the line
func splitField(line string) (string, string) {
	line = strings.TrimSpace(line)
	end := strings.IndexAny(line, " \t,:")
	if end < 0 {
		return line, ""
	}
	return line[:end], strings.TrimLeft(line[end:], " \t,:")
}

func unknownField(name string) error {
	return errors.Errorf("unknown field %q", name)
}

func parseFloat(values []string) (float64, error) {
	if len(values) < 1 {
		return 0, errors.New("missing value")
	}
	value, err := strconv.ParseFloat(values[0], 64)
	return value, errors.Wrapf(err, "invalid number %q", values[0])
}

func parseInt(values []string) (int, error) {
	if len(values) < 1 {
		return 0, errors.New("missing value")
	}
	value, err := strconv.Atoi(values[0])
	return value, errors.Wrapf(err, "invalid integer %q", values[0])
}

func parseVec3(values []string) (core.Vec3, error) {
	if len(values) < 3 {
		return core.Vec3{}, errors.Errorf("expected 3 components, got %d", len(values))
	}
	var components [3]float64
	for i := range components {
		value, err := strconv.ParseFloat(values[i], 64)
		if err != nil {
			return core.Vec3{}, errors.Wrapf(err, "invalid number %q", values[i])
		}
		components[i] = value
	}
	return core.NewVec3(components[0], components[1], components[2]), nil
}

// materialFields collects material keys in any order; texture -1 means untextured
type materialFields struct {
	material     material.Material
	texture      int
	textureScale float64
	mipBias      float64
}

func newMaterialFields() *materialFields {
	return &materialFields{material: material.NewMaterial(), texture: -1, textureScale: 1}
}

// handle consumes a material key, reporting false for anything else
func (m *materialFields) handle(name string, values []string) (bool, error) {
	var err error
	switch name {
	case "color":
		m.material.Color, err = parseVec3(values)
	case "ka":
		m.material.Ka, err = parseFloat(values)
	case "kd":
		m.material.Kd, err = parseFloat(values)
	case "ks":
		m.material.Ks, err = parseFloat(values)
	case "spow":
		m.material.Shininess, err = parseFloat(values)
	case "reflectivity":
		m.material.Reflectivity, err = parseFloat(values)
	case "ior":
		m.material.IOR, err = parseFloat(values)
	case "texture":
		m.texture, err = parseInt(values)
	case "textureScale":
		m.textureScale, err = parseFloat(values)
	case "mipBias":
		m.mipBias, err = parseFloat(values)
	default:
		return false, nil
	}
	return true, errors.Wrapf(err, "field %s", name)
}

// build returns the validated material
func (m *materialFields) build() (material.Material, error) {
	mat := m.material
	if m.texture >= 0 {
		mat.Texture = &material.TextureRef{Index: m.texture, Scale: m.textureScale, MipBias: m.mipBias}
	}
	return mat, mat.Validate()
}

// objectFields parses a block of geometry fields followed by material keys
func (p *sceneParser) objectFields(geometryField func(name string, values []string) (bool, error)) (material.Material, error) {
	mat := newMaterialFields()
	err := p.fields(func(name string, values []string) error {
		handled, err := geometryField(name, values)
		if err != nil || handled {
			return errors.Wrapf(err, "field %s", name)
		}
		if handled, err := mat.handle(name, values); handled || err != nil {
			return err
		}
		return unknownField(name)
	})
	if err != nil {
		return material.Material{}, err
	}
	return mat.build()
}

func (p *sceneParser) parseSceneBlock() error {
	return p.fields(func(name string, values []string) error {
		if name != "backgroundColor" {
			return unknownField(name)
		}
		color, err := parseVec3(values)
		if err != nil {
			return errors.Wrapf(err, "field %s", name)
		}
		p.scene.Background = color
		return nil
	})
}

func (p *sceneParser) parseSphere() error {
	var center core.Vec3
	var radius float64
	mat, err := p.objectFields(func(name string, values []string) (bool, error) {
		var err error
		switch name {
		case "center":
			center, err = parseVec3(values)
		case "radius":
			radius, err = parseFloat(values)
		default:
			return false, nil
		}
		return true, err
	})
	if err != nil {
		return err
	}
	if radius <= 0 {
		return errors.Errorf("sphere radius must be positive, got %g", radius)
	}

	p.scene.AddObject(geometry.NewSphere(center, radius, mat))
	return nil
}

// planeFields reads point, normal and (for disks) radius
func (p *sceneParser) planeFields(withRadius bool) (core.Vec3, core.Vec3, float64, material.Material, error) {
	var point, normal core.Vec3
	var radius float64
	mat, err := p.objectFields(func(name string, values []string) (bool, error) {
		var err error
		switch {
		case name == "point":
			point, err = parseVec3(values)
		case name == "normal":
			normal, err = parseVec3(values)
		case name == "radius" && withRadius:
			radius, err = parseFloat(values)
		default:
			return false, nil
		}
		return true, err
	})
	if err != nil {
		return point, normal, radius, mat, err
	}
	if normal.LengthSquared() == 0 {
		return point, normal, radius, mat, errors.New("normal must be non-zero")
	}
	return point, normal, radius, mat, nil
}

func (p *sceneParser) parsePlane() error {
	point, normal, _, mat, err := p.planeFields(false)
	if err != nil {
		return err
	}
	p.scene.AddObject(geometry.NewPlane(point, normal, mat))
	return nil
}

func (p *sceneParser) parseDisk() error {
	point, normal, radius, mat, err := p.planeFields(true)
	if err != nil {
		return err
	}
	if radius <= 0 {
		return errors.Errorf("disk radius must be positive, got %g", radius)
	}
	p.scene.AddObject(geometry.NewDisk(point, normal, radius, mat))
	return nil
}

func (p *sceneParser) parseTriangle() error {
	var a, b, c core.Vec3
	mat, err := p.objectFields(func(name string, values []string) (bool, error) {
		var err error
		switch name {
		case "a":
			a, err = parseVec3(values)
		case "b":
			b, err = parseVec3(values)
		case "c":
			c, err = parseVec3(values)
		default:
			return false, nil
		}
		return true, err
	})
	if err != nil {
		return err
	}
	p.scene.AddObject(geometry.NewTriangle(a, b, c, mat))
	return nil
}

func (p *sceneParser) parseMesh() error {
	var data *loaders.MeshData
	var position, rotation core.Vec3
	scale := 1.0
	vertexCount := -1

	mat, err := p.objectFields(func(name string, values []string) (bool, error) {
		var err error
		switch name {
		case "path":
			if data != nil {
				return true, errors.New("mesh already has geometry")
			}
			path := p.rest
			if path == "" {
				return true, errors.New("missing path")
			}
			data, err = loaders.LoadMesh(p.dir, path)
			if err == nil {
				p.logger.Printf("Loaded mesh %s: %d vertices, %d triangles\n", path, len(data.Vertices), data.TriangleCount())
			}
		case "vertices":
			if data != nil {
				return true, errors.New("mesh already has geometry")
			}
			vertexCount, err = parseInt(values)
			if err == nil && vertexCount < 0 {
				err = errors.Errorf("invalid vertex count %d", vertexCount)
			}
		case "indices":
			if vertexCount < 0 {
				return true, errors.New("indices must follow vertices")
			}
			var indexCount int
			if indexCount, err = parseInt(values); err != nil {
				return true, err
			}
			data, err = p.inlineMesh(vertexCount, indexCount)
		case "position":
			position, err = parseVec3(values)
		case "rotation":
			rotation, err = parseVec3(values)
		case "scale":
			scale, err = parseFloat(values)
		default:
			return false, nil
		}
		return true, err
	})
	if err != nil {
		return err
	}
	if data == nil {
		return errors.New("mesh needs a path or inline vertices and indices")
	}

	mesh, err := geometry.NewMesh(data.Vertices, data.Indices, data.UVs, mat)
	if err != nil {
		return err
	}
	if err := mesh.SetTransformation(position, rotation, scale); err != nil {
		return err
	}
	p.scene.AddObject(mesh)
	return nil
}

// inlineMesh reads vertexCount "x,y,z" lines followed by indexCount index lines
func (p *sceneParser) inlineMesh(vertexCount, indexCount int) (*loaders.MeshData, error) {
	if indexCount < 0 || indexCount%3 != 0 {
		return nil, errors.Errorf("index count %d is not a multiple of 3", indexCount)
	}

	// Counts come from the file, so the slices grow with the lines actually read
	data := &loaders.MeshData{}
	for i := 0; i < vertexCount; i++ {
		line, ok := p.next()
		if !ok {
			return nil, errors.Errorf("vertices missing at line %d", p.lineNumber)
		}
		vertex, err := parseVec3(splitTokens(line))
		if err != nil {
			return nil, errors.Wrapf(err, "vertex at line %d", p.lineNumber)
		}
		data.Vertices = append(data.Vertices, vertex)
	}
	for i := 0; i < indexCount; i++ {
		line, ok := p.next()
		if !ok {
			return nil, errors.Errorf("indices missing at line %d", p.lineNumber)
		}
		index, err := parseInt(splitTokens(line))
		if err != nil {
			return nil, errors.Wrapf(err, "index at line %d", p.lineNumber)
		}
		if index < 0 || index >= vertexCount {
			return nil, errors.Errorf("index %d is out of range at line %d", index, p.lineNumber)
		}
		data.Indices = append(data.Indices, uint32(index))
	}
	return data, nil
}

func (p *sceneParser) parseLight() error {
	light := Light{Color: core.NewVec3(1, 1, 1)}
	err := p.fields(func(name string, values []string) error {
		var err error
		switch name {
		case "position":
			light.Position, err = parseVec3(values)
		case "color":
			light.Color, err = parseVec3(values)
		default:
			return unknownField(name)
		}
		return errors.Wrapf(err, "field %s", name)
	})
	if err != nil {
		return err
	}
	p.scene.Lights = append(p.scene.Lights, light)
	return nil
}

// parseTexture reads either a path to an image file or inline pixels. Both
// forms end the block.
func (p *sceneParser) parseTexture() error {
	width, height, bytesPerPixel, mipmap := -1, -1, -1, 0

	for {
		line, ok := p.next()
		if !ok || isBlank(line) {
			return errors.New("texture needs a path or pixels")
		}
		if isComment(line) {
			continue
		}

		name, rest := splitField(line)
		values := splitTokens(rest)

		var err error
		switch name {
		case "width":
			width, err = parseInt(values)
		case "height":
			height, err = parseInt(values)
		case "bytesPerPixel":
			bytesPerPixel, err = parseInt(values)
		case "mipmap":
			mipmap, err = parseInt(values)
			if err == nil && mipmap != 0 && mipmap != 1 {
				err = errors.Errorf("mipmap must be 0 or 1, got %d", mipmap)
			}
		case "path":
			path := strings.TrimSpace(rest)
			texture, err := loaders.LoadTexture(p.dir, path, mipmap == 1)
			if err != nil {
				return errors.Wrapf(err, "cannot load texture file %s", path)
			}
			p.logger.Printf("Loaded texture %s: %dx%d, %d mip levels\n", path, texture.Width(), texture.Height(), texture.Levels())
			p.scene.AddTexture(texture)
			return nil
		case "pixels":
			return p.inlineTexture(width, height, bytesPerPixel, mipmap == 1)
		default:
			return unknownField(name)
		}
		if err != nil {
			return errors.Wrapf(err, "field %s", name)
		}
	}
}

// maxInlineTextureSize bounds inline texture dimensions before the texel
// buffer is allocated
const maxInlineTextureSize = 1 << 14

func (p *sceneParser) inlineTexture(width, height, bytesPerPixel int, mipmap bool) error {
	if width <= 0 || height <= 0 || bytesPerPixel < 3 || bytesPerPixel > 4 {
		return errors.Errorf("unacceptable values for texture at line %d", p.lineNumber)
	}
	if width > maxInlineTextureSize || height > maxInlineTextureSize {
		return errors.Errorf("texture of %dx%d exceeds %d texels per side at line %d",
			width, height, maxInlineTextureSize, p.lineNumber)
	}

	texture, err := material.NewTexture(width, height, bytesPerPixel, nil)
	if err != nil {
		return err
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			line, ok := p.next()
			if !ok {
				return errors.Errorf("texture pixels missing at line %d", p.lineNumber)
			}
			channels, err := parseChannels(splitTokens(line), bytesPerPixel)
			if err != nil {
				return errors.Wrapf(err, "cannot parse texture color at line %d", p.lineNumber)
			}
			alpha := uint8(255)
			if bytesPerPixel == 4 {
				alpha = channels[3]
			}
			texture.SetPixel(x, y, channels[0], channels[1], channels[2], alpha)
		}
	}

	if mipmap {
		texture.GenerateMipmap()
	}
	p.scene.AddTexture(texture)
	return nil
}

// parseChannels parses exactly count 8-bit channel values
func parseChannels(values []string, count int) ([]uint8, error) {
	if len(values) != count {
		return nil, errors.Errorf("expected %d channels, got %d", count, len(values))
	}
	channels := make([]uint8, count)
	for i, value := range values {
		channel, err := strconv.ParseUint(value, 10, 8)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid channel %q", value)
		}
		channels[i] = uint8(channel)
	}
	return channels, nil
}
