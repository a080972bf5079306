package scene

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

const builtinGroup = "Built-in Scenes"

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`                 // Unique identifier: the builtin name or "file:<name>"
	Name        string `json:"name"`               // Display name
	Description string `json:"description"`        // Optional description
	Group       string `json:"group"`              // Grouping category
	FilePath    string `json:"filePath,omitempty"` // Path to the scene file (file scenes only)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

type builtinScene struct {
	info  SceneInfo
	build func() *Scene
}

var builtinScenes = map[string]builtinScene{
	"default": {
		info:  SceneInfo{Name: "Default Scene", Description: "Glass, mirror and diffuse spheres over a checkered floor"},
		build: NewDefaultScene,
	},
	"cornell": {
		info:  SceneInfo{Name: "Cornell Box", Description: "Cornell box with a mirror sphere and a glass sphere"},
		build: NewCornellScene,
	},
	"sphere-grid": {
		info:  SceneInfo{Name: "Sphere Grid", Description: "10x10 grid of reflective rainbow-colored spheres"},
		build: func() *Scene { return NewSphereGridScene(10) },
	},
	"triangle-mesh": {
		info:  SceneInfo{Name: "Triangle Mesh", Description: "Transformed, textured torus and quad meshes"},
		build: NewTriangleMeshScene,
	},
	"textures": {
		info:  SceneInfo{Name: "Textures", Description: "Mip-mapped checkered floor, gradient sphere and UV-mapped disk"},
		build: NewTextureScene,
	},
}

// BuiltinNames returns the names of the built-in scenes in sorted order
func BuiltinNames() []string {
	names := lo.Keys(builtinScenes)
	sort.Strings(names)
	return names
}

// Builtin constructs the named built-in scene
func Builtin(name string) (*Scene, error) {
	builtin, ok := builtinScenes[name]
	if !ok {
		return nil, errors.Errorf("unknown built-in scene %q (available: %s)", name, strings.Join(BuiltinNames(), ", "))
	}
	return builtin.build(), nil
}

// ListBuiltinScenes returns metadata for every built-in scene
func ListBuiltinScenes() []SceneInfo {
	scenes := make([]SceneInfo, 0, len(builtinScenes))
	for _, name := range BuiltinNames() {
		info := builtinScenes[name].info
		info.ID = name
		info.Group = builtinGroup
		scenes = append(scenes, info)
	}
	return scenes
}

// ListScenes scans dir for .scene files and returns their metadata sorted by name
func ListScenes(dir string) ([]SceneInfo, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.scene"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan scenes directory")
	}

	scenes := make([]SceneInfo, 0, len(files))
	for _, filePath := range files {
		info, err := ParseSceneMetadata(filePath)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read metadata for %s", filePath)
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].Name < scenes[j].Name
	})
	return scenes, nil
}

// ParseSceneMetadata extracts metadata from the header comments of a scene
// file. Missing keys fall back to values derived from the file name.
func ParseSceneMetadata(filePath string) (SceneInfo, error) {
	filename := filepath.Base(filePath)
	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))

	info := SceneInfo{
		ID:       "file:" + nameWithoutExt,
		Name:     titleCase(nameWithoutExt),
		Group:    "Scene Files",
		FilePath: filePath,
	}

	file, err := os.Open(filePath)
	if err != nil {
		return info, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		// Metadata only lives in the leading comment block
		if !strings.HasPrefix(line, "#") {
			break
		}

		key, value, found := strings.Cut(strings.TrimSpace(strings.TrimPrefix(line, "#")), ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Scene":
			info.Name = value
		case "Description":
			info.Description = value
		case "Group":
			info.Group = value
		}
	}

	return info, scanner.Err()
}

// ListAllScenes returns the built-in scenes followed by the scene files in
// dir, grouped by category. Built-in scenes come first, then groups in
// alphabetical order. An empty dir lists only the built-ins.
func ListAllScenes(dir string) ([]SceneGroup, error) {
	all := ListBuiltinScenes()
	if dir != "" {
		files, err := ListScenes(dir)
		if err != nil {
			return nil, err
		}
		all = append(all, files...)
	}

	groupMap := make(map[string][]SceneInfo)
	for _, info := range all {
		groupMap[info.Group] = append(groupMap[info.Group], info)
	}

	groupNames := lo.Without(lo.Keys(groupMap), builtinGroup)
	sort.Strings(groupNames)

	groups := []SceneGroup{{Name: builtinGroup, Scenes: groupMap[builtinGroup]}}
	for _, name := range groupNames {
		groups = append(groups, SceneGroup{Name: name, Scenes: groupMap[name]})
	}
	return groups, nil
}

// titleCase converts a filename-style string to title case
// e.g., "cornell-empty" -> "Cornell Empty"
func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}
