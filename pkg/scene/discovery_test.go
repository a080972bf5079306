package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"cornell-empty", "Cornell Empty"},
		{"glass_spheres", "Glass Spheres"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, titleCase(tc.input))
		})
	}
}

func writeSceneFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseSceneMetadata(t *testing.T) {
	dir := t.TempDir()

	testCases := []struct {
		name     string
		content  string
		expected SceneInfo
	}{
		{
			name: "complete_metadata.scene",
			content: `# Scene: Glass Spheres
# Description: Two glass spheres over a mirror
# Group: Refraction

Sphere
radius: 1
`,
			expected: SceneInfo{
				ID:          "file:complete_metadata",
				Name:        "Glass Spheres",
				Description: "Two glass spheres over a mirror",
				Group:       "Refraction",
			},
		},
		{
			name:    "partial-metadata.scene",
			content: "# Scene: Mesh Test\n# just a note\nMesh\n# Group: ignored after the header\n",
			expected: SceneInfo{
				ID:    "file:partial-metadata",
				Name:  "Mesh Test",
				Group: "Scene Files",
			},
		},
		{
			name:    "no_metadata.scene",
			content: "Light\nposition: 0 1 0\n",
			expected: SceneInfo{
				ID:    "file:no_metadata",
				Name:  "No Metadata",
				Group: "Scene Files",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeSceneFile(t, dir, tc.name, tc.content)
			tc.expected.FilePath = path

			info, err := ParseSceneMetadata(path)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, info)
		})
	}
}

func TestListScenes(t *testing.T) {
	dir := t.TempDir()
	writeSceneFile(t, dir, "zeta.scene", "# Scene: Alpha\n")
	writeSceneFile(t, dir, "alpha.scene", "# Scene: Zulu\n")
	writeSceneFile(t, dir, "notes.txt", "# Scene: Not a scene\n")

	scenes, err := ListScenes(dir)
	require.NoError(t, err)
	require.Len(t, scenes, 2)
	assert.Equal(t, "Alpha", scenes[0].Name)
	assert.Equal(t, "file:zeta", scenes[0].ID)
	assert.Equal(t, "Zulu", scenes[1].Name)

	empty, err := ListScenes(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestListAllScenes(t *testing.T) {
	dir := t.TempDir()
	writeSceneFile(t, dir, "b.scene", "# Group: Zebra\n")
	writeSceneFile(t, dir, "a.scene", "# Group: Apple\n")
	writeSceneFile(t, dir, "c.scene", "Sphere\n")

	groups, err := ListAllScenes(dir)
	require.NoError(t, err)

	names := make([]string, len(groups))
	for i, group := range groups {
		names[i] = group.Name
	}
	assert.Equal(t, []string{"Built-in Scenes", "Apple", "Scene Files", "Zebra"}, names)
	assert.Len(t, groups[0].Scenes, len(BuiltinNames()))

	groups, err = ListAllScenes("")
	require.NoError(t, err)
	require.Len(t, groups, 1)
}

func TestBuiltin(t *testing.T) {
	assert.Equal(t, []string{"cornell", "default", "sphere-grid", "textures", "triangle-mesh"}, BuiltinNames())

	for _, info := range ListBuiltinScenes() {
		assert.NotEmpty(t, info.Name, info.ID)
		assert.NotEmpty(t, info.Description, info.ID)
		assert.Equal(t, "Built-in Scenes", info.Group)
	}

	_, err := Builtin("dragon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available: cornell, default")
}
