package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMaterial_Defaults(t *testing.T) {
	m := NewMaterial()
	assert.Equal(t, 1.0, m.Ka)
	assert.Zero(t, m.Kd)
	assert.Zero(t, m.Ks)
	assert.Nil(t, m.Texture)
	assert.False(t, m.IsRefractive())
	assert.NoError(t, m.Validate())
}

func TestMaterial_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(m *Material)
		wantErr bool
	}{
		{"opaque ior zero", func(m *Material) { m.IOR = 0 }, false},
		{"ior exactly one", func(m *Material) { m.IOR = 1 }, false},
		{"glass", func(m *Material) { m.IOR = 1.5 }, false},
		{"ior between zero and one", func(m *Material) { m.IOR = 0.5 }, true},
		{"reflectivity above one", func(m *Material) { m.Reflectivity = 1.2 }, true},
		{"negative reflectivity", func(m *Material) { m.Reflectivity = -0.1 }, true},
		{"negative kd", func(m *Material) { m.Kd = -1 }, true},
		{"negative shininess", func(m *Material) { m.Shininess = -3 }, true},
		{"zero texture scale", func(m *Material) { m.Texture = &TextureRef{Index: 0} }, true},
		{"negative texture index", func(m *Material) { m.Texture = NewTextureRef(-1) }, true},
		{"valid texture", func(m *Material) { m.Texture = NewTextureRef(2) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMaterial()
			tt.modify(&m)
			err := m.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
