package renderer

import (
	"os"
	"runtime"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// Config contains configuration for rendering
type Config struct {
	Supersampling int     `toml:"supersampling"` // Samples per pixel along each axis (N x N grid)
	MaxDepth      int     `toml:"max_depth"`     // Maximum reflection/refraction recursion depth
	FieldOfView   float64 `toml:"field_of_view"` // Degrees
	TileSize      int     `toml:"tile_size"`     // Size of each square tile in pixels
	NumWorkers    int     `toml:"num_workers"`   // Number of parallel workers (0 = use CPU count)
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		Supersampling: 2,
		MaxDepth:      3,
		FieldOfView:   45,
		TileSize:      32,
		NumWorkers:    0, // Auto-detect CPU count
	}
}

// LoadConfig reads a TOML config file. Keys missing from the file keep their
// default values; unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	file, err := os.Open(path)
	if err != nil {
		return config, errors.Wrap(err, "failed to open config file")
	}
	defer file.Close()

	if err := toml.NewDecoder(file).DisallowUnknownFields().Decode(&config); err != nil {
		return config, errors.Wrapf(err, "failed to parse config %s", path)
	}
	return config, config.Validate()
}

// Validate rejects settings the renderer cannot work with
func (c Config) Validate() error {
	if c.Supersampling < 1 {
		return errors.Errorf("supersampling must be at least 1, got %d", c.Supersampling)
	}
	if c.MaxDepth < 0 {
		return errors.Errorf("max depth must not be negative, got %d", c.MaxDepth)
	}
	if c.FieldOfView <= 0 || c.FieldOfView >= 180 {
		return errors.Errorf("field of view must be between 0 and 180 degrees, got %g", c.FieldOfView)
	}
	if c.TileSize < 1 {
		return errors.Errorf("tile size must be at least 1, got %d", c.TileSize)
	}
	if c.NumWorkers < 0 {
		return errors.Errorf("number of workers must not be negative, got %d", c.NumWorkers)
	}
	return nil
}

// Workers returns the effective number of workers
func (c Config) Workers() int {
	if c.NumWorkers <= 0 {
		return runtime.NumCPU()
	}
	return c.NumWorkers
}
