package renderer

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/df07/go-raytracy/pkg/core"
	"github.com/df07/go-raytracy/pkg/scene"
)

// DefaultLogger implements core.Logger with structured text output on stderr
type DefaultLogger struct {
	logger *slog.Logger
}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	dl.logger.Info(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{logger: slog.New(slog.NewTextHandler(os.Stderr, nil))}
}

// SilentLogger discards everything
type SilentLogger struct{}

func (SilentLogger) Printf(string, ...interface{}) {}

// NewSilentLogger creates a logger that discards all output
func NewSilentLogger() core.Logger {
	return SilentLogger{}
}

// Renderer owns a scene and renders it into BGRA buffers using a pool of tile
// workers. Render, SetScene and CleanUp are serialized, so the scene is never
// swapped or released while tiles are being traced.
type Renderer struct {
	mu         sync.Mutex
	config     Config
	logger     core.Logger
	scene      *scene.Scene
	workerPool *WorkerPool
}

// NewRenderer creates a renderer without a scene; call Initialize or SetScene
// before rendering
func NewRenderer(config Config, logger core.Logger) *Renderer {
	return &Renderer{
		config: config,
		logger: logger,
	}
}

// Initialize loads the scene file named by the single argument
func (r *Renderer) Initialize(args []string) error {
	if len(args) != 1 {
		return errors.Errorf("expected exactly one scene file argument, got %d", len(args))
	}

	s, err := scene.LoadScene(args[0], r.logger)
	if err != nil {
		return err
	}
	if err := r.SetScene(s); err != nil {
		s.Clear()
		return err
	}
	return nil
}

// SetScene validates s and makes it the scene to render, releasing any
// previous scene. The renderer takes ownership of s.
func (r *Renderer) SetScene(s *scene.Scene) error {
	if err := r.config.Validate(); err != nil {
		return errors.Wrap(err, "invalid render config")
	}
	if err := s.Validate(); err != nil {
		return errors.Wrap(err, "invalid scene")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopWorkers()
	if r.scene != nil && r.scene != s {
		r.scene.Clear()
	}
	r.scene = s
	r.workerPool = NewWorkerPool(s, r.config.MaxDepth, r.config.Workers())
	r.workerPool.Start()
	return nil
}

// Scene returns the current scene, or nil
func (r *Renderer) Scene() *scene.Scene {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scene
}

// Render fills buffer with the scene as seen by the camera, 4 bytes per pixel
// in B,G,R,A order. It panics if buffer holds fewer than width*height*4 bytes.
// Without a scene the buffer is filled with opaque black.
func (r *Renderer) Render(buffer []byte, width, height int) RenderStats {
	if width <= 0 || height <= 0 {
		return RenderStats{}
	}
	if len(buffer) < width*height*4 {
		panic(fmt.Sprintf("renderer: buffer of %d bytes is too small for %dx%d", len(buffer), width, height))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.scene == nil {
		for i := 0; i < width*height*4; i += 4 {
			buffer[i], buffer[i+1], buffer[i+2], buffer[i+3] = 0, 0, 0, 255
		}
		return RenderStats{Width: width, Height: height}
	}

	startTime := time.Now()
	frame := NewFrame(buffer, width, height, r.config.Supersampling, r.config.FieldOfView)
	tiles := NewTileGrid(width, height, r.config.TileSize)

	pool := r.workerPool

	go func() {
		for i, tile := range tiles {
			pool.SubmitTask(TileTask{Tile: tile, TaskID: i, Frame: frame})
		}
	}()

	stats := RenderStats{
		Width:   width,
		Height:  height,
		Tiles:   len(tiles),
		Workers: pool.GetNumWorkers(),
	}
	for range tiles {
		result, _ := pool.GetResult()
		stats.Add(result.Stats)
	}
	stats.Duration = time.Since(startTime)

	r.logger.Printf("Rendered %dx%d (%dx%d supersampling) in %v using %d workers: %d rays\n",
		width, height, r.config.Supersampling, r.config.Supersampling, stats.Duration, stats.Workers, stats.TotalRays())
	return stats
}

// CleanUp stops the workers and releases the scene's meshes and textures. It
// waits for a Render in progress to finish.
func (r *Renderer) CleanUp() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopWorkers()
	if r.scene != nil {
		r.scene.Clear()
		r.scene = nil
	}
}

func (r *Renderer) stopWorkers() {
	if r.workerPool != nil {
		r.workerPool.Stop()
		r.workerPool = nil
	}
}

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID     int             // Unique tile identifier
	Bounds image.Rectangle // Pixel bounds (x0,y0,x1,y1)
}

// NewTile creates a new tile with the specified bounds
func NewTile(id int, bounds image.Rectangle) *Tile {
	return &Tile{
		ID:     id,
		Bounds: bounds,
	}
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int) []*Tile {
	var tiles []*Tile
	tileID := 0

	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, NewTile(tileID, image.Rect(x0, y0, x1, y1)))
			tileID++
		}
	}

	return tiles
}
