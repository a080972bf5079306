package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/df07/go-raytracy/pkg/core"
	"github.com/df07/go-raytracy/pkg/loaders"
	"github.com/df07/go-raytracy/pkg/renderer"
	"github.com/df07/go-raytracy/pkg/scene"
)

// Server renders scenes on request over HTTP
type Server struct {
	port      int
	scenesDir string
	config    renderer.Config
	logger    core.Logger
	renders   atomic.Int64
}

// NewServer creates a new web server. Scene files are served from scenesDir;
// config supplies the defaults for render requests.
func NewServer(port int, scenesDir string, config renderer.Config, logger core.Logger) *Server {
	return &Server{port: port, scenesDir: scenesDir, config: config, logger: logger}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene         string `json:"scene"`         // Scene ID as listed by /api/scenes
	Width         int    `json:"width"`         // Image width
	Height        int    `json:"height"`        // Image height
	Supersampling int    `json:"supersampling"` // Samples per pixel along each axis
	MaxDepth      int    `json:"maxDepth"`      // Maximum recursion depth
	Format        string `json:"format"`        // "png" or "json"
}

// RenderResponse is the JSON form of a finished render
type RenderResponse struct {
	ImageData string           `json:"imageData"` // Base64 encoded PNG
	Stats     Stats            `json:"stats"`
	Console   []ConsoleMessage `json:"console"`
	ElapsedMs int64            `json:"elapsedMs"`
}

// Stats represents render statistics
type Stats struct {
	Width         int `json:"width"`
	Height        int `json:"height"`
	PrimaryRays   int `json:"primaryRays"`
	SecondaryRays int `json:"secondaryRays"`
	ShadowRays    int `json:"shadowRays"`
	Workers       int `json:"workers"`
}

// Handler returns the server's routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/render", s.handleRender)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Printf("Starting web server on http://localhost%s\n", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in and file scenes grouped by category
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	groups, err := scene.ListAllScenes(s.scenesDir)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"groups": groups})
}

// handleRender renders one frame and returns it as a PNG, or as JSON with
// statistics and the render log when format=json
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	renderID := fmt.Sprintf("render-%d", s.renders.Add(1))
	consoleChan := make(chan ConsoleMessage, 64)
	logger := NewWebLogger(renderID, s.logger, consoleChan)

	sceneObj, err := s.createScene(req.Scene, logger)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	config := s.config
	config.Supersampling = req.Supersampling
	config.MaxDepth = req.MaxDepth

	rend := renderer.NewRenderer(config, logger)
	if err := rend.SetScene(sceneObj); err != nil {
		sceneObj.Clear()
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	defer rend.CleanUp()

	startTime := time.Now()
	buffer := make([]byte, req.Width*req.Height*4)
	stats := rend.Render(buffer, req.Width, req.Height)
	img := loaders.ImageFromBGRA(buffer, req.Width, req.Height)

	if req.Format == "png" {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("X-Render-Rays", strconv.Itoa(stats.TotalRays()))
		if err := png.Encode(w, img); err != nil {
			s.logger.Printf("Failed to write PNG for %s: %v\n", renderID, err)
		}
		return
	}

	imageData, err := imageToBase64PNG(img)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("failed to encode image: %v", err)})
		return
	}

	close(consoleChan)
	var console []ConsoleMessage
	for msg := range consoleChan {
		console = append(console, msg)
	}

	writeJSON(w, http.StatusOK, RenderResponse{
		ImageData: imageData,
		Stats: Stats{
			Width:         stats.Width,
			Height:        stats.Height,
			PrimaryRays:   stats.PrimaryRays,
			SecondaryRays: stats.SecondaryRays,
			ShadowRays:    stats.ShadowRays,
			Workers:       stats.Workers,
		},
		Console:   console,
		ElapsedMs: time.Since(startTime).Milliseconds(),
	})
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: query.Get("scene"), Format: query.Get("format")}

	if req.Scene == "" {
		req.Scene = "default"
	}
	switch req.Format {
	case "":
		req.Format = "png"
	case "png", "json":
	default:
		return nil, fmt.Errorf("format must be png or json, got: %s", req.Format)
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 400, 1, 2000); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(query, "height", 300, 1, 2000); err != nil {
		return nil, err
	}
	if req.Supersampling, err = parseIntParam(query, "supersampling", s.config.Supersampling, 1, 8); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(query, "maxDepth", s.config.MaxDepth, 0, 16); err != nil {
		return nil, err
	}

	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// createScene resolves a scene ID: "file:<name>" loads <name>.scene from the
// scenes directory, anything else names a built-in scene
func (s *Server) createScene(id string, logger core.Logger) (*scene.Scene, error) {
	name, isFile := strings.CutPrefix(id, "file:")
	if !isFile {
		return scene.Builtin(id)
	}
	if name == "" || name != filepath.Base(name) {
		return nil, errors.Errorf("invalid scene file name %q", name)
	}
	return scene.LoadScene(filepath.Join(s.scenesDir, name+".scene"), logger)
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
