// Command viewer shows a scene in a window and re-renders it when the window
// is resized or the scene file changes.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/df07/go-raytracy/pkg/core"
	"github.com/df07/go-raytracy/pkg/loaders"
	"github.com/df07/go-raytracy/pkg/renderer"
	"github.com/df07/go-raytracy/pkg/watch"
)

type renderRequest struct {
	width, height int
	reload        bool
}

// frame is a finished render ready to upload
type frame struct {
	width, height int
	pixels        []byte // RGBA
	stats         renderer.RenderStats
}

// Game renders off the UI goroutine and shows the most recent frame
type Game struct {
	scenePath string
	renderer  *renderer.Renderer
	logger    core.Logger

	reqMu    sync.Mutex
	requests chan renderRequest

	mu      sync.Mutex
	latest  *frame
	loadErr error

	width, height int
	requested     [2]int
	image         *ebiten.Image
	shown         *frame
}

func newGame(scenePath string, config renderer.Config, logger core.Logger) (*Game, error) {
	g := &Game{
		scenePath: scenePath,
		renderer:  renderer.NewRenderer(config, logger),
		logger:    logger,
		requests:  make(chan renderRequest, 1),
	}
	if err := g.renderer.Initialize([]string{scenePath}); err != nil {
		return nil, err
	}
	return g, nil
}

// request queues a render, replacing one that has not started yet
func (g *Game) request(req renderRequest) {
	g.reqMu.Lock()
	defer g.reqMu.Unlock()

	select {
	case old := <-g.requests:
		req.reload = req.reload || old.reload
		if req.width == 0 {
			req.width, req.height = old.width, old.height
		}
	default:
	}
	g.requests <- req
}

// renderLoop serves render requests until ctx is done, then closes done
func (g *Game) renderLoop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	width, height := 0, 0
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-g.requests:
			if req.width > 0 {
				width, height = req.width, req.height
			}
			if req.reload {
				err := g.renderer.Initialize([]string{g.scenePath})
				g.mu.Lock()
				g.loadErr = err
				g.mu.Unlock()
				if err != nil {
					g.logger.Printf("Reload failed: %v\n", err)
					continue
				}
			}
			if width == 0 || height == 0 {
				continue
			}

			buffer := make([]byte, width*height*4)
			stats := g.renderer.Render(buffer, width, height)
			rgba := loaders.ImageFromBGRA(buffer, width, height)

			g.mu.Lock()
			g.latest = &frame{width: width, height: height, pixels: rgba.Pix, stats: stats}
			g.mu.Unlock()
		}
	}
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.request(renderRequest{reload: true})
	}
	if g.width > 0 && g.height > 0 && g.requested != [2]int{g.width, g.height} {
		g.requested = [2]int{g.width, g.height}
		g.request(renderRequest{width: g.width, height: g.height})
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.mu.Lock()
	latest, loadErr := g.latest, g.loadErr
	g.mu.Unlock()

	if latest != nil && latest != g.shown {
		if g.image == nil || g.image.Bounds().Dx() != latest.width || g.image.Bounds().Dy() != latest.height {
			if g.image != nil {
				g.image.Deallocate()
			}
			g.image = ebiten.NewImage(latest.width, latest.height)
		}
		g.image.WritePixels(latest.pixels)
		g.shown = latest
	}

	if g.image != nil {
		screen.DrawImage(g.image, nil)
	}

	status := "rendering..."
	if g.shown != nil {
		status = fmt.Sprintf("%dx%d  %v  %d rays", g.shown.width, g.shown.height,
			g.shown.stats.Duration.Round(time.Millisecond), g.shown.stats.TotalRays())
	}
	if loadErr != nil {
		status += "\n" + loadErr.Error()
	}
	ebitenutil.DebugPrintAt(screen, status, 4, 4)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

func main() {
	configPath := flag.String("config", "", "TOML render config file")
	width := flag.Int("width", 800, "initial window width")
	height := flag.Int("height", 600, "initial window height")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: viewer [flags] <file.scene>")
		os.Exit(2)
	}
	scenePath := flag.Arg(0)

	config := renderer.DefaultConfig()
	if *configPath != "" {
		var err error
		if config, err = renderer.LoadConfig(*configPath); err != nil {
			log.Fatal(err)
		}
	}

	logger := renderer.NewDefaultLogger()
	g, err := newGame(scenePath, config, logger)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	renderDone := make(chan struct{})
	go g.renderLoop(ctx, renderDone)

	watcher, err := watch.NewFileWatcher(scenePath, 200*time.Millisecond, logger)
	if err != nil {
		logger.Printf("Live reload disabled: %v\n", err)
	} else {
		defer watcher.Close()
		go watcher.Run(ctx, func() {
			logger.Printf("Scene file changed, reloading\n")
			g.request(renderRequest{reload: true})
		})
	}

	ebiten.SetWindowTitle("RayTracy - " + scenePath)
	ebiten.SetWindowSize(*width, *height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	runErr := ebiten.RunGame(g)

	// Let the render in progress finish before releasing the scene
	cancel()
	<-renderDone
	g.renderer.CleanUp()

	if runErr != nil {
		log.Fatal(runErr)
	}
}
