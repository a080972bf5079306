package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/df07/go-raytracy/pkg/core"
	"github.com/df07/go-raytracy/pkg/loaders"
	"github.com/df07/go-raytracy/pkg/renderer"
	"github.com/df07/go-raytracy/pkg/scene"
	"github.com/df07/go-raytracy/web/server"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "raytracy",
		Short:        "Whitted-style recursive ray tracer",
		SilenceUsage: true,
	}
	root.AddCommand(newRenderCommand(), newListCommand(), newServeCommand())
	return root
}

type renderOptions struct {
	output     string
	configPath string
	width      int
	height     int
	quiet      bool
	config     renderer.Config
}

func newRenderCommand() *cobra.Command {
	opts := &renderOptions{config: renderer.DefaultConfig()}

	cmd := &cobra.Command{
		Use:   "render <scene>",
		Short: "Render a built-in scene or a .scene file to PNG",
		Long: "Render a built-in scene (" + strings.Join(scene.BuiltinNames(), ", ") + ") or a .scene file.\n" +
			"Output defaults to output/<scene>/render_<timestamp>.png",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", "", "output PNG path")
	flags.StringVar(&opts.configPath, "config", "", "TOML render config file")
	flags.IntVar(&opts.width, "width", 400, "image width in pixels")
	flags.IntVar(&opts.height, "height", 300, "image height in pixels")
	flags.IntVar(&opts.config.Supersampling, "supersampling", opts.config.Supersampling, "samples per pixel along each axis")
	flags.IntVar(&opts.config.MaxDepth, "max-depth", opts.config.MaxDepth, "maximum reflection and refraction depth")
	flags.Float64Var(&opts.config.FieldOfView, "fov", opts.config.FieldOfView, "vertical field of view in degrees")
	flags.IntVar(&opts.config.NumWorkers, "workers", opts.config.NumWorkers, "number of render workers (0 = all CPUs)")
	flags.IntVar(&opts.config.TileSize, "tile-size", opts.config.TileSize, "tile size in pixels")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress log output")

	return cmd
}

// resolveConfig starts from the config file when one is given and applies
// only the flags set on the command line over it
func resolveConfig(cmd *cobra.Command, opts *renderOptions) (renderer.Config, error) {
	if opts.configPath == "" {
		return opts.config, nil
	}

	config, err := renderer.LoadConfig(opts.configPath)
	if err != nil {
		return renderer.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("supersampling") {
		config.Supersampling = opts.config.Supersampling
	}
	if flags.Changed("max-depth") {
		config.MaxDepth = opts.config.MaxDepth
	}
	if flags.Changed("fov") {
		config.FieldOfView = opts.config.FieldOfView
	}
	if flags.Changed("workers") {
		config.NumWorkers = opts.config.NumWorkers
	}
	if flags.Changed("tile-size") {
		config.TileSize = opts.config.TileSize
	}
	return config, nil
}

func runRender(cmd *cobra.Command, sceneName string, opts *renderOptions) error {
	if opts.width <= 0 || opts.height <= 0 {
		return errors.Errorf("image size must be positive, got %dx%d", opts.width, opts.height)
	}

	config, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}

	var logger core.Logger = renderer.NewDefaultLogger()
	if opts.quiet {
		logger = renderer.NewSilentLogger()
	}

	selectedScene, err := createScene(sceneName, logger)
	if err != nil {
		return err
	}

	rend := renderer.NewRenderer(config, logger)
	if err := rend.SetScene(selectedScene); err != nil {
		selectedScene.Clear()
		return err
	}
	defer rend.CleanUp()

	buffer := make([]byte, opts.width*opts.height*4)
	stats := rend.Render(buffer, opts.width, opts.height)

	filename := opts.output
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = filepath.Join("output", sceneLabel(sceneName), fmt.Sprintf("render_%s.png", timestamp))
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return errors.Wrap(err, "error creating output directory")
	}
	if err := loaders.SavePNG(filename, loaders.ImageFromBGRA(buffer, opts.width, opts.height)); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Render completed in %v (%d rays, %.0f rays/s)\n",
		stats.Duration.Round(time.Millisecond), stats.TotalRays(), stats.RaysPerSecond())
	fmt.Fprintf(out, "Render saved as %s\n", filename)
	return nil
}

// createScene returns a built-in scene by name, or loads a scene file when
// the argument looks like a path
func createScene(name string, logger core.Logger) (*scene.Scene, error) {
	if name == "" {
		return nil, errors.New("scene name is required")
	}
	if strings.HasSuffix(name, ".scene") || strings.ContainsRune(name, filepath.Separator) || strings.Contains(name, "/") {
		return scene.LoadScene(name, logger)
	}
	return scene.Builtin(name)
}

// sceneLabel names the output directory for a scene argument
func sceneLabel(name string) string {
	return strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [scenes-dir]",
		Short: "List built-in scenes and scene files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "scenes"
			if len(args) == 1 {
				dir = args[0]
			}

			groups, err := scene.ListAllScenes(dir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, group := range groups {
				fmt.Fprintf(out, "%s:\n", group.Name)
				for _, info := range group.Scenes {
					fmt.Fprintf(out, "  %-24s %s\n", info.ID, info.Description)
				}
			}
			return nil
		},
	}
}

func newServeCommand() *cobra.Command {
	var port int
	var scenesDir, configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve renders over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := renderer.DefaultConfig()
			if configPath != "" {
				var err error
				if config, err = renderer.LoadConfig(configPath); err != nil {
					return err
				}
			}
			return server.NewServer(port, scenesDir, config, renderer.NewDefaultLogger()).Start()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "port to listen on")
	cmd.Flags().StringVar(&scenesDir, "scenes", "scenes", "directory of .scene files")
	cmd.Flags().StringVar(&configPath, "config", "", "TOML render config file")
	return cmd
}
