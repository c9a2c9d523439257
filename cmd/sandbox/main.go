// cmd/sandbox/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/opd-ai/go-xpbd/pkg/config"
	"github.com/opd-ai/go-xpbd/pkg/event"
	"github.com/opd-ai/go-xpbd/pkg/health"
	"github.com/opd-ai/go-xpbd/pkg/logging"
	"github.com/opd-ai/go-xpbd/pkg/physics"
	"github.com/opd-ai/go-xpbd/pkg/render"
	engorender "github.com/opd-ai/go-xpbd/pkg/render/engo"
	"github.com/opd-ai/go-xpbd/pkg/scene"
)

// Renderer names accepted by -renderer
const (
	rendererHeadless = "headless"
	rendererTerminal = "terminal"
	rendererEngo     = "engo"
)

type options struct {
	configPath    string
	createDefault bool
	renderer      string
	frames        int
	fps           int
	width         int
	height        int
	cols          int
	rows          int
	fullscreen    bool
	healthAddr    string
}

func parseFlags(args []string) (*options, error) {
	fs := flag.NewFlagSet("sandbox", flag.ContinueOnError)
	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "world.json", "Path to a JSON or YAML world configuration")
	fs.BoolVar(&opts.createDefault, "default", false, "Write the default configuration to -config and exit")
	fs.StringVar(&opts.renderer, "renderer", rendererHeadless, "Renderer: headless, terminal or engo")
	fs.IntVar(&opts.frames, "frames", 600, "Frames to simulate (headless and terminal; 0 runs until interrupted)")
	fs.IntVar(&opts.fps, "fps", 60, "Frames per simulated second")
	fs.IntVar(&opts.width, "width", 1024, "Window width in pixels (engo only)")
	fs.IntVar(&opts.height, "height", 768, "Window height in pixels (engo only)")
	fs.IntVar(&opts.cols, "cols", 96, "Terminal columns (terminal only)")
	fs.IntVar(&opts.rows, "rows", 40, "Terminal rows (terminal only)")
	fs.BoolVar(&opts.fullscreen, "fullscreen", false, "Run fullscreen (engo only)")
	fs.StringVar(&opts.healthAddr, "health", "", "Serve /health and /ready on this address (headless and terminal)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch opts.renderer {
	case rendererHeadless, rendererTerminal, rendererEngo:
	default:
		return nil, fmt.Errorf("unknown renderer %q", opts.renderer)
	}
	if opts.fps < 1 || opts.width < 1 || opts.height < 1 || opts.cols < 1 || opts.rows < 1 {
		return nil, errors.New("-fps and the window and terminal sizes must be positive")
	}
	if opts.frames < 0 {
		return nil, errors.New("-frames must not be negative")
	}
	return opts, nil
}

// loadConfig reads path, falling back to the defaults when it does not exist
func loadConfig(ctx context.Context, logger *logging.Logger, path string) (*config.WorldConfig, error) {
	var cfg *config.WorldConfig
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", path,
		)
		cfg = config.DefaultConfig()
	} else {
		cfg, err = config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnvironmentOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			logging.NewLogger().Error(ctx, "Sandbox failed", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	logger := logging.NewLogger()
	ctx = logging.WithRunID(ctx, "")

	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	if opts.createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), opts.configPath); err != nil {
			return logging.WrapError(err, "create default configuration")
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", opts.configPath,
		)
		return nil
	}

	cfg, err := loadConfig(ctx, logger, opts.configPath)
	if err != nil {
		return logging.WrapError(err, "load configuration %s", opts.configPath)
	}

	bus := event.NewEventBus()
	collisions := 0
	bus.Subscribe(event.BodyCollision, func(event.Event) { collisions++ })
	bus.Subscribe(event.BodyResting, func(e event.Event) {
		if body, ok := e.(*event.BodyEvent); ok {
			logger.Info(ctx, "Body came to rest and was despawned",
				"body_index", body.BodyIndex,
				"generation", body.BodyGeneration,
			)
		}
	})

	if opts.renderer == rendererEngo {
		logger.Info(ctx, "Opening sandbox window",
			"width", opts.width,
			"height", opts.height,
		)
		engorender.Run(engorender.NewSandboxScene(cfg, bus, logger, opts.width, opts.height), opts.fullscreen)
		return nil
	}

	simOpts := cfg.SimulatorOptions()
	simOpts.Logger = logger
	simOpts.Bus = bus
	sim := physics.NewSimulator(simOpts)
	sys := scene.NewPhysicsSystem(sim, cfg.Resting, logger)
	if _, err := scene.BuildDemo(sys, cfg); err != nil {
		return logging.WrapError(err, "build demo")
	}

	var renderer render.Renderer
	var frameDelay time.Duration
	switch opts.renderer {
	case rendererTerminal:
		scale := max(float32(cfg.Grid.Width)/float32(opts.cols), float32(cfg.Grid.Height)/float32(opts.rows))
		terminal := render.NewTerminalRenderer(out, opts.cols, opts.rows, scale)
		terminal.SetANSI(true)
		renderer = terminal
		frameDelay = time.Second / time.Duration(opts.fps)
	default:
		renderer = render.NewNullRenderer(logger)
	}

	monitor := health.NewSimulationMonitor(5 * time.Second)
	if opts.healthAddr != "" {
		shutdown := serveHealth(ctx, logger, opts.healthAddr, monitor)
		defer shutdown()
	}

	logger.Info(ctx, "Starting simulation",
		"renderer", opts.renderer,
		"frames", opts.frames,
		"fps", opts.fps,
		"bodies", sim.BodyCount(),
		"constraints", sim.ConstraintCount(),
	)

	started := time.Now()
	dt := float32(1) / float32(opts.fps)
	frame := 0
	for opts.frames == 0 || frame < opts.frames {
		if ctx.Err() != nil {
			logger.Info(ctx, "Interrupted", "frame", frame)
			break
		}

		sys.Update(dt)
		render.Draw(renderer, sim)
		monitor.Observe(sim)
		if err := sim.CheckFinite(); err != nil {
			return logging.WrapError(err, "frame %d", frame)
		}
		frame++

		if frameDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(frameDelay):
			}
		}
	}

	logger.Info(ctx, "Simulation finished",
		"frames", frame,
		"steps", sim.StepCount(),
		"bodies", sim.BodyCount(),
		"constraints", sim.ConstraintCount(),
		"collision_events", collisions,
		"despawned", sys.Despawned(),
		"elapsed", time.Since(started).String(),
	)
	return nil
}

// serveHealth starts the probe server in the background and returns a
// function that shuts it down.
func serveHealth(ctx context.Context, logger *logging.Logger, addr string, monitor *health.SimulationMonitor) func() {
	checker := health.NewHealthChecker()
	checker.AddCheck(monitor)
	checker.AddCheck(health.NewMemoryHealthCheck(512, func() int64 {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		return int64(m.Alloc / 1024 / 1024)
	}))

	server := &http.Server{
		Addr:         addr,
		Handler:      checker.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info(ctx, "Starting health check server", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "Health check server failed", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn(ctx, "Health check server shutdown", "error", err.Error())
		}
	}
}
