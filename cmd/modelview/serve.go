package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/modelview/internal/config"
	"github.com/vango-dev/modelview/internal/errors"
	"github.com/vango-dev/modelview/internal/logging"
	"github.com/vango-dev/modelview/pkg/middleware"
	"github.com/vango-dev/modelview/pkg/server"
	"github.com/vango-dev/modelview/pkg/source"
)

// stdinArg reads the model from standard input.
const stdinArg = "-"

type serveFlags struct {
	configPath  string
	port        int
	host        string
	verbose     bool
	browse      bool
	watch       bool
	assets      string
	name        string
	metricsAddr string
	logLevel    string
	logFormat   string
}

func serveCmd() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve [MODEL_FILE...]",
		Short: "Serve model files and open them in the browser",
		Long: `Serve one or more model files to the browser-based viewer.

Each file gets its own server on consecutive ports starting at --port.
Without a file only the viewer is served. Use "-" to read the model from
standard input, or s3://bucket/key to fetch it from S3.

Settings are read from modelview.json in the working directory (or the
file given with --config). Flags override the file.

Examples:
  modelview serve squeezenet.onnx
  modelview serve --port=9000 --host=0.0.0.0 model.pb
  modelview serve --watch --no-browse model.tflite
  cat model.onnx | modelview serve --name=model.onnx -
  modelview serve s3://models/resnet50.onnx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, args, flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.configPath, "config", "", "Path to modelview.json")
	f.IntVarP(&flags.port, "port", "p", config.DefaultPort, "Port to serve")
	f.StringVarP(&flags.host, "host", "H", config.DefaultHost, "Host to serve (empty binds all interfaces)")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "Log every request")
	f.BoolVarP(&flags.browse, "browse", "b", true, "Open the viewer in the browser")
	f.BoolVar(&flags.watch, "watch", false, "Reload open viewers when the model file changes")
	f.StringVar(&flags.assets, "assets", "", "Serve viewer assets from this directory instead of the embedded ones")
	f.StringVar(&flags.name, "name", "", "File name for a model read from stdin")
	f.StringVar(&flags.metricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address")
	f.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	f.StringVar(&flags.logFormat, "log-format", "", "Log format: text or json")

	return cmd
}

// loadConfig reads the config file and applies the flags the user set.
func loadConfig(cmd *cobra.Command, flags serveFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFile(flags.configPath)
	} else {
		cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("port") {
		cfg.Server.Port = flags.port
	}
	if changed("host") {
		cfg.Server.Host = flags.host
	}
	if changed("verbose") {
		cfg.Server.Verbose = flags.verbose
	}
	if changed("browse") {
		cfg.Server.NoBrowse = !flags.browse
	}
	if changed("watch") {
		cfg.Server.Watch = flags.watch
	}
	if changed("assets") {
		cfg.Server.Assets = flags.assets
	}
	if changed("metrics-addr") {
		cfg.Metrics.Addr = flags.metricsAddr
	}
	if changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if changed("log-format") {
		cfg.Log.Format = flags.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// serverConfig translates the file configuration into registry settings.
func serverConfig(cfg *config.Config, logger *slog.Logger, metrics *middleware.Metrics) *server.Config {
	scfg := server.DefaultConfig()
	scfg.PollInterval = cfg.PollInterval()
	scfg.StopTimeout = cfg.StopTimeout()
	scfg.BrowseDelay = cfg.BrowseDelay()
	scfg.WaitInterval = cfg.WaitInterval()
	scfg.WatchInterval = cfg.WatchInterval()
	scfg.Version = version
	scfg.Logger = logger
	scfg.Metrics = metrics
	scfg.Tracing = true
	if dir := cfg.AssetsPath(); dir != "" {
		scfg.Assets = os.DirFS(dir)
	}
	return scfg
}

// resolveSources turns command-line arguments into model sources. No
// arguments yields a single empty source that serves only the viewer.
func resolveSources(ctx context.Context, args []string, stdin io.Reader, name string, s3cfg config.S3Config) ([]source.Source, error) {
	if len(args) == 0 {
		return []source.Source{{}}, nil
	}

	var getter source.ObjectGetter
	sources := make([]source.Source, 0, len(args))
	seenStdin := false

	for _, arg := range args {
		switch {
		case arg == stdinArg:
			if seenStdin {
				return nil, fmt.Errorf("standard input can only be served once")
			}
			seenStdin = true
			data, err := io.ReadAll(stdin)
			if err != nil {
				return nil, errors.New(errors.CodeModelFetchFailed).
					WithDetail("Reading standard input").
					Wrap(err)
			}
			sources = append(sources, source.FromBytes(name, data))

		case source.IsS3URI(arg):
			if getter == nil {
				getter = source.NewS3Client(source.S3ClientConfig{
					Region:    s3cfg.Region,
					Endpoint:  s3cfg.Endpoint,
					PathStyle: s3cfg.PathStyle,
				})
			}
			src, err := source.FromS3(ctx, getter, arg)
			if err != nil {
				return nil, err
			}
			sources = append(sources, src)

		default:
			src, err := source.FromFile(arg)
			if err != nil {
				return nil, err
			}
			sources = append(sources, src)
		}
	}

	return sources, nil
}

func runServe(cmd *cobra.Command, args []string, flags serveFlags) error {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}

	logger := logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Writer: os.Stderr,
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	sources, err := resolveSources(ctx, args, cmd.InOrStdin(), flags.name, cfg.S3)
	if err != nil {
		return err
	}

	var metrics *middleware.Metrics
	if cfg.Metrics.Addr != "" {
		promReg := newMetricsRegistry()
		metrics = middleware.NewMetrics(
			middleware.WithRegistry(promReg),
			middleware.WithNamespace(cfg.Metrics.Namespace),
		)
		ms, err := startMetricsServer(cfg.Metrics.Addr, promReg, logger)
		if err != nil {
			return fmt.Errorf("metrics listener: %w", err)
		}
		defer ms.Shutdown()
		info("Metrics at http://%s/metrics", ms.Addr())
	}

	reg := server.NewRegistry(serverConfig(cfg, logger, metrics))

	printBanner()
	fmt.Println()

	for i, src := range sources {
		inst, err := reg.Serve(src, server.ServeOptions{
			Host:    cfg.Server.Host,
			Port:    cfg.Server.Port + i,
			Verbose: cfg.Server.Verbose,
			Browse:  !cfg.Server.NoBrowse,
			Watch:   cfg.Server.Watch,
		})
		if err != nil {
			reg.StopAll()
			return err
		}
		if base := src.Basename(); base != "" {
			success("Serving '%s' at %s", base, inst.URL())
		} else {
			success("Serving at %s", inst.URL())
		}
	}
	fmt.Println()
	info("Press Ctrl+C to stop")

	return reg.Wait(ctx)
}
