package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/vango-dev/inertia"
	"github.com/vango-dev/inertia/internal/dev"
	ierrors "github.com/vango-dev/inertia/internal/errors"
	"github.com/vango-dev/inertia/pkg/assets"
	"github.com/vango-dev/inertia/pkg/middleware"
	"github.com/vango-dev/inertia/pkg/ssr"
)

type serveOptions struct {
	addr      string
	file      string
	dev       bool
	assetsDir string
	manifest  string
	s3Bucket  string
	s3Key     string
	logLevel  string
}

func serveCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo application",
		Long: `Run a demo application that answers with Inertia responses.

The asset version comes from a Vite manifest when one is given, read
from disk or from S3. In development mode the manifest and index
template are watched and connected browsers reload on change.

Examples:
  inertia serve
  inertia serve --dev --manifest build/client/.vite/manifest.json
  inertia serve --s3-bucket assets --s3-key client/.vite/manifest.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.addr, "addr", "a", ":8080", "Address to listen on")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Configuration file (default: search the working directory)")
	cmd.Flags().BoolVar(&opts.dev, "dev", false, "Development mode: watch files and live reload")
	cmd.Flags().StringVar(&opts.assetsDir, "assets-dir", "build/client/assets", "Directory served under /assets/")
	cmd.Flags().StringVar(&opts.manifest, "manifest", "", "Vite manifest file used for the asset version")
	cmd.Flags().StringVar(&opts.s3Bucket, "s3-bucket", "", "Read the manifest from this S3 bucket")
	cmd.Flags().StringVar(&opts.s3Key, "s3-key", ".vite/manifest.json", "Manifest object key in --s3-bucket")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	return cmd
}

func runServe(ctx context.Context, opts serveOptions) error {
	logger, err := newLogger(opts.logLevel)
	if err != nil {
		return err
	}

	cfg, path, err := loadConfig(opts.file, opts.dev)
	if err != nil {
		return ierrors.ClassifyFile(err, path)
	}

	source, err := manifestSource(ctx, opts)
	if err != nil {
		return err
	}
	manifest := assets.NewManifest()
	if source != nil {
		if _, err := assets.Refresh(ctx, manifest, source); err != nil {
			if !cfg.Dev {
				return err
			}
			warn("Manifest not loaded yet: %v", err)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.Prometheus(middleware.WithRegistry(registry))

	appOpts := []inertia.Option{
		inertia.WithLogger(logger),
		inertia.WithSSROptions(ssr.WithObserver(metrics)),
		inertia.WithShared("app", map[string]any{"name": "inertia", "version": version}),
	}
	if source != nil {
		appOpts = append(appOpts, inertia.WithManifest(manifest))
	}

	var hub *dev.ReloadServer
	if cfg.Dev {
		hub = dev.NewReloadServer()
		defer hub.Close()
		appOpts = append(appOpts, inertia.WithDevScript(dev.ClientScript))

		watcher := dev.NewWatcher(dev.WatcherConfig{Paths: dev.WatchPaths(cfg, opts.manifest)})
		reloader := dev.NewReloader(hub, manifest, source)
		watcher.OnChange(func(c dev.Change) {
			reloader.Handle(ctx, c)
		})
		go func() {
			if err := watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("watcher stopped", "error", err)
			}
		}()
		defer watcher.Stop()
	}

	app := inertia.New(cfg, appOpts...)
	static := inertia.NewStatic(opts.assetsDir, "/assets/",
		inertia.WithStaticManifest(manifest),
		inertia.WithStaticDev(cfg.Dev),
	)

	router := newRouter(app, routerDeps{
		metrics:  metrics,
		registry: registry,
		static:   static,
		reload:   hub,
		assets:   assets.NewResolver(manifest, "/"),
	})

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", opts.addr)
	if err != nil {
		return err
	}

	success("Listening on http://%s", displayAddr(ln.Addr()))
	info("Asset version: %s", app.Version())
	if cfg.Dev {
		info("Live reload:   %s", dev.ReloadPath)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	fmt.Println("\n  Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// manifestSource returns where the manifest is read from, or nil when
// the configured asset version is used as-is.
func manifestSource(ctx context.Context, opts serveOptions) (assets.Source, error) {
	switch {
	case opts.s3Bucket != "":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load AWS configuration: %w", err)
		}
		return assets.NewS3Source(s3.NewFromConfig(awsCfg), opts.s3Bucket, opts.s3Key), nil
	case opts.manifest != "":
		return assets.FileSource{Path: opts.manifest}, nil
	default:
		return nil, nil
	}
}

func newLogger(level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", level)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})), nil
}

func displayAddr(a net.Addr) string {
	if tcp, ok := a.(*net.TCPAddr); ok && tcp.IP.IsUnspecified() {
		return fmt.Sprintf("localhost:%d", tcp.Port)
	}
	return a.String()
}

// routerDeps are the collaborators mounted next to the demo pages.
type routerDeps struct {
	metrics  *middleware.Metrics
	registry *prometheus.Registry
	static   http.Handler
	reload   *dev.ReloadServer
	assets   assets.Resolver
}

func newRouter(app *inertia.Inertia, deps routerDeps) chi.Router {
	r := chi.NewRouter()

	r.Handle("/metrics", promhttp.HandlerFor(deps.registry, promhttp.HandlerOpts{}))
	r.Handle("/assets/*", deps.static)
	if deps.reload != nil {
		r.Get(dev.ReloadPath, deps.reload.HandleWebSocket)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.OpenTelemetry(middleware.WithTracerName("inertia")))
		r.Use(deps.metrics.Handler)
		r.Use(app.Middleware)
		mountDemo(r, app, newUserStore(), deps.assets)
	})
	return r
}
