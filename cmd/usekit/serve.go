package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/vango-dev/usekit/internal/config"
	"github.com/vango-dev/usekit/internal/upstream"
	"github.com/vango-dev/usekit/pkg/reactive"
	"github.com/vango-dev/usekit/pkg/server"
	"github.com/vango-dev/usekit/pkg/use"
	"github.com/vango-dev/usekit/pkg/use/swr"
	"github.com/vango-dev/usekit/pkg/widgets/resizebar"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		addr      string
		sourceURL string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the browser bridge",
		Long: `Start the browser bridge.

Every page that connects gets its own session. The page's focus,
visibility, size and pointer events drive the session's window, and
the dashboard component pushes its state back over the WebSocket:

  • a useSWR view of --url, revalidated on focus
  • a resizable sidebar bound to --sidebar-width
  • a visit counter persisted in the configured storage

Examples:
  usekit serve
  usekit serve --url=https://api.github.com/repos/golang/go
  usekit serve --addr=0.0.0.0:7400`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(flags, addr, sourceURL)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from config)")
	cmd.Flags().StringVarP(&sourceURL, "url", "u", "", "JSON endpoint shown through useSWR")

	return cmd
}

func runServe(flags *globalFlags, addr, sourceURL string) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	logger := newLogger(cfg.Log, os.Stderr)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	storage, closeStorage, err := openStorage(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	var metrics *swr.Metrics
	metricsPath := ""
	if cfg.Server.Metrics {
		metrics = swr.NewMetrics(swr.WithRegistry(prometheus.DefaultRegisterer))
		metricsPath = cfg.Server.MetricsPath
	}

	srv := server.New(server.Config{
		Addr:        cfg.Server.Addr,
		Component:   dashboard(cfg, sourceURL, metrics),
		Storage:     storage,
		MetricsPath: metricsPath,
		CheckOrigin: checkOrigin(cfg.Server.AllowedOrigins),
		StyleVars:   map[string]string{dashboardSidebarVar: "240px"},
		Logger:      logger,
	})

	printBanner()
	fmt.Println("  serve")
	fmt.Println()
	success("Listening on http://%s", cfg.Server.Addr)
	info("Storage: %s", cfg.Storage.Driver)
	if sourceURL != "" {
		info("SWR source: %s", sourceURL)
	} else {
		warn("No --url given; the SWR panel stays empty")
	}
	if metricsPath != "" {
		info("Metrics: http://%s%s", cfg.Server.Addr, metricsPath)
	}
	fmt.Println()

	return srv.Run(ctx)
}

const dashboardSidebarVar = "--sidebar-width"

// dashboard is the component mounted for every page.
func dashboard(cfg *config.Config, sourceURL string, metrics *swr.Metrics) func(*server.Session) {
	client := upstream.New()
	swrConfig := cfg.SWR.Apply()

	return func(sess *server.Session) {
		push := func(typ string, data any) {
			_ = sess.Push(server.Message{Type: typ, Data: data})
		}

		visible := use.UseVisibilityState()
		focused := use.UseWindowFocus()
		reactive.Watch(func() [2]bool {
			return [2]bool{visible.Get(), focused.Get()}
		}, func(v, _ [2]bool) {
			push("window", map[string]bool{"visible": v[0], "focused": v[1]})
		})

		visits := use.UseLocalStorage("usekit.visits", 0)
		visits.Set(visits.Peek() + 1)
		reactive.Watch(visits.Get, func(n, _ int) {
			push("visits", n)
		})

		bar := resizebar.New(resizebar.Props{
			Axis: resizebar.AxisX,
			Bounds: &resizebar.Bounds{
				Min: resizebar.Fixed(120),
				Max: resizebar.Fixed(640),
			},
			RootSelector: dashboardSidebarVar,
		})
		bar.Attach()

		if sourceURL == "" {
			return
		}
		refresh, state := swr.UseSWR(sourceURL, upstream.JSON[any](client, sourceURL),
			swr.WithConfig(swrConfig),
			swr.WithMetrics(metrics),
		)
		reactive.Watch(state.Data.Get, func(v, _ any) {
			push("data", v)
		})
		reactive.Watch(state.Reason.Get, func(r, _ swr.Reason) {
			push("reason", r)
		})
		reactive.Watch(func() string {
			if err := state.Error.Get(); err != nil {
				return err.Error()
			}
			return ""
		}, func(msg, _ string) {
			push("fetchError", msg)
		}, reactive.Lazy())
		sess.OnAction("refresh", refresh)

		sess.Logger().Debug("dashboard mounted", slog.String("url", sourceURL))
	}
}

// checkOrigin allows the listed origins. An empty list keeps gorilla's
// same-origin check.
func checkOrigin(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || set["*"] || set[origin] {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}
