package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/usekit/internal/upstream"
	"github.com/vango-dev/usekit/pkg/host"
	"github.com/vango-dev/usekit/pkg/reactive"
	"github.com/vango-dev/usekit/pkg/use/swr"
)

// fetchOptions configures a fetch run.
type fetchOptions struct {
	url      string
	count    int
	interval time.Duration
	config   swr.Config
}

func fetchCmd(flags *globalFlags) *cobra.Command {
	var (
		count    int
		interval time.Duration
		maxAge   time.Duration
		window   time.Duration
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Request a URL through useSWR",
		Long: `Request a URL through useSWR several times and print where each
answer came from: fresh (cache), stale (cache, revalidated in the
background) or network.

The cached time is kept in the configured storage, so runs against a
file or postgres store see each other's freshness.

Examples:
  usekit fetch https://api.github.com/zen
  usekit fetch https://example.com/data.json --count=5 --interval=1s --max-age=2s --swr=5s`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Log, os.Stderr)

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			storage, closeStorage, err := openStorage(ctx, cfg.Storage, logger)
			if err != nil {
				return err
			}
			defer closeStorage()

			swrConfig := cfg.SWR.Apply()
			if cmd.Flags().Changed("max-age") {
				swrConfig.MaxAge = maxAge
			}
			if cmd.Flags().Changed("swr") {
				swrConfig.SWR = window
			}
			if cmd.Flags().Changed("timeout") {
				swrConfig.Timeout = timeout
			}

			env := host.NewEnv()
			env.Storage = storage
			env.Logger = logger

			return runFetch(ctx, cmd.OutOrStdout(), env, fetchOptions{
				url:      args[0],
				count:    count,
				interval: interval,
				config:   swrConfig,
			})
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 3, "Number of requests")
	cmd.Flags().DurationVarP(&interval, "interval", "i", time.Second, "Delay between requests")
	cmd.Flags().DurationVar(&maxAge, "max-age", 0, "Window in which the cache is served as fresh")
	cmd.Flags().DurationVar(&window, "swr", 0, "Window after max-age in which the cache is served stale")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Revalidation timeout hook delay (0 disables)")

	return cmd
}

// runFetch drives a single UseSWR instance on env's loop until count
// requests have settled.
func runFetch(ctx context.Context, w io.Writer, env *host.Env, opts fetchOptions) error {
	if opts.count < 1 {
		opts.count = 1
	}
	client := upstream.New(upstream.WithLogger(env.Logger))

	loopCtx, stop := context.WithCancel(ctx)
	defer stop()

	owner := reactive.NewOwner(nil)
	host.Provide(owner, env)
	defer owner.Dispose()

	var (
		state    *swr.SWR[any]
		requests int
		request  func()
	)
	report := func() {
		line := fmt.Sprintf("#%d %-7s", requests, state.Reason.Peek())
		if err := state.Error.Peek(); err != nil {
			line += " error: " + err.Error()
		} else if data, err := json.Marshal(state.Data.Peek()); err == nil {
			line += " " + truncate(string(data), 120)
		}
		fmt.Fprintln(w, line)
	}
	request = func() {
		requests++
		done := state.Fetch()
		go func() {
			<-done
			env.Loop.Dispatch(func() {
				report()
				if requests >= opts.count {
					stop()
					return
				}
				env.AfterFunc(opts.interval, request)
			})
		}()
	}

	env.Loop.Dispatch(func() {
		reactive.WithOwner(owner, func() {
			_, state = swr.UseSWR(opts.url, upstream.JSON[any](client, opts.url),
				swr.WithConfig(opts.config),
				swr.WithInitial(false),
				swr.WithRevalidateOnFocus(false),
				swr.OnRevalidateTimeout(func(key string, reason swr.Reason, _ *swr.Config) {
					fmt.Fprintf(w, "   %s revalidation of %s is taking longer than %s\n", reason, key, opts.config.Timeout)
				}),
			)
		})
		owner.Mount()
		request()
	})

	if err := env.Loop.Run(loopCtx); err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
