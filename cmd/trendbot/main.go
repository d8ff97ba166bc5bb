// TrendBot discovers trending news topics, writes articles about them with
// an LLM, and serves them over a small REST API.
//
// Usage:
//
//	trendbot serve      # run the API server with the background bot
//	trendbot run        # run a single publication cycle and exit
//	trendbot articles   # list stored articles
//	trendbot token      # mint an admin JWT
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/trendwise/trendbot/internal/api"
	"github.com/trendwise/trendbot/internal/config"
	"github.com/trendwise/trendbot/internal/generator"
	"github.com/trendwise/trendbot/internal/images"
	"github.com/trendwise/trendbot/internal/pipeline"
	"github.com/trendwise/trendbot/internal/scheduler"
	"github.com/trendwise/trendbot/internal/sources"
	"github.com/trendwise/trendbot/internal/store"
	"github.com/trendwise/trendbot/internal/trends"
	"github.com/trendwise/trendbot/pkg/llm"
	"github.com/trendwise/trendbot/pkg/scraper"
)

var version = "dev"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "trendbot",
		Short: "Automated trend-to-article publisher",
		Long:  "TrendBot crawls news sources for trending topics, generates articles with an LLM, and publishes them with stock or placeholder imagery.",
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "trendbot.yaml", "path to config file")

	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(runCmd(&configPath))
	rootCmd.AddCommand(articlesCmd(&configPath))
	rootCmd.AddCommand(tokenCmd(&configPath))
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func serveCmd(configPath *string) *cobra.Command {
	var noBot bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server with the background bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*configPath, noBot)
		},
	}
	cmd.Flags().BoolVar(&noBot, "no-bot", false, "serve the API without starting the scheduler")
	return cmd
}

func runCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run a single publication cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(*configPath)
		},
	}
}

func articlesCmd(configPath *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "articles",
		Short: "List stored articles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listArticles(*configPath, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum articles to list")
	return cmd
}

func tokenCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Mint an admin JWT for the bot-control endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Admin.JWTSecret == "" {
				return fmt.Errorf("admin.jwt_secret is not configured")
			}
			token, err := api.GenerateToken([]byte(cfg.Admin.JWTSecret))
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("trendbot %s\n", version)
		},
	}
}

// app bundles everything wired from a config.
type app struct {
	cfg     config.Config
	store   *store.Store
	pipe    *pipeline.Pipeline
	sched   *scheduler.Scheduler
	testers map[string]sources.ConnectionTester
	llm     llm.Client
}

func (a *app) close() {
	if a.llm != nil {
		a.llm.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
}

func buildApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	st, err := store.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	registry := sources.NewRegistry()
	testers := make(map[string]sources.ConnectionTester)
	if cfg.News.APIKey != "" {
		gnews := sources.NewGNewsSource(cfg.News.APIKey, cfg.News.BaseURL, cfg.News.Language, cfg.News.Category)
		registry.Register(gnews)
		testers[gnews.Name()] = gnews
	} else {
		slog.Warn("no news API key configured, relying on feeds and fallback topics")
	}
	for _, feed := range cfg.News.Feeds {
		registry.Register(sources.NewRSSSource(feed.Name, feed.URL, feed.Category))
	}

	var client llm.Client
	if cfg.LLM.Configured() {
		client, err = llm.NewClient(cfg.LLM)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("create LLM client: %w", err)
		}
	} else {
		slog.Warn("no LLM credentials configured, articles will use the template fallback")
	}

	agg := trends.NewAggregator(registry, cfg.News.Query)
	gen := generator.New(client, scraper.NewHTTPFetcher())
	resolver := images.NewResolver(cfg.Images.AccessKey, cfg.Images.BaseURL, cfg.Server.BaseURL)

	pipe := pipeline.New(agg, gen, resolver, st, pipeline.Config{
		TrendLimit: cfg.Bot.TrendLimit,
		BatchSize:  cfg.Bot.BatchSize,
		BatchDelay: cfg.Bot.BatchDelay,
		Author:     cfg.Bot.Author,
	})

	return &app{
		cfg:     cfg,
		store:   st,
		pipe:    pipe,
		sched:   scheduler.New(pipe, cfg.Bot.Interval),
		testers: testers,
		llm:     client,
	}, nil
}

func runServe(configPath string, noBot bool) error {
	a, err := buildApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !noBot {
		a.sched.Start(ctx)
		defer a.sched.Stop()
	}

	srv := api.NewServer(a.store, a.sched, a.testers, a.cfg.Admin.JWTSecret, a.cfg.Admin.PasswordHash)
	httpSrv := &http.Server{
		Addr:         a.cfg.Server.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server listening", "addr", a.cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func runOnce(configPath string) error {
	a, err := buildApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	result, err := a.pipe.RunCycle(ctx)
	if err != nil {
		return err
	}

	slog.Info("cycle complete",
		"trends", result.TrendsSeen,
		"generated", result.Generated,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"tokens", result.TokensUsed,
		"cost_usd", fmt.Sprintf("%.4f", result.Cost),
		"duration", time.Since(start).Round(time.Millisecond))
	return nil
}

func listArticles(configPath string, limit int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	st, err := store.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	articles, err := st.List(context.Background(), limit, 0)
	if err != nil {
		return err
	}
	if len(articles) == 0 {
		fmt.Println("no articles yet")
		return nil
	}
	for _, a := range articles {
		fmt.Printf("%s  %-40s  %s  views=%d\n",
			a.CreatedAt.Format("2006-01-02 15:04"), a.Slug, a.Category, a.Views)
	}
	return nil
}
