package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"storeplan/internal/config"
	"storeplan/internal/export"
	"storeplan/internal/handler"
	"storeplan/internal/hub"
	"storeplan/internal/live"
	"storeplan/internal/service"
	"storeplan/internal/watcher"

	"github.com/spf13/cobra"
)

func newServeCommand(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, event stream and live sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return runServe(cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")

	return cmd
}

func runServe(cfg *config.Config) error {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Storeplan server...")
	log.Printf("Config:\n%s", cfg.Summary())

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	spawn := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	// Layout file is imported before clients connect and reloaded on change
	if cfg.Layout.File != "" {
		layoutSync := watcher.NewLayoutSync(cfg.Layout.File, st.svc)
		if err := layoutSync.Load(ctx); err != nil {
			log.Printf("Warning: Failed to load layout file: %v", err)
		}
		if cfg.Layout.Watch {
			spawn(func() {
				if err := layoutSync.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Printf("Layout watcher stopped: %v", err)
				}
			})
		}
	}

	// SSE hub fed by the event bus
	sseHub := hub.New()
	spawn(func() { sseHub.Run(ctx) })
	spawn(func() { sseHub.Forward(ctx, st.bus) })

	// Engine edits from live sessions are persisted by the writer
	writer := service.NewWriter(st.svc)
	spawn(func() { writer.Run(ctx) })

	liveServer := live.NewServer(st.svc, writer, cfg.EngineOptions())
	liveServer.SetEditable(cfg.Mode.Allows(config.ModeEditor))
	if origins := cfg.Server.AllowOrigins; len(origins) > 0 {
		liveServer.SetCheckOrigin(func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(origins, origin)
		})
	}
	spawn(func() { liveServer.Run(ctx) })

	renderer, err := export.NewRenderer(export.Options{World: cfg.WorldSize()})
	if err != nil {
		return err
	}

	layoutHandler := handler.NewLayoutHandler(st.svc)
	layoutHandler.SetRenderer(renderer)

	// Setup routes
	mux := http.NewServeMux()
	layoutHandler.Register(mux)

	// SSE events endpoint
	mux.Handle("GET /events", sseHub)

	// Websocket engine sessions
	mux.Handle("GET /live/{session}", liveServer)

	// Apply middleware
	finalHandler := handler.Chain(mux,
		handler.Recover,
		handler.AllowOrigins(cfg.Server.AllowOrigins),
		handler.Logger,
	)

	// WriteTimeout stays zero: SSE and websocket responses are long-lived
	server := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     finalHandler,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		cancel()
		wg.Wait()
		return err
	}

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	// Stopping the writer flushes pending edits
	cancel()
	wg.Wait()

	log.Println("Server stopped")
	return nil
}
