package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"axiomarium/internal/config"
	"axiomarium/internal/handler"
	"axiomarium/internal/hub"
	"axiomarium/internal/loader"
	"axiomarium/internal/service"
	"axiomarium/internal/watcher"

	sqliterepo "axiomarium/internal/repository/sqlite"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the registry HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "HTTP listen address (overrides config)")
	serveCmd.Flags().String("db", "", "SQLite database path (overrides config)")
	serveCmd.Flags().String("theory", "", "theory file to load on startup (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

// theoryReloader re-parses the theory file and swaps the registry.
type theoryReloader struct {
	svc  *service.TheoryService
	path string
}

func (tr *theoryReloader) TriggerReload() error {
	theory, err := loader.LoadFile(tr.path)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := tr.svc.Reload(ctx, theory)
	if err != nil {
		return err
	}
	log.Printf("Theory %q reloaded: %d declarations, %d flagged",
		result.Theory, result.Registered, len(result.Flagged))
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, cfgPath, err := config.Load()
	if err != nil {
		return err
	}
	if cfgPath != "" {
		log.Printf("Config loaded from %s", cfgPath)
	}

	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Database.Path = db
	}
	if theory, _ := cmd.Flags().GetString("theory"); theory != "" {
		cfg.Theory.Path = theory
	}

	log.Println("Starting Axiomarium server...")

	// Declaration log
	repo, err := sqliterepo.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer repo.Close()
	log.Printf("Database opened: %s", cfg.Database.Path)

	// Metrics
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector())
	metrics := service.NewMetrics(promReg)

	// Event bus
	eventBus := service.NewEventBus()

	// SSE hub
	sseHub := hub.New()
	go sseHub.Run()

	eventChan := make(chan service.Event, 100)
	eventBus.Subscribe(eventChan)
	go func() {
		for event := range eventChan {
			sseHub.Broadcast(event)
		}
	}()

	// Theory service
	svc := service.NewTheoryService(repo, eventBus, metrics)

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	replayed, err := svc.Replay(startCtx)
	startCancel()
	if err != nil {
		return err
	}
	if replayed > 0 {
		log.Printf("Replayed %d declarations from log", replayed)
	}

	if cfg.Theory.Path != "" && replayed == 0 {
		theory, err := loader.LoadFile(cfg.Theory.Path)
		if err != nil {
			return err
		}
		loadCtx, loadCancel := context.WithTimeout(context.Background(), 30*time.Second)
		result, err := svc.LoadTheory(loadCtx, theory)
		loadCancel()
		if err != nil {
			return err
		}
		log.Printf("Theory %q loaded: %d declarations, %d flagged",
			result.Theory, result.Registered, len(result.Flagged))
	}

	// HTTP API
	theoryHandler := handler.NewTheoryHandler(svc)

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()

	if cfg.Theory.Path != "" {
		reloader := &theoryReloader{svc: svc, path: cfg.Theory.Path}
		theoryHandler.SetReloader(reloader)

		if cfg.Theory.Watch {
			w := watcher.New(cfg.Theory.Path, func() {
				if err := reloader.TriggerReload(); err != nil {
					log.Printf("Reload failed: %v", err)
				}
			})
			go func() {
				if err := w.Watch(watchCtx); err != nil && watchCtx.Err() == nil {
					log.Printf("Watcher stopped: %v", err)
				}
			}()
		}
	}

	mux := http.NewServeMux()

	// Declaration endpoints
	mux.HandleFunc("POST /api/sorts", theoryHandler.DeclareSort)
	mux.HandleFunc("POST /api/relations", theoryHandler.DeclareRelation)
	mux.HandleFunc("POST /api/relations/{name}/equivalence", theoryHandler.ComposeEquivalence)
	mux.HandleFunc("POST /api/compounds", theoryHandler.DeclareCompound)
	mux.HandleFunc("POST /api/axioms", theoryHandler.RegisterAxiom)
	mux.HandleFunc("POST /api/theorems", theoryHandler.RegisterTheorem)

	// Query endpoints
	mux.HandleFunc("GET /api/declarations", theoryHandler.ListDeclarations)
	mux.HandleFunc("GET /api/declarations/{name}", theoryHandler.GetDeclaration)
	mux.HandleFunc("GET /api/declarations/{name}/closure", theoryHandler.GetClosure)
	mux.HandleFunc("GET /api/stats", theoryHandler.GetStats)

	// Theory file endpoints
	mux.HandleFunc("POST /api/theory", theoryHandler.LoadTheory)
	mux.HandleFunc("POST /api/theory/reload", theoryHandler.ReloadTheory)

	// Export endpoints
	mux.HandleFunc("GET /api/export/{format}", theoryHandler.Export)

	// SSE events endpoint
	mux.Handle("GET /events", sseHub)

	// Operational endpoints
	mux.Handle("GET /metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Apply middleware
	finalHandler := handler.Chain(mux,
		handler.Recover,
		handler.CORS,
		handler.Logger,
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      finalHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	watchCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	return nil
}
