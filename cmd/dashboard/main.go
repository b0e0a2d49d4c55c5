package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"example.com/volunteer/internal/api"
	"example.com/volunteer/internal/config"
	"example.com/volunteer/internal/domain"
	"example.com/volunteer/internal/localstore"
	"example.com/volunteer/internal/remote"
	"example.com/volunteer/internal/session"
	httptransport "example.com/volunteer/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := localstore.New(cfg.StateDir)
	if err != nil {
		log.Fatalf("failed to open state dir: %v", err)
	}

	guard := session.NewGuard(store)
	sess, err := guard.Require()
	if err != nil {
		log.Fatalf("no active session, sign in with the CLI first")
	}

	client := remote.NewClient(remote.Config{
		BaseURL:         cfg.BackendURL,
		APIKey:          cfg.BackendAPIKey,
		AccessToken:     sess.AccessToken,
		ActivitiesTable: cfg.ActivitiesTable,
		VolunteersTable: cfg.VolunteersTable,
	})

	syncer := domain.NewSyncer(client, sess.User.Email, sess.User.DisplayName())
	go syncer.Run(ctx)

	opts := []domain.Option{}
	if cfg.PruneOnReload {
		opts = append(opts, domain.WithPruneOnReload())
	}
	service := domain.NewService(client, localstore.NewState(store), syncer, opts...)

	// A failed first load leaves an empty view; the periodic refresh
	// below keeps retrying.
	if err := service.Load(ctx); err != nil {
		log.Printf("initial catalog load failed, serving empty view: %v", err)
	}

	handler := api.NewHandler(service, nil)
	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	router.Handle("/metrics", promhttp.Handler())

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address: cfg.DashboardAddr,
	}, router)

	go func() {
		ticker := time.NewTicker(cfg.Refresh())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := service.Reload(ctx); err != nil {
					log.Printf("periodic refresh failed: %v", err)
				}
			}
		}
	}()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("dashboard listening on %s", cfg.DashboardAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	syncer.Wait()
}
