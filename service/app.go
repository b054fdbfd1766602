package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"postsapi/app/config"
	"postsapi/app/controllers"
	"postsapi/app/logger"
	"postsapi/app/metrics"
	"postsapi/app/models"
	"postsapi/app/routes"
	"postsapi/app/services"

	"github.com/rs/zerolog"
)

// NewServer builds the HTTP server for the API on top of store.
func NewServer(cfg *config.Config, log zerolog.Logger, store *Store) *http.Server {
	m := metrics.New()
	posts := services.NewCollectionService(models.PostSchema.Name, store.Posts, m)
	comments := services.NewCollectionService(models.CommentSchema.Name, store.Comments, m)

	handler := routes.SetupRoutes(routes.Dependencies{
		Posts:       controllers.NewPostController(posts),
		Comments:    controllers.NewCommentController(comments),
		Metrics:     m,
		Logger:      log,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	return &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     stdlog.New(log.With().Str("component", "http").Logger(), "", 0),
	}
}

// Serve accepts connections on ln until ctx is done, then shuts srv down,
// waiting at most cfg.Server.ShutdownTimeout for in-flight requests.
func Serve(ctx context.Context, cfg *config.Config, log zerolog.Logger, srv *http.Server, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Msg("server listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// RunServer is the serve command: it loads configuration, opens the store
// and serves until SIGINT or SIGTERM. It returns the process exit code.
func RunServer(envFiles []string, out io.Writer) int {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return 1
	}
	log := logger.New(cfg.Log, cfg.Env, out)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("server stopped")
		return 1
	}
	log.Info().Msg("server stopped")
	return 0
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	store, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	log.Info().Str("backend", store.Backend).Msg("store opened")
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Error().Err(err).Msg("failed to close store")
		}
	}()

	ln, err := net.Listen("tcp", cfg.Address())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Address(), err)
	}

	return Serve(ctx, cfg, log, NewServer(cfg, log, store), ln)
}
