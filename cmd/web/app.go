package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"finitefield.org/cv-web/internal/config"
	"finitefield.org/cv-web/internal/content"
	"finitefield.org/cv-web/internal/feedback"
	mw "finitefield.org/cv-web/internal/middleware"
	"finitefield.org/cv-web/internal/page"
	"finitefield.org/cv-web/internal/render"
	"finitefield.org/cv-web/internal/status"
)

// app bundles the services behind the HTTP handlers.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	store    *content.Store
	ctrl     *page.Controller
	checker  *status.Checker
	feedback *feedback.Service
}

func newApp(cfg config.Config, logger *zap.Logger, renderOpts ...render.Option) (*app, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	strategy, err := content.ParseStrategy(cfg.Content.Strategy)
	if err != nil {
		return nil, err
	}
	store := content.NewStore(newSource(cfg, logger), content.WithStrategy(strategy), content.WithLogger(logger))

	opts := append([]render.Option{
		render.WithSkillStyle(render.ParseSkillStyle(cfg.Render.SkillStyle)),
		render.WithLogger(logger),
	}, renderOpts...)
	renderer, err := render.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("section templates: %w", err)
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		ctrl:    page.NewController(store, renderer, page.WithLogger(logger)),
		checker: status.NewChecker(store, cfg.Content.StatusTTL),
		feedback: feedback.NewService(
			feedback.WithRateLimit(cfg.Feedback.RateLimit, cfg.Feedback.RateWindow),
			feedback.WithLogger(logger),
		),
	}, nil
}

// newSource reads from the content directory, or from the remote base URL with
// the directory as fallback when both are configured.
func newSource(cfg config.Config, logger *zap.Logger) content.Source {
	if cfg.Content.RemoteURL == "" {
		return content.NewDirSource(cfg.Content.Dir)
	}
	remote := content.NewHTTPSource(cfg.Content.RemoteURL, cfg.Content.Timeout)
	if cfg.Content.Dir == "" {
		return remote
	}
	return content.NewFallbackSource(remote, content.NewDirSource(cfg.Content.Dir), logger)
}

func (a *app) routes() http.Handler {
	secure := a.cfg.Server.SecureCookies

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will use
	// X-Forwarded-For to determine the client IP.
	r.Use(chimw.RealIP)
	r.Use(mw.Logger(a.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(mw.HTMX)
	r.Use(mw.Language(secure))
	r.Use(mw.CSRF(secure))
	r.Use(mw.VaryLocale)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	})
	r.Get("/status", a.StatusHandler)

	// Static assets under /assets/
	r.Handle("/assets/*", mw.AssetsWithCache(os.DirFS(filepath.Join(publicDir, "assets"))))

	r.Get("/", a.HomeHandler)
	r.Get("/timeline", a.TimelineHandler)
	r.Get("/career/{id}", a.DetailHandler(page.SectionCareer))
	r.Get("/education/{id}", a.DetailHandler(page.SectionEducation))
	r.Get("/carousel/{section}", a.CarouselHandler)
	r.Post("/language", a.LanguageHandler)
	r.Post("/feedback", a.FeedbackHandler)
	r.NotFound(a.NotFoundHandler)
	return r
}

// serve runs the server until SIGINT/SIGTERM, then shuts down gracefully.
func (a *app) serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           a.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       a.cfg.Server.ReadTimeout,
		WriteTimeout:      a.cfg.Server.WriteTimeout,
		IdleTimeout:       a.cfg.Server.IdleTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("web listening", zap.String("addr", srv.Addr), zap.Bool("dev_mode", devMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	if a.cfg.WatchContent() {
		g.Go(func() error {
			if err := a.store.Watch(ctx, a.cfg.Content.Dir); err != nil {
				a.logger.Warn("content watch disabled", zap.Error(err))
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
