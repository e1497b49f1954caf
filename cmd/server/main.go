package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/youruser/deckbuilder/internal/api"
	"github.com/youruser/deckbuilder/internal/assets"
	"github.com/youruser/deckbuilder/internal/cards"
	"github.com/youruser/deckbuilder/internal/config"
	"github.com/youruser/deckbuilder/internal/logging"
	"github.com/youruser/deckbuilder/internal/session"
	"github.com/youruser/deckbuilder/internal/store"
	"github.com/youruser/deckbuilder/internal/util"
)

func main() {
	conf, err := config.Get()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger, err := logging.New(conf.Logging.Level, conf.Logging.Development)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, conf, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, conf config.Config, logger *zap.Logger) error {
	if err := util.EnsureDir(filepath.Dir(conf.DBPath)); err != nil {
		return err
	}
	st, err := store.Open(conf.DBPath, logger.Named("store"))
	if err != nil {
		return err
	}
	defer st.Close()

	// no cached catalog and no network is the one fatal startup error
	idx, err := cards.Fetch(ctx, cards.FetchOptions{
		Source:  conf.Catalog.Source,
		Cache:   st.Bucket(store.Namespace),
		Refresh: conf.Catalog.Refresh,
		Timeout: conf.HTTPTimeout(),
		Logger:  logger.Named("catalog"),
	})
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	locale, err := language.Parse(conf.SortLocale)
	if err != nil {
		logger.Warn("invalid sort locale, using default", zap.String("locale", conf.SortLocale), zap.Error(err))
		locale = language.Und
	}
	sess := session.New(idx, session.Options{
		Locale:    locale,
		Persister: store.NewDeckStore(st),
		Logger:    logger.Named("session"),
	})
	if err := sess.Restore(ctx); err != nil {
		logger.Warn("could not restore deck", zap.Error(err))
	}

	cacher, err := assets.New(conf.Assets.Dir, assets.Options{
		ProgressEvery: conf.Assets.ProgressEvery,
		QueueSize:     conf.Assets.QueueSize,
		Timeout:       conf.HTTPTimeout(),
		Logger:        logger.Named("assets"),
	})
	if err != nil {
		return err
	}

	gin.SetMode(conf.GinMode)
	srv := api.New(sess, cacher, logger.Named("api"))
	r := api.NewEngine(logger.Named("http"))
	srv.RegisterRoutes(r)

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", conf.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return cacher.Run(ctx)
	})
	g.Go(func() error {
		logger.Info("starting server", zap.String("addr", "http://localhost"+httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		srv.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
