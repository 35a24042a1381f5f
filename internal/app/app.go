package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/addons-front/listing-api/internal/cache"
	"github.com/addons-front/listing-api/internal/catalog"
	"github.com/addons-front/listing-api/internal/config"
	"github.com/addons-front/listing-api/internal/db"
	listinghttp "github.com/addons-front/listing-api/internal/http"
	"github.com/addons-front/listing-api/internal/http/api/admin"
	"github.com/addons-front/listing-api/internal/http/api/front"
	"github.com/addons-front/listing-api/internal/listing"
	"github.com/addons-front/listing-api/internal/logging"
	"github.com/addons-front/listing-api/internal/security"
	internalsettings "github.com/addons-front/listing-api/internal/settings"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, appCfg config.AppConfig) error {
	dsn, err := config.LoadDatabaseDSN(config.ResolveConfigPath(appCfg.ConfigPath))
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	defer closeDB(conn)
	if errMigrate := db.Migrate(conn.WithContext(ctx)); errMigrate != nil {
		return errMigrate
	}
	log.Infof("migrated database (dialect=%s)", db.DialectName(conn))
	return nil
}

// IssueEditorToken signs an admin API token for username.
func IssueEditorToken(appCfg config.AppConfig, username string, expiry time.Duration) (string, error) {
	jwtCfg, err := config.LoadJWTConfig(config.ResolveConfigPath(appCfg.ConfigPath))
	if err != nil {
		return "", err
	}
	if expiry <= 0 {
		expiry = jwtCfg.Expiry
	}
	return security.GenerateEditorToken(jwtCfg.Secret, username, expiry)
}

// RunServer serves the listing API until ctx is cancelled.
func RunServer(ctx context.Context, appCfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(appCfg.ConfigPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logCloser, err := logging.Setup(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logCloser.Close() }()
	if !config.ConfigExists(configPath) {
		log.Warnf("config file %s not found, using defaults and environment", configPath)
	}

	conn, err := db.Open(cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer closeDB(conn)
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	if errRefresh := internalsettings.RefreshDBConfigSnapshot(ctx, conn); errRefresh != nil {
		return fmt.Errorf("load settings: %w", errRefresh)
	}

	cardCache, closeCache, err := buildCardCache(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer closeCache()

	store := catalog.NewStore(conn)
	svc := listing.NewService(store, cardCache)
	internalsettings.NewRefresher(conn, internalsettings.DefaultRefreshInterval, svc.TableChanged).Start(ctx)

	engine := newEngine(cfg, conn, store, svc)
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("starting listing api on %s (config=%s)", cfg.Server.Addr, configPath)
		if errServe := server.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			errCh <- errServe
		}
		close(errCh)
	}()

	select {
	case errServe := <-errCh:
		return errServe
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	log.Info("shutting down listing api")
	if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
		return fmt.Errorf("shutdown: %w", errShutdown)
	}
	return nil
}

// newEngine wires every route onto a fresh gin engine.
func newEngine(cfg config.Config, conn *gorm.DB, store *catalog.Store, svc *listing.Service) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()
	engine.Use(gin.Recovery(), listinghttp.AccessLogMiddleware())

	admin.RegisterAdminRoutes(engine, conn, cfg.JWT, store, svc)
	front.RegisterFrontRoutes(engine, svc)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return engine
}

// buildCardCache selects redis when an address is configured, otherwise memory.
func buildCardCache(ctx context.Context, cfg config.RedisConfig) (cache.CardCache, func(), error) {
	if cfg.Addr == "" {
		log.Info("card cache: in-memory")
		return cache.NewMemoryCache(), func() {}, nil
	}
	redisCache, err := cache.NewRedisCache(ctx, cache.RedisOptions{
		Addr:      cfg.Addr,
		Password:  cfg.Password,
		DB:        cfg.DB,
		KeyPrefix: cfg.KeyPrefix,
	})
	if err != nil {
		return nil, nil, err
	}
	log.Infof("card cache: redis at %s", cfg.Addr)
	return redisCache, func() { _ = redisCache.Close() }, nil
}

func closeDB(conn *gorm.DB) {
	sqlDB, err := conn.DB()
	if err != nil {
		return
	}
	if errClose := sqlDB.Close(); errClose != nil {
		log.WithError(errClose).Warn("close database failed")
	}
}
