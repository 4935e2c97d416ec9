package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/albedo-support/api/internal/config"
	"github.com/albedo-support/api/internal/middleware"
	"github.com/albedo-support/api/internal/models"
	"github.com/albedo-support/api/internal/modules/gateway"
	"github.com/albedo-support/api/internal/pkg/background"
	"github.com/albedo-support/api/internal/pkg/jwt"
	"github.com/albedo-support/api/internal/pkg/mail"
	pkgredis "github.com/albedo-support/api/internal/pkg/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds all application dependencies. The database pool is owned by the
// caller.
type App struct {
	cfg     *config.AppConfig
	router  *gin.Engine
	db      *gorm.DB
	rc      *pkgredis.Client
	tokens  *jwt.Manager
	mailer  *mail.Sender
	hub     *gateway.Hub
	runner  *background.Runner
	logger  *zap.Logger
	cancel  context.CancelFunc
	hubDone chan struct{}
}

type options struct {
	rc        *pkgredis.Client
	transport mail.Transport
}

type Option func(*options)

// WithRedis uses an existing client instead of dialing redis.url.
func WithRedis(rc *pkgredis.Client) Option {
	return func(o *options) { o.rc = rc }
}

// WithMailTransport replaces SMTP delivery.
func WithMailTransport(t mail.Transport) Option {
	return func(o *options) { o.transport = t }
}

// New builds services, the router and background workers on top of db.
func New(cfg *config.AppConfig, db *gorm.DB, logger *zap.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if db == nil {
		return nil, errors.New("database is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	tokens, err := jwt.NewManager(cfg.Auth.SecretKey, cfg.Auth.Algorithm,
		time.Duration(cfg.Auth.AccessTokenExpireMinutes)*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}

	rc := o.rc
	if rc == nil && cfg.Redis.URL != "" {
		if rc, err = pkgredis.Connect(cfg.Redis.URL); err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
	}

	mailOpts := []mail.Option{mail.WithLogger(logger)}
	if o.transport != nil {
		mailOpts = append(mailOpts, mail.WithTransport(o.transport))
	}
	mailer := mail.New(mail.Config{
		Enable:         cfg.Mail.Enable,
		Host:           cfg.Mail.Host,
		Port:           cfg.Mail.Port,
		User:           cfg.Mail.Username,
		Pass:           cfg.Mail.Password,
		FromEmail:      cfg.Mail.FromEmail,
		FromName:       cfg.Mail.FromName,
		SupportContact: cfg.Mail.SupportTo,
		FrontendURL:    cfg.FrontendURL,
	}, mailOpts...)

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(newCORS(cfg))

	hubOpts := []gateway.Option{gateway.WithLogger(logger)}
	if rc != nil {
		hubOpts = append(hubOpts, gateway.WithRedis(rc))
	}
	hub := gateway.NewHub(func(token string) (*models.UserModel, error) {
		return middleware.ResolveUser(db, tokens, token)
	}, hubOpts...)

	ctx, cancel := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		hub.Run(ctx)
	}()

	a := &App{
		cfg:     cfg,
		router:  router,
		db:      db,
		rc:      rc,
		tokens:  tokens,
		mailer:  mailer,
		hub:     hub,
		runner:  background.New(background.WithLogger(logger)),
		logger:  logger,
		cancel:  cancel,
		hubDone: hubDone,
	}
	if err := a.registerRoutes(); err != nil {
		cancel()
		if rc != nil {
			_ = rc.Close()
		}
		return nil, err
	}
	return a, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown waits for pending emails and notifications, then stops the
// gateway and closes redis.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.runner.Wait(ctx)
	if err != nil {
		a.logger.Warn("background work did not finish", zap.Error(err))
	}

	a.cancel()
	select {
	case <-a.hubDone:
	case <-ctx.Done():
	}

	if a.rc != nil {
		if cerr := a.rc.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
