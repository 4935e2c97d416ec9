package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/albedo-support/api/internal/middleware"
	"github.com/albedo-support/api/internal/modules/auth/auth"
	"github.com/albedo-support/api/internal/modules/auth/user"
	"github.com/albedo-support/api/internal/modules/content/article"
	"github.com/albedo-support/api/internal/modules/content/category"
	"github.com/albedo-support/api/internal/modules/content/search"
	"github.com/albedo-support/api/internal/modules/gateway"
	"github.com/albedo-support/api/internal/modules/notification"
	"github.com/albedo-support/api/internal/modules/storage/upload"
	"github.com/albedo-support/api/internal/modules/support/feedback"
	"github.com/albedo-support/api/internal/modules/support/ticket"
	"github.com/albedo-support/api/internal/modules/system/health"
	"github.com/gin-gonic/gin"
)

const (
	serviceName    = "Albedo Support API"
	serviceVersion = "1.0.0"
)

func (a *App) registerRoutes() error {
	db, logger, runner := a.db, a.logger, a.runner
	authMW := middleware.Auth(db, a.tokens)

	a.router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":    serviceName,
			"version": serviceVersion,
			"docs":    nil,
			"health":  "/api/health",
		})
	})

	api := a.router.Group("/api")

	notifications := notification.NewService(db,
		notification.WithLogger(logger),
		notification.WithMailer(a.mailer),
		notification.WithPusher(a.hub),
	)

	searchOpts := []search.ServiceOption{search.WithLogger(logger)}
	if a.rc != nil {
		searchOpts = append(searchOpts, search.WithCache(a.rc, time.Duration(a.cfg.Redis.CacheTTLSeconds)*time.Second))
	}
	searchSvc := search.NewService(db, searchOpts...)
	articles := article.NewService(db,
		article.WithLogger(logger),
		article.OnChange(func() { searchSvc.Invalidate(context.Background()) }),
	)

	store, err := a.uploadStore()
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	uploads := upload.NewService(store, upload.WithLogger(logger), upload.WithMaxSize(a.cfg.Storage.MaxUploadMB))

	supportRequests := ticket.NewService(db, ticket.SupportRequest, runner,
		ticket.WithLogger(logger),
		ticket.WithMailer(a.mailer),
		ticket.WithNotifier(notifications),
	)
	legacyFeedback := ticket.NewService(db, ticket.LegacyFeedback, runner,
		ticket.WithLogger(logger),
		ticket.WithMailer(a.mailer),
	)

	health.NewHandler(db, a.redisPinger(), logger).RegisterRoutes(api)
	auth.NewHandler(auth.NewService(db, a.tokens, auth.WithLogger(logger))).RegisterRoutes(api, authMW)
	user.NewHandler(user.NewService(db, runner,
		user.WithLogger(logger),
		user.WithMailer(a.mailer),
		user.WithNotifier(notifications),
	)).RegisterRoutes(api, authMW)
	category.NewHandler(category.NewService(db, category.WithLogger(logger))).RegisterRoutes(api, authMW)
	article.NewHandler(articles).RegisterRoutes(api, authMW)
	search.NewHandler(searchSvc).RegisterRoutes(api)
	upload.NewHandler(uploads).RegisterRoutes(api, authMW)
	ticket.NewHandler(supportRequests).RegisterRoutes(api, "/support-request", "", authMW)
	ticket.NewHandler(legacyFeedback).RegisterRoutes(api, "/feedback", "/tickets", authMW)
	feedback.NewHandler(feedback.NewService(db, feedback.WithLogger(logger))).RegisterRoutes(api, authMW)
	notification.NewHandler(notifications).RegisterRoutes(api, authMW)
	gateway.RegisterRoutes(a.router, api, a.hub, authMW)

	if local, ok := store.(*upload.LocalStore); ok {
		a.router.Static("/uploads", local.Root())
	}
	return nil
}
