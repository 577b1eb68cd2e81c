// Package server wires the database, services, plugin host and HTTP routes.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"trustify/internal/config"
	"trustify/internal/handlers"
	"trustify/internal/plugin"
	"trustify/internal/rbac"
	"trustify/internal/repository"
	"trustify/internal/services"
	"trustify/internal/utils"
	"trustify/internal/widget"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// App holds the long-lived dependencies shared by the server and the CLI.
type App struct {
	DB       *gorm.DB
	Settings *services.SettingService
	Pages    *services.PageService
	Host     *plugin.Host
	Enforcer *rbac.Enforcer
}

// NewApp opens the database and installs the plugins.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	// 初始化数据库
	db, err := utils.InitDatabase(cfg.Database, cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	enforcer, err := rbac.NewEnforcer(db)
	if err != nil {
		return nil, err
	}

	// 初始化依赖
	settingService := services.NewSettingService(ctx, repository.NewSettingRepository(db))
	pageService := services.NewPageService(repository.NewPageRepository(db))

	host := plugin.NewHost(settingService, "/admin/")
	host.Install(widget.NewPlugin())

	return &App{
		DB:       db,
		Settings: settingService,
		Pages:    pageService,
		Host:     host,
		Enforcer: enforcer,
	}, nil
}

// Close releases the database connection.
func (a *App) Close() error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NewRenderer parses every page template together with the base layout.
func NewRenderer(templatesFS fs.FS) (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()

	pages := []string{"page.html", "login.html", "plugins.html", "options.html", "404.html", "error.html"}
	for _, name := range pages {
		tpl, err := template.ParseFS(templatesFS, "base.html", name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.Add(name, tpl)
	}
	return r, nil
}

// Router builds the gin engine.
func (a *App) Router(cfg config.ServerConfig, templatesFS, staticFS fs.FS) (*gin.Engine, error) {
	renderer, err := NewRenderer(templatesFS)
	if err != nil {
		return nil, err
	}

	siteHandler := handlers.NewSiteHandler(a.Pages)
	adminHandler := handlers.NewAdminHandler(a.Host, a.Enforcer)
	authHandler := handlers.NewAuthHandler(a.Settings)
	apiHandler := handlers.NewAPIHandler(a.Host, a.Enforcer)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.HTMLRender = renderer

	// 设置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("trustify_session", store))
	r.Use(handlers.SettingsMiddleware(a.Settings))

	r.StaticFS("/static", http.FS(staticFS))

	// Public pages go through the plugins' enqueue and footer callbacks.
	public := []gin.HandlerFunc{handlers.PageHooksMiddleware(a.Host)}
	if cfg.MinifyHTML {
		public = append([]gin.HandlerFunc{handlers.MinifyMiddleware(utils.NewMinifier())}, public...)
	}
	site := r.Group("/", public...)
	{
		site.GET("/", siteHandler.Index)
		site.GET("/page/:slug", siteHandler.ShowPage)
	}

	r.GET("/login", authHandler.ShowLoginPage)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	admin := r.Group("/admin")
	admin.Use(handlers.AuthMiddleware())
	{
		admin.GET("/", adminHandler.Dashboard)
		admin.GET("/plugins.php", adminHandler.ListPlugins)
		admin.GET("/options-general.php", adminHandler.ShowOptionsPage)
		admin.POST("/options.php", adminHandler.SaveOptions)
	}

	api := r.Group("/api/v1")
	api.Use(handlers.APIAuthMiddleware(a.Settings))
	{
		api.GET("/settings/:group", apiHandler.GetSetting)
		api.PUT("/settings/:group", apiHandler.UpdateSetting)
	}

	r.NoRoute(append(public, siteHandler.NotFound)...)

	return r, nil
}

// Run serves HTTP until ctx is canceled.
func Run(ctx context.Context, cfg *config.Config, templatesFS, staticFS fs.FS) error {
	gin.SetMode(cfg.Server.Mode)

	app, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	router, err := app.Router(cfg.Server, templatesFS, staticFS)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
