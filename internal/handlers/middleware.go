package handlers

import (
	"bytes"
	"html/template"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"trustify/internal/constants"
	"trustify/internal/plugin"
	"trustify/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/tdewolff/minify/v2"
)

// APIAuthMiddleware checks for a valid Bearer token.
func APIAuthMiddleware(settingService *services.SettingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminPassword := settingService.GetSetting(constants.SettingPassword)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Authorization header must be Bearer {token}"})
			return
		}

		if adminPassword == "" || parts[1] != adminPassword {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "invalid token"})
			return
		}

		c.Set(constants.ContextKeyRole, constants.RoleAdministrator)
		c.Next()
	}
}

// AuthMiddleware checks if a user is authenticated via session flag.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		authenticated, _ := session.Get(constants.SessionKeyAuthenticated).(bool)
		if !authenticated {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		role, _ := session.Get(constants.SessionKeyRole).(string)
		c.Set(constants.ContextKeyRole, role)
		c.Next()
	}
}

// SettingsMiddleware adds the public site settings and the login status to
// the context for the templates.
func SettingsMiddleware(settingService *services.SettingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(constants.ContextKeySettings, map[string]string{
			"SiteTitle":       settingService.GetSetting(constants.SettingSiteTitle),
			"SiteDescription": settingService.GetSetting(constants.SettingSiteDescription),
		})

		session := sessions.Default(c)
		isLoggedIn, _ := session.Get(constants.SessionKeyAuthenticated).(bool)
		c.Set(constants.ContextKeyIsLoggedIn, isLoggedIn)

		c.Next()
	}
}

// PageHooksMiddleware runs the plugins' public page callbacks once per
// request and stores the result for render.
func PageHooksMiddleware(host *plugin.Host) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(constants.ContextKeyRender, host.RenderPage(c.Request.Context()))
		c.Next()
	}
}

type bufferedWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	return w.buf.Write(b)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	return w.buf.WriteString(s)
}

// MinifyMiddleware minifies HTML responses.
func MinifyMiddleware(m *minify.M) gin.HandlerFunc {
	return func(c *gin.Context) {
		orig := c.Writer
		bw := &bufferedWriter{ResponseWriter: orig}
		c.Writer = bw
		c.Next()
		c.Writer = orig

		body := bw.buf.Bytes()
		if len(body) == 0 {
			orig.WriteHeaderNow()
			return
		}

		mediaType, _, _ := mime.ParseMediaType(orig.Header().Get("Content-Type"))
		if mediaType == "text/html" {
			out, err := m.Bytes(mediaType, body)
			if err != nil {
				slog.Warn("Failed to minify response", "path", c.Request.URL.Path, "error", err)
			} else {
				body = out
				orig.Header().Del("Content-Length")
			}
		}

		if _, err := orig.Write(body); err != nil {
			slog.Debug("Failed to write response", "path", c.Request.URL.Path, "error", err)
		}
	}
}

// render is a helper function to render templates with common data.
func render(c *gin.Context, status int, templateName string, data gin.H) {
	if settings, exists := c.Get(constants.ContextKeySettings); exists {
		for key, value := range settings.(map[string]string) {
			if _, ok := data[key]; !ok { // Don't overwrite existing data
				data[key] = value
			}
		}
	}

	data["IsLoggedIn"] = c.GetBool(constants.ContextKeyIsLoggedIn)
	data["HeadHTML"] = template.HTML("")
	data["FooterHTML"] = template.HTML("")

	if rc, exists := c.Get(constants.ContextKeyRender); exists {
		renderCtx := rc.(*plugin.RenderContext)
		data["HeadHTML"] = renderCtx.HeadHTML()
		data["FooterHTML"] = renderCtx.FooterHTML()
	}

	c.HTML(status, templateName, data)
}
