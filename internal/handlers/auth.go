package handlers

import (
	"log/slog"
	"net/http"

	"trustify/internal/constants"
	"trustify/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	settingService *services.SettingService
}

func NewAuthHandler(settingService *services.SettingService) *AuthHandler {
	return &AuthHandler{settingService: settingService}
}

func (h *AuthHandler) ShowLoginPage(c *gin.Context) {
	render(c, http.StatusOK, "login.html", gin.H{})
}

func (h *AuthHandler) Login(c *gin.Context) {
	submittedPassword := c.PostForm(constants.SettingPassword)
	adminPassword := h.settingService.GetSetting(constants.SettingPassword)

	if adminPassword == "" || submittedPassword != adminPassword {
		render(c, http.StatusUnauthorized, "login.html", gin.H{
			"error": "Wrong password, please try again.",
		})
		return
	}

	session := sessions.Default(c)
	session.Set(constants.SessionKeyAuthenticated, true)
	session.Set(constants.SessionKeyRole, constants.RoleAdministrator)
	if err := session.Save(); err != nil {
		slog.Error("Failed to save session", "error", err)
		render(c, http.StatusInternalServerError, "error.html", gin.H{"error": "Could not start session"})
		return
	}
	c.Redirect(http.StatusFound, "/admin/plugins.php")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/login")
}
