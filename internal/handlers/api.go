package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"trustify/internal/constants"
	"trustify/internal/plugin"
	"trustify/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
)

type APIHandler struct {
	host     *plugin.Host
	enforcer *rbac.Enforcer
}

func NewAPIHandler(host *plugin.Host, enforcer *rbac.Enforcer) *APIHandler {
	return &APIHandler{
		host:     host,
		enforcer: enforcer,
	}
}

// GetSetting returns the stored values of a registered setting group.
func (h *APIHandler) GetSetting(c *gin.Context) {
	if !h.authorize(c) {
		return
	}

	setting, err := h.host.Setting(c.Param("group"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": err.Error()})
		return
	}

	values, err := h.host.Option(c.Request.Context(), setting.OptionName)
	if err != nil {
		slog.Error("Failed to load option", "option", setting.OptionName, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "failed to load settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "option": setting.OptionName, "values": values})
}

// UpdateSetting replaces a setting group's values with the sanitized body.
func (h *APIHandler) UpdateSetting(c *gin.Context) {
	if !h.authorize(c) {
		return
	}

	body, err := c.GetRawData()
	if err != nil || !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "body must be a JSON object"})
		return
	}

	// Scalars of any JSON type are accepted and passed on as strings; null
	// leaves the key out, like an unchecked checkbox.
	raw := make(map[string]string)
	gjson.ParseBytes(body).ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.Null {
			raw[key.String()] = value.String()
		}
		return true
	})

	values, err := h.host.SaveSetting(c.Request.Context(), c.Param("group"), raw)
	if err != nil {
		if errors.Is(err, plugin.ErrUnknownSetting) {
			c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": err.Error()})
			return
		}
		slog.Error("Failed to save settings", "group", c.Param("group"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "failed to save settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "values": values})
}

func (h *APIHandler) authorize(c *gin.Context) bool {
	ok, err := h.enforcer.Can(c.GetString(constants.ContextKeyRole), constants.CapManageOptions)
	if err != nil {
		slog.Error("Capability check failed", "error", err)
	}
	if !ok {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"status": "error", "message": "forbidden"})
		return false
	}
	return true
}
