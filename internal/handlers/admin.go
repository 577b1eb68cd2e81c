package handlers

import (
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"trustify/internal/constants"
	"trustify/internal/plugin"
	"trustify/internal/rbac"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const adminBase = "/admin/"

type AdminHandler struct {
	host     *plugin.Host
	enforcer *rbac.Enforcer
}

func NewAdminHandler(host *plugin.Host, enforcer *rbac.Enforcer) *AdminHandler {
	return &AdminHandler{
		host:     host,
		enforcer: enforcer,
	}
}

type pluginRow struct {
	plugin.Descriptor
	Links []template.HTML
}

type fieldView struct {
	ID    string
	Title string
	Input template.HTML
}

type sectionView struct {
	ID          string
	Title       string
	Description string
	Fields      []fieldView
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	c.Redirect(http.StatusFound, adminBase+"plugins.php")
}

// ListPlugins renders the installed plugins with their action links.
func (h *AdminHandler) ListPlugins(c *gin.Context) {
	if !h.authorize(c, constants.CapActivatePlugins) {
		return
	}

	var rows []pluginRow
	for _, d := range h.host.Plugins() {
		row := pluginRow{Descriptor: d}
		for _, link := range h.host.ActionLinks(d.ID, nil) {
			row.Links = append(row.Links, link.HTML())
		}
		rows = append(rows, row)
	}

	h.renderAdmin(c, http.StatusOK, "plugins.html", gin.H{
		"plugins": rows,
	})
}

// ShowOptionsPage renders a registered options page and its settings form.
func (h *AdminHandler) ShowOptionsPage(c *gin.Context) {
	page, err := h.host.OptionsPage(c.Query("page"))
	if err != nil {
		render(c, http.StatusNotFound, "404.html", gin.H{})
		return
	}
	if !h.authorize(c, page.Capability) {
		return
	}

	setting, err := h.host.Setting(page.OptionGroup)
	if err != nil {
		slog.Error("Options page has no registered setting", "page", page.Slug, "group", page.OptionGroup)
		render(c, http.StatusInternalServerError, "error.html", gin.H{"error": "Settings are not registered"})
		return
	}

	values, err := h.host.Option(c.Request.Context(), setting.OptionName)
	if err != nil {
		slog.Warn("Failed to load option, showing empty form", "option", setting.OptionName, "error", err)
		values = map[string]string{}
	}

	var sections []sectionView
	for _, s := range h.host.Sections(page.Slug) {
		view := sectionView{ID: s.ID, Title: s.Title, Description: s.Description}
		for _, f := range s.Fields {
			var input template.HTML
			if f.Render != nil {
				input = f.Render(values)
			}
			view.Fields = append(view.Fields, fieldView{ID: f.ID, Title: f.Title, Input: input})
		}
		sections = append(sections, view)
	}

	nonce, err := sessionNonce(c)
	if err != nil {
		slog.Error("Failed to save session nonce", "error", err)
		render(c, http.StatusInternalServerError, "error.html", gin.H{"error": "Could not start session"})
		return
	}

	h.renderAdmin(c, http.StatusOK, "options.html", gin.H{
		"page":     page,
		"sections": sections,
		"group":    page.OptionGroup,
		"nonce":    nonce,
		"referer":  c.Request.URL.RequestURI(),
	})
}

// SaveOptions is the generic options-save endpoint every settings form posts to.
func (h *AdminHandler) SaveOptions(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		render(c, http.StatusBadRequest, "error.html", gin.H{"error": "Invalid form data"})
		return
	}

	session := sessions.Default(c)
	expected, _ := session.Get(constants.SessionKeyNonce).(string)
	if expected == "" || c.PostForm(constants.FormNonce) != expected {
		render(c, http.StatusForbidden, "error.html", gin.H{"error": "The link you followed has expired."})
		return
	}

	if !h.authorize(c, constants.CapManageOptions) {
		return
	}

	group := c.PostForm(constants.FormOptionPage)
	setting, err := h.host.Setting(group)
	if err != nil {
		render(c, http.StatusBadRequest, "error.html", gin.H{"error": "Unknown settings group"})
		return
	}

	raw := optionFields(c.Request.PostForm, setting.OptionName)
	if _, err := h.host.SaveSetting(c.Request.Context(), group, raw); err != nil {
		slog.Error("Failed to save settings", "group", group, "error", err)
		render(c, http.StatusInternalServerError, "error.html", gin.H{"error": "Failed to save settings"})
		return
	}

	session.AddFlash("Settings saved.", constants.SessionKeySuccessFlash)
	if err := session.Save(); err != nil {
		slog.Warn("Failed to save flash", "error", err)
	}

	c.Redirect(http.StatusSeeOther, safeReferer(c.PostForm(constants.FormReferer)))
}

func (h *AdminHandler) authorize(c *gin.Context, capability string) bool {
	role := c.GetString(constants.ContextKeyRole)
	ok, err := h.enforcer.Can(role, capability)
	if err != nil {
		slog.Error("Capability check failed", "role", role, "capability", capability, "error", err)
	}
	if !ok {
		render(c, http.StatusForbidden, "error.html", gin.H{
			"error": "Sorry, you are not allowed to access this page.",
		})
		c.Abort()
		return false
	}
	return true
}

// renderAdmin adds the settings menu and pending flashes to data.
func (h *AdminHandler) renderAdmin(c *gin.Context, status int, templateName string, data gin.H) {
	session := sessions.Default(c)
	flashes := session.Flashes(constants.SessionKeySuccessFlash)
	session.Save() // Clear flashes after reading

	data["menu"] = h.host.OptionsPages()
	data["Flashes"] = flashes
	render(c, status, templateName, data)
}

func sessionNonce(c *gin.Context) (string, error) {
	session := sessions.Default(c)
	if nonce, ok := session.Get(constants.SessionKeyNonce).(string); ok && nonce != "" {
		return nonce, nil
	}
	nonce := uuid.NewString()
	session.Set(constants.SessionKeyNonce, nonce)
	return nonce, session.Save()
}

// optionFields collects the fields posted as name[key].
func optionFields(form map[string][]string, name string) map[string]string {
	prefix := name + "["
	raw := make(map[string]string)
	for field, values := range form {
		if len(values) == 0 || !strings.HasPrefix(field, prefix) || !strings.HasSuffix(field, "]") {
			continue
		}
		key := strings.TrimSuffix(strings.TrimPrefix(field, prefix), "]")
		if key == "" {
			continue
		}
		raw[key] = values[0]
	}
	return raw
}

func safeReferer(ref string) string {
	if strings.HasPrefix(ref, adminBase) && !strings.HasPrefix(ref, "//") {
		return ref
	}
	return adminBase + "plugins.php"
}
