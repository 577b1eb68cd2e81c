package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"
)

// Host holds everything plugins registered. It is safe for concurrent use.
type Host struct {
	store     OptionStore
	adminBase string

	mu          sync.RWMutex
	plugins     []Descriptor
	linkFilters map[string][]LinkFilter
	adminMenu   []func()
	adminInit   []func()
	enqueue     []func(*RenderContext)
	footer      []func(*RenderContext)
	pages       []MenuPage
	settings    map[string]Setting
	sections    map[string][]Section

	adminOnce sync.Once
}

// NewHost creates a host backed by store. adminBase is the URL prefix of the
// admin area, e.g. "/admin/".
func NewHost(store OptionStore, adminBase string) *Host {
	if !strings.HasSuffix(adminBase, "/") {
		adminBase += "/"
	}
	return &Host{
		store:       store,
		adminBase:   adminBase,
		linkFilters: make(map[string][]LinkFilter),
		settings:    make(map[string]Setting),
		sections:    make(map[string][]Section),
	}
}

// Install records the plugin and lets it register its callbacks.
func (h *Host) Install(p Plugin) {
	d := p.Descriptor()
	h.mu.Lock()
	h.plugins = append(h.plugins, d)
	h.mu.Unlock()

	p.Register(h)
	slog.Info("Plugin installed", "plugin", d.ID, "version", d.Version)
}

// AdminURL returns the absolute admin URL for path, e.g.
// "options-general.php?page=x".
func (h *Host) AdminURL(path string) string {
	return h.adminBase + strings.TrimPrefix(path, "/")
}

func (h *Host) AddActionLinksFilter(pluginID string, fn LinkFilter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.linkFilters[pluginID] = append(h.linkFilters[pluginID], fn)
}

// OnAdminMenu registers fn to run once before the admin menu is first built.
func (h *Host) OnAdminMenu(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.adminMenu = append(h.adminMenu, fn)
}

// OnAdminInit registers fn to run once, after the admin menu callbacks.
func (h *Host) OnAdminInit(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.adminInit = append(h.adminInit, fn)
}

// OnEnqueueAssets registers fn to run for each public page before it renders.
func (h *Host) OnEnqueueAssets(fn func(*RenderContext)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.enqueue = append(h.enqueue, fn)
}

// OnFooter registers fn to run for each public page at the footer.
func (h *Host) OnFooter(fn func(*RenderContext)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.footer = append(h.footer, fn)
}

func (h *Host) AddOptionsPage(p MenuPage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, existing := range h.pages {
		if existing.Slug == p.Slug {
			h.pages[i] = p
			return
		}
	}
	h.pages = append(h.pages, p)
}

func (h *Host) RegisterSetting(group, optionName string, sanitize SanitizeFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.settings[group] = Setting{Group: group, OptionName: optionName, Sanitize: sanitize}
}

func (h *Host) AddSection(page, id, title, description string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sections[page] = append(h.sections[page], Section{ID: id, Title: title, Description: description})
}

// AddField appends a field to a section previously added with AddSection.
func (h *Host) AddField(page, section string, f Field) {
	h.mu.Lock()
	defer h.mu.Unlock()
	secs := h.sections[page]
	for i := range secs {
		if secs[i].ID == section {
			secs[i].Fields = append(secs[i].Fields, f)
			return
		}
	}
	slog.Warn("Settings field added to unknown section", "page", page, "section", section, "field", f.ID)
}

func (h *Host) Plugins() []Descriptor {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Descriptor(nil), h.plugins...)
}

// ActionLinks passes links through every filter registered for pluginID.
func (h *Host) ActionLinks(pluginID string, links []Link) []Link {
	h.mu.RLock()
	filters := append([]LinkFilter(nil), h.linkFilters[pluginID]...)
	h.mu.RUnlock()

	out := append([]Link(nil), links...)
	for _, fn := range filters {
		out = fn(out)
	}
	return out
}

func (h *Host) initAdmin() {
	h.adminOnce.Do(func() {
		h.mu.RLock()
		menu := append([]func(){}, h.adminMenu...)
		inits := append([]func(){}, h.adminInit...)
		h.mu.RUnlock()

		for _, fn := range menu {
			fn()
		}
		for _, fn := range inits {
			fn()
		}
	})
}

func (h *Host) OptionsPages() []MenuPage {
	h.initAdmin()
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]MenuPage(nil), h.pages...)
}

func (h *Host) OptionsPage(slug string) (MenuPage, error) {
	for _, p := range h.OptionsPages() {
		if p.Slug == slug {
			return p, nil
		}
	}
	return MenuPage{}, fmt.Errorf("%w: %s", ErrUnknownPage, slug)
}

// Sections returns the sections and fields registered for an options page.
func (h *Host) Sections(page string) []Section {
	h.initAdmin()
	h.mu.RLock()
	defer h.mu.RUnlock()
	secs := make([]Section, len(h.sections[page]))
	for i, s := range h.sections[page] {
		s.Fields = append([]Field(nil), s.Fields...)
		secs[i] = s
	}
	return secs
}

func (h *Host) Setting(group string) (Setting, error) {
	h.initAdmin()
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.settings[group]
	if !ok {
		return Setting{}, fmt.Errorf("%w: %s", ErrUnknownSetting, group)
	}
	return s, nil
}

// Option reads an option straight from the store.
func (h *Host) Option(ctx context.Context, name string) (map[string]string, error) {
	return h.store.GetOption(ctx, name)
}

// SaveSetting runs raw through the group's sanitize callback and persists
// the result. It returns the values that were stored.
func (h *Host) SaveSetting(ctx context.Context, group string, raw map[string]string) (map[string]string, error) {
	s, err := h.Setting(group)
	if err != nil {
		return nil, err
	}

	values := maps.Clone(raw)
	if s.Sanitize != nil {
		values = s.Sanitize(raw)
	}
	if values == nil {
		values = map[string]string{}
	}

	if err := h.store.UpdateOption(ctx, s.OptionName, values); err != nil {
		return nil, fmt.Errorf("failed to save option %s: %w", s.OptionName, err)
	}
	return values, nil
}

// RenderPage runs the enqueue and footer callbacks for one public page.
func (h *Host) RenderPage(ctx context.Context) *RenderContext {
	h.mu.RLock()
	enqueue := append([]func(*RenderContext){}, h.enqueue...)
	footer := append([]func(*RenderContext){}, h.footer...)
	h.mu.RUnlock()

	rc := newRenderContext(ctx, h.store)
	for _, fn := range enqueue {
		fn(rc)
	}
	for _, fn := range footer {
		fn(rc)
	}
	return rc
}
