package plugin

import (
	"context"
	"html/template"
	"log/slog"
	"maps"
	"strings"
)

// RenderContext carries the state of one public page render. Options are
// read from the store at most once per render.
type RenderContext struct {
	ctx     context.Context
	store   OptionStore
	options map[string]map[string]string
	assets  []Asset
	seen    map[string]bool
	footer  strings.Builder
}

func newRenderContext(ctx context.Context, store OptionStore) *RenderContext {
	return &RenderContext{
		ctx:     ctx,
		store:   store,
		options: make(map[string]map[string]string),
		seen:    make(map[string]bool),
	}
}

func (rc *RenderContext) Context() context.Context {
	return rc.ctx
}

// Option returns the stored values of the named option. A missing or
// unreadable option yields an empty map.
func (rc *RenderContext) Option(name string) map[string]string {
	if values, ok := rc.options[name]; ok {
		return maps.Clone(values)
	}

	values, err := rc.store.GetOption(rc.ctx, name)
	if err != nil {
		slog.Warn("Failed to load option, treating as unset", "option", name, "error", err)
		values = nil
	}
	if values == nil {
		values = map[string]string{}
	}
	rc.options[name] = values
	return maps.Clone(values)
}

// Enqueue requests an asset for the page. Assets are unique per kind and handle.
func (rc *RenderContext) Enqueue(a Asset) {
	key := a.Kind.String() + ":" + a.Handle
	if rc.seen[key] {
		return
	}
	rc.seen[key] = true
	rc.assets = append(rc.assets, a)
}

func (rc *RenderContext) Assets() []Asset {
	return append([]Asset(nil), rc.assets...)
}

// AddFooter appends markup emitted at the page footer.
func (rc *RenderContext) AddFooter(html template.HTML) {
	rc.footer.WriteString(string(html))
}

// HeadHTML renders the enqueued stylesheets followed by the scripts.
func (rc *RenderContext) HeadHTML() template.HTML {
	var b strings.Builder
	for _, kind := range []AssetKind{Style, Script} {
		for _, a := range rc.assets {
			if a.Kind != kind {
				continue
			}
			b.WriteString(string(a.Tag()))
			b.WriteByte('\n')
		}
	}
	return template.HTML(b.String())
}

func (rc *RenderContext) FooterHTML() template.HTML {
	return template.HTML(rc.footer.String())
}
