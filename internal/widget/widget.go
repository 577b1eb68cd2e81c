// Package widget embeds the Trustify trust bar on public pages. The core is
// pure: given the stored Options and a render phase it decides which remote
// assets to request and which markup to emit.
package widget

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"trustify/internal/plugin"
)

const (
	PluginID    = "trustify-widgets"
	OptionName  = "trustify_options"
	OptionGroup = "trustify_option_group"
	PageSlug    = "trustify-widgets"

	KeySlug       = "trustify_slug"
	KeyBarEnabled = "trustify_bar_enabled"

	AssetHandle  = "trustify-bar"
	ScriptURL    = "https://public.trustify.ch/widgets/js/bar.js"
	StyleURL     = "https://public.trustify.ch/widgets/css/bar.css"
	DashboardURL = "https://app.trustify.ch"
	BarClass     = "trustify-bar"
)

// Options is the stored configuration record.
type Options struct {
	ProfileSlug string
	BarEnabled  bool
}

// OptionsFromValues reads the persisted mapping. The flag is on when the key
// is present with any value other than "0", which also accepts records whose
// checkbox value was stripped to "" by older versions.
func OptionsFromValues(values map[string]string) Options {
	var o Options
	o.ProfileSlug = strings.TrimSpace(values[KeySlug])
	if v, ok := values[KeyBarEnabled]; ok && v != "0" {
		o.BarEnabled = true
	}
	return o
}

// Values returns the persisted mapping for o.
func (o Options) Values() map[string]string {
	values := map[string]string{KeyBarEnabled: "0"}
	if o.ProfileSlug != "" {
		values[KeySlug] = o.ProfileSlug
	}
	if o.BarEnabled {
		values[KeyBarEnabled] = "1"
	}
	return values
}

// ConfigurationProvider loads and saves the record.
type ConfigurationProvider interface {
	LoadOptions(ctx context.Context) (Options, error)
	SaveOptions(ctx context.Context, raw map[string]string) (Options, error)
}

// PageRenderHooks produces what a public page needs for a given record.
type PageRenderHooks interface {
	Assets(opts Options) []plugin.Asset
	Footer(opts Options) template.HTML
}

type Phase int

const (
	PhaseEnqueueAssets Phase = iota
	PhaseFooter
)

func (p Phase) String() string {
	switch p {
	case PhaseEnqueueAssets:
		return "enqueue_assets"
	case PhaseFooter:
		return "footer"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Output is what one render phase emits.
type Output struct {
	Assets   []plugin.Asset
	Fragment template.HTML
}

// Shim implements PageRenderHooks.
type Shim struct{}

var _ PageRenderHooks = Shim{}

// Assets returns the bar script and stylesheet when the bar is enabled.
func (Shim) Assets(opts Options) []plugin.Asset {
	if !opts.BarEnabled {
		return nil
	}
	return []plugin.Asset{
		{Kind: plugin.Script, Handle: AssetHandle, URL: ScriptURL},
		{Kind: plugin.Style, Handle: AssetHandle, URL: StyleURL},
	}
}

// Footer returns the bar container when the bar is enabled and a profile
// slug is configured.
func (Shim) Footer(opts Options) template.HTML {
	if !opts.BarEnabled || opts.ProfileSlug == "" {
		return ""
	}
	return template.HTML(fmt.Sprintf(`<div class="%s" data-profile="%s"></div>`,
		BarClass, template.HTMLEscapeString(opts.ProfileSlug)))
}

// Render returns the output of phase for opts.
func Render(opts Options, phase Phase) Output {
	var s Shim
	switch phase {
	case PhaseEnqueueAssets:
		return Output{Assets: s.Assets(opts)}
	case PhaseFooter:
		return Output{Fragment: s.Footer(opts)}
	default:
		return Output{}
	}
}
