package widget

import (
	"bytes"
	"html/template"
	"log/slog"

	"trustify/internal/plugin"
)

var (
	slugFieldTpl = template.Must(template.New("slug").Parse(
		`<input type="text" id="{{.Key}}" name="{{.Option}}[{{.Key}}]" value="{{.Value}}" placeholder="my-profile"/>
<p class="description">The slug is provided during the profile creation. If the url to your profile is something like
<code>in.trustify.ch/my-profile</code> the slug is <code>my-profile</code></p>`))

	barFieldTpl = template.Must(template.New("bar").Parse(
		`<fieldset>
<label for="{{.Key}}"><input type="checkbox" id="{{.Key}}" name="{{.Option}}[{{.Key}}]" value="1"{{if .Checked}} checked{{end}}/>
Enable Trustify Bar</label>
</fieldset>
<p class="description">If this option is enabled the trustify bar widget will be displayed on each page.</p>`))
)

type fieldData struct {
	Option  string
	Key     string
	Value   string
	Checked bool
}

// Plugin binds the widget to a host.
type Plugin struct {
	hooks PageRenderHooks
	host  *plugin.Host
}

func NewPlugin() *Plugin {
	return &Plugin{hooks: Shim{}}
}

func (p *Plugin) Descriptor() plugin.Descriptor {
	return plugin.Descriptor{
		ID:          PluginID,
		Name:        "Trustify Widgets",
		Description: "Embed widgets for your Trustify review profile",
		Version:     "1.0.0",
		Author:      "Navest GmbH",
		AuthorURI:   "https://trustify.ch",
	}
}

// Register hooks the plugin into the host lifecycle.
func (p *Plugin) Register(h *plugin.Host) {
	p.host = h
	h.AddActionLinksFilter(PluginID, func(links []plugin.Link) []plugin.Link {
		return ActionLinks(links, h.AdminURL)
	})
	h.OnAdminMenu(p.addOptionsPage)
	h.OnAdminInit(p.initSettings)
	h.OnEnqueueAssets(p.enqueueAssets)
	h.OnFooter(p.footer)
}

func (p *Plugin) addOptionsPage() {
	p.host.AddOptionsPage(plugin.MenuPage{
		PageTitle:   "Settings Admin",
		MenuTitle:   "Trustify Settings",
		Capability:  "manage_options",
		Slug:        PageSlug,
		OptionGroup: OptionGroup,
	})
}

func (p *Plugin) initSettings() {
	h := p.host
	h.RegisterSetting(OptionGroup, OptionName, Sanitize)

	h.AddSection(PageSlug, "trustify_option_general", "General", "")
	h.AddField(PageSlug, "trustify_option_general", plugin.Field{
		ID:     KeySlug,
		Title:  "Profile Slug",
		Render: renderSlugField,
	})

	h.AddSection(PageSlug, "trustify_option_bar", "Bar Widget", "")
	h.AddField(PageSlug, "trustify_option_bar", plugin.Field{
		ID:     KeyBarEnabled,
		Title:  "Bar Enabled",
		Render: renderBarField,
	})
}

func (p *Plugin) enqueueAssets(rc *plugin.RenderContext) {
	opts := OptionsFromValues(rc.Option(OptionName))
	for _, a := range p.hooks.Assets(opts) {
		rc.Enqueue(a)
	}
}

func (p *Plugin) footer(rc *plugin.RenderContext) {
	opts := OptionsFromValues(rc.Option(OptionName))
	rc.AddFooter(p.hooks.Footer(opts))
}

func renderSlugField(values map[string]string) template.HTML {
	return execField(slugFieldTpl, fieldData{
		Option: OptionName,
		Key:    KeySlug,
		Value:  values[KeySlug],
	})
}

func renderBarField(values map[string]string) template.HTML {
	return execField(barFieldTpl, fieldData{
		Option:  OptionName,
		Key:     KeyBarEnabled,
		Checked: OptionsFromValues(values).BarEnabled,
	})
}

func execField(tpl *template.Template, data fieldData) template.HTML {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		slog.Error("Failed to render settings field", "field", data.Key, "error", err)
		return ""
	}
	return template.HTML(buf.String())
}
