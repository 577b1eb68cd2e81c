package widget

import (
	"context"
	"errors"
	"strings"
	"testing"

	"trustify/internal/plugin"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	options map[string]map[string]string
	reads   int
	err     error
}

func newMemStore() *memStore {
	return &memStore{options: make(map[string]map[string]string)}
}

func (s *memStore) GetOption(_ context.Context, name string) (map[string]string, error) {
	s.reads++
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[string]string)
	for k, v := range s.options[name] {
		out[k] = v
	}
	return out, nil
}

func (s *memStore) UpdateOption(_ context.Context, name string, values map[string]string) error {
	if s.err != nil {
		return s.err
	}
	s.options[name] = values
	return nil
}

const wantBar = `<div class="trustify-bar" data-profile="my-profile"></div>`

func TestOptionsFromValues(t *testing.T) {
	assert.Equal(t, Options{}, OptionsFromValues(nil))
	assert.Equal(t, Options{ProfileSlug: "my-profile", BarEnabled: true},
		OptionsFromValues(map[string]string{KeySlug: "my-profile", KeyBarEnabled: "1"}))
	assert.Equal(t, Options{BarEnabled: true}, OptionsFromValues(map[string]string{KeyBarEnabled: ""}))
	assert.Equal(t, Options{}, OptionsFromValues(map[string]string{KeyBarEnabled: "0"}))
}

func TestOptionsValues(t *testing.T) {
	opts := Options{ProfileSlug: "shop", BarEnabled: true}
	assert.Equal(t, map[string]string{KeySlug: "shop", KeyBarEnabled: "1"}, opts.Values())
	assert.Equal(t, opts, OptionsFromValues(opts.Values()))
	assert.Equal(t, map[string]string{KeyBarEnabled: "0"}, Options{}.Values())
}

func TestDisabledBarEmitsNothing(t *testing.T) {
	opts := OptionsFromValues(map[string]string{KeySlug: "my-profile"})

	assert.Empty(t, Shim{}.Assets(opts))
	assert.Empty(t, Shim{}.Footer(opts))
}

func TestEnabledBarWithSlug(t *testing.T) {
	opts := OptionsFromValues(map[string]string{KeySlug: "my-profile", KeyBarEnabled: "1"})

	assert.Equal(t, wantBar, string(Shim{}.Footer(opts)))

	assets := Shim{}.Assets(opts)
	require.Len(t, assets, 2)
	assert.Equal(t, plugin.Asset{Kind: plugin.Script, Handle: AssetHandle, URL: "https://public.trustify.ch/widgets/js/bar.js"}, assets[0])
	assert.Equal(t, plugin.Asset{Kind: plugin.Style, Handle: AssetHandle, URL: "https://public.trustify.ch/widgets/css/bar.css"}, assets[1])
}

func TestEnabledBarWithoutSlug(t *testing.T) {
	for _, values := range []map[string]string{
		{KeyBarEnabled: "1"},
		{KeyBarEnabled: "1", KeySlug: ""},
		{KeyBarEnabled: "1", KeySlug: "   "},
	} {
		opts := OptionsFromValues(values)
		assert.Empty(t, Shim{}.Footer(opts))
		assert.Len(t, Shim{}.Assets(opts), 2)
	}
}

func TestFooterEscapesSlug(t *testing.T) {
	out := Shim{}.Footer(Options{ProfileSlug: `x"><script>`, BarEnabled: true})
	assert.Equal(t, `<div class="trustify-bar" data-profile="x&#34;&gt;&lt;script&gt;"></div>`, string(out))
}

func TestRenderPhases(t *testing.T) {
	opts := Options{ProfileSlug: "my-profile", BarEnabled: true}

	enqueue := Render(opts, PhaseEnqueueAssets)
	assert.Len(t, enqueue.Assets, 2)
	assert.Empty(t, enqueue.Fragment)

	footer := Render(opts, PhaseFooter)
	assert.Empty(t, footer.Assets)
	assert.Equal(t, wantBar, string(footer.Fragment))

	assert.Equal(t, Output{}, Render(opts, Phase(42)))
	assert.Equal(t, "footer", PhaseFooter.String())
}

func TestActionLinks(t *testing.T) {
	adminURL := func(path string) string { return "/admin/" + path }
	links := ActionLinks([]plugin.Link{{Label: "Deactivate", URL: "/admin/deactivate"}}, adminURL)

	require.Len(t, links, 3)
	assert.Equal(t, "Deactivate", links[0].Label)
	assert.Equal(t, plugin.Link{Label: "Settings", URL: "/admin/options-general.php?page=trustify-widgets"}, links[1])
	assert.Equal(t, plugin.Link{Label: "Trustify Dashboard", URL: "https://app.trustify.ch", NewTab: true}, links[2])
}

func TestActionLinksKeepsInput(t *testing.T) {
	in := []plugin.Link{{Label: "Deactivate"}}
	_ = ActionLinks(in, func(p string) string { return p })
	assert.Equal(t, []plugin.Link{{Label: "Deactivate"}}, in)
}

func TestProviderSanitizesOnSave(t *testing.T) {
	store := newMemStore()
	p := NewProvider(store)
	ctx := context.Background()

	opts, err := p.LoadOptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, Options{}, opts)

	opts, err = p.SaveOptions(ctx, map[string]string{
		KeySlug:       " <b>my-profile</b> ",
		KeyBarEnabled: "on",
		"unknown":     "dropped",
	})
	require.NoError(t, err)
	assert.Equal(t, Options{ProfileSlug: "my-profile", BarEnabled: true}, opts)
	assert.Equal(t, map[string]string{KeySlug: "my-profile", KeyBarEnabled: "1"}, store.options[OptionName])

	loaded, err := p.LoadOptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, opts, loaded)
}

func TestProviderWrapsStoreErrors(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("disk full")
	p := NewProvider(store)

	_, err := p.LoadOptions(context.Background())
	assert.ErrorIs(t, err, store.err)
	_, err = p.SaveOptions(context.Background(), map[string]string{KeySlug: "x"})
	assert.ErrorIs(t, err, store.err)
}

func installed(t *testing.T) (*plugin.Host, *memStore) {
	t.Helper()
	store := newMemStore()
	h := plugin.NewHost(store, "/admin/")
	h.Install(NewPlugin())
	return h, store
}

func TestPluginRegistersSettingsPage(t *testing.T) {
	h, _ := installed(t)

	page, err := h.OptionsPage(PageSlug)
	require.NoError(t, err)
	assert.Equal(t, "Trustify Settings", page.MenuTitle)
	assert.Equal(t, "manage_options", page.Capability)
	assert.Equal(t, OptionGroup, page.OptionGroup)

	setting, err := h.Setting(OptionGroup)
	require.NoError(t, err)
	assert.Equal(t, OptionName, setting.OptionName)

	sections := h.Sections(PageSlug)
	require.Len(t, sections, 2)
	assert.Equal(t, "General", sections[0].Title)
	require.Len(t, sections[0].Fields, 1)
	assert.Equal(t, KeySlug, sections[0].Fields[0].ID)
	assert.Equal(t, "Bar Widget", sections[1].Title)
	require.Len(t, sections[1].Fields, 1)
	assert.Equal(t, KeyBarEnabled, sections[1].Fields[0].ID)
}

func TestPluginFieldsRenderStoredValues(t *testing.T) {
	h, _ := installed(t)
	sections := h.Sections(PageSlug)

	slugInput := string(sections[0].Fields[0].Render(map[string]string{KeySlug: `a"b`}))
	assert.Contains(t, slugInput, `name="trustify_options[trustify_slug]"`)
	assert.Contains(t, slugInput, `value="a&#34;b"`)
	assert.Contains(t, slugInput, `placeholder="my-profile"`)

	checked := string(sections[1].Fields[0].Render(map[string]string{KeyBarEnabled: "1"}))
	assert.Contains(t, checked, `name="trustify_options[trustify_bar_enabled]"`)
	assert.Contains(t, checked, " checked")

	unchecked := string(sections[1].Fields[0].Render(map[string]string{}))
	assert.NotContains(t, unchecked, " checked")
}

func TestPluginActionLinks(t *testing.T) {
	h, _ := installed(t)

	links := h.ActionLinks(PluginID, []plugin.Link{{Label: "Deactivate"}})
	labels := make([]string, len(links))
	for i, l := range links {
		labels[i] = l.Label
	}
	assert.Equal(t, []string{"Deactivate", "Settings", "Trustify Dashboard"}, labels)
	assert.Equal(t, "/admin/options-general.php?page=trustify-widgets", links[1].URL)
}

func TestPluginPageRender(t *testing.T) {
	h, store := installed(t)
	ctx := context.Background()

	rc := h.RenderPage(ctx)
	assert.Empty(t, rc.Assets())
	assert.Empty(t, rc.FooterHTML())
	assert.Equal(t, 1, store.reads, "record is read once per page render")

	_, err := h.SaveSetting(ctx, OptionGroup, map[string]string{KeySlug: "my-profile", KeyBarEnabled: "on", "x": "y"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{KeySlug: "my-profile", KeyBarEnabled: "1"}, store.options[OptionName])

	rc = h.RenderPage(ctx)
	assert.Equal(t, wantBar, string(rc.FooterHTML()))
	head := string(rc.HeadHTML())
	assert.True(t, strings.Index(head, StyleURL) < strings.Index(head, ScriptURL))
	assert.Contains(t, head, `<script id="trustify-bar-js" src="https://public.trustify.ch/widgets/js/bar.js"></script>`)
}

func TestPluginDescriptor(t *testing.T) {
	d := NewPlugin().Descriptor()
	assert.Equal(t, PluginID, d.ID)
	assert.Equal(t, "Trustify Widgets", d.Name)
	assert.Equal(t, "1.0.0", d.Version)
}
