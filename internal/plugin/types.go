// Package plugin is the host's extension system. Plugins register typed
// callbacks on a Host and the web layer invokes them at fixed points of the
// admin and public page lifecycles.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"html/template"
)

var (
	ErrUnknownSetting = errors.New("unknown setting group")
	ErrUnknownPage    = errors.New("unknown options page")
)

// Descriptor describes an installed plugin on the plugin listing.
type Descriptor struct {
	ID          string
	Name        string
	Description string
	Version     string
	Author      string
	AuthorURI   string
}

// Plugin is implemented by every extension the host can install.
type Plugin interface {
	Descriptor() Descriptor
	Register(h *Host)
}

// OptionStore is the host's generic key-value options store. A missing
// option is returned as an empty map, not an error.
type OptionStore interface {
	GetOption(ctx context.Context, name string) (map[string]string, error)
	UpdateOption(ctx context.Context, name string, values map[string]string) error
}

// LinkFilter receives the current action links of a plugin and returns the
// links to show.
type LinkFilter func(links []Link) []Link

// Link is an action link on the plugin listing.
type Link struct {
	Label  string
	URL    string
	NewTab bool
}

func (l Link) HTML() template.HTML {
	target := ""
	if l.NewTab {
		target = ` target="_blank" rel="noopener"`
	}
	return template.HTML(fmt.Sprintf(`<a href="%s"%s>%s</a>`,
		template.HTMLEscapeString(l.URL), target, template.HTMLEscapeString(l.Label)))
}

type AssetKind int

const (
	Script AssetKind = iota
	Style
)

func (k AssetKind) String() string {
	switch k {
	case Script:
		return "script"
	case Style:
		return "style"
	default:
		return fmt.Sprintf("AssetKind(%d)", int(k))
	}
}

// Asset is an external script or stylesheet requested for a page.
type Asset struct {
	Kind   AssetKind
	Handle string
	URL    string
}

// Tag renders the element that loads the asset.
func (a Asset) Tag() template.HTML {
	handle := template.HTMLEscapeString(a.Handle)
	url := template.HTMLEscapeString(a.URL)
	if a.Kind == Style {
		return template.HTML(fmt.Sprintf(`<link rel="stylesheet" id="%s-css" href="%s" media="all">`, handle, url))
	}
	return template.HTML(fmt.Sprintf(`<script id="%s-js" src="%s"></script>`, handle, url))
}

// MenuPage is an options page listed under the admin "Settings" menu.
type MenuPage struct {
	PageTitle  string
	MenuTitle  string
	Capability string
	Slug       string
	// OptionGroup is the setting group the page's form submits.
	OptionGroup string
}

// SanitizeFunc turns a raw form submission into the values to persist.
type SanitizeFunc func(input map[string]string) map[string]string

// Setting binds an option to a group and its sanitize callback.
type Setting struct {
	Group      string
	OptionName string
	Sanitize   SanitizeFunc
}

// FieldRenderer renders the input of a field given the stored option values.
type FieldRenderer func(values map[string]string) template.HTML

type Field struct {
	ID     string
	Title  string
	Render FieldRenderer
}

type Section struct {
	ID          string
	Title       string
	Description string
	Fields      []Field
}
