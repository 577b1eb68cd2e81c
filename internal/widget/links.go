package widget

import "trustify/internal/plugin"

// ActionLinks appends the settings and dashboard links to a plugin's action
// links. adminURL resolves a path inside the admin area.
func ActionLinks(links []plugin.Link, adminURL func(path string) string) []plugin.Link {
	out := make([]plugin.Link, 0, len(links)+2)
	out = append(out, links...)
	out = append(out,
		plugin.Link{Label: "Settings", URL: adminURL("options-general.php?page=" + PageSlug)},
		plugin.Link{Label: "Trustify Dashboard", URL: DashboardURL, NewTab: true},
	)
	return out
}
