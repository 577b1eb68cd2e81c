package services

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"regexp"
	"strings"

	"trustify/internal/models"

	"gopkg.in/yaml.v3"
)

var frontMatterRegex = regexp.MustCompile(`(?s)^---\r?\n(.*?)\r?\n---\r?\n?`)

// FrontMatter is the YAML header of an imported Markdown page.
type FrontMatter struct {
	Title string `yaml:"title"`
	Draft bool   `yaml:"draft"`
}

// ParseMarkdownPage splits a Markdown document into its front matter and
// body. A document without front matter is all body.
func ParseMarkdownPage(doc string) (FrontMatter, string, error) {
	var fm FrontMatter
	matches := frontMatterRegex.FindStringSubmatch(doc)
	if len(matches) < 2 {
		return fm, strings.TrimSpace(doc), nil
	}
	if err := yaml.Unmarshal([]byte(matches[1]), &fm); err != nil {
		return fm, "", fmt.Errorf("invalid front matter: %w", err)
	}
	return fm, strings.TrimSpace(doc[len(matches[0]):]), nil
}

// ImportMarkdown creates one page per .md file found in fsys. Drafts are
// stored unpublished. Files that cannot be parsed are skipped and logged.
func (s *PageService) ImportMarkdown(ctx context.Context, fsys fs.FS) ([]*models.Page, error) {
	var pages []*models.Page
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			slog.Warn("Failed to read page file", "path", p, "error", err)
			return nil
		}
		fm, body, err := ParseMarkdownPage(string(data))
		if err != nil {
			slog.Warn("Skipping page file", "path", p, "error", err)
			return nil
		}
		title := fm.Title
		if title == "" {
			title = strings.TrimSuffix(path.Base(p), ".md")
		}

		page, err := s.createPage(ctx, title, body, !fm.Draft)
		if err != nil {
			return err
		}
		slog.Info("Imported page", "path", p, "slug", page.Slug, "published", page.Published)
		pages = append(pages, page)
		return nil
	})
	if err != nil {
		return pages, fmt.Errorf("failed to import pages: %w", err)
	}
	return pages, nil
}
