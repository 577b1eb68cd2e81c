package services

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestParseMarkdownPage(t *testing.T) {
	fm, body, err := ParseMarkdownPage("---\ntitle: Imprint\ndraft: true\n---\n\n# Imprint\n")
	require.NoError(t, err)
	assert.Equal(t, FrontMatter{Title: "Imprint", Draft: true}, fm)
	assert.Equal(t, "# Imprint", body)

	fm, body, err = ParseMarkdownPage("just text\n")
	require.NoError(t, err)
	assert.Empty(t, fm.Title)
	assert.Equal(t, "just text", body)

	_, _, err = ParseMarkdownPage("---\ntitle: [unclosed\n---\nbody")
	assert.Error(t, err)
}

func TestImportMarkdown(t *testing.T) {
	s := newTestPageService(t)
	ctx := context.Background()

	fsys := fstest.MapFS{
		"about.md":         {Data: []byte("---\ntitle: About Us\n---\nWe review things.")},
		"legal/privacy.md": {Data: []byte("No front matter here.")},
		"drafts/secret.md": {Data: []byte("---\ntitle: Secret\ndraft: true\n---\nhidden")},
		"broken.md":        {Data: []byte("---\ntitle: [x\n---\n")},
		"notes.txt":        {Data: []byte("ignored")},
	}

	pages, err := s.ImportMarkdown(ctx, fsys)
	require.NoError(t, err)
	require.Len(t, pages, 3)

	about, err := s.GetPageBySlug(ctx, "about-us")
	require.NoError(t, err)
	assert.Contains(t, string(about.Content), "We review things.")

	_, err = s.GetPageBySlug(ctx, "privacy")
	assert.NoError(t, err)

	_, err = s.GetPageBySlug(ctx, "secret")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
