package services

import (
	"context"
	"fmt"

	"trustify/internal/models"
	"trustify/internal/repository"
	"trustify/internal/utils"

	"github.com/gosimple/slug"
)

type PageService struct {
	repo *repository.PageRepository
}

func NewPageService(repo *repository.PageRepository) *PageService {
	return &PageService{repo: repo}
}

// CreatePage stores a published page under a slug derived from its title.
func (s *PageService) CreatePage(ctx context.Context, title, content string) (*models.Page, error) {
	return s.createPage(ctx, title, content, true)
}

func (s *PageService) createPage(ctx context.Context, title, content string, published bool) (*models.Page, error) {
	if title == "" {
		title = "Untitled"
	}
	slugStr, err := s.generateUniqueSlug(ctx, title)
	if err != nil {
		return nil, err
	}

	page := &models.Page{
		Title:     title,
		Slug:      slugStr,
		Content:   content,
		Published: published,
	}
	if err := s.repo.Create(ctx, page); err != nil {
		return nil, fmt.Errorf("failed to create page %q: %w", title, err)
	}
	return page, nil
}

func (s *PageService) GetPageBySlug(ctx context.Context, slug string) (*models.RenderedPage, error) {
	page, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.renderPage(page)
}

// ListPages returns the published pages without rendering their content.
func (s *PageService) ListPages(ctx context.Context) ([]models.RenderedPage, error) {
	pages, err := s.repo.FindPublished(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.RenderedPage, len(pages))
	for i, p := range pages {
		out[i] = models.RenderedPage{ID: p.ID, Title: p.Title, Slug: p.Slug}
	}
	return out, nil
}

func (s *PageService) renderPage(page *models.Page) (*models.RenderedPage, error) {
	html, err := utils.RenderMarkdown(page.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to render page %s: %w", page.Slug, err)
	}
	return &models.RenderedPage{
		ID:      page.ID,
		Title:   page.Title,
		Slug:    page.Slug,
		Content: html,
	}, nil
}

// generateUniqueSlug checks for slug uniqueness and appends a counter if needed.
func (s *PageService) generateUniqueSlug(ctx context.Context, title string) (string, error) {
	baseSlug := slug.Make(title)
	if baseSlug == "" {
		baseSlug = "untitled"
	}
	finalSlug := baseSlug
	for counter := 1; ; counter++ {
		exists, err := s.repo.CheckSlugExists(ctx, finalSlug)
		if err != nil {
			return "", err
		}
		if !exists {
			return finalSlug, nil
		}
		finalSlug = fmt.Sprintf("%s-%d", baseSlug, counter)
	}
}
