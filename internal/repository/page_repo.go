package repository

import (
	"context"

	"trustify/internal/models"

	"gorm.io/gorm"
)

type PageRepository struct {
	db *gorm.DB
}

func NewPageRepository(db *gorm.DB) *PageRepository {
	return &PageRepository{db: db}
}

func (r *PageRepository) Create(ctx context.Context, page *models.Page) error {
	return r.db.WithContext(ctx).Create(page).Error
}

func (r *PageRepository) FindBySlug(ctx context.Context, slug string) (*models.Page, error) {
	var page models.Page
	err := r.db.WithContext(ctx).
		Where("slug = ? AND published = ?", slug, true).
		First(&page).Error
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *PageRepository) FindPublished(ctx context.Context) ([]models.Page, error) {
	var pages []models.Page
	err := r.db.WithContext(ctx).
		Where("published = ?", true).
		Order("id asc").
		Find(&pages).Error
	return pages, err
}

func (r *PageRepository) CheckSlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Page{}).Where("slug = ?", slug).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
