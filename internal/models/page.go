package models

import (
	"html/template"

	"gorm.io/gorm"
)

// Page is a public page of the host site, written in markdown.
type Page struct {
	gorm.Model
	Title     string `gorm:"not null" json:"title" form:"title"`
	Slug      string `gorm:"uniqueIndex;not null" json:"slug"`
	Content   string `gorm:"type:text;not null" json:"content" form:"content"`
	Published bool   `gorm:"not null" json:"published" form:"published"`
}

// RenderedPage is a view model for displaying a page with rendered HTML content.
type RenderedPage struct {
	ID      uint
	Title   string
	Slug    string
	Content template.HTML // Use template.HTML to prevent escaping
}
