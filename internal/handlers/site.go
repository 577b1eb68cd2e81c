package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"trustify/internal/constants"
	"trustify/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SiteHandler struct {
	pageService *services.PageService
}

func NewSiteHandler(pageService *services.PageService) *SiteHandler {
	return &SiteHandler{pageService: pageService}
}

func (h *SiteHandler) Index(c *gin.Context) {
	h.showPage(c, constants.HomePageSlug)
}

func (h *SiteHandler) ShowPage(c *gin.Context) {
	h.showPage(c, c.Param("slug"))
}

func (h *SiteHandler) showPage(c *gin.Context, slug string) {
	page, err := h.pageService.GetPageBySlug(c.Request.Context(), slug)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Error("Failed to load page", "slug", slug, "error", err)
		}
		h.NotFound(c)
		return
	}

	pages, err := h.pageService.ListPages(c.Request.Context())
	if err != nil {
		slog.Warn("Failed to list pages", "error", err)
	}

	render(c, http.StatusOK, "page.html", gin.H{
		"page":  page,
		"pages": pages,
	})
}

func (h *SiteHandler) NotFound(c *gin.Context) {
	render(c, http.StatusNotFound, "404.html", gin.H{})
}
