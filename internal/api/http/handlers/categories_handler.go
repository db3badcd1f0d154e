package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/servicedesk-io/servicedesk/internal/api/dto"
	"github.com/servicedesk-io/servicedesk/internal/repository"
	apperrors "github.com/servicedesk-io/servicedesk/pkg/util"
)

// CategoriesHandler serves the category lookup used by ticket forms.
type CategoriesHandler struct {
	categories repository.CategoryRepository
}

// NewCategoriesHandler constructs handler.
func NewCategoriesHandler(categories repository.CategoryRepository) *CategoriesHandler {
	return &CategoriesHandler{categories: categories}
}

// List GET /categories.
func (h *CategoriesHandler) List(c *fiber.Ctx) error {
	categories, err := h.categories.ListAll(c.UserContext())
	if err != nil {
		return apperrors.NewStoreUnavailable(err)
	}
	items := make([]dto.CategoryResponse, 0, len(categories))
	for _, category := range categories {
		items = append(items, dto.CategoryResponse{ID: category.ID, Name: category.Name})
	}
	return c.JSON(fiber.Map{"data": items})
}
