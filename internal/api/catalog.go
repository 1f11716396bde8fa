package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/s/learnhub/internal/models"
)

type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=2000"`
	ImageURL    string `json:"image_url,omitempty" validate:"omitempty,url"`
}

type SubcategoryInput struct {
	Name        string    `json:"name" validate:"required,max=120"`
	Description string    `json:"description" validate:"max=5000"`
	Price       float64   `json:"price" validate:"gte=0"`
	CategoryID  models.ID `json:"category_id" validate:"required"`
	ImageURL    string    `json:"image_url,omitempty" validate:"omitempty,url"`
}

func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	return getList[models.Category](ctx, c, "categories", nil, "categories")
}

func (c *Client) GetCategory(ctx context.Context, id models.ID) (*models.Category, error) {
	return getObject[models.Category](ctx, c, idPath("categories", id), "category")
}

func (c *Client) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	return sendObject[models.Category](ctx, c, http.MethodPost, "categories", in, "category")
}

func (c *Client) UpdateCategory(ctx context.Context, id models.ID, in CategoryInput) (*models.Category, error) {
	return sendObject[models.Category](ctx, c, http.MethodPut, idPath("categories", id), in, "category")
}

func (c *Client) DeleteCategory(ctx context.Context, id models.ID) error {
	return c.remove(ctx, idPath("categories", id))
}

// ListSubcategories lists courses, optionally restricted to one category.
func (c *Client) ListSubcategories(ctx context.Context, categoryID models.ID) ([]models.Subcategory, error) {
	var query url.Values
	if !categoryID.IsZero() {
		query = url.Values{"category_id": {categoryID.String()}}
	}
	return getList[models.Subcategory](ctx, c, "subcategories", query, "subcategories")
}

func (c *Client) GetSubcategory(ctx context.Context, id models.ID) (*models.Subcategory, error) {
	return getObject[models.Subcategory](ctx, c, idPath("subcategories", id), "subcategory")
}

func (c *Client) CreateSubcategory(ctx context.Context, in SubcategoryInput) (*models.Subcategory, error) {
	return sendObject[models.Subcategory](ctx, c, http.MethodPost, "subcategories", in, "subcategory")
}

func (c *Client) UpdateSubcategory(ctx context.Context, id models.ID, in SubcategoryInput) (*models.Subcategory, error) {
	return sendObject[models.Subcategory](ctx, c, http.MethodPut, idPath("subcategories", id), in, "subcategory")
}

func (c *Client) DeleteSubcategory(ctx context.Context, id models.ID) error {
	return c.remove(ctx, idPath("subcategories", id))
}
