package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/s/learnhub/internal/models"
)

type PDFInput struct {
	Title         string    `json:"title" validate:"required,max=200"`
	Description   string    `json:"description" validate:"max=5000"`
	Price         float64   `json:"price" validate:"gte=0"`
	FileURL       string    `json:"file_url" validate:"required"`
	CategoryID    models.ID `json:"category_id" validate:"required"`
	SubcategoryID models.ID `json:"subcategory_id" validate:"required"`
}

func (c *Client) ListPDFs(ctx context.Context, subcategoryID models.ID) ([]models.PDF, error) {
	var query url.Values
	if !subcategoryID.IsZero() {
		query = url.Values{"subcategory_id": {subcategoryID.String()}}
	}
	return getList[models.PDF](ctx, c, "pdfs", query, "pdfs")
}

func (c *Client) GetPDF(ctx context.Context, id models.ID) (*models.PDF, error) {
	return getObject[models.PDF](ctx, c, idPath("pdfs", id), "pdf")
}

func (c *Client) CreatePDF(ctx context.Context, in PDFInput) (*models.PDF, error) {
	return sendObject[models.PDF](ctx, c, http.MethodPost, "pdfs", in, "pdf")
}

func (c *Client) UpdatePDF(ctx context.Context, id models.ID, in PDFInput) (*models.PDF, error) {
	return sendObject[models.PDF](ctx, c, http.MethodPut, idPath("pdfs", id), in, "pdf")
}

func (c *Client) DeletePDF(ctx context.Context, id models.ID) error {
	return c.remove(ctx, idPath("pdfs", id))
}
