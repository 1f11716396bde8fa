package api

import (
	"context"
	"net/http"

	"github.com/s/learnhub/internal/models"
)

type UserInput struct {
	Name     string            `json:"name" validate:"required,max=120"`
	Email    string            `json:"email" validate:"required,email"`
	Role     models.Role       `json:"role" validate:"required,oneof=user admin"`
	Status   models.UserStatus `json:"status" validate:"required,oneof=active inactive"`
	Password string            `json:"password,omitempty" validate:"omitempty,min=8"`
}

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	return getList[models.User](ctx, c, "users", nil, "users")
}

func (c *Client) GetUser(ctx context.Context, id models.ID) (*models.User, error) {
	return getObject[models.User](ctx, c, idPath("users", id), "user")
}

func (c *Client) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	return sendObject[models.User](ctx, c, http.MethodPost, "users", in, "user")
}

func (c *Client) UpdateUser(ctx context.Context, id models.ID, in UserInput) (*models.User, error) {
	return sendObject[models.User](ctx, c, http.MethodPut, idPath("users", id), in, "user")
}

func (c *Client) DeleteUser(ctx context.Context, id models.ID) error {
	return c.remove(ctx, idPath("users", id))
}

func (c *Client) UserCourses(ctx context.Context, id models.ID) ([]models.Subcategory, error) {
	return getList[models.Subcategory](ctx, c, idPath("users", id, "courses"), nil, "courses", "subcategories")
}

func (c *Client) UserPDFs(ctx context.Context, id models.ID) ([]models.PDF, error) {
	return getList[models.PDF](ctx, c, idPath("users", id, "pdfs"), nil, "pdfs")
}

func (c *Client) UserPayments(ctx context.Context, id models.ID) ([]models.Payment, error) {
	return getList[models.Payment](ctx, c, idPath("users", id, "payments"), nil, "payments")
}
