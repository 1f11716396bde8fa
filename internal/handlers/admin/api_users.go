package admin

import (
	"context"
	"net/http"

	"github.com/s/learnhub/internal/api"
	"github.com/s/learnhub/internal/models"
)

func (s *Service) HandleUsersAPI(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list(s, w, r, func(ctx context.Context, c *api.Client) ([]models.User, error) {
			return c.ListUsers(ctx)
		})
	case http.MethodPost:
		create(s, w, r, (*api.Client).CreateUser)
	default:
		methodNotAllowed(w)
	}
}

func (s *Service) HandleUserByIDAPI(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		get(s, w, r, (*api.Client).GetUser)
	case http.MethodPut:
		update(s, w, r, (*api.Client).UpdateUser)
	case http.MethodDelete:
		remove(s, w, r, (*api.Client).DeleteUser)
	default:
		methodNotAllowed(w)
	}
}

func (s *Service) HandleUserCourses(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	list(s, w, r, func(ctx context.Context, c *api.Client) ([]models.Subcategory, error) {
		return c.UserCourses(ctx, id)
	})
}

func (s *Service) HandleUserPDFs(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	list(s, w, r, func(ctx context.Context, c *api.Client) ([]models.PDF, error) {
		return c.UserPDFs(ctx, id)
	})
}

func (s *Service) HandleUserPayments(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	list(s, w, r, func(ctx context.Context, c *api.Client) ([]models.Payment, error) {
		return c.UserPayments(ctx, id)
	})
}
