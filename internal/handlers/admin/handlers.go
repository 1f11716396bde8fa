package admin

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/s/learnhub/internal/api"
	"github.com/s/learnhub/internal/handlers"
	"github.com/s/learnhub/internal/models"
	"github.com/s/learnhub/internal/storage"
)

type Service struct {
	handlers.Handler
}

func pathID(r *http.Request) models.ID {
	return models.ID(mux.Vars(r)["id"])
}

func list[Out any](s *Service, w http.ResponseWriter, r *http.Request, fn func(context.Context, *api.Client) ([]Out, error)) {
	items, err := fn(r.Context(), s.Backend(r))
	if err != nil {
		s.Fail(w, r, err)
		return
	}
	if items == nil {
		items = []Out{}
	}
	handlers.WriteJSON(w, http.StatusOK, items)
}

func get[Out any](s *Service, w http.ResponseWriter, r *http.Request, fn func(*api.Client, context.Context, models.ID) (*Out, error)) {
	item, err := fn(s.Backend(r), r.Context(), pathID(r))
	if err != nil {
		s.Fail(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, item)
}

func create[In, Out any](s *Service, w http.ResponseWriter, r *http.Request, fn func(*api.Client, context.Context, In) (*Out, error)) {
	var in In
	if err := handlers.DecodeJSON(r, &in); err != nil {
		handlers.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.Validate.Struct(in); err != nil {
		s.Fail(w, r, err)
		return
	}
	item, err := fn(s.Backend(r), r.Context(), in)
	if err != nil {
		s.Fail(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusCreated, item)
}

func update[In, Out any](s *Service, w http.ResponseWriter, r *http.Request, fn func(*api.Client, context.Context, models.ID, In) (*Out, error)) {
	var in In
	if err := handlers.DecodeJSON(r, &in); err != nil {
		handlers.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.Validate.Struct(in); err != nil {
		s.Fail(w, r, err)
		return
	}
	item, err := fn(s.Backend(r), r.Context(), pathID(r), in)
	if err != nil {
		s.Fail(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, item)
}

func remove(s *Service, w http.ResponseWriter, r *http.Request, fn func(*api.Client, context.Context, models.ID) error) {
	if err := fn(s.Backend(r), r.Context(), pathID(r)); err != nil {
		s.Fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func methodNotAllowed(w http.ResponseWriter) {
	handlers.JSONError(w, "method not allowed", http.StatusMethodNotAllowed)
}

type Dashboard struct {
	Users           int `json:"users"`
	Categories      int `json:"categories"`
	Courses         int `json:"courses"`
	PDFs            int `json:"pdfs"`
	Videos          int `json:"videos"`
	PendingPayments int `json:"pending_payments"`
}

// HandleDashboard collects the admin overview counts concurrently.
func (s *Service) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	client := s.Backend(r)
	var d Dashboard

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		users, err := client.ListUsers(ctx)
		d.Users = len(users)
		return err
	})
	g.Go(func() error {
		cats, err := client.ListCategories(ctx)
		d.Categories = len(cats)
		return err
	})
	g.Go(func() error {
		subs, err := client.ListSubcategories(ctx, "")
		d.Courses = len(subs)
		return err
	})
	g.Go(func() error {
		pdfs, err := client.ListPDFs(ctx, "")
		d.PDFs = len(pdfs)
		return err
	})
	g.Go(func() error {
		videos, err := client.ListVideos(ctx)
		d.Videos = len(videos)
		return err
	})
	g.Go(func() error {
		pending, err := client.ListPayments(ctx, models.PaymentPending)
		d.PendingPayments = len(pending)
		return err
	})
	if err := g.Wait(); err != nil {
		s.Fail(w, r, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, d)
}

// HandleActivity pages through the local activity log.
func (s *Service) HandleActivity(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	entries, total, err := s.Activity.List(r.Context(), storage.ActivityQuery{
		UserID: query.Get("user_id"),
		Action: query.Get("action"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		s.Log.Error("list activity", err)
		handlers.JSONError(w, "could not load the activity log", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.UserLog{}
	}

	handlers.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"data":  entries,
		"total": total,
		"page":  page,
		"pages": int(math.Ceil(float64(total) / float64(limit))),
	})
}
