package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/s/learnhub/internal/models"
)

const catalogFanout = 4

type CategoryView struct {
	models.Category
	Courses []models.Subcategory `json:"courses"`
}

// HandleCatalog lists every category with its courses.
func (h *Handler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	client := h.Backend(r)

	cats, err := client.ListCategories(r.Context())
	if err != nil {
		h.Fail(w, r, err)
		return
	}

	views := make([]CategoryView, len(cats))
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(catalogFanout)
	for i := range cats {
		g.Go(func() error {
			subs, err := client.ListSubcategories(ctx, cats[i].ID)
			if err != nil {
				return err
			}
			if subs == nil {
				subs = []models.Subcategory{}
			}
			views[i] = CategoryView{Category: cats[i], Courses: subs}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		h.Fail(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) HandleSubcategories(w http.ResponseWriter, r *http.Request) {
	id := models.ID(mux.Vars(r)["id"])
	subs, err := h.Backend(r).ListSubcategories(r.Context(), id)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	if subs == nil {
		subs = []models.Subcategory{}
	}
	WriteJSON(w, http.StatusOK, subs)
}
