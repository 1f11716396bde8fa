package personal

import (
	"net/http"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/s/learnhub/internal/access"
	"github.com/s/learnhub/internal/handlers"
	"github.com/s/learnhub/internal/models"
	"github.com/s/learnhub/internal/progress"
)

const fanout = 4

type Service struct {
	handlers.Handler
}

// StudentCourseView is one owned course with the user's progress in it.
type StudentCourseView struct {
	Course              models.Subcategory `json:"course"`
	TotalVideos         int                `json:"total_videos"`
	DoneVideos          int                `json:"done_videos"`
	Percent             int                `json:"percent"`
	NextVideoID         models.ID          `json:"next_video_id,omitempty"`
	ProgressUnavailable bool               `json:"progress_unavailable,omitempty"`
}

// owned returns the items of type t whose latest payment is approved, in
// the order they were first seen.
func owned(payments []models.Payment, userID models.ID, t models.ItemType) []models.ID {
	seen := map[models.ID]bool{}
	var out []models.ID
	for _, p := range payments {
		if seen[p.ItemID] || (p.ItemType != "" && p.ItemType != t) {
			continue
		}
		seen[p.ItemID] = true
		if latest := access.Latest(payments, userID, p.ItemID, t); latest != nil && access.StateOf(latest.Status) == access.Approved {
			out = append(out, p.ItemID)
		}
	}
	return out
}

// HandleMyPayments lists the user's payments, newest first. ?status=
// narrows the list.
func (s *Service) HandleMyPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.Backend(r).MyPayments(r.Context())
	if err != nil {
		s.Fail(w, r, err)
		return
	}

	status := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status")))
	out := make([]models.Payment, 0, len(payments))
	for _, p := range payments {
		if status == "" || status == "all" || strings.EqualFold(string(p.Status), status) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	handlers.WriteJSON(w, http.StatusOK, out)
}

// HandleMyCourses lists the courses the user owns with their progress.
func (s *Service) HandleMyCourses(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.CurrentSession(r)
	client := s.Backend(r)

	payments, err := client.MyPayments(r.Context())
	if err != nil {
		s.Fail(w, r, err)
		return
	}
	ids := owned(payments, sess.UserID(), models.ItemCourse)

	views := make([]StudentCourseView, len(ids))
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(fanout)
	for i, id := range ids {
		g.Go(func() error {
			course, err := client.GetSubcategory(ctx, id)
			if err != nil {
				return err
			}
			videos, err := client.ListCourseVideos(ctx, id)
			if err != nil {
				return err
			}
			progress.SortBySequence(videos)

			view := StudentCourseView{Course: *course, TotalVideos: len(videos)}
			completed, err := s.Tracker.Completed(ctx, client, sess.UserID(), id)
			if err != nil {
				s.Log.Warn("load course progress", err, map[string]interface{}{"course_id": id})
				view.ProgressUnavailable = true
				completed = progress.NewCompletedSet()
			}
			for _, v := range videos {
				if completed.Has(v.ID) {
					view.DoneVideos++
				}
			}
			view.Percent = progress.Percent(videos, completed)
			if next := progress.NextPlayable(videos, completed); next >= 0 {
				view.NextVideoID = videos[next].ID
			}
			views[i] = view
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.Fail(w, r, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, views)
}

// HandleMyPDFs lists the PDFs the user owns, with their file links.
func (s *Service) HandleMyPDFs(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.CurrentSession(r)
	client := s.Backend(r)

	payments, err := client.MyPayments(r.Context())
	if err != nil {
		s.Fail(w, r, err)
		return
	}
	ids := owned(payments, sess.UserID(), models.ItemPDF)

	pdfs := make([]models.PDF, len(ids))
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(fanout)
	for i, id := range ids {
		g.Go(func() error {
			pdf, err := client.GetPDF(ctx, id)
			if err != nil {
				return err
			}
			pdfs[i] = *pdf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.Fail(w, r, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, pdfs)
}
