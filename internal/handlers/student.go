package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/s/learnhub/internal/access"
	"github.com/s/learnhub/internal/api"
	"github.com/s/learnhub/internal/models"
	"github.com/s/learnhub/internal/progress"
)

// CourseView is everything the course page shows. Videos stay empty until
// the user has access. AccessError is set when access could not be checked,
// in which case Access is a closed default and not an answer.
type CourseView struct {
	Course      *models.Subcategory `json:"course"`
	Access      access.Result       `json:"access"`
	AccessError *AccessError        `json:"access_error,omitempty"`
	Videos      []progress.Entry    `json:"videos"`
	PDFs        []models.PDF        `json:"pdfs"`
	Next        *progress.Entry     `json:"next,omitempty"`
	Percent     int                 `json:"percent"`
}

// ProgressView is returned after a completion.
type ProgressView struct {
	VideoID   models.ID        `json:"video_id"`
	Completed bool             `json:"completed"`
	Percent   int              `json:"percent"`
	Next      *progress.Entry  `json:"next,omitempty"`
	Videos    []progress.Entry `json:"videos,omitempty"`
}

// AccessError reports a failed access check to the client.
type AccessError struct {
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

const accessCheckFailed = "we could not check your access to this item, please try again"

func newAccessError(err error) *AccessError {
	return &AccessError{
		Message:   accessCheckFailed,
		Retryable: api.StatusCode(err) >= http.StatusInternalServerError,
	}
}

// resolve asks the resolver and logs a failure. On failure the result is
// "no access" and the error is returned with it.
func (h *Handler) resolve(ctx context.Context, r *http.Request, client *api.Client, itemID models.ID, itemType models.ItemType) (access.Result, error) {
	sess, _ := h.CurrentSession(r)
	res, err := h.Resolver(client).Resolve(ctx, sess.UserID(), itemID, itemType)
	if err != nil {
		h.Log.Warn("access check failed", err, map[string]interface{}{"item_id": itemID, "item_type": itemType})
	}
	return res, err
}

// resolveForView is resolve for pages that still render on failure. A
// rejected token is returned as an error so the session ends.
func (h *Handler) resolveForView(ctx context.Context, r *http.Request, client *api.Client, itemID models.ID, itemType models.ItemType) (access.Result, *AccessError, error) {
	res, err := h.resolve(ctx, r, client, itemID, itemType)
	switch {
	case err == nil:
		return res, nil, nil
	case errors.Is(err, api.ErrUnauthorized):
		return res, nil, err
	}
	return res, newAccessError(err), nil
}

// AccessUnavailable answers 503 for an action that needs a known access state.
func AccessUnavailable(w http.ResponseWriter, res access.Result, aerr *AccessError) {
	WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
		"error":        aerr.Message,
		"code":         http.StatusServiceUnavailable,
		"access":       res,
		"access_error": aerr,
	})
}

// courseState loads the ordered videos of a course and the user's effective
// completed set. A progress failure leaves the set empty, which only ever
// locks more.
func (h *Handler) courseState(ctx context.Context, client *api.Client, userID, courseID models.ID) ([]models.Video, progress.CompletedSet, error) {
	var videos []models.Video
	completed := progress.NewCompletedSet()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		videos, err = client.ListCourseVideos(gctx, courseID)
		return err
	})
	g.Go(func() error {
		set, err := h.Tracker.Completed(gctx, client, userID, courseID)
		if err != nil {
			h.Log.Warn("load course progress", err, map[string]interface{}{"course_id": courseID})
		}
		if set != nil {
			completed = set
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	progress.SortBySequence(videos)
	return videos, completed, nil
}

func nextEntry(list []progress.Entry, videos []models.Video, completed progress.CompletedSet) *progress.Entry {
	if i := progress.NextPlayable(videos, completed); i >= 0 {
		return &list[i]
	}
	return nil
}

// HandleCourse serves the course page: details, access, and when access is
// granted the playlist with lock state.
func (h *Handler) HandleCourse(w http.ResponseWriter, r *http.Request) {
	courseID := models.ID(mux.Vars(r)["id"])
	client := h.Backend(r)
	view := CourseView{Videos: []progress.Entry{}, PDFs: []models.PDF{}}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		view.Course, err = client.GetSubcategory(ctx, courseID)
		return err
	})
	g.Go(func() error {
		var err error
		view.Access, view.AccessError, err = h.resolveForView(ctx, r, client, courseID, models.ItemCourse)
		return err
	})
	g.Go(func() error {
		pdfs, err := client.ListPDFs(ctx, courseID)
		if err != nil {
			h.Log.Warn("list course pdfs", err, map[string]interface{}{"course_id": courseID})
			return nil
		}
		if pdfs != nil {
			view.PDFs = pdfs
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		h.Fail(w, r, err)
		return
	}

	if view.Access.Access {
		sess, _ := h.CurrentSession(r)
		videos, completed, err := h.courseState(r.Context(), client, sess.UserID(), courseID)
		if err != nil {
			h.Fail(w, r, err)
			return
		}
		view.Videos = progress.Playlist(videos, completed)
		view.Next = nextEntry(view.Videos, videos, completed)
		view.Percent = progress.Percent(videos, completed)
	}

	for i := range view.PDFs {
		view.PDFs[i].FileURL = ""
	}
	WriteJSON(w, http.StatusOK, view)
}

// HandleCompleteVideo is the manual "mark complete" action.
func (h *Handler) HandleCompleteVideo(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	h.completeVideo(w, r, models.ID(vars["id"]), models.ID(vars["videoID"]))
}

// HandlePlayback takes a player position report and completes the video
// once enough of it has been watched.
func (h *Handler) HandlePlayback(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var p progress.Playback
	if err := DecodeJSON(r, &p); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !progress.ShouldComplete(p, h.Config.CompletionThreshold) {
		WriteJSON(w, http.StatusOK, ProgressView{VideoID: models.ID(vars["videoID"]), Completed: false})
		return
	}
	h.completeVideo(w, r, models.ID(vars["id"]), models.ID(vars["videoID"]))
}

func (h *Handler) completeVideo(w http.ResponseWriter, r *http.Request, courseID, videoID models.ID) {
	sess, _ := h.CurrentSession(r)
	client := h.Backend(r)
	ctx := r.Context()

	res, aerr, err := h.resolveForView(ctx, r, client, courseID, models.ItemCourse)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	if aerr != nil {
		AccessUnavailable(w, res, aerr)
		return
	}
	if !res.Access {
		Forbidden(w, "purchase this course to watch its videos", res)
		return
	}

	videos, completed, err := h.courseState(ctx, client, sess.UserID(), courseID)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	index := -1
	for i, v := range videos {
		if v.ID == videoID {
			index = i
			break
		}
	}
	if index < 0 {
		JSONError(w, "video not found in this course", http.StatusNotFound)
		return
	}
	if !progress.IsUnlocked(videos, completed, index) {
		Forbidden(w, "finish the previous video first", res)
		return
	}

	if err := h.Tracker.MarkCompleted(ctx, client, sess.UserID(), courseID, videoID); err != nil {
		h.Fail(w, r, err)
		return
	}
	if !completed.Has(videoID) {
		h.Record(ctx, sess.UserID(), models.ActionVideoCompleted, map[string]models.ID{"course_id": courseID, "video_id": videoID})
	}
	completed.Add(videoID)

	list := progress.Playlist(videos, completed)
	WriteJSON(w, http.StatusOK, ProgressView{
		VideoID:   videoID,
		Completed: true,
		Percent:   progress.Percent(videos, completed),
		Next:      nextEntry(list, videos, completed),
		Videos:    list,
	})
}

type PDFView struct {
	PDF         *models.PDF   `json:"pdf"`
	Access      access.Result `json:"access"`
	AccessError *AccessError  `json:"access_error,omitempty"`
}

// HandlePDF shows a PDF. The file link is only included with access.
func (h *Handler) HandlePDF(w http.ResponseWriter, r *http.Request) {
	id := models.ID(mux.Vars(r)["id"])
	client := h.Backend(r)
	var view PDFView

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		view.PDF, err = client.GetPDF(ctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		view.Access, view.AccessError, err = h.resolveForView(ctx, r, client, id, models.ItemPDF)
		return err
	})
	if err := g.Wait(); err != nil {
		h.Fail(w, r, err)
		return
	}

	if !view.Access.Access {
		view.PDF.FileURL = ""
	}
	WriteJSON(w, http.StatusOK, view)
}

// HandlePDFDownload redirects to the file for owners only.
func (h *Handler) HandlePDFDownload(w http.ResponseWriter, r *http.Request) {
	id := models.ID(mux.Vars(r)["id"])
	client := h.Backend(r)

	res, aerr, err := h.resolveForView(r.Context(), r, client, id, models.ItemPDF)
	switch {
	case err != nil:
		h.Fail(w, r, err)
		return
	case aerr != nil:
		AccessUnavailable(w, res, aerr)
		return
	case res.Pending:
		Forbidden(w, "your payment for this PDF is awaiting review", res)
		return
	case !res.Access:
		WriteJSON(w, http.StatusPaymentRequired, map[string]interface{}{
			"error":  "purchase this PDF to download it",
			"code":   http.StatusPaymentRequired,
			"access": res,
		})
		return
	}

	pdf, err := client.GetPDF(r.Context(), id)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	if pdf.FileURL == "" {
		JSONError(w, "this PDF has no file yet", http.StatusNotFound)
		return
	}
	http.Redirect(w, r, pdf.FileURL, http.StatusFound)
}
