package admin

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/s/learnhub/internal/api"
	"github.com/s/learnhub/internal/handlers"
	"github.com/s/learnhub/internal/models"
	"github.com/s/learnhub/internal/progress"
)

const maxUploadMemory = 32 << 20

// ==========================================
// Categories
// ==========================================

func (s *Service) HandleCategoriesAPI(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list(s, w, r, func(ctx context.Context, c *api.Client) ([]models.Category, error) {
			return c.ListCategories(ctx)
		})
	case http.MethodPost:
		create(s, w, r, (*api.Client).CreateCategory)
	default:
		methodNotAllowed(w)
	}
}

func (s *Service) HandleCategoryByIDAPI(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		get(s, w, r, (*api.Client).GetCategory)
	case http.MethodPut:
		update(s, w, r, (*api.Client).UpdateCategory)
	case http.MethodDelete:
		remove(s, w, r, (*api.Client).DeleteCategory)
	default:
		methodNotAllowed(w)
	}
}

// ==========================================
// Subcategories (courses)
// ==========================================

func (s *Service) HandleSubcategoriesAPI(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		categoryID := models.ID(r.URL.Query().Get("category_id"))
		list(s, w, r, func(ctx context.Context, c *api.Client) ([]models.Subcategory, error) {
			return c.ListSubcategories(ctx, categoryID)
		})
	case http.MethodPost:
		create(s, w, r, (*api.Client).CreateSubcategory)
	default:
		methodNotAllowed(w)
	}
}

func (s *Service) HandleSubcategoryByIDAPI(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		get(s, w, r, (*api.Client).GetSubcategory)
	case http.MethodPut:
		update(s, w, r, (*api.Client).UpdateSubcategory)
	case http.MethodDelete:
		remove(s, w, r, (*api.Client).DeleteSubcategory)
	default:
		methodNotAllowed(w)
	}
}

// ==========================================
// Videos
// ==========================================

// HandleVideosAPI lists videos, in playback order when ?subcategory_id= is
// given, or creates one.
func (s *Service) HandleVideosAPI(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		courseID := models.ID(r.URL.Query().Get("subcategory_id"))
		list(s, w, r, func(ctx context.Context, c *api.Client) ([]models.Video, error) {
			if courseID.IsZero() {
				return c.ListVideos(ctx)
			}
			videos, err := c.ListCourseVideos(ctx, courseID)
			progress.SortBySequence(videos)
			return videos, err
		})
	case http.MethodPost:
		create(s, w, r, (*api.Client).CreateVideo)
	default:
		methodNotAllowed(w)
	}
}

func (s *Service) HandleVideoByIDAPI(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		get(s, w, r, (*api.Client).GetVideo)
	case http.MethodPut:
		update(s, w, r, (*api.Client).UpdateVideo)
	case http.MethodDelete:
		remove(s, w, r, (*api.Client).DeleteVideo)
	default:
		methodNotAllowed(w)
	}
}

// ==========================================
// PDFs
// ==========================================

func (s *Service) HandlePDFsAPI(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		courseID := models.ID(r.URL.Query().Get("subcategory_id"))
		list(s, w, r, func(ctx context.Context, c *api.Client) ([]models.PDF, error) {
			return c.ListPDFs(ctx, courseID)
		})
	case http.MethodPost:
		create(s, w, r, (*api.Client).CreatePDF)
	default:
		methodNotAllowed(w)
	}
}

func (s *Service) HandlePDFByIDAPI(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		get(s, w, r, (*api.Client).GetPDF)
	case http.MethodPut:
		update(s, w, r, (*api.Client).UpdatePDF)
	case http.MethodDelete:
		remove(s, w, r, (*api.Client).DeletePDF)
	default:
		methodNotAllowed(w)
	}
}

// ==========================================
// Uploads
// ==========================================

// readUpload takes the "file" part and the plain form fields of a
// multipart request. The caller closes the returned file.
func readUpload(r *http.Request) (api.Upload, func() error, error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return api.Upload{}, nil, err
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return api.Upload{}, nil, err
	}
	fields := map[string]string{}
	for k, v := range r.MultipartForm.Value {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}
	return api.Upload{Field: "file", FileName: header.Filename, File: file, Fields: fields}, file.Close, nil
}

func (s *Service) HandleUploadPDF(w http.ResponseWriter, r *http.Request) {
	up, closeFile, err := readUpload(r)
	if err != nil {
		handlers.JSONError(w, "a file is required", http.StatusBadRequest)
		return
	}
	defer closeFile()

	if !strings.EqualFold(filepath.Ext(up.FileName), ".pdf") {
		handlers.JSONError(w, "only .pdf files can be uploaded", http.StatusBadRequest)
		return
	}
	pdf, err := s.Backend(r).UploadPDF(r.Context(), up)
	if err != nil {
		s.Fail(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusCreated, pdf)
}

func (s *Service) HandleUploadVideo(w http.ResponseWriter, r *http.Request) {
	up, closeFile, err := readUpload(r)
	if err != nil {
		handlers.JSONError(w, "a file is required", http.StatusBadRequest)
		return
	}
	defer closeFile()

	video, err := s.Backend(r).UploadVideo(r.Context(), up)
	if err != nil {
		s.Fail(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusCreated, video)
}
