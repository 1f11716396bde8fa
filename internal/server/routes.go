package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/s/learnhub/internal/handlers"
	"github.com/s/learnhub/internal/handlers/admin"
	"github.com/s/learnhub/internal/handlers/personal"
	"github.com/s/learnhub/internal/middleware"
	"github.com/s/learnhub/internal/models"
)

// NewRouter wires every route of the service.
func NewRouter(h *handlers.Handler) http.Handler {
	adminService := admin.Service{Handler: *h}
	personalService := personal.Service{Handler: *h}

	adminOnly := middleware.RequiredRole(h, models.RoleAdmin)
	userOnly := middleware.Authenticated(h)

	r := mux.NewRouter()
	r.Use(middleware.Timeout(h.Config.RequestTimeout))
	r.Use(middleware.LoadSession(h))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	// --- Session ---
	r.HandleFunc("/auth/callback", h.HandleAuthCallback).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/logout", h.HandleLogout).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/api/me", userOnly(h.HandleMe)).Methods(http.MethodGet)

	// --- Catalog (public) ---
	r.HandleFunc("/api/catalog", h.HandleCatalog).Methods(http.MethodGet)
	r.HandleFunc("/api/categories/{id}/subcategories", h.HandleSubcategories).Methods(http.MethodGet)
	r.HandleFunc("/api/courses/{id}", h.HandleCourse).Methods(http.MethodGet)
	r.HandleFunc("/api/pdfs/{id}", h.HandlePDF).Methods(http.MethodGet)

	// --- Learning ---
	r.HandleFunc("/api/courses/{id}/videos/{videoID}/complete", userOnly(h.HandleCompleteVideo)).Methods(http.MethodPost)
	r.HandleFunc("/api/courses/{id}/videos/{videoID}/playback", userOnly(h.HandlePlayback)).Methods(http.MethodPost)
	r.HandleFunc("/api/pdfs/{id}/download", userOnly(h.HandlePDFDownload)).Methods(http.MethodGet)

	// --- Payments ---
	r.HandleFunc("/api/payments", userOnly(h.HandleSubmitPayment)).Methods(http.MethodPost)
	r.HandleFunc("/api/payments/mine", userOnly(personalService.HandleMyPayments)).Methods(http.MethodGet)
	r.HandleFunc("/api/me/courses", userOnly(personalService.HandleMyCourses)).Methods(http.MethodGet)
	r.HandleFunc("/api/me/pdfs", userOnly(personalService.HandleMyPDFs)).Methods(http.MethodGet)

	// --- Admin API ---
	r.HandleFunc("/api/admin/dashboard", adminOnly(adminService.HandleDashboard)).Methods(http.MethodGet)
	r.HandleFunc("/api/admin/activity", adminOnly(adminService.HandleActivity)).Methods(http.MethodGet)

	r.HandleFunc("/api/admin/categories", adminOnly(adminService.HandleCategoriesAPI)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/api/admin/categories/{id}", adminOnly(adminService.HandleCategoryByIDAPI)).Methods(http.MethodGet, http.MethodPut, http.MethodDelete)
	r.HandleFunc("/api/admin/subcategories", adminOnly(adminService.HandleSubcategoriesAPI)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/api/admin/subcategories/{id}", adminOnly(adminService.HandleSubcategoryByIDAPI)).Methods(http.MethodGet, http.MethodPut, http.MethodDelete)
	r.HandleFunc("/api/admin/videos/upload", adminOnly(adminService.HandleUploadVideo)).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/videos", adminOnly(adminService.HandleVideosAPI)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/api/admin/videos/{id}", adminOnly(adminService.HandleVideoByIDAPI)).Methods(http.MethodGet, http.MethodPut, http.MethodDelete)
	r.HandleFunc("/api/admin/pdfs/upload", adminOnly(adminService.HandleUploadPDF)).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/pdfs", adminOnly(adminService.HandlePDFsAPI)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/api/admin/pdfs/{id}", adminOnly(adminService.HandlePDFByIDAPI)).Methods(http.MethodGet, http.MethodPut, http.MethodDelete)

	r.HandleFunc("/api/admin/users", adminOnly(adminService.HandleUsersAPI)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/api/admin/users/{id}", adminOnly(adminService.HandleUserByIDAPI)).Methods(http.MethodGet, http.MethodPut, http.MethodDelete)
	r.HandleFunc("/api/admin/users/{id}/courses", adminOnly(adminService.HandleUserCourses)).Methods(http.MethodGet)
	r.HandleFunc("/api/admin/users/{id}/pdfs", adminOnly(adminService.HandleUserPDFs)).Methods(http.MethodGet)
	r.HandleFunc("/api/admin/users/{id}/payments", adminOnly(adminService.HandleUserPayments)).Methods(http.MethodGet)

	r.HandleFunc("/api/admin/payments", adminOnly(adminService.HandlePaymentsAPI)).Methods(http.MethodGet)
	r.HandleFunc("/api/admin/payments/{id}", adminOnly(adminService.HandlePaymentByIDAPI)).Methods(http.MethodGet, http.MethodPut)

	// CORS wraps the router itself so preflight requests never reach route
	// matching.
	return middleware.RequestLog(middleware.CORS(h.Config.CORSOrigin)(r))
}
