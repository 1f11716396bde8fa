package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

type fakeUser struct {
	ID   string
	Name string
	Role string
}

type fakePayment struct {
	ID             string    `json:"_id"`
	UserID         string    `json:"user_id"`
	ItemID         string    `json:"item_id"`
	ItemType       string    `json:"item_type"`
	Amount         float64   `json:"amount"`
	TransactionRef string    `json:"transaction_id"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// fakeBackend is an in-memory stand-in for the marketplace REST API. It
// answers in the mixed envelope shapes the real one uses.
type fakeBackend struct {
	mu        sync.Mutex
	users     map[string]fakeUser // by bearer token
	revoked   map[string]bool
	payments  []*fakePayment
	completed map[string][]string // by user id
	completes int

	paymentsDown bool // GET /payments/user answers 500
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		users:     map[string]fakeUser{},
		revoked:   map[string]bool{},
		completed: map[string][]string{},
	}
}

// addPayment stores a payment as if it had been made and reviewed earlier.
func (b *fakeBackend) addPayment(userID, itemID, itemType, status string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.payments = append(b.payments, &fakePayment{
		ID:        fmt.Sprintf("p%d", len(b.payments)+1),
		UserID:    userID,
		ItemID:    itemID,
		ItemType:  itemType,
		Amount:    150,
		Status:    status,
		CreatedAt: time.Now().UTC().Add(-time.Hour),
	})
}

func (b *fakeBackend) setPaymentsDown(down bool) {
	b.mu.Lock()
	b.paymentsDown = down
	b.mu.Unlock()
}

func (b *fakeBackend) paymentCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.payments)
}

func writeJSON(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}

// caller returns the user behind the bearer token. ok is false when the
// request was answered with 401.
func (b *fakeBackend) caller(w http.ResponseWriter, r *http.Request) (fakeUser, bool) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	b.mu.Lock()
	u, known := b.users[token]
	revoked := b.revoked[token]
	b.mu.Unlock()
	if !known || revoked {
		writeJSON(w, http.StatusUnauthorized, `{"message":"jwt expired"}`)
		return fakeUser{}, false
	}
	return u, true
}

func (b *fakeBackend) router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/subcategories/{id}", func(w http.ResponseWriter, r *http.Request) {
		if mux.Vars(r)["id"] != "c1" {
			writeJSON(w, http.StatusNotFound, `{"message":"course not found"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"subcategory":{"_id":"c1","name":"Go 101","price":"150","category_id":7}}`)
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/subcategories/{id}/videos", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"videos":[
			{"_id":"v3","title":"Three","sequence_number":3,"subcategory_id":"c1"},
			{"_id":"v1","title":"One","sequence_number":1,"subcategory_id":"c1"},
			{"_id":"v2","title":"Two","sequence_number":"2","subcategory_id":"c1"}
		]}}`)
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/subcategories/{id}/progress", func(w http.ResponseWriter, r *http.Request) {
		u, ok := b.caller(w, r)
		if !ok {
			return
		}
		b.mu.Lock()
		ids, _ := json.Marshal(b.completed[u.ID])
		b.mu.Unlock()
		if string(ids) == "null" {
			ids = []byte("[]")
		}
		writeJSON(w, http.StatusOK, fmt.Sprintf(`{"completed_videos":%s}`, ids))
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/videos/{id}/complete", func(w http.ResponseWriter, r *http.Request) {
		u, ok := b.caller(w, r)
		if !ok {
			return
		}
		id := mux.Vars(r)["id"]
		b.mu.Lock()
		b.completes++
		done := false
		for _, v := range b.completed[u.ID] {
			done = done || v == id
		}
		if !done {
			b.completed[u.ID] = append(b.completed[u.ID], id)
		}
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, `{"success":true}`)
	}).Methods(http.MethodPost)

	r.HandleFunc("/api/pdfs", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"id":"d1","title":"Cheatsheet","price":20,"file_url":"https://files.example/d1.pdf"}]`)
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/pdfs/{id}", func(w http.ResponseWriter, r *http.Request) {
		if mux.Vars(r)["id"] != "d1" {
			writeJSON(w, http.StatusNotFound, `{"message":"pdf not found"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"pdf":{"_id":"d1","title":"Cheatsheet","price":20,"subcategory_id":"c1","file_url":"https://files.example/d1.pdf"}}`)
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		u, ok := b.caller(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, fmt.Sprintf(`{"data":{"_id":%q,"name":%q,"email":"x@example.com","role":%q,"status":"active"}}`, u.ID, u.Name, u.Role))
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/payments/user", func(w http.ResponseWriter, r *http.Request) {
		u, ok := b.caller(w, r)
		if !ok {
			return
		}
		b.mu.Lock()
		if b.paymentsDown {
			b.mu.Unlock()
			writeJSON(w, http.StatusInternalServerError, `{"message":"database is unavailable"}`)
			return
		}
		var mine []*fakePayment
		for _, p := range b.payments {
			if p.UserID == u.ID {
				mine = append(mine, p)
			}
		}
		body, _ := json.Marshal(map[string]interface{}{"payments": mine})
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, string(body))
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/payments", func(w http.ResponseWriter, r *http.Request) {
		u, ok := b.caller(w, r)
		if !ok {
			return
		}
		var p fakePayment
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeJSON(w, http.StatusBadRequest, `{"message":"bad json"}`)
			return
		}
		b.mu.Lock()
		p.ID = fmt.Sprintf("p%d", len(b.payments)+1)
		p.UserID = u.ID
		p.Status = "pending"
		p.CreatedAt = time.Now().UTC().Add(time.Duration(len(b.payments)) * time.Second)
		b.payments = append(b.payments, &p)
		body, _ := json.Marshal(map[string]interface{}{"success": true, "data": p})
		b.mu.Unlock()
		writeJSON(w, http.StatusCreated, string(body))
	}).Methods(http.MethodPost)

	r.HandleFunc("/api/payments/{id}", func(w http.ResponseWriter, r *http.Request) {
		u, ok := b.caller(w, r)
		if !ok {
			return
		}
		if u.Role != "admin" {
			writeJSON(w, http.StatusForbidden, `{"message":"admins only"}`)
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		var found *fakePayment
		for _, p := range b.payments {
			if p.ID == mux.Vars(r)["id"] {
				found = p
			}
		}
		if found == nil {
			writeJSON(w, http.StatusNotFound, `{"message":"payment not found"}`)
			return
		}
		if r.Method == http.MethodPut {
			var in struct {
				Status string `json:"status"`
			}
			_ = json.NewDecoder(r.Body).Decode(&in)
			found.Status = in.Status
		}
		body, _ := json.Marshal(found)
		writeJSON(w, http.StatusOK, string(body))
	}).Methods(http.MethodGet, http.MethodPut)

	return r
}
