package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"questctl/internal/service"
)

// RecordedRequest is one request seen by FakeAPI.
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
	Header http.Header
}

// FakeData is the mutable state behind a FakeAPI.
type FakeData struct {
	// Token, when set, is the bearer token every route except login requires.
	Token string

	// Accounts maps username to password for /api/auth/login.
	Accounts map[string]string
	// LoginToken is returned by a successful login.
	LoginToken string

	// Status is served by /api/status/servers; nil answers 404.
	Status *service.StatusSnapshot

	// Fail forces a status code for a request path, e.g. "/api/users".
	Fail map[string]int

	// Delay is applied to every request before handling.
	Delay time.Duration

	Users     []service.User
	Tasks     []service.Task
	Rewards   []service.Reward
	UserTasks []service.UserTask
	Admins    []service.Admin
}

// FakeAPI is an httptest server speaking the quest REST API.
// Mutate its state only through Update so handler reads stay ordered.
type FakeAPI struct {
	Server *httptest.Server

	mu       sync.Mutex
	d        FakeData
	requests []RecordedRequest
	nextID   int
}

// NewFakeAPI starts a FakeAPI that is closed when the test ends.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()
	f := &FakeAPI{d: FakeData{
		Accounts: map[string]string{},
		Fail:     map[string]int{},
	}}
	f.Server = httptest.NewServer(f.router())
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the API base, ending in /api.
func (f *FakeAPI) URL() string {
	return f.Server.URL + "/api"
}

// Update runs fn with exclusive access to the fake's state.
func (f *FakeAPI) Update(fn func(d *FakeData)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.d)
}

// Data returns a shallow copy of the fake's state.
func (f *FakeAPI) Data() FakeData {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.d
}

// Requests returns a copy of the recorded requests.
func (f *FakeAPI) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// LastRequest returns the most recent request.
func (f *FakeAPI) LastRequest() RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return RecordedRequest{}
	}
	return f.requests[len(f.requests)-1]
}

func (f *FakeAPI) router() http.Handler {
	r := mux.NewRouter()
	r.Use(f.record)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", f.login).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(f.requireToken)
	authed.HandleFunc("/health", f.health).Methods(http.MethodGet)
	authed.HandleFunc("/status/servers", f.status).Methods(http.MethodGet)
	authed.HandleFunc("/users", f.listUsers).Methods(http.MethodGet)
	authed.HandleFunc("/leaderboard", f.listUsers).Methods(http.MethodGet)
	authed.HandleFunc("/tasks", f.listTasks).Methods(http.MethodGet)
	authed.HandleFunc("/tasks", f.createTask).Methods(http.MethodPost)
	authed.HandleFunc("/tasks/{id}", f.getTask).Methods(http.MethodGet)
	authed.HandleFunc("/tasks/{id}", f.updateTask).Methods(http.MethodPut)
	authed.HandleFunc("/tasks/{id}", f.deleteTask).Methods(http.MethodDelete)
	authed.HandleFunc("/tasks/{id}/toggle", f.toggleTask).Methods(http.MethodPatch)
	authed.HandleFunc("/rewards", f.listRewards).Methods(http.MethodGet)
	authed.HandleFunc("/rewards", f.createReward).Methods(http.MethodPost)
	authed.HandleFunc("/rewards/{id}", f.updateReward).Methods(http.MethodPut)

	admin := authed.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/stats", f.stats).Methods(http.MethodGet)
	admin.HandleFunc("/users", f.listAdmins).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}/ban", f.toggleBan).Methods(http.MethodPut)
	admin.HandleFunc("/user-tasks", f.listUserTasks).Methods(http.MethodGet)
	admin.HandleFunc("/user-tasks/{id}/verify", f.verify).Methods(http.MethodPut)
	admin.HandleFunc("/create-admin", f.createAdmin).Methods(http.MethodPost)
	admin.HandleFunc("/delete-admin/{id}", f.deleteAdmin).Methods(http.MethodDelete)
	return r
}

func (f *FakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		f.mu.Lock()
		f.requests = append(f.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Body:   string(body),
			Header: r.Header.Clone(),
		})
		code, fail := f.d.Fail[r.URL.Path]
		delay := f.d.Delay
		f.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if fail {
			writeJSON(w, code, map[string]string{"detail": http.StatusText(code)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		token := f.d.Token
		f.mu.Unlock()
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid authentication credentials"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *FakeAPI) id() string {
	f.nextID++
	return "id-" + strconv.Itoa(f.nextID)
}

func (f *FakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var creds service.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid body"})
		return
	}
	f.mu.Lock()
	pw, ok := f.d.Accounts[creds.Username]
	tok := f.d.LoginToken
	f.mu.Unlock()
	if !ok || pw != creds.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect username or password"})
		return
	}
	writeJSON(w, http.StatusOK, service.AccessToken{AccessToken: tok, TokenType: "bearer"})
}

func (f *FakeAPI) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (f *FakeAPI) status(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	snap := f.d.Status
	f.mu.Unlock()
	if snap == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not Found"})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (f *FakeAPI) listUsers(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := f.d.Users
	if users == nil {
		users = []service.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (f *FakeAPI) toggleBan(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.d.Users {
		if f.d.Users[i].ID == id {
			f.d.Users[i].IsBanned = !f.d.Users[i].IsBanned
			writeJSON(w, http.StatusOK, map[string]any{"is_banned": f.d.Users[i].IsBanned})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "User not found"})
}

func (f *FakeAPI) listTasks(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active_only") != "false"
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []service.Task{}
	for _, t := range f.d.Tasks {
		if activeOnly && !t.IsActive {
			continue
		}
		out = append(out, t)
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeAPI) findTask(id string) int {
	for i, t := range f.d.Tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (f *FakeAPI) getTask(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.findTask(mux.Vars(r)["id"])
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Task not found"})
		return
	}
	writeJSON(w, http.StatusOK, f.d.Tasks[i])
}

func taskFromInput(id string, in service.TaskInput) service.Task {
	return service.Task{
		ID:                   id,
		Title:                in.Title,
		Description:          in.Description,
		TaskType:             in.TaskType,
		Platform:             in.Platform,
		URL:                  in.URL,
		PointsReward:         in.PointsReward,
		IsBonus:              in.IsBonus,
		IsActive:             in.IsActive,
		VerificationRequired: in.VerificationRequired,
		VerificationData:     in.VerificationData,
	}
}

func (f *FakeAPI) createTask(w http.ResponseWriter, r *http.Request) {
	var in service.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid body"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t := taskFromInput(f.id(), in)
	f.d.Tasks = append(f.d.Tasks, t)
	writeJSON(w, http.StatusOK, t)
}

func (f *FakeAPI) updateTask(w http.ResponseWriter, r *http.Request) {
	var in service.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid body"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.findTask(mux.Vars(r)["id"])
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Task not found"})
		return
	}
	f.d.Tasks[i] = taskFromInput(f.d.Tasks[i].ID, in)
	writeJSON(w, http.StatusOK, f.d.Tasks[i])
}

func (f *FakeAPI) deleteTask(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.findTask(mux.Vars(r)["id"])
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Task not found"})
		return
	}
	f.d.Tasks = append(f.d.Tasks[:i], f.d.Tasks[i+1:]...)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted"})
}

func (f *FakeAPI) toggleTask(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.findTask(mux.Vars(r)["id"])
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Task not found"})
		return
	}
	f.d.Tasks[i].IsActive = !f.d.Tasks[i].IsActive
	writeJSON(w, http.StatusOK, f.d.Tasks[i])
}

func (f *FakeAPI) listRewards(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active_only") != "false"
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []service.Reward{}
	for _, rw := range f.d.Rewards {
		if activeOnly && !rw.IsActive {
			continue
		}
		out = append(out, rw)
	}
	writeJSON(w, http.StatusOK, out)
}

func rewardFromInput(id string, in service.RewardInput) service.Reward {
	return service.Reward{
		ID:                id,
		Title:             in.Title,
		Description:       in.Description,
		RewardType:        in.RewardType,
		PointsCost:        in.PointsCost,
		QuantityAvailable: in.QuantityAvailable,
		IsActive:          in.IsActive,
		ImageURL:          in.ImageURL,
	}
}

func (f *FakeAPI) createReward(w http.ResponseWriter, r *http.Request) {
	var in service.RewardInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid body"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	rw := rewardFromInput(f.id(), in)
	f.d.Rewards = append(f.d.Rewards, rw)
	writeJSON(w, http.StatusOK, rw)
}

func (f *FakeAPI) updateReward(w http.ResponseWriter, r *http.Request) {
	var in service.RewardInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid body"})
		return
	}
	id := mux.Vars(r)["id"]
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.d.Rewards {
		if f.d.Rewards[i].ID == id {
			claimed := f.d.Rewards[i].QuantityClaimed
			f.d.Rewards[i] = rewardFromInput(id, in)
			f.d.Rewards[i].QuantityClaimed = claimed
			writeJSON(w, http.StatusOK, f.d.Rewards[i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Reward not found"})
}

func (f *FakeAPI) stats(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := service.AdminStats{TotalUsers: len(f.d.Users)}
	for _, t := range f.d.Tasks {
		if t.IsActive {
			s.TotalTasks++
		}
	}
	for _, ut := range f.d.UserTasks {
		if ut.Status == service.StatusCompleted {
			s.CompletedTasks++
			s.TotalPointsDistributed += ut.PointsEarned
		}
	}
	writeJSON(w, http.StatusOK, s)
}

func (f *FakeAPI) listAdmins(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	admins := f.d.Admins
	if admins == nil {
		admins = []service.Admin{}
	}
	writeJSON(w, http.StatusOK, admins)
}

func (f *FakeAPI) listUserTasks(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []service.UserTask{}
	for _, ut := range f.d.UserTasks {
		if status != "" && ut.Status != status {
			continue
		}
		out = append(out, ut)
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeAPI) verify(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	approved := r.URL.Query().Get("approved")
	if approved != "true" && approved != "false" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "approved is required"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.d.UserTasks {
		if f.d.UserTasks[i].ID != id {
			continue
		}
		if approved == "true" {
			f.d.UserTasks[i].Status = service.StatusCompleted
			if t := f.d.UserTasks[i].Task; t != nil {
				f.d.UserTasks[i].PointsEarned = t.PointsReward
			}
		} else {
			f.d.UserTasks[i].Status = service.StatusRejected
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Task verification updated"})
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "User task not found"})
}

func (f *FakeAPI) createAdmin(w http.ResponseWriter, r *http.Request) {
	var in service.AdminInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid body"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.d.Admins {
		if a.Username == in.Username {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Username already exists"})
			return
		}
	}
	f.d.Admins = append(f.d.Admins, service.Admin{
		ID:           f.id(),
		Username:     in.Username,
		IsSuperAdmin: in.IsSuperAdmin,
		IsActive:     true,
		Permissions:  in.Permissions,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Admin created"})
}

func (f *FakeAPI) deleteAdmin(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range f.d.Admins {
		if a.ID == id {
			f.d.Admins = append(f.d.Admins[:i], f.d.Admins[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Admin deleted"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Admin not found"})
}
