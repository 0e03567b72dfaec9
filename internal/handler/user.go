package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/ead/authuser/internal/model"
	"github.com/ead/authuser/internal/service"
	"github.com/google/uuid"
)

// Plain-text bodies for missing resources
const (
	msgUserNotFound     = "User not found"
	msgUserListNotFound = "List users not found"
)

// UserHandler serves the /users resource
type UserHandler struct {
	userService *service.UserService
	baseURL     string
}

// UserHandlerConfig holds dependencies for UserHandler
type UserHandlerConfig struct {
	UserService *service.UserService
	// BaseURL prefixes every link. When empty it is derived from each request.
	BaseURL string
}

// NewUserHandler creates a new user handler
func NewUserHandler(cfg UserHandlerConfig) *UserHandler {
	return &UserHandler{
		userService: cfg.UserService,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// RegisterRoutes mounts the user endpoints on mux
func (h *UserHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /users/allUsers", h.List)
	mux.HandleFunc("GET /users/{userId}", h.Get)
	mux.HandleFunc("PUT /users/{userId}", h.Update)
	mux.HandleFunc("DELETE /users/{userId}", h.Delete)
}

// userResource is a user with its own links, used inside listings
type userResource struct {
	model.User
	Links map[string]string `json:"_links"`
}

// List handles GET /users/allUsers
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	slog.Debug("list users requested", slog.String("query", r.URL.RawQuery))

	req, err := parsePageRequest(r)
	if err != nil {
		WriteError(w, model.NewBadRequestError(err.Error()))
		return
	}

	page, err := h.userService.FindAllPageable(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrUserListNotFound) {
			slog.Warn("list users found nothing", slog.Int("page", req.Page))
			WriteText(w, http.StatusNotFound, msgUserListNotFound)
			return
		}
		h.writeServiceError(w, "list users", err)
		return
	}

	base := h.base(r)
	items := make([]userResource, 0, len(page.Content))
	for _, u := range page.Content {
		items = append(items, userResource{
			User:  u,
			Links: userLinksExcept(base, u.UserID, RelListUsers),
		})
	}

	slog.Info("users listed",
		slog.Int("page", page.Number),
		slog.Int("count", len(items)),
		slog.Int64("total", page.TotalElements),
	)
	WriteCollection(w, http.StatusOK, items, NewPaginationInfo(page), pageLinks(base, filterQuery(r), page))
}

// Get handles GET /users/{userId}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}
	slog.Debug("get user requested", slog.String("user_id", id.String()))

	user, err := h.userService.FindByID(r.Context(), id)
	if err != nil {
		h.writeUserError(w, "get user", id, err)
		return
	}

	slog.Info("user found", slog.String("user_id", id.String()))
	WriteData(w, http.StatusOK, user, userLinksExcept(h.base(r), id, RelGetUser))
}

// Update handles PUT /users/{userId}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}
	slog.Debug("update user requested", slog.String("user_id", id.String()))

	var req model.UserUpdate
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("Invalid request body"))
		return
	}

	user, err := h.userService.Update(r.Context(), id, req)
	if err != nil {
		h.writeUserError(w, "update user", id, err)
		return
	}

	slog.Info("user updated", slog.String("user_id", id.String()))
	WriteData(w, http.StatusOK, user, userLinksExcept(h.base(r), id, RelUpdateUser))
}

// Delete handles DELETE /users/{userId}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}
	slog.Debug("delete user requested", slog.String("user_id", id.String()))

	user, err := h.userService.Delete(r.Context(), id)
	if err != nil {
		h.writeUserError(w, "delete user", id, err)
		return
	}

	slog.Info("user deleted", slog.String("user_id", id.String()))
	WriteData(w, http.StatusOK, user, userLinksExcept(h.base(r), id, RelDeleteUser))
}

func (h *UserHandler) base(r *http.Request) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	return requestBaseURL(r)
}

func (h *UserHandler) writeUserError(w http.ResponseWriter, op string, id uuid.UUID, err error) {
	if errors.Is(err, service.ErrUserNotFound) {
		slog.Warn("user not found", slog.String("op", op), slog.String("user_id", id.String()))
		WriteText(w, http.StatusNotFound, msgUserNotFound)
		return
	}
	h.writeServiceError(w, op, err)
}

func (h *UserHandler) writeServiceError(w http.ResponseWriter, op string, err error) {
	pd := MapServiceError(err)
	if pd.Status >= http.StatusInternalServerError {
		slog.Error(op+" failed", slog.String("error", err.Error()))
	}
	WriteError(w, pd)
}

func parseUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("userId"))
	if err != nil {
		WriteError(w, model.NewBadRequestError("userId must be a valid UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// parsePageRequest reads page, size, sort, direction and filters from the
// query string. sort also accepts the "field,direction" form.
func parsePageRequest(r *http.Request) (model.PageRequest, error) {
	q := r.URL.Query()
	req := model.DefaultPageRequest()

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return req, errors.New("page must be a non-negative integer")
		}
		if n > model.MaxPage {
			return req, fmt.Errorf("page must be at most %d", model.MaxPage)
		}
		req.Page = n
	}
	if v := q.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return req, errors.New("size must be a positive integer")
		}
		req.Size = n
	}

	if v := strings.TrimSpace(q.Get("sort")); v != "" {
		field, dir, hasDir := strings.Cut(v, ",")
		field = strings.TrimSpace(field)
		if !model.IsSortableField(field) {
			return req, fmt.Errorf("sort field %q is not supported", field)
		}
		req.Sort = field
		if hasDir {
			d, err := model.ParseSortDirection(dir)
			if err != nil {
				return req, err
			}
			req.Direction = d
		}
	}
	if v := q.Get("direction"); v != "" {
		d, err := model.ParseSortDirection(v)
		if err != nil {
			return req, err
		}
		req.Direction = d
	}

	for _, key := range model.FilterKeys {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			if req.Filters == nil {
				req.Filters = make(map[string]string, len(model.FilterKeys))
			}
			req.Filters[key] = v
		}
	}

	return req, nil
}

// filterQuery returns only the filter parameters of the request
func filterQuery(r *http.Request) map[string][]string {
	q := r.URL.Query()
	out := make(map[string][]string)
	for _, key := range model.FilterKeys {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			out[key] = []string{v}
		}
	}
	return out
}
