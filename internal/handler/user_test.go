package handler

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ead/authuser/internal/database"
	"github.com/ead/authuser/internal/model"
	"github.com/ead/authuser/internal/repository"
	"github.com/ead/authuser/internal/service"
	"github.com/ead/authuser/internal/testing/fixtures"
	"github.com/ead/authuser/internal/testing/helpers"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "http://api.test"

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// ============================================================================
// Mock UserStore
// ============================================================================

type mockUserStore struct {
	findAllPageableFunc func(ctx context.Context, req model.PageRequest) (*model.Page[model.User], error)
	findByIDFunc        func(ctx context.Context, id uuid.UUID) (*model.User, error)
	saveFunc            func(ctx context.Context, user *model.User) (*model.User, error)
	deleteFunc          func(ctx context.Context, user *model.User) error
}

func (m *mockUserStore) FindAllPageable(ctx context.Context, req model.PageRequest) (*model.Page[model.User], error) {
	if m.findAllPageableFunc != nil {
		return m.findAllPageableFunc(ctx, req)
	}
	return model.NewPage[model.User](nil, req, 0), nil
}

func (m *mockUserStore) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, database.ErrNotFound
}

func (m *mockUserStore) Save(ctx context.Context, user *model.User) (*model.User, error) {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, user)
	}
	return user, nil
}

func (m *mockUserStore) Delete(ctx context.Context, user *model.User) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, user)
	}
	return nil
}

func (m *mockUserStore) Ping(ctx context.Context) error {
	return nil
}

// ============================================================================
// Test Helpers
// ============================================================================

func newUserMux(store service.UserStore, baseURL string) *http.ServeMux {
	svc := service.NewUserService(service.UserServiceConfig{
		Store: store,
		Now:   func() time.Time { return fixedNow },
	})
	h := NewUserHandler(UserHandlerConfig{UserService: svc, BaseURL: baseURL})

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

// seedStore returns a memory store holding alice (ADMIN), bob and carol
// (INSTRUCTOR, BLOCKED)
func seedStore(t *testing.T) (*repository.MemoryUserRepository, map[string]*model.User) {
	t.Helper()

	store := repository.NewMemoryUserRepository()
	f := fixtures.New(store)

	users := map[string]*model.User{
		"alice": f.CreateUser(t,
			fixtures.WithName("alice", "Alice Souza"),
			fixtures.WithEmail("alice@ead.test"),
			fixtures.WithType(model.UserTypeAdmin),
		),
		"bob": f.CreateUser(t,
			fixtures.WithName("bob", "Bob Lima"),
			fixtures.WithEmail("bob@ead.test"),
		),
		"carol": f.CreateUser(t,
			fixtures.WithName("carol", "Carol Alves"),
			fixtures.WithEmail("carol@ead.test"),
			fixtures.WithType(model.UserTypeInstructor),
			fixtures.WithStatus(model.UserStatusBlocked),
		),
	}
	return store, users
}

type listItem struct {
	UserID   string            `json:"userId"`
	UserName string            `json:"userName"`
	Links    map[string]string `json:"_links"`
}

type listBody struct {
	Data       []listItem        `json:"data"`
	Pagination PaginationInfo    `json:"pagination"`
	Links      map[string]string `json:"_links"`
}

func serve(mux http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func userNames(items []listItem) []string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.UserName)
	}
	return names
}

// ============================================================================
// List Tests
// ============================================================================

func TestUserHandler_List_DefaultsToUserNameDescending(t *testing.T) {
	t.Parallel()

	store, _ := seedStore(t)
	mux := newUserMux(store, testBaseURL)

	rr := serve(mux, helpers.NewRequest(t, http.MethodGet, "/users/allUsers").Build())

	helpers.AssertStatus(t, rr, http.StatusOK)
	var body listBody
	helpers.DecodeResponse(t, rr, &body)

	assert.Equal(t, []string{"carol", "bob"}, userNames(body.Data))
	assert.Equal(t, PaginationInfo{
		Page:          0,
		Size:          2,
		TotalElements: 3,
		TotalPages:    2,
		Sort:          "userName",
		Direction:     "DESC",
	}, body.Pagination)

	assert.Contains(t, body.Links, "next")
	assert.NotContains(t, body.Links, "prev")
	assert.Contains(t, body.Links["self"], testBaseURL+"/users/allUsers?")
}

func TestUserHandler_List_ItemsCarryRecordLinks(t *testing.T) {
	t.Parallel()

	store, users := seedStore(t)
	mux := newUserMux(store, testBaseURL)

	rr := serve(mux, helpers.NewRequest(t, http.MethodGet, "/users/allUsers?size=1&sort=userName&direction=ASC").Build())

	helpers.AssertStatus(t, rr, http.StatusOK)
	var body listBody
	helpers.DecodeResponse(t, rr, &body)
	require.Len(t, body.Data, 1)

	self := testBaseURL + "/users/" + users["alice"].UserID.String()
	assert.Equal(t, map[string]string{
		RelGetUser:    self,
		RelUpdateUser: self,
		RelDeleteUser: self,
		RelCreateUser: testBaseURL + "/auth/signup",
	}, body.Data[0].Links)
}

func TestUserHandler_List_SpringStyleSort(t *testing.T) {
	t.Parallel()

	store, _ := seedStore(t)
	mux := newUserMux(store, testBaseURL)

	rr := serve(mux, helpers.NewRequest(t, http.MethodGet, "/users/allUsers?sort=email,asc&size=3").Build())

	helpers.AssertStatus(t, rr, http.StatusOK)
	var body listBody
	helpers.DecodeResponse(t, rr, &body)
	assert.Equal(t, []string{"alice", "bob", "carol"}, userNames(body.Data))
	assert.Equal(t, "ASC", body.Pagination.Direction)
}

func TestUserHandler_List_SecondPage(t *testing.T) {
	t.Parallel()

	store, _ := seedStore(t)
	mux := newUserMux(store, testBaseURL)

	rr := serve(mux, helpers.NewRequest(t, http.MethodGet, "/users/allUsers?page=1").Build())

	helpers.AssertStatus(t, rr, http.StatusOK)
	var body listBody
	helpers.DecodeResponse(t, rr, &body)
	assert.Equal(t, []string{"alice"}, userNames(body.Data))
	assert.Contains(t, body.Links, "prev")
	assert.NotContains(t, body.Links, "next")
}

func TestUserHandler_List_Filters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "user type", query: "userType=ADMIN", want: []string{"alice"}},
		{name: "user status", query: "userStatus=BLOCKED", want: []string{"carol"}},
		{name: "email contains", query: "email=BOB@", want: []string{"bob"}},
		{name: "full name contains", query: "fullName=al&sort=userName,asc", want: []string{"alice", "carol"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := seedStore(t)
			mux := newUserMux(store, testBaseURL)

			rr := serve(mux, helpers.NewRequest(t, http.MethodGet, "/users/allUsers?size=10&"+tt.query).Build())

			helpers.AssertStatus(t, rr, http.StatusOK)
			var body listBody
			helpers.DecodeResponse(t, rr, &body)
			assert.Equal(t, tt.want, userNames(body.Data))
		})
	}
}

func TestUserHandler_List_FilterIsKeptInPageLinks(t *testing.T) {
	t.Parallel()

	store, _ := seedStore(t)
	mux := newUserMux(store, testBaseURL)

	rr := serve(mux, helpers.NewRequest(t, http.MethodGet, "/users/allUsers?size=1&userStatus=ACTIVE").Build())

	helpers.AssertStatus(t, rr, http.StatusOK)
	var body listBody
	helpers.DecodeResponse(t, rr, &body)
	assert.Contains(t, body.Links["next"], "userStatus=ACTIVE")
	assert.Contains(t, body.Links["next"], "page=1")
}

func TestUserHandler_List_EmptyReturnsPlainTextNotFound(t *testing.T) {
	t.Parallel()

	mux := newUserMux(repository.NewMemoryUserRepository(), testBaseURL)

	rr := serve(mux, helpers.NewRequest(t, http.MethodGet, "/users/allUsers").Build())

	helpers.AssertPlainText(t, rr, http.StatusNotFound, "List users not found")
}

func TestUserHandler_List_PagePastEndReturnsNotFound(t *testing.T) {
	t.Parallel()

	store, _ := seedStore(t)
	mux := newUserMux(store, testBaseURL)

	rr := serve(mux, helpers.NewRequest(t, http.MethodGet, "/users/allUsers?page=9").Build())

	helpers.AssertPlainText(t, rr, http.StatusNotFound, "List users not found")
}

func TestUserHandler_List_BadParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
	}{
		{name: "non numeric page", query: "page=abc"},
		{name: "negative page", query: "page=-1"},
		{name: "zero size", query: "size=0"},
		{name: "unknown sort field", query: "sort=password"},
		{name: "bad direction", query: "direction=sideways"},
		{name: "bad direction in sort", query: "sort=email,up"},
		{name: "unknown user type", query: "userType=GUEST"},
		{name: "unknown user status", query: "userStatus=DELETED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := seedStore(t)
			mux := newUserMux(store, testBaseURL)

			rr := serve(mux, helpers.NewRequest(t, http.MethodGet, "/users/allUsers?"+tt.query).Build())

			helpers.AssertProblemDetails(t, rr, http.StatusBadRequest, model.ErrCodeInvalidInput)
		})
	}
}

func TestUserHandler_List_HugePageIsRejected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
	}{
		{name: "offset would wrap negative", query: "page=4611686018427387904&size=2"},
		{name: "offset would wrap to zero", query: "page=4611686018427387904&size=4"},
		{name: "just above the limit", query: fmt.Sprintf("page=%d", model.MaxPage+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := seedStore(t)
			mux := newUserMux(store, testBaseURL)

			rr := serve(mux, helpers.NewRequest(t, http.MethodGet, "/users/allUsers?"+tt.query).Build())

			problem := helpers.AssertProblemDetails(t, rr, http.StatusBadRequest, model.ErrCodeInvalidInput)
			assert.Equal(t, fmt.Sprintf("page must be at most %d", model.MaxPage), problem.Detail)
		})
	}
}

func TestUserHandler_List_LastAllowedPageIsPastEnd(t *testing.T) {
	t.Parallel()

	store, _ := seedStore(t)
	mux := newUserMux(store, testBaseURL)
	target := fmt.Sprintf("/users/allUsers?page=%d&size=%d", model.MaxPage, model.MaxPageSize)

	rr := serve(mux, helpers.NewRequest(t, http.MethodGet, target).Build())

	helpers.AssertPlainText(t, rr, http.StatusNotFound, "List users not found")
}

func TestUserHandler_List_StoreFailure(t *testing.T) {
	t.Parallel()

	store := &mockUserStore{
		findAllPageableFunc: func(ctx context.Context, req model.PageRequest) (*model.Page[model.User], error) {
			return nil, fmt.Errorf("%w: boom", database.ErrQuery)
		},
	}
	mux := newUserMux(store, testBaseURL)

	rr := serve(mux, helpers.NewRequest(t, http.MethodGet, "/users/allUsers").Build())

	helpers.AssertProblemDetails(t, rr, http.StatusInternalServerError, model.ErrCodeInternal)
}

// ============================================================================
// Get Tests
// ============================================================================

func TestUserHandler_Get_ReturnsUserWithLinks(t *testing.T) {
	t.Parallel()

	store, users := seedStore(t)
	mux := newUserMux(store, testBaseURL)
	bob := users["bob"]

	rr := serve(mux, helpers.NewRequest(t, http.MethodGet, "/users/"+bob.UserID.String()).Build())

	helpers.AssertStatus(t, rr, http.StatusOK)
	data := helpers.GetDataFromResponse(t, rr)
	assert.Equal(t, bob.UserID.String(), data["userId"])
	assert.Equal(t, "bob", data["userName"])
	assert.NotContains(t, data, "password")

	links := helpers.GetLinksFromResponse(t, rr)
	assert.NotContains(t, links, RelGetUser)
	assert.Equal(t, testBaseURL+"/users/"+bob.UserID.String(), links[RelUpdateUser])
	assert.Equal(t, testBaseURL+"/users/"+bob.UserID.String(), links[RelDeleteUser])
	assert.Equal(t, testBaseURL+"/auth/signup", links[RelCreateUser])
	assert.Equal(t, testBaseURL+"/users/allUsers", links[RelListUsers])
}

func TestUserHandler_Get_NotFound(t *testing.T) {
	t.Parallel()

	store, _ := seedStore(t)
	mux := newUserMux(store, testBaseURL)

	rr := serve(mux, helpers.NewRequest(t, http.MethodGet, "/users/"+uuid.NewString()).Build())

	helpers.AssertPlainText(t, rr, http.StatusNotFound, "User not found")
}

func TestUserHandler_Get_InvalidID(t *testing.T) {
	t.Parallel()

	mux := newUserMux(repository.NewMemoryUserRepository(), testBaseURL)

	rr := serve(mux, helpers.NewRequest(t, http.MethodGet, "/users/not-a-uuid").Build())

	helpers.AssertProblemDetails(t, rr, http.StatusBadRequest, model.ErrCodeInvalidInput)
}

func TestUserHandler_Get_StoreUnavailable(t *testing.T) {
	t.Parallel()

	store := &mockUserStore{
		findByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.User, error) {
			return nil, fmt.Errorf("%w: dial tcp", database.ErrConnection)
		},
	}
	mux := newUserMux(store, testBaseURL)

	rr := serve(mux, helpers.NewRequest(t, http.MethodGet, "/users/"+uuid.NewString()).Build())

	helpers.AssertProblemDetails(t, rr, http.StatusServiceUnavailable, model.ErrCodeUnavailable)
}

func TestUserHandler_Get_DerivesBaseURLFromRequest(t *testing.T) {
	t.Parallel()

	store, users := seedStore(t)
	mux := newUserMux(store, "")
	id := users["alice"].UserID.String()

	req := helpers.NewRequest(t, http.MethodGet, "/users/"+id).
		WithHeader("X-Forwarded-Proto", "https").
		WithHeader("X-Forwarded-Host", "ead.example.com").
		Build()
	rr := serve(mux, req)

	helpers.AssertStatus(t, rr, http.StatusOK)
	links := helpers.GetLinksFromResponse(t, rr)
	assert.Equal(t, "https://ead.example.com/users/"+id, links[RelUpdateUser])
}

// ============================================================================
// Update Tests
// ============================================================================

func TestUserHandler_Update_OverwritesMutableFields(t *testing.T) {
	t.Parallel()

	store, users := seedStore(t)
	mux := newUserMux(store, testBaseURL)
	bob := users["bob"]

	req := helpers.NewRequest(t, http.MethodPut, "/users/"+bob.UserID.String()).
		WithBody(map[string]string{
			"fullName":    "Jane Doe",
			"phoneNumber": "555-1111",
			"cpf":         "000.000.000-00",
		}).
		Build()
	rr := serve(mux, req)

	helpers.AssertStatus(t, rr, http.StatusOK)
	data := helpers.GetDataFromResponse(t, rr)
	assert.Equal(t, "Jane Doe", data["fullName"])
	assert.Equal(t, "555-1111", data["phoneNumber"])
	assert.Equal(t, "000.000.000-00", data["cpf"])
	assert.Equal(t, "bob", data["userName"])
	assert.Equal(t, "bob@ead.test", data["email"])
	assert.Equal(t, fixedNow.Format(time.RFC3339Nano), data["lastUpdateDate"])

	links := helpers.GetLinksFromResponse(t, rr)
	assert.NotContains(t, links, RelUpdateUser)
	assert.Contains(t, links, RelGetUser)

	stored, err := store.FindByID(context.Background(), bob.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", stored.FullName)
	assert.Equal(t, bob.Password, stored.Password)
	assert.True(t, stored.CreationDate.Equal(bob.CreationDate))
}

func TestUserHandler_Update_IgnoresImmutableFields(t *testing.T) {
	t.Parallel()

	store, users := seedStore(t)
	mux := newUserMux(store, testBaseURL)
	alice := users["alice"]

	req := helpers.NewRequest(t, http.MethodPut, "/users/"+alice.UserID.String()).
		WithBody(map[string]string{
			"userId":   uuid.NewString(),
			"userName": "mallory",
			"userType": "STUDENT",
			"fullName": "Alice S.",
		}).
		Build()
	rr := serve(mux, req)

	helpers.AssertStatus(t, rr, http.StatusOK)
	data := helpers.GetDataFromResponse(t, rr)
	assert.Equal(t, alice.UserID.String(), data["userId"])
	assert.Equal(t, "alice", data["userName"])
	assert.Equal(t, "ADMIN", data["userType"])
	assert.Equal(t, "Alice S.", data["fullName"])
}

func TestUserHandler_Update_IsIdempotent(t *testing.T) {
	t.Parallel()

	store, users := seedStore(t)
	mux := newUserMux(store, testBaseURL)
	path := "/users/" + users["carol"].UserID.String()
	payload := map[string]string{"fullName": "Carol A.", "phoneNumber": "1", "cpf": "2"}

	first := serve(mux, helpers.NewRequest(t, http.MethodPut, path).WithBody(payload).Build())
	second := serve(mux, helpers.NewRequest(t, http.MethodPut, path).WithBody(payload).Build())

	helpers.AssertStatus(t, first, http.StatusOK)
	helpers.AssertStatus(t, second, http.StatusOK)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestUserHandler_Update_NotFound(t *testing.T) {
	t.Parallel()

	store, _ := seedStore(t)
	mux := newUserMux(store, testBaseURL)

	req := helpers.NewRequest(t, http.MethodPut, "/users/"+uuid.NewString()).
		WithBody(map[string]string{"fullName": "Nobody"}).
		Build()
	rr := serve(mux, req)

	helpers.AssertPlainText(t, rr, http.StatusNotFound, "User not found")
}

func TestUserHandler_Update_InvalidJSON(t *testing.T) {
	t.Parallel()

	store, users := seedStore(t)
	mux := newUserMux(store, testBaseURL)

	req := helpers.NewRequest(t, http.MethodPut, "/users/"+users["bob"].UserID.String()).
		WithRawBody("{not json").
		Build()
	rr := serve(mux, req)

	helpers.AssertProblemDetails(t, rr, http.StatusBadRequest, model.ErrCodeInvalidInput)
}

func TestUserHandler_Update_ValidationError(t *testing.T) {
	t.Parallel()

	store, users := seedStore(t)
	mux := newUserMux(store, testBaseURL)

	req := helpers.NewRequest(t, http.MethodPut, "/users/"+users["bob"].UserID.String()).
		WithBody(map[string]string{"fullName": strings.Repeat("x", model.MaxFullNameLength+1)}).
		Build()
	rr := serve(mux, req)

	helpers.AssertValidationError(t, rr, "fullName")
}

func TestUserHandler_Update_DuplicateIsConflict(t *testing.T) {
	t.Parallel()

	store := &mockUserStore{
		findByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.User, error) {
			return &model.User{UserID: id, UserName: "bob"}, nil
		},
		saveFunc: func(ctx context.Context, user *model.User) (*model.User, error) {
			return nil, database.ErrDuplicate
		},
	}
	mux := newUserMux(store, testBaseURL)

	req := helpers.NewRequest(t, http.MethodPut, "/users/"+uuid.NewString()).
		WithBody(map[string]string{"fullName": "Bob"}).
		Build()
	rr := serve(mux, req)

	helpers.AssertProblemDetails(t, rr, http.StatusConflict, model.ErrCodeConflict)
}

// ============================================================================
// Delete Tests
// ============================================================================

func TestUserHandler_Delete_ReturnsLastKnownState(t *testing.T) {
	t.Parallel()

	store, users := seedStore(t)
	mux := newUserMux(store, testBaseURL)
	carol := users["carol"]
	path := "/users/" + carol.UserID.String()

	rr := serve(mux, helpers.NewRequest(t, http.MethodDelete, path).Build())

	helpers.AssertStatus(t, rr, http.StatusOK)
	data := helpers.GetDataFromResponse(t, rr)
	assert.Equal(t, "carol", data["userName"])

	links := helpers.GetLinksFromResponse(t, rr)
	assert.NotContains(t, links, RelDeleteUser)
	assert.Contains(t, links, RelGetUser)
	assert.Contains(t, links, RelUpdateUser)

	again := serve(mux, helpers.NewRequest(t, http.MethodGet, path).Build())
	helpers.AssertPlainText(t, again, http.StatusNotFound, "User not found")
}

func TestUserHandler_Delete_NotFound(t *testing.T) {
	t.Parallel()

	store, _ := seedStore(t)
	mux := newUserMux(store, testBaseURL)

	rr := serve(mux, helpers.NewRequest(t, http.MethodDelete, "/users/"+uuid.NewString()).Build())

	helpers.AssertPlainText(t, rr, http.StatusNotFound, "User not found")
}

func TestUserHandler_Delete_StoreFailure(t *testing.T) {
	t.Parallel()

	store := &mockUserStore{
		findByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.User, error) {
			return &model.User{UserID: id}, nil
		},
		deleteFunc: func(ctx context.Context, user *model.User) error {
			return errors.New("disk on fire")
		},
	}
	mux := newUserMux(store, testBaseURL)

	rr := serve(mux, helpers.NewRequest(t, http.MethodDelete, "/users/"+uuid.NewString()).Build())

	helpers.AssertProblemDetails(t, rr, http.StatusInternalServerError, model.ErrCodeInternal)
}

// ============================================================================
// Logging
// ============================================================================

// Not parallel: swaps the default logger.
func TestUserHandler_SuccessLogsComeFromHandler(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	store, users := seedStore(t)
	mux := newUserMux(store, testBaseURL)
	path := "/users/" + users["bob"].UserID.String()

	serve(mux, helpers.NewRequest(t, http.MethodGet, path).Build())
	serve(mux, helpers.NewRequest(t, http.MethodPut, path).WithBody(model.UserUpdate{FullName: "Bob Lima Jr"}).Build())
	serve(mux, helpers.NewRequest(t, http.MethodDelete, path).Build())

	var msgs []string
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &entry))
		if entry["level"] == "INFO" {
			assert.Equal(t, users["bob"].UserID.String(), entry["user_id"])
			msgs = append(msgs, entry["msg"].(string))
		}
	}
	assert.Equal(t, []string{"user found", "user updated", "user deleted"}, msgs)
}
