package repository

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/ead/authuser/internal/database"
	"github.com/ead/authuser/internal/model"
	"github.com/ead/authuser/internal/testing/fixtures"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runUserStoreContract exercises behaviour every UserStore must share.
// newStore must return an empty store.
func runUserStoreContract(t *testing.T, newStore func(t *testing.T) UserStore) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	seed := func(t *testing.T, store UserStore) map[string]*model.User {
		f := fixtures.New(store)
		return map[string]*model.User{
			"alice": f.CreateUser(t, fixtures.WithName("alice", "Alice Souza"), fixtures.WithEmail("alice@ead.dev"),
				fixtures.WithType(model.UserTypeAdmin), fixtures.WithCreatedAt(base)),
			"bob": f.CreateUser(t, fixtures.WithName("bob", "Bob Lima"), fixtures.WithEmail("bob@example.com"),
				fixtures.WithCreatedAt(base.Add(time.Hour))),
			"carol": f.CreateUser(t, fixtures.WithName("carol", "Carol Souza"), fixtures.WithEmail("carol@ead.dev"),
				fixtures.WithStatus(model.UserStatusBlocked), fixtures.WithType(model.UserTypeInstructor),
				fixtures.WithCreatedAt(base.Add(2*time.Hour))),
		}
	}

	names := func(page *model.Page[model.User]) []string {
		out := make([]string, 0, len(page.Content))
		for _, u := range page.Content {
			out = append(out, u.UserName)
		}
		return out
	}

	t.Run("default order is user name descending", func(t *testing.T) {
		store := newStore(t)
		seed(t, store)

		page, err := store.FindAllPageable(ctx, model.DefaultPageRequest())
		require.NoError(t, err)

		assert.Equal(t, []string{"carol", "bob"}, names(page))
		assert.Equal(t, int64(3), page.TotalElements)
		assert.Equal(t, 2, page.TotalPages())
	})

	t.Run("second page holds the remainder", func(t *testing.T) {
		store := newStore(t)
		seed(t, store)

		req := model.DefaultPageRequest()
		req.Page = 1
		page, err := store.FindAllPageable(ctx, req)
		require.NoError(t, err)

		assert.Equal(t, []string{"alice"}, names(page))
		assert.False(t, page.HasNext())
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		store := newStore(t)
		seed(t, store)

		req := model.DefaultPageRequest()
		req.Page = 5
		page, err := store.FindAllPageable(ctx, req)
		require.NoError(t, err)

		assert.True(t, page.IsEmpty())
		assert.Equal(t, int64(3), page.TotalElements)
	})

	t.Run("huge page index is empty", func(t *testing.T) {
		store := newStore(t)
		seed(t, store)

		for _, size := range []int{2, 4} {
			req := model.DefaultPageRequest()
			req.Page = math.MaxInt/2 + 1
			req.Size = size
			page, err := store.FindAllPageable(ctx, req)
			require.NoError(t, err)

			assert.True(t, page.IsEmpty(), "size %d", size)
			assert.Equal(t, model.MaxPage, page.Number)
			assert.False(t, page.HasNext())
		}
	})

	t.Run("sort by creation date ascending", func(t *testing.T) {
		store := newStore(t)
		seed(t, store)

		page, err := store.FindAllPageable(ctx, model.PageRequest{Size: 10, Sort: model.SortCreationDate, Direction: model.SortAsc})
		require.NoError(t, err)

		assert.Equal(t, []string{"alice", "bob", "carol"}, names(page))
	})

	t.Run("filters combine", func(t *testing.T) {
		store := newStore(t)
		seed(t, store)

		tests := []struct {
			name    string
			filters map[string]string
			want    []string
		}{
			{"type exact", map[string]string{model.FilterUserType: "ADMIN"}, []string{"alice"}},
			{"status exact", map[string]string{model.FilterUserStatus: "BLOCKED"}, []string{"carol"}},
			{"email contains any case", map[string]string{model.FilterEmail: "EAD.DEV"}, []string{"carol", "alice"}},
			{"full name contains", map[string]string{model.FilterFullName: "souza"}, []string{"carol", "alice"}},
			{"combined", map[string]string{model.FilterFullName: "souza", model.FilterUserStatus: "ACTIVE"}, []string{"alice"}},
			{"no match", map[string]string{model.FilterEmail: "nobody"}, []string{}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				page, err := store.FindAllPageable(ctx, model.PageRequest{Size: 10, Filters: tt.filters})
				require.NoError(t, err)
				assert.Equal(t, tt.want, names(page))
				assert.Equal(t, int64(len(tt.want)), page.TotalElements)
			})
		}
	})

	t.Run("find by id round trips every field", func(t *testing.T) {
		store := newStore(t)
		users := seed(t, store)
		want := users["carol"]

		got, err := store.FindByID(ctx, want.UserID)
		require.NoError(t, err)

		assert.Equal(t, want.UserID, got.UserID)
		assert.Equal(t, want.UserName, got.UserName)
		assert.Equal(t, want.Email, got.Email)
		assert.Equal(t, want.Password, got.Password)
		assert.Equal(t, want.FullName, got.FullName)
		assert.Equal(t, want.UserStatus, got.UserStatus)
		assert.Equal(t, want.UserType, got.UserType)
		assert.Equal(t, want.PhoneNumber, got.PhoneNumber)
		assert.Equal(t, want.CPF, got.CPF)
		assert.True(t, want.CreationDate.Equal(got.CreationDate))
		assert.True(t, want.LastUpdateDate.Equal(got.LastUpdateDate))
	})

	t.Run("find by unknown id is not found", func(t *testing.T) {
		store := newStore(t)

		_, err := store.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, database.ErrNotFound)
	})

	t.Run("save replaces existing record", func(t *testing.T) {
		store := newStore(t)
		users := seed(t, store)

		updated := *users["bob"]
		model.UserUpdate{FullName: "Robert Lima", PhoneNumber: "1", CPF: "2"}.Apply(&updated, base.Add(24*time.Hour))
		_, err := store.Save(ctx, &updated)
		require.NoError(t, err)

		got, err := store.FindByID(ctx, updated.UserID)
		require.NoError(t, err)
		assert.Equal(t, "Robert Lima", got.FullName)
		assert.Equal(t, "bob", got.UserName)
		assert.True(t, base.Add(24*time.Hour).Equal(got.LastUpdateDate))

		page, err := store.FindAllPageable(ctx, model.PageRequest{Size: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.TotalElements)
	})

	t.Run("save rejects duplicate user name", func(t *testing.T) {
		store := newStore(t)
		seed(t, store)

		dup := fixtures.NewUser(t, fixtures.WithName("alice", "Another Alice"))
		_, err := store.Save(ctx, &dup)
		assert.ErrorIs(t, err, database.ErrDuplicate)
	})

	t.Run("delete removes the record", func(t *testing.T) {
		store := newStore(t)
		users := seed(t, store)

		require.NoError(t, store.Delete(ctx, users["alice"]))

		_, err := store.FindByID(ctx, users["alice"].UserID)
		assert.ErrorIs(t, err, database.ErrNotFound)

		page, err := store.FindAllPageable(ctx, model.PageRequest{Size: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.TotalElements)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, newStore(t).Ping(ctx))
	})
}
