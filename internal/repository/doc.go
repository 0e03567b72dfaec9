// Package repository implements user persistence for the authuser API.
//
// Every store satisfies the same contract (see UserStore):
//
//	FindAllPageable(ctx, model.PageRequest) (*model.Page[model.User], error)
//	FindByID(ctx, uuid.UUID) (*model.User, error)
//	Save(ctx, *model.User) (*model.User, error)
//	Delete(ctx, *model.User) error
//	Ping(ctx) error
//
// # Implementations
//
//   - UserRepository: SurrealDB via database.Database (default)
//   - PostgresUserRepository: PostgreSQL via a pgx pool
//   - MemoryUserRepository: process memory guarded by a sync.RWMutex
//   - CachedUserStore: Redis read-through cache in front of any of the above
//
// # Query Patterns
//
//   - Parameterized queries ($variable in SurrealQL, $n in SQL)
//   - type::thing('user', $id) keys SurrealDB records by the user UUID
//   - Sort fields are mapped through a fixed column table, never interpolated
//     from input
//   - Ties are broken on user_id so pages are stable
//
// # Errors
//
// Missing records are reported as database.ErrNotFound and unique
// violations as database.ErrDuplicate, both wrapped:
//
//	user, err := repo.FindByID(ctx, id)
//	if errors.Is(err, database.ErrNotFound) {
//	    // Handle not found
//	}
package repository
