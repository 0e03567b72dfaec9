// Package fixtures provides user factories for tests.
//
// # Factory
//
//	f := fixtures.New(store) // any store with Save
//	user := f.CreateUser(t)
//	blocked := f.CreateUser(t, fixtures.WithStatus(model.UserStatusBlocked))
//
// # Unsaved Users
//
//	u := fixtures.NewUser(t, fixtures.WithName("ana", "Ana Lima"))
package fixtures
