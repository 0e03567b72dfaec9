// Package model defines domain entities and data structures for the authuser API.
//
// Models are shared by every layer: handlers serialize them, services mutate
// them and repositories persist them.
//
// # Domain Entities
//
//   - User: a user profile identified by a UUID
//   - UserUpdate: the subset of profile fields that may be changed in place
//
// # Pagination
//
// PageRequest carries page index, page size, sort field, sort direction and
// filters. Page is the generic result:
//
//	req := model.DefaultPageRequest() // page 0, size 2, userName DESC
//	page := model.NewPage(users, req, total)
//	page.TotalPages()
//
// # Error Types
//
// RFC 9457 Problem Details errors are defined in errors.go:
//
//	type ProblemDetails struct {
//	    Type    string    `json:"type"`
//	    Title   string    `json:"title"`
//	    Status  int       `json:"status"`
//	    Detail  string    `json:"detail"`
//	}
package model
