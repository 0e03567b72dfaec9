// Package service implements the business logic layer for the authuser API.
//
// Services sit between HTTP handlers and the user stores. They normalize and
// validate requests, apply mutation rules, and translate storage errors into
// domain errors.
//
// # Service Pattern
//
//   - Constructor function (NewXxxService) accepts a config struct with its dependencies
//   - Services define the store interfaces they need (UserStore, UserSaver)
//   - Errors are returned as sentinel errors or wrapped errors for context
//   - Payload validation failures are returned as *model.ProblemDetails (422)
//
// # Error Handling
//
// Services return domain-specific errors defined as package-level variables:
//
//	var (
//	    ErrUserNotFound     = errors.New("user not found")
//	    ErrUserListNotFound = errors.New("list users not found")
//	)
//
// # Example Usage
//
//	svc := NewUserService(UserServiceConfig{Store: store})
//	user, err := svc.Update(ctx, id, model.UserUpdate{FullName: "Ana Lima"})
//	if errors.Is(err, service.ErrUserNotFound) {
//	    // 404
//	}
package service
