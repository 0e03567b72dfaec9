// Package handler provides HTTP request handlers for the authuser API.
//
// # Handler Pattern
//
// All handlers follow a consistent pattern:
//
//   - Constructor function (NewXxxHandler) accepts a config struct with dependencies
//   - Methods handle specific HTTP endpoints
//   - Response helpers from response.go standardize output format
//   - Errors are mapped to RFC 9457 Problem Details responses
//
// Missing users are the exception: they answer 404 with a plain-text body
// ("User not found", "List users not found").
//
// # Response Format
//
//   - WriteData: Single resource with HATEOAS links
//   - WriteCollection: Paginated list of resources with page links
//   - WriteText: Plain-text body
//   - WriteError: RFC 9457 Problem Details error response
//
// # Links
//
// Every user response carries the relations get-user, update-user,
// delete-user, create-user and list-users, minus the one for the operation
// that produced it. See UserLinks.
//
// # Example Usage
//
//	h := NewUserHandler(UserHandlerConfig{
//	    UserService: userService,
//	    BaseURL:     "https://api.example.com",
//	})
//	h.RegisterRoutes(mux)
package handler
