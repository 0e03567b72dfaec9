// Package helpers provides test utility functions for the authuser API.
//
// # Request Builder
//
//	req := helpers.NewRequest(t, http.MethodPut, "/users/"+id).
//	    WithBody(map[string]string{"fullName": "Ana"}).
//	    Build()
//
// # Assertion Helpers
//
//	helpers.AssertStatus(t, rr, http.StatusOK)
//	helpers.AssertPlainText(t, rr, http.StatusNotFound, "User not found")
//	helpers.AssertProblemDetails(t, rr, http.StatusBadRequest, model.ErrCodeInvalidInput)
//	helpers.AssertValidationError(t, rr, "fullName")
package helpers
