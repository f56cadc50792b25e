// Package helpers provides test utility functions for the shelf API.
//
// # Requests
//
// Build a request, optionally carrying a session cookie, and serve it:
//
//	resp := helpers.NewRequest(t, http.MethodPost, "/v1/users/borrow").
//	    WithSession(cookie).
//	    WithBody(map[string]string{"isbn": "111"}).
//	    Do(router)
//
// # Sessions
//
// Pull the session cookie out of a login response:
//
//	cookie := helpers.SessionCookie(t, resp, middleware.DefaultCookieName)
//
// # Assertions
//
//	helpers.AssertStatus(t, resp, http.StatusOK)
//	helpers.AssertAPIError(t, resp, http.StatusBadRequest, "Book is not available")
//
// # Pointer Helpers
//
//	quantity := helpers.IntPtr(3)
package helpers
