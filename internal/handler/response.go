package handler

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/forgo/shelf/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SuccessResponse is the body of calls that return nothing else
type SuccessResponse struct {
	Success bool `json:"success"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteError writes an API error body
func WriteError(w http.ResponseWriter, err *model.APIError) {
	err.WriteJSON(w)
}

// WriteSuccess writes {"success":true}
func WriteSuccess(w http.ResponseWriter) {
	WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// DecodeJSON decodes a JSON request body into the given struct
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errEmptyBody
	}
	return json.NewDecoder(r.Body).Decode(v)
}

// NotFound answers every unmatched route
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, model.NewRouteNotFoundError())
}
