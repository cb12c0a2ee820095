package handler

import (
	"encoding/json"
	"net/http"

	"github.com/imagify/imagify-server/internal/model"
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func statusForKind(kind model.ErrorKind) int {
	switch kind {
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindConflict:
		return http.StatusConflict
	case model.KindInvalidCredential:
		return http.StatusUnauthorized
	case model.KindForbidden:
		return http.StatusForbidden
	case model.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// handleError maps a service error onto the taxonomy. Anything that is not a
// typed *model.Error becomes a generic internal error; implementation detail
// never leaks to the caller.
func handleError(w http.ResponseWriter, err error) {
	typed, ok := model.AsError(err)
	if !ok {
		typed = model.NewErrInternal()
	}

	writeJSON(w, statusForKind(typed.Kind), errorResponse{Code: typed.Code, Message: typed.Message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Code: "bad_request", Message: message})
}
