package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"homeledger-server/src/apperr"
	"homeledger-server/src/core/scope"
	"homeledger-server/src/middleware"
)

// currentScope builds the caller's scope from the JWT claims the auth
// middleware placed in the request context.
func currentScope(r *http.Request) scope.Scope {
	actorID, _ := middleware.ActorID(r.Context())
	role, _ := middleware.Role(r.Context())
	return scope.ForRole(actorID, role)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps error kinds to HTTP statuses and logs the failure.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	actorID, _ := middleware.ActorID(r.Context())
	var status int
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindUnauthorized:
		status = http.StatusForbidden
	case apperr.KindInvalidArgument:
		status = http.StatusBadRequest
	case apperr.KindInvalidState:
		status = http.StatusConflict
	case apperr.KindExternalSync:
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}
	log.Printf("ERROR: %s %s failed for actor %d: %v", r.Method, r.URL.Path, actorID, err)
	if status == http.StatusInternalServerError {
		http.Error(w, "internal error", status)
		return
	}
	http.Error(w, err.Error(), status)
}
