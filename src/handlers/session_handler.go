package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"homeledger-server/src/core/session"
	"homeledger-server/src/models"
)

func ListSessions(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := currentScope(r)
		sessions, err := svc.ListSessions(r.Context(), sc)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sessions)
	}
}

func GetSession(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := currentScope(r)
		id, err := parseID(r, "session_id")
		if err != nil {
			log.Printf("ERROR: Invalid session id param: %s", chi.URLParam(r, "session_id"))
			http.Error(w, "invalid session id", http.StatusBadRequest)
			return
		}
		summary, err := svc.DescribeSession(r.Context(), sc, id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func CreateSession(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := currentScope(r)
		var draft models.SessionDraft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			log.Printf("ERROR: Failed to decode create session request body for actor %d: %v", sc.ActorID(), err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		created, err := svc.CreateSession(r.Context(), sc, draft)
		if err != nil {
			writeError(w, r, err)
			return
		}
		log.Printf("INFO: Created budget session id %d for actor %d", created.ID, sc.ActorID())
		writeJSON(w, http.StatusCreated, created)
	}
}

func UpdateSession(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := currentScope(r)
		id, err := parseID(r, "session_id")
		if err != nil {
			log.Printf("ERROR: Invalid session id param: %s", chi.URLParam(r, "session_id"))
			http.Error(w, "invalid session id", http.StatusBadRequest)
			return
		}
		var draft models.SessionDraft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			log.Printf("ERROR: Failed to decode update session request body for actor %d: %v", sc.ActorID(), err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		updated, err := svc.UpdateSession(r.Context(), sc, id, draft)
		if err != nil {
			writeError(w, r, err)
			return
		}
		log.Printf("INFO: Updated budget session id %d for actor %d", updated.ID, sc.ActorID())
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteSession(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := currentScope(r)
		id, err := parseID(r, "session_id")
		if err != nil {
			log.Printf("ERROR: Invalid session id param: %s", chi.URLParam(r, "session_id"))
			http.Error(w, "invalid session id", http.StatusBadRequest)
			return
		}
		if err := svc.DeleteSession(r.Context(), sc, id); err != nil {
			writeError(w, r, err)
			return
		}
		log.Printf("INFO: Deleted budget session id %d for actor %d", id, sc.ActorID())
		writeJSON(w, http.StatusOK, map[string]string{"message": "session deleted"})
	}
}
