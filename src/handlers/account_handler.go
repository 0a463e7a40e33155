package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"homeledger-server/src/core/ledger"
	"homeledger-server/src/core/syncer"
	"homeledger-server/src/models"
)

func ListAccounts(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := currentScope(r)
		activeOnly := r.URL.Query().Get("active") == "true"
		accounts, err := svc.ListAccounts(r.Context(), sc, activeOnly)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, accounts)
	}
}

func GetAccount(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := currentScope(r)
		id, err := parseID(r, "account_id")
		if err != nil {
			log.Printf("ERROR: Invalid account id param: %s", chi.URLParam(r, "account_id"))
			http.Error(w, "invalid account id", http.StatusBadRequest)
			return
		}
		account, err := svc.GetAccount(r.Context(), sc, id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, account)
	}
}

func CreateAccount(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := currentScope(r)
		var draft models.AccountDraft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			log.Printf("ERROR: Failed to decode create account request body for actor %d: %v", sc.ActorID(), err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		created, err := svc.CreateAccount(r.Context(), sc, draft)
		if err != nil {
			writeError(w, r, err)
			return
		}
		log.Printf("INFO: Created linked account id %d for actor %d, connection %s", created.ID, sc.ActorID(), created.ConnectionKind)
		writeJSON(w, http.StatusCreated, created)
	}
}

func UpdateAccount(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := currentScope(r)
		id, err := parseID(r, "account_id")
		if err != nil {
			log.Printf("ERROR: Invalid account id param: %s", chi.URLParam(r, "account_id"))
			http.Error(w, "invalid account id", http.StatusBadRequest)
			return
		}
		var draft models.AccountDraft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			log.Printf("ERROR: Failed to decode update account request body for actor %d: %v", sc.ActorID(), err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		updated, err := svc.UpdateAccount(r.Context(), sc, id, draft)
		if err != nil {
			writeError(w, r, err)
			return
		}
		log.Printf("INFO: Updated linked account id %d for actor %d", updated.ID, sc.ActorID())
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteAccount(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := currentScope(r)
		id, err := parseID(r, "account_id")
		if err != nil {
			log.Printf("ERROR: Invalid account id param: %s", chi.URLParam(r, "account_id"))
			http.Error(w, "invalid account id", http.StatusBadRequest)
			return
		}
		if err := svc.DeleteAccount(r.Context(), sc, id); err != nil {
			writeError(w, r, err)
			return
		}
		log.Printf("INFO: Deleted linked account id %d for actor %d", id, sc.ActorID())
		writeJSON(w, http.StatusOK, map[string]string{"message": "account deleted"})
	}
}

// GetAuthorizationURL returns the institution's consent URL for a feed kind.
func GetAuthorizationURL(orch *syncer.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connectionKind := r.URL.Query().Get("connection_kind")
		institutionCode := r.URL.Query().Get("institution_code")
		url, err := orch.AuthorizationURL(connectionKind, institutionCode)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"authorization_url": url})
	}
}

// HandleOAuthCallback exchanges the authorization code for credentials,
// activates the account, and runs an initial sync.
func HandleOAuthCallback(orch *syncer.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := currentScope(r)
		id, err := parseID(r, "account_id")
		if err != nil {
			log.Printf("ERROR: Invalid account id param: %s", chi.URLParam(r, "account_id"))
			http.Error(w, "invalid account id", http.StatusBadRequest)
			return
		}
		var req struct {
			Code string `json:"code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
			log.Printf("ERROR: Failed to decode oauth callback body for account %d: %v", id, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		result, err := orch.HandleCallback(r.Context(), sc, id, req.Code)
		if err != nil {
			writeError(w, r, err)
			return
		}
		log.Printf("INFO: OAuth callback completed for account %d, actor %d: %d fetched, %d created",
			id, sc.ActorID(), result.Fetched, result.Created)
		writeJSON(w, http.StatusOK, result)
	}
}

func SyncAccount(orch *syncer.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := currentScope(r)
		id, err := parseID(r, "account_id")
		if err != nil {
			log.Printf("ERROR: Invalid account id param: %s", chi.URLParam(r, "account_id"))
			http.Error(w, "invalid account id", http.StatusBadRequest)
			return
		}
		result, err := orch.Sync(r.Context(), sc, id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		log.Printf("INFO: Sync completed for account %d, actor %d: %d fetched, %d created",
			id, sc.ActorID(), result.Fetched, result.Created)
		writeJSON(w, http.StatusOK, result)
	}
}
