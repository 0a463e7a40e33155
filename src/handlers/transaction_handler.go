package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"homeledger-server/src/core/ledger"
	"homeledger-server/src/models"
	"homeledger-server/src/store"
)

func parseID(r *http.Request, param string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, param), 10, 64)
}

func ListTransactions(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := currentScope(r)
		var filter store.TransactionFilter
		filter.Kind = r.URL.Query().Get("kind")
		if raw := r.URL.Query().Get("session_id"); raw != "" {
			sessionID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				log.Printf("ERROR: Invalid session_id query param: %s", raw)
				http.Error(w, "invalid session_id", http.StatusBadRequest)
				return
			}
			filter.SessionID = &sessionID
		}
		transactions, err := svc.ListTransactions(r.Context(), sc, filter)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, transactions)
	}
}

func GetTransaction(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := currentScope(r)
		id, err := parseID(r, "transaction_id")
		if err != nil {
			log.Printf("ERROR: Invalid transaction id param: %s", chi.URLParam(r, "transaction_id"))
			http.Error(w, "invalid transaction id", http.StatusBadRequest)
			return
		}
		transaction, err := svc.GetTransaction(r.Context(), sc, id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, transaction)
	}
}

func CreateTransaction(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := currentScope(r)
		var draft models.TransactionDraft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			log.Printf("ERROR: Failed to decode create transaction request body for actor %d: %v", sc.ActorID(), err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		created, err := svc.CreateTransaction(r.Context(), sc, draft)
		if err != nil {
			writeError(w, r, err)
			return
		}
		log.Printf("INFO: Created transaction id %d for actor %d, kind %s", created.ID, sc.ActorID(), created.Kind)
		writeJSON(w, http.StatusCreated, created)
	}
}

func UpdateTransaction(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := currentScope(r)
		id, err := parseID(r, "transaction_id")
		if err != nil {
			log.Printf("ERROR: Invalid transaction id param: %s", chi.URLParam(r, "transaction_id"))
			http.Error(w, "invalid transaction id", http.StatusBadRequest)
			return
		}
		var draft models.TransactionDraft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			log.Printf("ERROR: Failed to decode update transaction request body for actor %d: %v", sc.ActorID(), err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		updated, err := svc.UpdateTransaction(r.Context(), sc, id, draft)
		if err != nil {
			writeError(w, r, err)
			return
		}
		log.Printf("INFO: Updated transaction id %d for actor %d", updated.ID, sc.ActorID())
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteTransaction(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := currentScope(r)
		id, err := parseID(r, "transaction_id")
		if err != nil {
			log.Printf("ERROR: Invalid transaction id param: %s", chi.URLParam(r, "transaction_id"))
			http.Error(w, "invalid transaction id", http.StatusBadRequest)
			return
		}
		if err := svc.DeleteTransaction(r.Context(), sc, id); err != nil {
			writeError(w, r, err)
			return
		}
		log.Printf("INFO: Deleted transaction id %d for actor %d", id, sc.ActorID())
		writeJSON(w, http.StatusOK, map[string]string{"message": "transaction deleted"})
	}
}

func GetTotals(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := currentScope(r)
		if kind := r.URL.Query().Get("kind"); kind != "" {
			total, err := svc.AggregateTotals(r.Context(), sc, kind)
			if err != nil {
				writeError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"kind": kind, "total": total})
			return
		}
		totals, err := svc.Totals(r.Context(), sc)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, totals)
	}
}
