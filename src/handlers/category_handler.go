package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"homeledger-server/src/db"
	"homeledger-server/src/models"
	"homeledger-server/src/store"
)

func ListCategories(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := r.URL.Query().Get("kind")
		if cached, ok := db.GetCachedCategories(kind); ok {
			writeJSON(w, http.StatusOK, cached)
			return
		}
		categories, err := st.ListCategories(r.Context(), kind)
		if err != nil {
			writeError(w, r, err)
			return
		}
		db.SetCachedCategories(kind, categories)
		writeJSON(w, http.StatusOK, categories)
	}
}

func GetCategory(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "category_id")
		if err != nil {
			log.Printf("ERROR: Invalid category id param: %s", chi.URLParam(r, "category_id"))
			http.Error(w, "invalid category id", http.StatusBadRequest)
			return
		}
		category, err := st.GetCategory(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, category)
	}
}

func CreateCategory(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var category models.Category
		if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
			log.Printf("ERROR: Failed to decode create category request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if category.Name == "" || (category.Kind != models.KindIncome && category.Kind != models.KindExpense) {
			http.Error(w, "category requires a name and a kind of INCOME or EXPENSE", http.StatusBadRequest)
			return
		}
		created, err := st.CreateCategory(r.Context(), &category)
		if err != nil {
			writeError(w, r, err)
			return
		}
		db.ClearCategoryCache()
		log.Printf("INFO: Created category id %d, kind %s", created.ID, created.Kind)
		writeJSON(w, http.StatusCreated, created)
	}
}

func UpdateCategory(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "category_id")
		if err != nil {
			log.Printf("ERROR: Invalid category id param: %s", chi.URLParam(r, "category_id"))
			http.Error(w, "invalid category id", http.StatusBadRequest)
			return
		}
		var category models.Category
		if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
			log.Printf("ERROR: Failed to decode update category request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		category.ID = id
		updated, err := st.UpdateCategory(r.Context(), &category)
		if err != nil {
			writeError(w, r, err)
			return
		}
		db.ClearCategoryCache()
		log.Printf("INFO: Updated category id %d", updated.ID)
		writeJSON(w, http.StatusOK, updated)
	}
}

func ClearCache() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		db.ClearCategoryCache()
		log.Printf("INFO: Cleared category cache")
		writeJSON(w, http.StatusOK, map[string]string{"message": "cache cleared"})
	}
}

func DeleteCategory(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "category_id")
		if err != nil {
			log.Printf("ERROR: Invalid category id param: %s", chi.URLParam(r, "category_id"))
			http.Error(w, "invalid category id", http.StatusBadRequest)
			return
		}
		if err := st.DeleteCategory(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		db.ClearCategoryCache()
		log.Printf("INFO: Deleted category id %d", id)
		writeJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
	}
}
