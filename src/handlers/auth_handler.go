package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"homeledger-server/src/apperr"
	"homeledger-server/src/middleware"
	"homeledger-server/src/models"
	"homeledger-server/src/store"
	"homeledger-server/src/util"
)

func signToken(a *models.Actor) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"actor_id": a.ID,
		"email":    a.Email,
		"role":     a.Role,
		"exp":      time.Now().Add(time.Hour * 168).Unix(),
	})
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func Register(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode register request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		req.Name = strings.TrimSpace(req.Name)

		if !util.ValidateEmail(req.Email) {
			log.Printf("ERROR: Email validation failed during registration - Email: %s", req.Email)
			http.Error(w, "invalid email format", http.StatusBadRequest)
			return
		}
		if !util.ValidateName(req.Name) {
			log.Printf("ERROR: Name validation failed during registration - Email: %s", req.Email)
			http.Error(w, "name must be between 1 and 60 characters", http.StatusBadRequest)
			return
		}
		if !util.ValidatePassword(req.Password) {
			log.Printf("ERROR: Password validation failed during registration - Email: %s", req.Email)
			http.Error(w, "password must be at least 8 characters with uppercase, lowercase, and digit", http.StatusBadRequest)
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("ERROR: Failed to hash password for %s: %v", req.Email, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		actor, err := st.CreateActor(r.Context(), &models.Actor{
			Email:        req.Email,
			PasswordHash: string(hashedPassword),
			Name:         req.Name,
			Role:         models.RoleOwner,
		})
		if err != nil {
			// Both stores report a taken email as an invalid-argument kind.
			if apperr.KindOf(err) == apperr.KindInvalidArgument {
				log.Printf("ERROR: Registration failed - email already registered - Email: %s", req.Email)
				http.Error(w, "email already registered", http.StatusConflict)
				return
			}
			log.Printf("ERROR: Failed to create actor %s: %v", req.Email, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		log.Printf("INFO: Successful registration - Email: %s, ID: %d", actor.Email, actor.ID)

		tokenString, err := signToken(actor)
		if err != nil {
			log.Printf("ERROR: Failed to generate JWT token for %s: %v", actor.Email, err)
			http.Error(w, "Error generating token", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]string{"token": tokenString})
	}
}

func Login(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var credentials struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
			log.Printf("ERROR: Failed to decode login request body: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		actor, err := st.GetActorByEmail(r.Context(), strings.ToLower(strings.TrimSpace(credentials.Email)))
		if err != nil {
			log.Printf("ERROR: Failed to find actor during login - Email: %s: %v", credentials.Email, err)
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(actor.PasswordHash), []byte(credentials.Password)); err != nil {
			log.Printf("ERROR: Invalid password attempt for email %s from IP %s", credentials.Email, r.RemoteAddr)
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}

		tokenString, err := signToken(actor)
		if err != nil {
			log.Printf("ERROR: Failed to generate JWT token for %s: %v", actor.Email, err)
			http.Error(w, "Error generating token", http.StatusInternalServerError)
			return
		}

		log.Printf("INFO: Successful login - Email: %s, ID: %d", actor.Email, actor.ID)
		writeJSON(w, http.StatusOK, map[string]string{"token": tokenString})
	}
}

// Me returns the authenticated actor's profile.
func Me(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, _ := middleware.ActorID(r.Context())
		actor, err := st.GetActorByID(r.Context(), actorID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, actor)
	}
}
