package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/kmoran/personal-library/auth"
	"github.com/kmoran/personal-library/middleware"
	"github.com/kmoran/personal-library/models"
	"github.com/kmoran/personal-library/store"
	"github.com/kmoran/personal-library/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const stateCookie = "oauth_state"

// AuthUserStore is satisfied by *store.DB.
type AuthUserStore interface {
	CreateUser(ctx context.Context, user *models.User) (primitive.ObjectID, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
}

type AuthHandler struct {
	DB   AuthUserStore
	Auth *auth.Service
	// Google is nil when federated login is not configured.
	Google    *auth.Google
	ClientURL string
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in validation.Register
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msgs := validation.ValidateRegister(&in); len(msgs) > 0 {
		respondErrors(w, http.StatusBadRequest, msgs)
		return
	}
	if existing, err := h.DB.UserByEmail(r.Context(), in.Email); err != nil {
		respondServerError(w, err)
		return
	} else if existing != nil {
		respondError(w, http.StatusBadRequest, "Email is already registered")
		return
	}
	if existing, err := h.DB.UserByUsername(r.Context(), in.Username); err != nil {
		respondServerError(w, err)
		return
	} else if existing != nil {
		respondError(w, http.StatusBadRequest, "Username is already taken")
		return
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		respondServerError(w, err)
		return
	}
	user := &models.User{
		Username:   in.Username,
		Email:      in.Email,
		Password:   hash,
		Role:       models.RoleUser,
		AuthMethod: models.AuthMethodLocal,
	}
	if msgs := validation.ValidateNewUser(user); len(msgs) > 0 {
		respondErrors(w, http.StatusBadRequest, msgs)
		return
	}
	id, err := h.DB.CreateUser(r.Context(), user)
	if err != nil {
		// Unique indexes catch the race between the lookups and the insert.
		if store.IsDuplicateKey(err) {
			respondError(w, http.StatusBadRequest, "Username or email is already registered")
			return
		}
		respondServerError(w, err)
		return
	}
	user.ID = id
	token, err := h.Auth.CreateToken(user)
	if err != nil {
		respondServerError(w, err)
		return
	}
	respondToken(w, http.StatusCreated, token, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in validation.Login
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msgs := validation.ValidateLogin(&in); len(msgs) > 0 {
		respondErrors(w, http.StatusBadRequest, msgs)
		return
	}
	user, err := h.DB.UserByEmail(r.Context(), in.Email)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if user == nil || user.AuthMethod != models.AuthMethodLocal || !auth.CheckPassword(user.Password, in.Password) {
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	token, err := h.Auth.CreateToken(user)
	if err != nil {
		respondServerError(w, err)
		return
	}
	respondToken(w, http.StatusOK, token, user)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}
	respondData(w, http.StatusOK, user)
}

// Logout is stateless: tokens live on the client, so the server only
// acknowledges.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]string{
		"message": "Logged out. Remove the token on the client.",
	})
}

func (h *AuthHandler) GoogleRedirect(w http.ResponseWriter, r *http.Request) {
	if h.Google == nil {
		respondError(w, http.StatusServiceUnavailable, "Google sign-in is not configured")
		return
	}
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(10 * time.Minute),
	})
	http.Redirect(w, r, h.Google.AuthURL(state), http.StatusFound)
}

func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.Google == nil {
		respondError(w, http.StatusServiceUnavailable, "Google sign-in is not configured")
		return
	}
	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		respondError(w, http.StatusUnauthorized, "Invalid OAuth state")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "Missing authorization code")
		return
	}
	profile, err := h.Google.FetchProfile(r.Context(), code)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Google authentication failed")
		return
	}
	user, err := h.Google.ResolveUser(r.Context(), profile)
	if err != nil {
		respondServerError(w, err)
		return
	}
	token, err := h.Auth.CreateToken(user)
	if err != nil {
		respondServerError(w, err)
		return
	}
	http.Redirect(w, r, h.ClientURL+"/auth/callback?token="+token, http.StatusFound)
}
