package api

import (
	"log/slog"
	"net/http"

	"github.com/taskvault/taskvault-api/internal/api/shared"
	"github.com/taskvault/taskvault-api/internal/domain"
	"github.com/taskvault/taskvault-api/internal/service/auth"
	"github.com/taskvault/taskvault-api/internal/store"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	users          store.UserStore
	jwtService     auth.JWTService
	passwordHasher auth.PasswordHasher
	logger         *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	users store.UserStore,
	jwtService auth.JWTService,
	passwordHasher auth.PasswordHasher,
	log *slog.Logger,
) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{
		users:          users,
		jwtService:     jwtService,
		passwordHasher: passwordHasher,
		logger:         log.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		shared.RespondWithError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	hashed, err := h.passwordHasher.Hash(req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	user, err := domain.NewUser(req.Email, hashed)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.users.Create(r.Context(), user); err != nil {
		respondError(w, r, err)
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.logger.Info("user registered", slog.String("user_id", user.ID.String()))
	shared.RespondWithJSON(w, http.StatusCreated, AuthResponse{Token: token, UserID: user.ID})
}

// Login handles POST /auth/login. A missing account and a wrong password are
// indistinguishable to the caller.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		shared.RespondWithError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if store.IsNotFoundError(err) {
			respondError(w, r, auth.ErrInvalidCredentials)
			return
		}
		respondError(w, r, err)
		return
	}

	if err := h.passwordHasher.Compare(user.HashedPassword, req.Password); err != nil {
		respondError(w, r, auth.ErrInvalidCredentials)
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, http.StatusOK, AuthResponse{Token: token, UserID: user.ID})
}
