package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	httpmiddleware "github.com/wolfeidau/reservations/internal/http"
	"github.com/wolfeidau/reservations/internal/models"
	"github.com/wolfeidau/reservations/internal/session"
	"github.com/wolfeidau/reservations/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionUserKey = "userId"

	loginRequiredMessage      = "Please log in first!"
	invalidCredentialsMessage = "Invalid email or password!"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	Success bool         `json:"success"`
	User    *models.User `json:"user"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) error {
	var req registerRequest
	if err := httpmiddleware.BodyFromContext(r.Context()).Bind(&req); err != nil {
		return err
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)

	if req.Name == "" || req.Email == "" || req.Password == "" {
		return httpmiddleware.BadRequest("Please provide name, email and password!")
	}
	if msg := validateName("Name", req.Name); msg != "" {
		return httpmiddleware.BadRequest(msg)
	}
	if msg := validateEmail(req.Email); msg != "" {
		return httpmiddleware.BadRequest(msg)
	}
	if len(req.Password) < passwordMinLength {
		return httpmiddleware.BadRequest("Password must contain at least 8 characters!")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return httpmiddleware.BadRequest("Password cannot exceed 72 bytes!")
		}
		return err
	}

	user := &models.User{
		ID:           uuid.Must(uuid.NewV7()),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}

	if err := s.stores.Users.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrUserAlreadyExists) {
			return httpmiddleware.Conflict("User already exists!")
		}
		return err
	}

	zerolog.Ctx(r.Context()).Info().Str("user_id", user.ID.String()).Msg("User registered")

	httpmiddleware.WriteJSON(w, http.StatusCreated, userResponse{Success: true, User: user})
	return nil
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest
	if err := httpmiddleware.BodyFromContext(r.Context()).Bind(&req); err != nil {
		return err
	}
	req.Email = normalizeEmail(req.Email)

	if req.Email == "" || req.Password == "" {
		return httpmiddleware.BadRequest("Please provide email and password!")
	}

	user, err := s.stores.Users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return httpmiddleware.Unauthorized(invalidCredentialsMessage)
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)); err != nil {
		return httpmiddleware.Unauthorized(invalidCredentialsMessage)
	}

	// new identifier on privilege change
	sess := session.FromContext(r.Context())
	sess.Regenerate()
	sess.Set(sessionUserKey, user.ID.String())

	zerolog.Ctx(r.Context()).Info().Str("user_id", user.ID.String()).Msg("User logged in")

	httpmiddleware.WriteJSON(w, http.StatusOK, userResponse{Success: true, User: user})
	return nil
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) error {
	session.FromContext(r.Context()).Destroy()

	httpmiddleware.WriteJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Logged out successfully!"})
	return nil
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) error {
	userID, ok := sessionUserID(r)
	if !ok {
		return httpmiddleware.Unauthorized(loginRequiredMessage)
	}

	user, err := s.stores.Users.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return httpmiddleware.Unauthorized(loginRequiredMessage)
		}
		return err
	}

	httpmiddleware.WriteJSON(w, http.StatusOK, userResponse{Success: true, User: user})
	return nil
}
