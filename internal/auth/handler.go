package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"quizbank/internal/app/apiresp"
)

type Handler struct {
	svc userService
}

type userService interface {
	Register(ctx context.Context, in RegisterInput) (*User, error)
	Authenticate(ctx context.Context, email, password string) (*User, error)
	ListUsers(ctx context.Context) ([]UserSummary, error)
	DeleteUser(ctx context.Context, id string) error
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type registerResponse struct {
	Message string         `json:"message"`
	User    registeredUser `json:"user"`
}

type registeredUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	ID    string `json:"id"`
}

func NewHandler(svc userService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.svc.Register(r.Context(), RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			apiresp.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrUserExists):
			apiresp.WriteError(w, http.StatusBadRequest, "User already exists")
		default:
			apiresp.WriteError(w, http.StatusInternalServerError, "Server error during registration")
		}
		return
	}

	apiresp.WriteJSON(w, http.StatusCreated, registerResponse{
		Message: "User registered successfully",
		User: registeredUser{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Role:  user.Role,
		},
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			apiresp.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		apiresp.WriteError(w, http.StatusInternalServerError, "Server error during login")
		return
	}

	apiresp.WriteJSON(w, http.StatusOK, loginResponse{
		Email: user.Email,
		Role:  user.Role,
		ID:    user.ID,
	})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListUsers(r.Context())
	if err != nil {
		apiresp.WriteError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}
	apiresp.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.DeleteUser(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUserNotFound):
			apiresp.WriteError(w, http.StatusNotFound, "User not found")
		default:
			apiresp.WriteError(w, http.StatusInternalServerError, "Failed to delete user")
		}
		return
	}
	apiresp.WriteJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
