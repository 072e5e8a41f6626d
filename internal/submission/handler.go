package submission

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"quizbank/internal/app/apiresp"
)

type Handler struct {
	svc submissionService
}

type submissionService interface {
	Submit(ctx context.Context, in SubmitInput) (*Submission, error)
}

type submitRequest struct {
	StudentEmail string          `json:"studentEmail"`
	Answers      json.RawMessage `json:"answers"`
	Snapshots    []string        `json:"snapshots"`
}

func NewHandler(svc submissionService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.svc.Submit(r.Context(), SubmitInput{
		StudentEmail: req.StudentEmail,
		Answers:      req.Answers,
		Snapshots:    req.Snapshots,
	}); err != nil {
		if errors.Is(err, ErrInvalidInput) {
			apiresp.WriteError(w, http.StatusBadRequest, "Missing required fields")
			return
		}
		apiresp.WriteError(w, http.StatusInternalServerError, "Failed to save submission")
		return
	}

	apiresp.WriteJSON(w, http.StatusCreated, map[string]string{"message": "Submission saved successfully"})
}
