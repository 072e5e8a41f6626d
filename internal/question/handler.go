package question

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"quizbank/internal/app/apiresp"
)

type Handler struct {
	svc questionService
}

type questionService interface {
	List(ctx context.Context, email string) ([]Question, error)
	Get(ctx context.Context, id string) (*Question, error)
	Create(ctx context.Context, in CreateInput) (*Question, error)
	CreateMany(ctx context.Context, items []CreateInput) error
	Update(ctx context.Context, id string, patch map[string]any) (*Question, error)
	Delete(ctx context.Context, id string) error
	ExportXLSX(ctx context.Context, email string) ([]byte, error)
}

type createQuestionRequest struct {
	QuestionText     string   `json:"questionText"`
	CorrectAnswer    string   `json:"correctAnswer"`
	Options          []string `json:"options"`
	Subject          string   `json:"subject"`
	Difficulty       string   `json:"difficulty"`
	Tags             []string `json:"tags"`
	Type             string   `json:"type"`
	Global           bool     `json:"global"`
	AssignedToEmails []string `json:"assignedToEmails"`
}

type bulkCreateRequest struct {
	Questions []createQuestionRequest `json:"questions"`
}

type updateQuestionResponse struct {
	Message         string    `json:"message"`
	UpdatedQuestion *Question `json:"updatedQuestion"`
}

func NewHandler(svc questionService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))

	items, err := h.svc.List(r.Context(), email)
	if err != nil {
		apiresp.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	apiresp.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	item, err := h.svc.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrQuestionNotFound):
			// contract quirk: this 404 body uses a message key, not error
			apiresp.WriteJSON(w, http.StatusNotFound, map[string]string{"message": "Not found"})
		default:
			apiresp.WriteError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	apiresp.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.svc.Create(r.Context(), createInputFromRequest(req))
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			apiresp.WriteError(w, http.StatusBadRequest, "Question text and correct answer are required")
			return
		}
		apiresp.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	apiresp.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) CreateBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, http.StatusBadRequest, "Invalid questions data")
		return
	}

	items := make([]CreateInput, 0, len(req.Questions))
	for _, q := range req.Questions {
		items = append(items, createInputFromRequest(q))
	}

	if err := h.svc.CreateMany(r.Context(), items); err != nil {
		if errors.Is(err, ErrInvalidInput) {
			apiresp.WriteError(w, http.StatusBadRequest, "Invalid questions data")
			return
		}
		apiresp.WriteError(w, http.StatusInternalServerError, "Failed to create questions")
		return
	}
	apiresp.WriteJSON(w, http.StatusCreated, map[string]string{"message": "Questions created successfully"})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		apiresp.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrQuestionNotFound):
			apiresp.WriteError(w, http.StatusNotFound, "Question not found")
		default:
			apiresp.WriteError(w, http.StatusInternalServerError, "Failed to update question")
		}
		return
	}
	apiresp.WriteJSON(w, http.StatusOK, updateQuestionResponse{
		Message:         "Question updated",
		UpdatedQuestion: item,
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrQuestionNotFound):
			// same message-keyed 404 body as Get
			apiresp.WriteJSON(w, http.StatusNotFound, map[string]string{"message": "Not found"})
		default:
			apiresp.WriteError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	apiresp.WriteJSON(w, http.StatusOK, map[string]string{"message": "Deleted successfully"})
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))

	data, err := h.svc.ExportXLSX(r.Context(), email)
	if err != nil {
		apiresp.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="questions.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func createInputFromRequest(req createQuestionRequest) CreateInput {
	return CreateInput{
		QuestionText:     req.QuestionText,
		CorrectAnswer:    req.CorrectAnswer,
		Options:          req.Options,
		Subject:          req.Subject,
		Difficulty:       req.Difficulty,
		Tags:             req.Tags,
		Type:             req.Type,
		Global:           req.Global,
		AssignedToEmails: req.AssignedToEmails,
	}
}
