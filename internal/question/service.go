package question

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"quizbank/internal/store"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrQuestionNotFound = errors.New("question not found")
)

const (
	TypeMCQ   = "mcq"
	TypeShort = "short"
)

// Question is a bank entry, either global (visible to every requester) or
// assigned to an explicit list of student emails.
type Question struct {
	ID               string    `json:"id"`
	QuestionText     string    `json:"questionText"`
	CorrectAnswer    string    `json:"correctAnswer"`
	Options          []string  `json:"options"`
	Subject          string    `json:"subject,omitempty"`
	Difficulty       string    `json:"difficulty,omitempty"`
	Tags             []string  `json:"tags"`
	Type             string    `json:"type"`
	Global           bool      `json:"global"`
	AssignedToEmails []string  `json:"assignedToEmails"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type CreateInput struct {
	QuestionText     string
	CorrectAnswer    string
	Options          []string
	Subject          string
	Difficulty       string
	Tags             []string
	Type             string
	Global           bool
	AssignedToEmails []string
}

type Service struct {
	questions *store.Collection[Question]

	// placeholderAssignees controls the bulk-create fallback: when an item
	// is neither global nor carries assignees, synthesize one placeholder
	// email instead of rejecting the item.
	placeholderAssignees bool
}

type ServiceConfig struct {
	PlaceholderAssignees bool
}

func NewService(db *sql.DB, cfg ServiceConfig) *Service {
	return &Service{
		questions:            NewQuestionCollection(db),
		placeholderAssignees: cfg.PlaceholderAssignees,
	}
}

func NewQuestionCollection(db *sql.DB) *store.Collection[Question] {
	return store.NewCollection(db, "questions",
		func(q *Question) string { return q.ID },
		func(q *Question, id string) { q.ID = id },
	)
}

// List returns the question set visible to the given email: the union of
// global questions and questions assigned to that email. With no email,
// only the global subset is returned.
func (s *Service) List(ctx context.Context, email string) ([]Question, error) {
	email = strings.TrimSpace(email)
	return s.questions.Find(ctx, func(q *Question) bool {
		if q.Global {
			return true
		}
		if email == "" {
			return false
		}
		for _, assigned := range q.AssignedToEmails {
			if assigned == email {
				return true
			}
		}
		return false
	})
}

func (s *Service) Get(ctx context.Context, id string) (*Question, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput
	}
	q, err := s.questions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("load question: %w", err)
	}
	return q, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Question, error) {
	q, err := normalizeQuestion(in)
	if err != nil {
		return nil, err
	}
	if err := s.questions.InsertOne(ctx, &q); err != nil {
		return nil, fmt.Errorf("insert question: %w", err)
	}
	return &q, nil
}

// CreateMany persists a batch in one store transaction. Items that are
// neither global nor assigned fall under the placeholder policy.
func (s *Service) CreateMany(ctx context.Context, items []CreateInput) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: questions must be a non-empty list", ErrInvalidInput)
	}

	recs := make([]Question, 0, len(items))
	for i, in := range items {
		q, err := normalizeQuestion(in)
		if err != nil {
			return fmt.Errorf("questions[%d]: %w", i, err)
		}
		if !q.Global && len(q.AssignedToEmails) == 0 {
			if !s.placeholderAssignees {
				return fmt.Errorf("%w: questions[%d] has no assigned emails and is not global", ErrInvalidInput, i)
			}
			placeholder, err := randomPlaceholderEmail()
			if err != nil {
				return fmt.Errorf("generate placeholder email: %w", err)
			}
			q.AssignedToEmails = []string{placeholder}
		}
		recs = append(recs, q)
	}

	if err := s.questions.InsertMany(ctx, recs); err != nil {
		return fmt.Errorf("insert questions: %w", err)
	}
	return nil
}

// Update applies an arbitrary field-level patch. The create-time
// normalization invariants are not re-checked here; a patch can produce a
// global question with assignees. Known gap, kept on purpose.
func (s *Service) Update(ctx context.Context, id string, patch map[string]any) (*Question, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput
	}
	if patch == nil {
		patch = map[string]any{}
	}
	patch["updatedAt"] = time.Now().UTC()

	q, err := s.questions.UpdateByID(ctx, id, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("update question: %w", err)
	}
	return q, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	if err := s.questions.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("delete question: %w", err)
	}
	return nil
}

func normalizeQuestion(in CreateInput) (Question, error) {
	in.QuestionText = strings.TrimSpace(in.QuestionText)
	in.CorrectAnswer = strings.TrimSpace(in.CorrectAnswer)
	in.Type = strings.TrimSpace(strings.ToLower(in.Type))

	if in.QuestionText == "" || in.CorrectAnswer == "" {
		return Question{}, fmt.Errorf("%w: question text and correct answer are required", ErrInvalidInput)
	}
	if in.Type == "" {
		in.Type = TypeMCQ
	}
	if in.Type != TypeMCQ && in.Type != TypeShort {
		return Question{}, fmt.Errorf("%w: type must be %s or %s", ErrInvalidInput, TypeMCQ, TypeShort)
	}

	options := in.Options
	if in.Type == TypeShort {
		options = []string{}
	}
	assigned := in.AssignedToEmails
	if in.Global {
		assigned = []string{}
	}

	now := time.Now().UTC()
	return Question{
		QuestionText:     in.QuestionText,
		CorrectAnswer:    in.CorrectAnswer,
		Options:          emptyIfNil(options),
		Subject:          strings.TrimSpace(in.Subject),
		Difficulty:       strings.TrimSpace(in.Difficulty),
		Tags:             emptyIfNil(in.Tags),
		Type:             in.Type,
		Global:           in.Global,
		AssignedToEmails: emptyIfNil(assigned),
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

func emptyIfNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

const placeholderAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// randomPlaceholderEmail invents a user_<random8>@example.com assignee so a
// bulk item without an assignment list is not orphaned.
func randomPlaceholderEmail() (string, error) {
	buf := make([]byte, 8)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(placeholderAlphabet))))
		if err != nil {
			return "", err
		}
		buf[i] = placeholderAlphabet[n.Int64()]
	}
	return "user_" + string(buf) + "@example.com", nil
}
