package submission

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"quizbank/internal/store"
)

var ErrInvalidInput = errors.New("invalid input")

// Submission records one submission event. Answers are opaque to this
// layer; snapshots are opaque artifacts such as base64 proctoring images.
// Records are immutable once written.
type Submission struct {
	ID           string            `json:"id"`
	StudentEmail string            `json:"studentEmail"`
	Answers      []json.RawMessage `json:"answers"`
	Snapshots    []string          `json:"snapshots"`
	SubmittedAt  time.Time         `json:"submittedAt"`
}

type SubmitInput struct {
	StudentEmail string
	Answers      json.RawMessage
	Snapshots    []string
}

type Service struct {
	submissions *store.Collection[Submission]
}

func NewService(db *sql.DB) *Service {
	return &Service{submissions: NewSubmissionCollection(db)}
}

func NewSubmissionCollection(db *sql.DB) *store.Collection[Submission] {
	return store.NewCollection(db, "submissions",
		func(sub *Submission) string { return sub.ID },
		func(sub *Submission, id string) { sub.ID = id },
	)
}

// Submit validates and persists one submission. The timestamp is taken
// from the server clock at persistence time, never from the client, so
// submissions cannot be backdated. Repeated calls create independent
// records.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*Submission, error) {
	in.StudentEmail = strings.TrimSpace(in.StudentEmail)
	if in.StudentEmail == "" {
		return nil, fmt.Errorf("%w: student email is required", ErrInvalidInput)
	}

	answers, err := decodeAnswers(in.Answers)
	if err != nil {
		return nil, err
	}

	snapshots := in.Snapshots
	if snapshots == nil {
		snapshots = []string{}
	}

	sub := Submission{
		StudentEmail: in.StudentEmail,
		Answers:      answers,
		Snapshots:    snapshots,
		SubmittedAt:  time.Now().UTC(),
	}
	if err := s.submissions.InsertOne(ctx, &sub); err != nil {
		return nil, fmt.Errorf("insert submission: %w", err)
	}
	return &sub, nil
}

func decodeAnswers(raw json.RawMessage) ([]json.RawMessage, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: answers are required", ErrInvalidInput)
	}
	var answers []json.RawMessage
	if err := json.Unmarshal(raw, &answers); err != nil {
		return nil, fmt.Errorf("%w: answers must be a sequence", ErrInvalidInput)
	}
	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: answers must not be empty", ErrInvalidInput)
	}
	return answers, nil
}
