package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session-specific validation errors.
var (
	ErrSessionIDEmpty      = errors.New("session ID cannot be empty")
	ErrSessionSubjectEmpty = errors.New("session subject ID cannot be empty")
)

// Session identifies a subject or resource under study. It is created
// when a study view is opened and torn down when the view closes; the
// core keeps no persistent record of it.
type Session struct {
	ID        uuid.UUID `json:"id"`
	SubjectID string    `json:"subject_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSession creates a Session for the given subject and stamps its
// creation time. Returns an error if validation fails.
func NewSession(subjectID string) (*Session, error) {
	session := &Session{
		ID:        uuid.New(),
		SubjectID: subjectID,
		CreatedAt: time.Now().UTC(),
	}

	if err := session.Validate(); err != nil {
		return nil, err
	}

	return session, nil
}

// Validate checks if the Session has valid data.
func (s *Session) Validate() error {
	if s.ID == uuid.Nil {
		return ErrSessionIDEmpty
	}

	if s.SubjectID == "" {
		return ErrSessionSubjectEmpty
	}

	return nil
}
