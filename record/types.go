package record

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnknownQuestion = errors.New("unknown question")
	ErrAnswerType      = errors.New("answer does not match the question type")
	ErrDuplicateAnswer = errors.New("duplicate answer")
	ErrAlreadySigned   = errors.New("consent already signed for this appointment")
)

type AnswerType string

const (
	AnswerText    AnswerType = "TEXT"
	AnswerBoolean AnswerType = "BOOLEAN"
)

func ParseAnswerType(s string) (AnswerType, error) {
	t := AnswerType(strings.ToUpper(strings.TrimSpace(s)))
	if t != AnswerText && t != AnswerBoolean {
		return "", fmt.Errorf("unknown answer type %q", s)
	}
	return t, nil
}

// Question is one item of the intake form filled in at an appointment.
type Question struct {
	ID         uuid.UUID  `json:"id"`
	Text       string     `json:"text"`
	AnswerType AnswerType `json:"answer_type"`
	Active     bool       `json:"active"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (q *Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return errors.New("text is required")
	}
	t, err := ParseAnswerType(string(q.AnswerType))
	if err != nil {
		return err
	}
	q.AnswerType = t
	return nil
}

// Answer holds Text for TEXT questions and Boolean for BOOLEAN ones.
type Answer struct {
	QuestionID uuid.UUID `json:"question_id"`
	Text       *string   `json:"text,omitempty"`
	Boolean    *bool     `json:"boolean,omitempty"`
}

func (a *Answer) matches(t AnswerType) bool {
	switch t {
	case AnswerText:
		return a.Text != nil && a.Boolean == nil
	case AnswerBoolean:
		return a.Boolean != nil && a.Text == nil
	}
	return false
}

// Entry is one answer in a client's record, with the appointment it belongs to.
type Entry struct {
	AppointmentID    uuid.UUID `json:"appointment_id"`
	AppointmentStart time.Time `json:"appointment_start"`
	QuestionID       uuid.UUID `json:"question_id"`
	Question         string    `json:"question"`
	Text             *string   `json:"text,omitempty"`
	Boolean          *bool     `json:"boolean,omitempty"`
}

// Consent is the signed term that authorises the procedure of an appointment.
type Consent struct {
	ID            uuid.UUID `json:"id"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	SignedBy      string    `json:"signed_by"`
	SignerIP      string    `json:"signer_ip,omitempty"`
	SignedAt      time.Time `json:"signed_at"`
}

func (c *Consent) Validate() error {
	if c.AppointmentID == uuid.Nil {
		return errors.New("appointment ID is required")
	}
	if strings.TrimSpace(c.SignedBy) == "" {
		return errors.New("signed by is required")
	}
	return nil
}
