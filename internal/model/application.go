package model

import (
	"time"

	"github.com/google/uuid"
)

// AnswerStatus tracks how far the applicant got with a question.
type AnswerStatus string

const (
	StatusNotStarted AnswerStatus = "not_started"
	StatusStarted    AnswerStatus = "started"
	StatusFinished   AnswerStatus = "finished"
)

func (s AnswerStatus) Valid() bool {
	return s == StatusNotStarted || s == StatusStarted || s == StatusFinished
}

// EssayQuestion is a question attached to an application, copied from the
// program or added by the applicant.
type EssayQuestion struct {
	Question
	OriginalQuestionID *uuid.UUID `json:"original_question_id,omitempty"`
	IsCustom           bool       `json:"is_custom"`
	LastModified       time.Time  `json:"last_modified"`
}

type Answer struct {
	AIAnswer     string       `json:"ai_answer"`
	FinalAnswer  string       `json:"final_answer"`
	Status       AnswerStatus `json:"status"`
	LastModified time.Time    `json:"last_modified"`
}

type Note struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type Deadline struct {
	Name               string     `json:"name"`
	Date               time.Time  `json:"date"`
	IsCustom           bool       `json:"is_custom"`
	OriginalDeadlineID *uuid.UUID `json:"original_deadline_id,omitempty"`
}

// Application is one applicant's work on one program.
// Questions, answers, notes and deadline are JSONB columns.
type Application struct {
	ID           uuid.UUID         `json:"id"`
	UserID       uuid.UUID         `json:"user_id"`
	ProgramID    uuid.UUID         `json:"program_id"`
	Program      *Program          `json:"program,omitempty"`
	Questions    []EssayQuestion   `json:"questions"`
	Answers      map[string]Answer `json:"answers"`
	Notes        []Note            `json:"notes"`
	Deadline     *Deadline         `json:"deadline,omitempty"`
	IsGenerating bool              `json:"is_generating"`
	IsActive     bool              `json:"is_active"`
	CreatedAt    time.Time         `json:"created_at"`
	LastModified time.Time         `json:"last_modified"`
}

// FindQuestion returns the index of the question with the given ID, or -1.
func (a *Application) FindQuestion(id uuid.UUID) int {
	for i := range a.Questions {
		if a.Questions[i].ID == id {
			return i
		}
	}
	return -1
}

// FindNote returns the index of the note with the given ID, or -1.
func (a *Application) FindNote(id uuid.UUID) int {
	for i := range a.Notes {
		if a.Notes[i].ID == id {
			return i
		}
	}
	return -1
}

// ApplicationSummary is what an applicant sees for applications beyond their plan limit.
type ApplicationSummary struct {
	ID             uuid.UUID `json:"id"`
	ProgramName    string    `json:"program_name"`
	UniversityName string    `json:"university_name"`
	IsActive       bool      `json:"is_active"`
	Logo           *string   `json:"logo"`
}

// UpcomingDeadline is a flattened deadline row across a user's applications.
type UpcomingDeadline struct {
	ApplicationID  uuid.UUID `json:"application_id"`
	ProgramName    string    `json:"program_name"`
	UniversityName string    `json:"university_name"`
	Deadline       Deadline  `json:"deadline"`
}
