package model

import (
	"time"

	"github.com/google/uuid"
)

// LimitType bounds an essay answer by words, characters, or not at all.
type LimitType string

const (
	LimitWord LimitType = "Word"
	LimitChar LimitType = "Char"
	LimitNone LimitType = "None"
)

func (l LimitType) Valid() bool {
	return l == LimitWord || l == LimitChar || l == LimitNone
}

// ProgramTypes enumerates the accepted program formats.
var ProgramTypes = []string{"Distance Learning", "Dual Degree", "Executive MBA", "Full-Time", "Part-Time"}

type University struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Information string    `json:"information"`
	Logo        string    `json:"logo"`
	LogoURL     *string   `json:"logo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Question is the shape shared by program questions and application questions.
type Question struct {
	ID         uuid.UUID `json:"id"`
	Question   string    `json:"question"`
	Type       string    `json:"type"`
	Guidelines string    `json:"guidelines"`
	LimitType  LimitType `json:"limit_type"`
	LimitValue *int      `json:"limit_value,omitempty"`
	EnableAI   bool      `json:"enable_ai"`
}

type ProgramDeadline struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"deadline_name"`
	Date        time.Time `json:"deadline_date"`
	Description string    `json:"deadline_description"`
}

type Program struct {
	ID                   uuid.UUID         `json:"id"`
	UniversityID         uuid.UUID         `json:"university_id"`
	University           *University       `json:"university,omitempty"`
	ProgramType          string            `json:"program_type"`
	ProgramName          string            `json:"program_name"`
	Information          string            `json:"information"`
	Logo                 string            `json:"logo"`
	SessionID            string            `json:"session_id"`
	ApplicationQuestions []Question        `json:"application_questions"`
	Deadlines            []ProgramDeadline `json:"deadlines"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// FindDeadline returns the program deadline with the given ID, or nil.
func (p *Program) FindDeadline(id uuid.UUID) *ProgramDeadline {
	for i := range p.Deadlines {
		if p.Deadlines[i].ID == id {
			return &p.Deadlines[i]
		}
	}
	return nil
}

// ProfileQuestionKindBrainstorm marks questions that feed essay generation and completion scoring.
const ProfileQuestionKindBrainstorm = "BrainStorm"

type ProfileSection struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PageNumber  int       `json:"page_number"`
	CreatedAt   time.Time `json:"created_at"`
}

type ProfileQuestion struct {
	ID        uuid.UUID `json:"id"`
	Question  string    `json:"question"`
	SectionID uuid.UUID `json:"section_id"`
	Kind      string    `json:"kind"`
}
