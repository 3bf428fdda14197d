package model

import (
	"time"

	"github.com/google/uuid"
)

// ─── Auth ───────────────────────────────────────────────────────────────────

type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=5"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// GoogleLoginRequest carries the ID token from Google Identity Services.
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

type TokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=5"`
}

// LoginResult is returned by every successful sign-in.
type LoginResult struct {
	User  UserSummary `json:"user"`
	Token string      `json:"token"`
}

// ─── Profile ────────────────────────────────────────────────────────────────

type ProfileAnswerRequest struct {
	QuestionID string `json:"question_id" binding:"required"`
	Answer     string `json:"answer"`
}

type AddressInput struct {
	Country       string `json:"country"`
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	State         string `json:"state"`
	ZipCode       string `json:"zip_code"`
}

// PersonalProfileRequest updates personal info. A nil Education or
// WorkExperience leaves the stored list untouched.
type PersonalProfileRequest struct {
	PersonalInfo   map[string]string `json:"personal_info"`
	Address        *AddressInput     `json:"address"`
	Education      []Education       `json:"education"`
	WorkExperience []WorkExperience  `json:"work_experience"`
}

type ResumeTextRequest struct {
	ResumeText string `json:"resume_text"`
}

// FileUploadForm carries the non-file fields of a multipart profile upload.
type FileUploadForm struct {
	DocumentType     string `form:"document_type" binding:"required,doctype"`
	FileName         string `form:"file_name"`
	OriginalFileName string `form:"original_file_name"`
}

// ─── Catalog ────────────────────────────────────────────────────────────────

type UniversityRequest struct {
	Name        string `json:"name" binding:"required"`
	Information string `json:"information"`
	Logo        string `json:"logo"`
}

// QuestionInput keeps ID when an existing program question is edited.
type QuestionInput struct {
	ID         *uuid.UUID `json:"id"`
	Question   string     `json:"question" binding:"required"`
	Type       string     `json:"type"`
	Guidelines string     `json:"guidelines"`
	LimitType  LimitType  `json:"limit_type" binding:"required,limittype"`
	LimitValue *int       `json:"limit_value"`
	EnableAI   bool       `json:"enable_ai"`
}

type DeadlineInput struct {
	ID          *uuid.UUID `json:"id"`
	Name        string     `json:"deadline_name" binding:"required"`
	Date        time.Time  `json:"deadline_date" binding:"required"`
	Description string     `json:"deadline_description"`
}

type ProgramRequest struct {
	UniversityID         uuid.UUID       `json:"university_id" binding:"required"`
	ProgramType          string          `json:"program_type" binding:"required"`
	ProgramName          string          `json:"program_name" binding:"required"`
	Information          string          `json:"information"`
	Logo                 string          `json:"logo"`
	SessionID            string          `json:"session_id"`
	ApplicationQuestions []QuestionInput `json:"application_questions" binding:"dive"`
	Deadlines            []DeadlineInput `json:"deadlines" binding:"dive"`
}

type ProfileSectionRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	PageNumber  int    `json:"page_number"`
}

type ProfileQuestionRequest struct {
	Question  string    `json:"question" binding:"required"`
	SectionID uuid.UUID `json:"section_id" binding:"required"`
	Kind      string    `json:"kind" binding:"required"`
}

// ─── Applications ───────────────────────────────────────────────────────────

// ApplicationDeadlineInput selects a program deadline or describes a custom one.
type ApplicationDeadlineInput struct {
	OriginalDeadlineID *uuid.UUID `json:"original_deadline_id"`
	Name               string     `json:"name"`
	Date               *time.Time `json:"date"`
}

type CreateApplicationRequest struct {
	ProgramID *uuid.UUID                `json:"program_id"`
	Deadline  *ApplicationDeadlineInput `json:"deadline"`
}

// ApplicationQuestionInput is validated in the service so that the exact
// rules apply to create and update alike.
type ApplicationQuestionInput struct {
	Question   string    `json:"question"`
	Type       string    `json:"type"`
	Guidelines string    `json:"guidelines"`
	LimitType  LimitType `json:"limit_type"`
	LimitValue *int      `json:"limit_value"`
	EnableAI   *bool     `json:"enable_ai"`
}

type NoteRequest struct {
	Content string `json:"content" binding:"required,max=300"`
}

type FinalAnswerRequest struct {
	FinalAnswer string `json:"final_answer"`
}

type AnswerStatusRequest struct {
	Status AnswerStatus `json:"status" binding:"required,answerstatus"`
}

type RefineRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

type SuggestionsRequest struct {
	Answer string `json:"answer" binding:"required"`
}

// ─── Recommendations / contact / billing ────────────────────────────────────

type RecommendationRequest struct {
	CareerGoals string `json:"career_goals" binding:"required"`
}

type ExtractRequest struct {
	Text string `json:"text" binding:"required"`
}

type ContactRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message" binding:"required"`
}

type StripeSessionRequest struct {
	PriceID string `json:"price_id" binding:"required"`
}
