package model

import (
	"time"

	"github.com/google/uuid"
)

// DocumentType classifies an uploaded profile file.
type DocumentType string

const (
	DocProfilePicture     DocumentType = "Profile Picture"
	DocCV                 DocumentType = "CV"
	DocTranscript         DocumentType = "Transcript"
	DocDegreeCertificate  DocumentType = "Degree Certificate"
	DocAdditionalDocument DocumentType = "Additional Document"
)

// DocumentTypes lists every accepted document type.
var DocumentTypes = []DocumentType{
	DocProfilePicture,
	DocCV,
	DocTranscript,
	DocDegreeCertificate,
	DocAdditionalDocument,
}

// Valid reports whether d is one of DocumentTypes.
func (d DocumentType) Valid() bool {
	for _, t := range DocumentTypes {
		if t == d {
			return true
		}
	}
	return false
}

// Profile holds everything an applicant tells us about themselves.
// Maps and lists are stored as JSONB columns.
type Profile struct {
	UserID          uuid.UUID         `json:"user_id"`
	Email           string            `json:"email"`
	Questionnaire   map[string]string `json:"questionnaire"`
	PersonalInfo    map[string]string `json:"personal_info"`
	Files           []ProfileFile     `json:"files"`
	WorkExperience  []WorkExperience  `json:"work_experience"`
	Education       []Education       `json:"education"`
	CompletionScore float64           `json:"profile_completion_score"`
	ResumeText      string            `json:"resume_text"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// NewProfile returns an empty profile with initialized maps.
func NewProfile(userID uuid.UUID, email string) *Profile {
	return &Profile{
		UserID:         userID,
		Email:          email,
		Questionnaire:  map[string]string{},
		PersonalInfo:   map[string]string{},
		Files:          []ProfileFile{},
		WorkExperience: []WorkExperience{},
		Education:      []Education{},
	}
}

// FileOfType returns the first file with the given document type, or nil.
func (p *Profile) FileOfType(t DocumentType) *ProfileFile {
	for i := range p.Files {
		if p.Files[i].DocumentType == t {
			return &p.Files[i]
		}
	}
	return nil
}

// CountFiles counts files of the given document type.
func (p *Profile) CountFiles(t DocumentType) int {
	n := 0
	for _, f := range p.Files {
		if f.DocumentType == t {
			n++
		}
	}
	return n
}

type ProfileFile struct {
	ID               uuid.UUID    `json:"id"`
	FileName         string       `json:"file_name"`
	OriginalFileName string       `json:"original_file_name"`
	DocumentType     DocumentType `json:"document_type"`
	MimeType         string       `json:"mime_type"`
	FileSize         int64        `json:"file_size"`
	FileExtension    string       `json:"file_extension"`
	StorageKey       string       `json:"storage_key"`
	UploadedAt       time.Time    `json:"uploaded_at"`
}

type WorkExperience struct {
	Company     string `json:"company"`
	Role        string `json:"role"`
	Location    string `json:"location"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Description string `json:"description"`
}

type Education struct {
	UniversityName string   `json:"university_name"`
	DegreeType     string   `json:"degree_type"`
	GPA            float64  `json:"gpa"`
	Major          string   `json:"major"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
	CoursesDone    []string `json:"courses_done"`
}
