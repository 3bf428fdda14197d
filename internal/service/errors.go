package service

import "errors"

// Sentinel errors returned by services. Handlers map them onto status codes.
var (
	// auth
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrPasswordNotSet     = errors.New("account has no password, sign in with Google")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidGoogleToken = errors.New("invalid google credential")
	ErrTokenRevoked       = errors.New("token has been revoked")

	// ownership
	ErrForbidden = errors.New("forbidden")

	// profile and files
	ErrProfileNotFound       = errors.New("profile not found")
	ErrUnsupportedFile       = errors.New("unsupported file type")
	ErrInvalidDocumentType   = errors.New("invalid document type")
	ErrFileLimitReached      = errors.New("file limit reached")
	ErrAdditionalDocsReached = errors.New("additional document limit reached")
	ErrFileNotFound          = errors.New("file not found")
	ErrFileTooLarge          = errors.New("file too large")

	// catalog
	ErrUniversityNotFound = errors.New("university not found")
	ErrProgramNotFound    = errors.New("program not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrDuplicateEntry     = errors.New("entry already exists")

	// applications
	ErrApplicationNotFound  = errors.New("application not found")
	ErrApplicationLimit     = errors.New("application limit reached")
	ErrProgramRequired      = errors.New("program id is required")
	ErrApplicationExists    = errors.New("application for this program already exists")
	ErrInvalidDeadline      = errors.New("invalid deadline")
	ErrInvalidQuestion      = errors.New("invalid question")
	ErrOnlyCustomDeletable  = errors.New("only custom questions can be deleted")
	ErrNoteNotFound         = errors.New("note not found")
	ErrInvalidNote          = errors.New("invalid note")
	ErrAnswerNotFound       = errors.New("answer not found")
	ErrInvalidAnswerStatus  = errors.New("invalid answer status")
	ErrNoAIQuestions        = errors.New("no AI-enabled questions found")
	ErrGenerationInProgress = errors.New("generation already in progress")
	ErrGenerationFailed     = errors.New("an error occurred while processing the application")
	ErrInvalidAIResponse    = errors.New("could not parse AI response")
	ErrNoSuggestions        = errors.New("no suggestions returned")

	// recommendations
	ErrResumeRequired    = errors.New("resume text is required")
	ErrNoRecommendations = errors.New("no recommendations produced")
	ErrTextRequired      = errors.New("no text provided")

	// subscriptions
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrNoActiveSubscription = errors.New("no active subscription")
)
