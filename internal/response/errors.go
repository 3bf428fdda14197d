package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrEmailTaken         ErrCode = "EMAIL_TAKEN"
	ErrPasswordNotSet     ErrCode = "PASSWORD_NOT_SET"
	ErrInvalidToken       ErrCode = "INVALID_OR_EXPIRED_TOKEN"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenRevoked       ErrCode = "TOKEN_REVOKED"
	ErrInvalidGoogleToken ErrCode = "INVALID_GOOGLE_TOKEN"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrAdminAccessOnly ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Applications ──────────────────────────────────────────────────
	ErrApplicationLimit     ErrCode = "APPLICATION_LIMIT_REACHED"
	ErrApplicationExists    ErrCode = "APPLICATION_EXISTS"
	ErrProgramRequired      ErrCode = "PROGRAM_REQUIRED"
	ErrInvalidDeadline      ErrCode = "INVALID_DEADLINE"
	ErrInvalidQuestion      ErrCode = "INVALID_QUESTION"
	ErrOnlyCustomDeletable  ErrCode = "ONLY_CUSTOM_QUESTIONS_DELETABLE"
	ErrInvalidNote          ErrCode = "INVALID_NOTE"
	ErrInvalidAnswerStatus  ErrCode = "INVALID_ANSWER_STATUS"
	ErrNoAIQuestions        ErrCode = "NO_AI_QUESTIONS"
	ErrGenerationInProgress ErrCode = "GENERATION_IN_PROGRESS"
	ErrGenerationFailed     ErrCode = "GENERATION_FAILED"
	ErrInvalidAIResponse    ErrCode = "INVALID_AI_RESPONSE"

	// ─── Profile & Files ───────────────────────────────────────────────
	ErrFileRequired          ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile       ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge          ErrCode = "FILE_TOO_LARGE"
	ErrInvalidDocumentType   ErrCode = "INVALID_DOCUMENT_TYPE"
	ErrFileLimitReached      ErrCode = "FILE_LIMIT_REACHED"
	ErrAdditionalDocsReached ErrCode = "ADDITIONAL_DOCUMENT_LIMIT_REACHED"
	ErrResumeRequired        ErrCode = "RESUME_REQUIRED"
	ErrNoRecommendations     ErrCode = "NO_RECOMMENDATIONS"

	// ─── Billing ───────────────────────────────────────────────────────
	ErrCustomerNotFound     ErrCode = "CUSTOMER_NOT_FOUND"
	ErrNoActiveSubscription ErrCode = "NO_ACTIVE_SUBSCRIPTION"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid email or password."
	case ErrEmailTaken:
		return "User already exists."
	case ErrPasswordNotSet:
		return "This account signs in with Google. Please use Google login or reset your password."
	case ErrInvalidToken:
		return "Invalid or expired token."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."
	case ErrTokenRevoked:
		return "Your session has ended. Please log in again."
	case ErrInvalidGoogleToken:
		return "Google sign-in could not be verified."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	// ─── Applications ──────────────────────────────────────────────────
	case ErrApplicationLimit:
		return "You have reached the application limit of your plan."
	case ErrApplicationExists:
		return "An application for this program already exists."
	case ErrProgramRequired:
		return "Program ID is required."
	case ErrInvalidDeadline:
		return "Invalid deadline."
	case ErrInvalidQuestion:
		return "Invalid question."
	case ErrOnlyCustomDeletable:
		return "Only custom questions can be deleted."
	case ErrInvalidNote:
		return "Note content must be between 1 and 300 characters."
	case ErrInvalidAnswerStatus:
		return "Status must be not_started, started or finished."
	case ErrNoAIQuestions:
		return "No AI-enabled questions found."
	case ErrGenerationInProgress:
		return "Answers are already being generated for this application."
	case ErrGenerationFailed:
		return "An error occurred while processing the application."
	case ErrInvalidAIResponse:
		return "Could not parse the AI response. Please try again."

	// ─── Profile & Files ───────────────────────────────────────────────
	case ErrFileRequired:
		return "A file upload is required."
	case ErrUnsupportedFile:
		return "Unsupported file type."
	case ErrFileTooLarge:
		return "File size exceeds the limit."
	case ErrInvalidDocumentType:
		return "Invalid document type."
	case ErrFileLimitReached:
		return "Maximum number of files reached."
	case ErrAdditionalDocsReached:
		return "Maximum number of additional documents reached."
	case ErrResumeRequired:
		return "Resume text is required. Please add your resume first."
	case ErrNoRecommendations:
		return "Failed to parse school recommendations."

	// ─── Billing ───────────────────────────────────────────────────────
	case ErrCustomerNotFound:
		return "Customer not found."
	case ErrNoActiveSubscription:
		return "No active subscription found."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
