package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	ErrCategoryNotFound    = errors.New("category not found")
	ErrNoCategories        = errors.New("no categories found")
	ErrLeadNotFound        = errors.New("lead not found")
	ErrVideoNotFound       = errors.New("video not found")
	ErrBucketNotFound      = errors.New("storage bucket not found")
	ErrObjectNotFound      = errors.New("object not found")
	ErrSalesRecordNotFound = errors.New("sales record not found")
	ErrFactorNotFound      = errors.New("factor not found")
	ErrChallengeNotFound   = errors.New("challenge not found")
	ErrChallengeExpired    = errors.New("challenge expired or already used")
	ErrInvalidMFACode      = errors.New("invalid verification code")
	ErrInvalidRecoveryCode = errors.New("invalid recovery code")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrForbidden           = errors.New("forbidden")
)

// Error codes carried by BusinessError; handlers map them to HTTP statuses
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeInvalidCategory     = "INVALID_CATEGORY"
	CodeCategoryNotFound    = "CATEGORY_NOT_FOUND"
	CodeNoCategories        = "NO_CATEGORIES"
	CodeLeadNotFound        = "LEAD_NOT_FOUND"
	CodeInvalidTwitterURL   = "INVALID_TWITTER_URL"
	CodeVideoNotFound       = "VIDEO_NOT_FOUND"
	CodeBucketNotFound      = "BUCKET_NOT_FOUND"
	CodeObjectNotFound      = "OBJECT_NOT_FOUND"
	CodeNoValidFields       = "NO_VALID_FIELDS"
	CodeInvalidFileType     = "INVALID_FILE_TYPE"
	CodeFileTooLarge        = "FILE_TOO_LARGE"
	CodeInvalidPath         = "INVALID_PATH"
	CodeSalesRecordNotFound = "SALES_RECORD_NOT_FOUND"
	CodeInvalidLookup       = "INVALID_LOOKUP"
	CodeFactorNotFound      = "FACTOR_NOT_FOUND"
	CodeChallengeNotFound   = "CHALLENGE_NOT_FOUND"
	CodeChallengeExpired    = "CHALLENGE_EXPIRED"
	CodeInvalidMFACode      = "INVALID_MFA_CODE"
	CodeInvalidRecoveryCode = "INVALID_RECOVERY_CODE"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeForbidden           = "FORBIDDEN"
	CodeMFARequired         = "MFA_REQUIRED"
	CodeStorageError        = "STORAGE_ERROR"
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

// validationError is the common 400 shape
func validationError(message string) *BusinessError {
	return NewBusinessError(CodeValidation, message, nil)
}

// AsBusinessError extracts a BusinessError anywhere in err's chain
func AsBusinessError(err error) (*BusinessError, bool) {
	var be *BusinessError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

func IsCategoryNotFound(err error) bool {
	return errors.Is(err, ErrCategoryNotFound)
}

func IsLeadNotFound(err error) bool {
	return errors.Is(err, ErrLeadNotFound)
}

func IsVideoNotFound(err error) bool {
	return errors.Is(err, ErrVideoNotFound)
}

func IsBucketNotFound(err error) bool {
	return errors.Is(err, ErrBucketNotFound)
}

func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

func IsFactorNotFound(err error) bool {
	return errors.Is(err, ErrFactorNotFound)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}
