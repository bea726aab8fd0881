package models

// Error codes returned in ErrorResponse.Code.
const (
	ErrCodeBadRequest       = 40001
	ErrCodeValidation       = 40002
	ErrCodeInvalidLevel     = 40003
	ErrCodeInvalidScore     = 40004
	ErrCodeWrongCredentials = 40101
	ErrCodeTokenInvalid     = 40102
	ErrCodeTokenExpired     = 40103
	ErrCodeWrongPassword    = 40104
	ErrCodeForbidden        = 40301
	ErrCodeNotFound         = 40401
	ErrCodeUserNotFound     = 40402
	ErrCodeWordNotFound     = 40403
	ErrCodeDuplicateEmail   = 40901
	ErrCodeDuplicateWord    = 40902
	ErrCodeTooManyRequests  = 42901
	ErrCodeInternal         = 50001
)

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
