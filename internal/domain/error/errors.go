package error

import "errors"

// 领域层错误定义

const (
	CodeValidation = "VALIDATION"
	CodeNotFound   = "NOT_FOUND"
	CodeState      = "INVALID_STATE"
)

var (
	// Task相关错误
	ErrTaskNotFound = NewBusinessError(CodeNotFound, "task not found", nil)
	ErrInvalidState = NewBusinessError(CodeState, "invalid task state", nil)

	// 凭证相关错误
	ErrAccountNotFound      = NewBusinessError(CodeNotFound, "wechat account not found", nil)
	ErrCredentialStoreEmpty = NewBusinessError(CodeValidation, "wechat credential store is empty", nil)
	ErrUserNotFound         = NewBusinessError(CodeNotFound, "user not found", nil)
	ErrRecipientNotBound    = NewBusinessError(CodeValidation, "user has no bound wechat openid", nil)

	// 通用错误
	ErrInvalidInput = NewBusinessError(CodeValidation, "invalid input", nil)
)

// DomainError 领域错误接口
type DomainError interface {
	error
	Code() string
	Message() string
}

// BusinessError 业务错误
type BusinessError struct {
	code    string
	message string
	cause   error
}

func NewBusinessError(code, message string, cause error) *BusinessError {
	return &BusinessError{
		code:    code,
		message: message,
		cause:   cause,
	}
}

// Validation wraps a field-level validation failure.
func Validation(message string) *BusinessError {
	return NewBusinessError(CodeValidation, message, ErrInvalidInput)
}

// State reports a lifecycle transition that is not allowed from the current status.
func State(message string) *BusinessError {
	return NewBusinessError(CodeState, message, ErrInvalidState)
}

func (e *BusinessError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *BusinessError) Code() string {
	return e.code
}

func (e *BusinessError) Message() string {
	return e.message
}

func (e *BusinessError) Unwrap() error {
	return e.cause
}

// CodeOf returns the code of the first DomainError in err's chain, or "".
func CodeOf(err error) string {
	var de DomainError
	if errors.As(err, &de) {
		return de.Code()
	}
	return ""
}

func IsNotFound(err error) bool   { return CodeOf(err) == CodeNotFound }
func IsState(err error) bool      { return CodeOf(err) == CodeState }
func IsValidation(err error) bool { return CodeOf(err) == CodeValidation }
