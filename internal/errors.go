package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeNameRequired     ErrorCode = "NAME_REQUIRED"
	ErrCodePasswordTooShort ErrorCode = "PASSWORD_TOO_SHORT"

	ErrCodeUserNotFound       ErrorCode = "USER_NOT_FOUND"
	ErrCodeRoleNotFound       ErrorCode = "ROLE_NOT_FOUND"
	ErrCodePermissionNotFound ErrorCode = "PERMISSION_NOT_FOUND"
	ErrCodeDepartmentNotFound ErrorCode = "DEPARTMENT_NOT_FOUND"
	ErrCodeMenuNotFound       ErrorCode = "MENU_NOT_FOUND"
	ErrCodeRequestNotFound    ErrorCode = "REQUEST_NOT_FOUND"

	ErrCodeDuplicateUserEmail  ErrorCode = "DUPLICATE_USER_EMAIL"
	ErrCodeDuplicateRole       ErrorCode = "DUPLICATE_ROLE"
	ErrCodeDuplicatePermission ErrorCode = "DUPLICATE_PERMISSION"
	ErrCodeDuplicateDepartment ErrorCode = "DUPLICATE_DEPARTMENT"
	ErrCodeDuplicateMenuKey    ErrorCode = "DUPLICATE_MENU_KEY"

	ErrCodeRoleInUseUsers       ErrorCode = "ROLE_IN_USE_USERS"
	ErrCodeRoleInUsePermissions ErrorCode = "ROLE_IN_USE_PERMISSIONS"
	ErrCodePermissionInRoles    ErrorCode = "PERMISSION_IN_ROLES"
	ErrCodePermissionInUsers    ErrorCode = "PERMISSION_IN_USERS"
	ErrCodeDepartmentInUse      ErrorCode = "DEPARTMENT_IN_USE"

	ErrCodeRequestAlreadyProcessed ErrorCode = "REQUEST_ALREADY_PROCESSED"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeTokenMissing       ErrorCode = "TOKEN_MISSING"
	ErrCodeAdminsOnly         ErrorCode = "ADMINS_ONLY"
	ErrCodeMustChangePassword ErrorCode = "MUST_CHANGE_PASSWORD"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause returns a copy so the shared sentinel values stay immutable.
func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Join() string {
	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = err.Message
	}
	return strings.Join(messages, "; ")
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrUserNotFound       = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrRoleNotFound       = NewNotFoundError("Role not found", ErrCodeRoleNotFound)
	ErrPermissionNotFound = NewNotFoundError("Permission not found", ErrCodePermissionNotFound)
	ErrDepartmentNotFound = NewNotFoundError("Department not found", ErrCodeDepartmentNotFound)
	ErrMenuNotFound       = NewNotFoundError("Menu not found", ErrCodeMenuNotFound)
	ErrRequestNotFound    = NewNotFoundError("Request not found", ErrCodeRequestNotFound)

	ErrDuplicateUserEmail  = NewConflictError("User email already exists.", ErrCodeDuplicateUserEmail)
	ErrDuplicateRole       = NewConflictError("Role name already exists.", ErrCodeDuplicateRole)
	ErrDuplicatePermission = NewConflictError("Permission name already exists.", ErrCodeDuplicatePermission)
	ErrDuplicateDepartment = NewConflictError("Department name already exists.", ErrCodeDuplicateDepartment)
	ErrDuplicateMenuKey    = NewConflictError("Menu key already exists.", ErrCodeDuplicateMenuKey)

	ErrRoleInUseUsers       = NewConflictError("Cannot delete role: it is assigned to one or more users.", ErrCodeRoleInUseUsers)
	ErrRoleInUsePermissions = NewConflictError("Cannot delete role: it has permissions assigned.", ErrCodeRoleInUsePermissions)
	ErrPermissionInRoles    = NewConflictError("Cannot delete permission: it is attached to one or more roles.", ErrCodePermissionInRoles)
	ErrPermissionInUsers    = NewConflictError("Cannot delete permission: it is granted to one or more users.", ErrCodePermissionInUsers)
	ErrDepartmentInUse      = NewConflictError("Cannot delete department: it is referenced by one or more roles.", ErrCodeDepartmentInUse)

	ErrRequestAlreadyProcessed = NewConflictError("Request has already been processed.", ErrCodeRequestAlreadyProcessed)

	ErrInvalidCredentials = NewUnauthorizedError("Invalid credentials", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("Account inactive. Contact admin.", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Unauthorized. Invalid token.", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Unauthorized. Token expired.", ErrCodeTokenExpired)
	ErrTokenMissing       = NewUnauthorizedError("Unauthorized. Token missing.", ErrCodeTokenMissing)
	ErrAdminsOnly         = NewForbiddenError("Access denied: Admins only", ErrCodeAdminsOnly)
	ErrMustChangePassword = NewForbiddenError("Please change your password before accessing the system.", ErrCodeMustChangePassword)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
