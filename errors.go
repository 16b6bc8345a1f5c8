package tracker

import (
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ErrUnauthenticated is returned when a protected operation runs without a caller
var ErrUnauthenticated = goerrors.New("authentication required", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("UNAUTHENTICATED")

// ErrInvalidCredentials is returned by login for unknown emails and bad passwords alike
var ErrInvalidCredentials = goerrors.New("invalid email or password", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("INVALID_CREDENTIALS")

// ErrMismatchedHashAndPassword is returned when a password does not match its hash
var ErrMismatchedHashAndPassword = goerrors.New("password does not match", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("PASSWORD_MISMATCH")

// ErrNoEmptyString is returned when hashing an empty password
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithCode(goerrors.CodeBadRequest).
	WithTextCode("EMPTY_PASSWORD")

// ErrTokenExpired is returned when a token is past its expiry
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("TOKEN_EXPIRED")

// ErrTokenMalformed is returned for unparseable, forged or foreign tokens
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("TOKEN_MALFORMED")

// NotFoundError builds the error for an id that does not resolve
func NotFoundError(entity string, id any) *goerrors.Error {
	return goerrors.New(fmt.Sprintf("%s not found with id: %v", entity, id), goerrors.CategoryNotFound).
		WithCode(goerrors.CodeNotFound).
		WithTextCode(strings.ToUpper(entity) + "_NOT_FOUND").
		WithMetadata(map[string]any{
			"entity": entity,
			"id":     fmt.Sprint(id),
		})
}

// AccessDeniedError builds the error for a policy denial
func AccessDeniedError(message string, metadata ...map[string]any) *goerrors.Error {
	err := goerrors.New(message, goerrors.CategoryAuthz).
		WithCode(goerrors.CodeForbidden).
		WithTextCode("ACCESS_DENIED")
	if len(metadata) > 0 && metadata[0] != nil {
		err = err.WithMetadata(metadata[0])
	}
	return err
}

// ConflictError builds the error for a uniqueness violation
func ConflictError(entity, message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryConflict).
		WithCode(goerrors.CodeConflict).
		WithTextCode(strings.ToUpper(entity) + "_CONFLICT")
}

// IsNotFound reports whether err is a not found error
func IsNotFound(err error) bool {
	return hasCategory(err, goerrors.CategoryNotFound)
}

// IsAccessDenied reports whether err is a policy denial
func IsAccessDenied(err error) bool {
	return hasCategory(err, goerrors.CategoryAuthz)
}

// IsConflict reports whether err is a uniqueness violation
func IsConflict(err error) bool {
	return hasCategory(err, goerrors.CategoryConflict)
}

// IsUnauthenticated reports whether err means the caller is unknown
func IsUnauthenticated(err error) bool {
	return hasCategory(err, goerrors.CategoryAuth)
}

// IsValidationError reports whether err is caused by bad input
func IsValidationError(err error) bool {
	return hasCategory(err, goerrors.CategoryValidation) || hasCategory(err, goerrors.CategoryBadInput)
}

func hasCategory(err error, category any) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return any(richErr.Category) == category
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed")
}
