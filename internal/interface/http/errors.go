package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/safetravels/pkg/errors"
)

// apiError is the transport form of a failure: an HTTP status plus the
// machine readable code clients switch on.
type apiError struct {
	status  int
	code    string
	message string
	cause   error
}

func (e *apiError) Error() string {
	if e.cause != nil {
		return e.cause.Error()
	}
	return e.message
}

func (e *apiError) Unwrap() error { return e.cause }

func newAPIError(status int, code, message string, cause error) *apiError {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &apiError{status: status, code: code, message: message, cause: cause}
}

// domainError translates an application error code into a status. Errors
// without a known code surface as 500 with the caller's fallback code.
func domainError(fallbackCode string, err error) *apiError {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeInvalidInput:
		return newAPIError(http.StatusBadRequest, "invalid_request", "", err)
	case apperrors.CodeInvalidToken:
		return newAPIError(http.StatusUnauthorized, apperrors.CodeInvalidToken, "", err)
	case apperrors.CodeUpstream:
		return newAPIError(http.StatusBadGateway, apperrors.CodeUpstream, "", err)
	case apperrors.CodeCatalogUnavailable:
		return newAPIError(http.StatusServiceUnavailable, apperrors.CodeCatalogUnavailable, "", err)
	}
	return newAPIError(http.StatusInternalServerError, fallbackCode, "", err)
}

func toAPIError(err error) *apiError {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return newAPIError(http.StatusInternalServerError, "internal_error", "something went wrong", err)
}

// fail records err on the gin context and stops the chain; the error
// middleware renders it.
func fail(c *gin.Context, err *apiError) {
	_ = c.Error(err)
	c.Abort()
}
