package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/justsurfingit/job-portal/internal/apperr"
	"github.com/justsurfingit/job-portal/internal/dtos"
	"github.com/justsurfingit/job-portal/internal/storage"
	"github.com/sirupsen/logrus"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthenticated), errors.Is(err, apperr.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrDuplicateEmail),
		errors.Is(err, apperr.ErrDuplicateCompany),
		errors.Is(err, apperr.ErrAlreadyApplied):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrUpstream):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is what the client sees. Upstream and internal errors may
// carry driver text, so they get a fixed message.
func publicMessage(err error, status int) string {
	switch {
	case status == http.StatusInternalServerError:
		return "something went wrong"
	case errors.Is(err, apperr.ErrUpstream):
		return "a backing service is unavailable, try again later"
	case errors.Is(err, apperr.ErrForbidden):
		return apperr.ErrForbidden.Error()
	}
	return err.Error()
}

func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   apperr.Kind(err),
		"message": publicMessage(err, status),
	})
}

func respond(c *gin.Context, status int, message string, payload gin.H) {
	body := gin.H{"success": true, "message": message}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// bind decodes the body (JSON, form or multipart, by Content-Type) and
// reports failures as validation errors.
func bind(c *gin.Context, req any) error {
	if err := c.ShouldBind(req); err != nil {
		return dtos.ValidationError(err)
	}
	return nil
}

func pathID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperr.Validation("%s must be a valid id", name)
	}
	return id, nil
}

// upload returns the optional multipart file in field. The returned func
// releases it and is always safe to call.
func upload(c *gin.Context, field string) (*storage.Blob, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, noop, nil
	}
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, apperr.Validation("unreadable upload %q", field)
	}
	blob, closer, err := storage.FromFileHeader(fh)
	if err != nil {
		return nil, noop, apperr.Validation("unreadable upload %q", field)
	}
	return &blob, func() { _ = closer.Close() }, nil
}
