package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/KasumiMercury/primind-task-reminder/internal/app"
)

var registerTagNameOnce sync.Once

// useJSONFieldNames makes binding errors report the json name of a field.
func useJSONFieldNames() {
	registerTagNameOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}

			return name
		})
	})
}

func handleBindError(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		field := fieldPath(fe.Namespace())

		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: field + " is " + fe.Tag(),
			Field:   field,
		})

		return
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "validation_error",
		Message: err.Error(),
	})
}

// fieldPath drops the struct name prefix: "SyncUserRequest.tasks[0].taskId" -> "tasks[0].taskId".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}

	return namespace
}

func handleError(c *gin.Context, err error) {
	var validationErr *app.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: validationErr.Message,
			Field:   validationErr.Field,
		})

		return
	}

	if errors.Is(err, app.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "unauthorized",
		})

		return
	}

	if errors.Is(err, app.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "resource not found",
		})

		return
	}

	slog.ErrorContext(c.Request.Context(), "internal server error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "an internal error occurred",
	})
}
