package controllers

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"spectrumhub/logger"
	"spectrumhub/services"

	"github.com/aws/smithy-go"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

func init() {
	// Report binding failures by JSON field name.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// bindingFields turns validator errors into field messages. Other bind
// errors (bad JSON, wrong types) come back under "body".
func bindingFields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": err.Error()}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "email":
		return "must be a valid email address"
	default:
		return "is invalid"
	}
}

func respondBindingError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":  "Invalid input",
		"fields": bindingFields(err),
	})
}

// respondServiceError maps service errors onto HTTP responses. Unexpected
// errors are logged and hidden behind a generic message.
func respondServiceError(c *gin.Context, fallback *zap.Logger, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "fields": verr.Fields})
	case errors.Is(err, services.ErrInvalidStoryID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid story ID"})
	case errors.Is(err, services.ErrStoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Story not found"})
	case errors.Is(err, services.ErrReviewerUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Story review is not available"})
	default:
		logger.FromContext(c, fallback).Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// authErrorStatus maps identity provider error codes to HTTP statuses and a
// message safe to show users.
func authErrorStatus(err error) (int, string) {
	if errors.Is(err, services.ErrChallengeRequired) {
		return http.StatusUnauthorized, "Additional verification is required for this account"
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return http.StatusBadGateway, "Authentication service unavailable"
	}

	switch apiErr.ErrorCode() {
	case "NotAuthorizedException", "UserNotFoundException":
		return http.StatusUnauthorized, "Invalid email or password"
	case "UserNotConfirmedException":
		return http.StatusUnauthorized, "Please verify your email before signing in"
	case "UsernameExistsException":
		return http.StatusConflict, "An account with this email already exists"
	case "CodeMismatchException", "ExpiredCodeException", "InvalidPasswordException", "InvalidParameterException":
		return http.StatusBadRequest, apiErr.ErrorMessage()
	case "LimitExceededException", "TooManyRequestsException", "TooManyFailedAttemptsException":
		return http.StatusTooManyRequests, "Too many attempts, please try again later"
	default:
		return http.StatusBadGateway, "Authentication service error"
	}
}

// pageParams reads ?page= and ?limit=; missing or bad values become 0 and
// the service applies its defaults.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return page, limit
}
