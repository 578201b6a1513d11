package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/services"
)

// ErrorResponse sends a standardized error response
// Internal errors are logged but not exposed to clients
func ErrorResponse(c *gin.Context, statusCode int, message string, err error) {
	requestID := getRequestID(c)

	if err != nil {
		logrus.WithFields(logrus.Fields{
			"request_id": requestID,
			"status":     statusCode,
		}).WithError(err).Error(message)
	}

	// Send user-friendly response (don't expose internal errors)
	response := gin.H{
		"success":    false,
		"message":    message,
		"request_id": requestID,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}

	// Only include error details in development mode
	if gin.Mode() == gin.DebugMode && err != nil {
		response["error_details"] = err.Error()
	}

	c.JSON(statusCode, response)
}

// SuccessResponse sends a standardized success response
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	requestID := getRequestID(c)

	response := gin.H{
		"success":    true,
		"message":    message,
		"request_id": requestID,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}

	if data != nil {
		response["data"] = data
	}

	c.JSON(statusCode, response)
}

// ValidationErrorResponse sends a validation error response
func ValidationErrorResponse(c *gin.Context, errors map[string]string) {
	requestID := getRequestID(c)

	response := gin.H{
		"success":    false,
		"message":    "Validation failed",
		"errors":     errors,
		"request_id": requestID,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}

	c.JSON(http.StatusBadRequest, response)
}

// HandleServiceError maps the service error taxonomy onto HTTP statuses.
// Unrecognized errors become an opaque 500.
func HandleServiceError(c *gin.Context, err error) {
	if validationErr, ok := services.IsValidationError(err); ok {
		ValidationErrorResponse(c, validationErr.Fields)
		return
	}
	if notFoundErr, ok := services.IsNotFoundError(err); ok {
		ErrorResponse(c, http.StatusNotFound, notFoundErr.Error(), nil)
		return
	}
	if permissionErr, ok := services.IsPermissionError(err); ok {
		ErrorResponse(c, http.StatusForbidden, permissionErr.Error(), nil)
		return
	}
	if conflictErr, ok := services.IsConflictError(err); ok {
		ErrorResponse(c, http.StatusConflict, conflictErr.Message, nil)
		return
	}
	if stateErr, ok := services.IsStateError(err); ok {
		ErrorResponse(c, http.StatusUnprocessableEntity, stateErr.Error(), nil)
		return
	}
	if unavailableErr, ok := services.IsUnavailableError(err); ok {
		ErrorResponse(c, http.StatusServiceUnavailable, unavailableErr.Error(), nil)
		return
	}
	ErrorResponse(c, http.StatusInternalServerError, "Internal server error", err)
}

// getRequestID retrieves or generates a request ID
func getRequestID(c *gin.Context) string {
	// Check if request ID was set by middleware
	if requestID, exists := c.Get("request_id"); exists {
		return requestID.(string)
	}
	// Fallback to X-Request-ID header
	if requestID := c.GetHeader("X-Request-ID"); requestID != "" {
		return requestID
	}
	return time.Now().Format("20060102150405")
}
