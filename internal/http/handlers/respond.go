package handlers

import (
	"net/http"

	"github.com/geocoder89/userdesk/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// APIError is the body of every failed API call, wrapped as {"error": ...}.
type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

type errorEnvelope struct {
	Error APIError `json:"error"`
}

// default codes per status, used when a caller does not pick one
var statusCodes = map[int]string{
	http.StatusBadRequest:          "invalid_request",
	http.StatusNotFound:            "not_found",
	http.StatusConflict:            "conflict",
	http.StatusInternalServerError: "internal_error",
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	if code == "" {
		code = statusCodes[status]
	}

	ctx.JSON(status, errorEnvelope{Error: APIError{
		Code:      code,
		Message:   message,
		RequestID: requestIDFrom(ctx),
		Details:   details,
	}})
}

func requestIDFrom(ctx *gin.Context) string {
	if id := ctx.GetString(middlewares.CtxRequestID); id != "" {
		return id
	}
	return ctx.GetHeader("X-Request-Id")
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "", message, details)
}

// RespondFieldErrors reports per-field problems with the submitted form.
func RespondFieldErrors(ctx *gin.Context, message string, fields []FieldError) {
	RespondBadRequest(ctx, message, gin.H{"fields": fields})
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "", message, nil)
}

func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusConflict, code, message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "", message, nil)
}
