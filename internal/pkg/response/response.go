package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/hareeshbabu82ns/devhub-search/internal/pkg/errors"
)

// Response is the tagged envelope returned by every API handler.
// Exactly one of Data or Error is populated, depending on Status.
type Response struct {
	Status string      `json:"status"` // "success" or "error"
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Success writes a success envelope (200)
func Success(c *gin.Context, data interface{}) {
	if data == nil {
		data = struct{}{}
	}
	c.JSON(http.StatusOK, Response{
		Status: "success",
		Data:   data,
	})
}

// Created writes a success envelope for a newly created resource (201)
func Created(c *gin.Context, data interface{}) {
	if data == nil {
		data = struct{}{}
	}
	c.JSON(http.StatusCreated, Response{
		Status: "success",
		Data:   data,
	})
}

// Error writes an error envelope with the given HTTP status
func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, Response{
		Status: "error",
		Error:  message,
	})
}

// BadRequest writes a 400 error envelope
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized writes a 401 error envelope
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// NotFound writes a 404 error envelope
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// Conflict writes a 409 error envelope
func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

// InternalError writes a 500 error envelope
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// HandleError maps an AppError to its HTTP status and writes the envelope
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	code := apperrors.ExtractCode(err)
	Error(c, apperrors.GetHTTPStatus(code), apperrors.FormatError(code, apperrors.GetDetails(err)))
}
