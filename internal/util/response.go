package util

import (
	"errors"
	"net/http"

	"lms_assessment_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.Error(err))
	InternalServerError(c)
}

// FailFromError maps domain errors onto the HTTP envelope. Anything outside
// the taxonomy is treated as a storage failure.
func FailFromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrAssessmentNotFound),
		errors.Is(err, ErrQuestionNotFound),
		errors.Is(err, ErrAttemptNotFound),
		errors.Is(err, ErrRubricNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c)
	case errors.Is(err, ErrAttemptLimitExceeded),
		errors.Is(err, ErrAttemptNotEditable):
		Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotAttemptOwner),
		errors.Is(err, ErrAssessmentNotPublished):
		Error(c, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrValidation):
		BadRequest(c, err.Error())
	default:
		LogInternalError(c, err)
	}
}
