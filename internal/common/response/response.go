// Package response renders the JSON envelope shared by every endpoint.
//
// All responses are sent with HTTP 200; the "success" field carries the outcome.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GoRent-Marketplace/service-rental/internal/common/domain"
)

const loggerKey = "logger"

// SetLogger stores the request-scoped logger used by Error.
func SetLogger(c *gin.Context, log *zap.Logger) {
	c.Set(loggerKey, log)
}

// Success writes {success: true} merged with the given fields.
func Success(c *gin.Context, fields gin.H) {
	body := gin.H{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// Message writes {success: true, message}.
func Message(c *gin.Context, message string) {
	Success(c, gin.H{"message": message})
}

// Fail writes {success: false, message}.
func Fail(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"success": false, "message": message})
}

// BadRequest reports malformed request input.
func BadRequest(c *gin.Context, message string) {
	Fail(c, message)
}

// Unauthorized reports a missing or invalid credential and aborts the chain.
func Unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusOK, gin.H{"success": false, "message": "not authorized"})
}

// Error logs err and renders it. Store failures are reported with a generic message.
func Error(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	log := requestLogger(c)

	if kind == domain.KindStoreFailure {
		log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		Fail(c, "internal error, please retry later")
		return
	}

	log.Info("request rejected",
		zap.String("path", c.FullPath()),
		zap.String("kind", string(kind)),
		zap.Error(err),
	)
	Fail(c, err.Error())
}

func requestLogger(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if log, ok := v.(*zap.Logger); ok {
			return log
		}
	}
	return zap.NewNop()
}
