package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	logEventHTTPRequest   = "http"
	logFieldMethod        = "method"
	logFieldPath          = "path"
	logFieldStatus        = "status"
	logFieldDuration      = "dur"
	logFieldClientIP      = "ip"
	logFieldUserAgent     = "ua"
	headerAuthorization   = "Authorization"
	bearerSchemePrefix    = "Bearer "
	authErrorAdminsOnly   = "admin disabled"
	authErrorMissingToken = "missing bearer"
	authErrorForbidden    = "forbidden"
)

// RequestLogger emits one structured log line per handled request.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(context *gin.Context) {
		start := time.Now()
		context.Next()
		logger.Info(logEventHTTPRequest,
			zap.String(logFieldMethod, context.Request.Method),
			zap.String(logFieldPath, context.Request.URL.Path),
			zap.Int(logFieldStatus, context.Writer.Status()),
			zap.Duration(logFieldDuration, time.Since(start)),
			zap.String(logFieldClientIP, context.ClientIP()),
			zap.String(logFieldUserAgent, context.Request.UserAgent()),
		)
	}
}

// AdminAuthMiddleware guards the admin settings API with a static bearer token.
func AdminAuthMiddleware(adminBearerToken string) gin.HandlerFunc {
	return func(context *gin.Context) {
		if adminBearerToken == "" {
			context.AbortWithStatusJSON(http.StatusServiceUnavailable, errorResponse(authErrorAdminsOnly))
			return
		}
		authorizationHeader := strings.TrimSpace(context.GetHeader(headerAuthorization))
		if !strings.HasPrefix(authorizationHeader, bearerSchemePrefix) {
			context.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(authErrorMissingToken))
			return
		}
		providedToken := strings.TrimPrefix(authorizationHeader, bearerSchemePrefix)
		if providedToken != adminBearerToken {
			context.AbortWithStatusJSON(http.StatusForbidden, errorResponse(authErrorForbidden))
			return
		}
		context.Next()
	}
}
