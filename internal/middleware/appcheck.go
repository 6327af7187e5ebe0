package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/brightpath/brightpath-backend/internal/appcheck"
	"github.com/brightpath/brightpath-backend/internal/logger"
)

// AppCheckHeader is the client attestation token header.
const AppCheckHeader = "x-firebase-appcheck"

// AppCheckVerifiedKey is set on the gin context by the middleware in warn
// mode so downstream handlers and logs can see unverified traffic.
const AppCheckVerifiedKey = "app_check_verified"

type AppCheckMode string

const (
	AppCheckEnforce AppCheckMode = "enforce"
	AppCheckWarn    AppCheckMode = "warn"
	AppCheckOff     AppCheckMode = "off"
)

// ParseAppCheckMode maps the APP_CHECK_ENFORCEMENT value to a mode.
// Unrecognized values fall back to off, keeping the gate opt-in.
func ParseAppCheckMode(s string) AppCheckMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "enforce":
		return AppCheckEnforce
	case "warn":
		return AppCheckWarn
	default:
		return AppCheckOff
	}
}

type AppCheckMiddleware struct {
	log      *logger.Logger
	mode     AppCheckMode
	verifier appcheck.TokenVerifier
}

func NewAppCheckMiddleware(log *logger.Logger, mode AppCheckMode, verifier appcheck.TokenVerifier) *AppCheckMiddleware {
	return &AppCheckMiddleware{
		log:      log.With("Middleware", "AppCheckMiddleware"),
		mode:     mode,
		verifier: verifier,
	}
}

// Gate checks the request's attestation token against the configured mode.
// Verification failures of any kind count as "invalid": enforce rejects,
// warn proceeds with the unverified flag set. Never retried.
func (am *AppCheckMiddleware) Gate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if am.mode == AppCheckOff {
			c.Next()
			return
		}

		token := strings.TrimSpace(c.GetHeader(AppCheckHeader))
		if token == "" {
			if am.mode == AppCheckEnforce {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "app check token required",
					"code":  "APP_CHECK_REQUIRED",
				})
				return
			}
			am.log.Warn("request without app check token", "path", c.FullPath())
			c.Set(AppCheckVerifiedKey, false)
			c.Next()
			return
		}

		verified := false
		if am.verifier != nil {
			verdict, err := am.verifier.Verify(c.Request.Context(), token)
			if err != nil {
				am.log.Warn("app check verification failed", "error", err, "path", c.FullPath())
			}
			verified = err == nil && verdict.Valid
		}

		if !verified && am.mode == AppCheckEnforce {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "app check token invalid",
				"code":  "APP_CHECK_INVALID",
			})
			return
		}
		if !verified {
			am.log.Warn("unverified app check token allowed through", "path", c.FullPath())
		}
		c.Set(AppCheckVerifiedKey, verified)
		c.Next()
	}
}
