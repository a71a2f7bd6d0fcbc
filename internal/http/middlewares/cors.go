package middlewares

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

var (
	corsMethods = strings.Join([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}, ",")
	corsHeaders = strings.Join([]string{"Content-Type", "If-None-Match", SessionHeader}, ",")
	corsExpose  = strings.Join([]string{"ETag", SessionHeader, requestIDHeader}, ",")
)

const corsMaxAge = 600

// CORSMiddleware lets the listed origins call the API with credentials.
// Preflights from other origins are refused.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}

	return func(ctx *gin.Context) {
		origin := ctx.GetHeader("Origin")
		_, ok := allowed[origin]
		ok = ok && origin != ""

		h := ctx.Writer.Header()
		h.Add("Vary", "Origin")
		if ok {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Expose-Headers", corsExpose)
		}

		if ctx.Request.Method != http.MethodOptions || ctx.GetHeader("Access-Control-Request-Method") == "" {
			ctx.Next()
			return
		}

		if !ok {
			abortWithError(ctx, http.StatusForbidden, "origin_not_allowed", "Origin is not allowed")
			return
		}

		h.Set("Access-Control-Allow-Methods", corsMethods)
		h.Set("Access-Control-Allow-Headers", corsHeaders)
		h.Set("Access-Control-Max-Age", strconv.Itoa(corsMaxAge))
		ctx.AbortWithStatus(http.StatusNoContent)
	}
}
