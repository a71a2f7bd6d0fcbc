package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// RequireJSON rejects bodied writes that are not JSON. Widget events
// without a payload carry no body and pass through.
func RequireJSON() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if hasBody(ctx.Request) && ctx.ContentType() != binding.MIMEJSON {
			abortWithError(ctx, http.StatusUnsupportedMediaType, "unsupported_media_type", "Content-Type must be application/json")
			return
		}
		ctx.Next()
	}
}

func hasBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return r.ContentLength != 0
	}
	return false
}
