package middlewares

import "github.com/gin-gonic/gin"

// abortWithError stops the chain with the same error envelope the handlers
// use, so clients see one shape for every failure.
func abortWithError(ctx *gin.Context, status int, code, message string) {
	body := gin.H{"code": code, "message": message}
	if id := ctx.GetString(CtxRequestID); id != "" {
		body["requestId"] = id
	}
	ctx.AbortWithStatusJSON(status, gin.H{"error": body})
}
