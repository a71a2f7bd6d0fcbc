package middlewares

import (
	"net/http"

	"github.com/geocoder89/userdesk/internal/session"
	"github.com/gin-gonic/gin"
)

const (
	SessionHeader = "X-Session-Id"
	SessionCookie = "userdesk_session"
)

// Session resolves the caller's session id from the header or cookie,
// minting a new one when neither carries a valid id.
func Session(maxAgeSeconds int) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(SessionHeader)

		if id == "" {
			if c, err := ctx.Cookie(SessionCookie); err == nil {
				id = c
			}
		}

		if !session.ValidID(id) {
			id = session.NewID()
		}

		ctx.SetSameSite(http.SameSiteLaxMode)
		ctx.SetCookie(SessionCookie, id, maxAgeSeconds, "/", "", false, true)
		ctx.Header(SessionHeader, id)
		ctx.Set(CtxSessionID, id)

		ctx.Next()
	}
}

func SessionIDFromContext(ctx *gin.Context) string {
	return ctx.GetString(CtxSessionID)
}
