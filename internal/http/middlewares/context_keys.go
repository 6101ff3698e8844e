package middlewares

import (
	"github.com/geocoder89/storefront/internal/domain/user"
	"github.com/gin-gonic/gin"
)

const (
	CtxRequestID = "request_id"
	CtxUserID    = "auth.userID"
	CtxToken     = "auth.token"
	CtxUser      = "auth.user"
)

func RequestIDFromContext(c *gin.Context) string {
	if id := c.GetString(CtxRequestID); id != "" {
		return id
	}
	return c.GetHeader(requestIDHeader)
}

func UserIDFromContext(c *gin.Context) (string, bool) {
	id := c.GetString(CtxUserID)
	return id, id != ""
}

func TokenFromContext(c *gin.Context) (string, bool) {
	tok := c.GetString(CtxToken)
	return tok, tok != ""
}

// UserFromContext is only populated behind RequireSeller.
func UserFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(CtxUser)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}
