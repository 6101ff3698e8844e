package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/geocoder89/storefront/internal/actorctx"
	"github.com/geocoder89/storefront/internal/domain/user"
	"github.com/gin-gonic/gin"
)

const TokenHeader = "x-auth-token"

// Keep these small so tests can fake them easily.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

type UserFinder interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type AuthMiddleware struct {
	tokens TokenVerifier
	users  UserFinder
}

func NewAuthMiddleware(tokens TokenVerifier, users UserFinder) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// RequireAuth accepts any valid token and binds the caller's user id.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.authenticate(c) {
			return
		}
		c.Next()
	}
}

// RequireSeller authenticates, then checks the stored role of the caller.
func (m *AuthMiddleware) RequireSeller() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.authenticate(c) {
			return
		}

		userID, _ := UserIDFromContext(c)

		u, err := m.users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				// token still verifies but the account is gone
				AbortWithError(c, http.StatusNotFound, "user_not_found", "User no longer exists")
				return
			}

			slog.ErrorContext(c.Request.Context(), "seller guard lookup failed", "err", err, "user_id", userID)
			AbortWithError(c, http.StatusInternalServerError, "internal_error", "Could not verify account")
			return
		}

		if !u.IsSeller() {
			AbortWithError(c, http.StatusForbidden, "forbidden", "Seller account required")
			return
		}

		c.Set(CtxUser, u)
		c.Next()
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context) bool {
	raw := strings.TrimSpace(c.GetHeader(TokenHeader))
	if raw == "" {
		AbortWithError(c, http.StatusUnauthorized, "missing_token", "No auth token, access denied")
		return false
	}

	userID, err := m.tokens.Verify(raw)
	if err != nil {
		AbortWithError(c, http.StatusUnauthorized, "invalid_token", "Token verification failed, authorization denied")
		return false
	}

	c.Set(CtxUserID, userID)
	c.Set(CtxToken, raw)
	c.Request = c.Request.WithContext(actorctx.WithUserID(c.Request.Context(), userID))
	return true
}
