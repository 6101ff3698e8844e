package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/geocoder89/storefront/internal/domain/user"
	"github.com/geocoder89/storefront/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type UserStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
}

type TokenService interface {
	Issue(userID string) (string, error)
	Verify(token string) (string, error)
}

type AuthHandler struct {
	users  UserStore
	tokens TokenService
}

func NewAuthHandler(users UserStore, tokens TokenService) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

// sessionResponse flattens the user next to its token: {token, id, name, ...}.
type sessionResponse struct {
	Token string `json:"token"`
	user.User
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	h.signUp(ctx, user.RoleBuyer)
}

func (h *AuthHandler) SellerSignUp(ctx *gin.Context) {
	h.signUp(ctx, user.RoleSeller)
}

func (h *AuthHandler) signUp(ctx *gin.Context, role user.Role) {
	var req user.SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	u, err := user.New(req, role)
	if err != nil {
		RespondInternal(ctx, "Could not create user", err)
		return
	}

	created, err := h.users.Create(ctx.Request.Context(), u)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondDuplicate(ctx, "email_taken", "User with same email already exists!")
			return
		}

		RespondInternal(ctx, "Could not create user", err)
		return
	}

	ctx.JSON(http.StatusOK, created)
}

// SignIn answers unknown email and wrong password identically so accounts cannot be enumerated.
func (h *AuthHandler) SignIn(ctx *gin.Context) {
	var req user.SignInRequest

	if !BindJSON(ctx, &req) {
		return
	}

	u, err := user.VerifyCredentials(ctx.Request.Context(), h.users, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) || errors.Is(err, user.ErrInvalidCredentials) {
			RespondValidation(ctx, "invalid_credentials", "Email or password is incorrect.")
			return
		}

		RespondInternal(ctx, "Could not sign in", err)
		return
	}

	token, err := h.tokens.Issue(u.ID)
	if err != nil {
		RespondInternal(ctx, "Could not issue token", err)
		return
	}

	ctx.JSON(http.StatusOK, sessionResponse{Token: token, User: u})
}

// TokenIsValid reports whether the header token verifies and still names an existing user.
func (h *AuthHandler) TokenIsValid(ctx *gin.Context) {
	raw := strings.TrimSpace(ctx.GetHeader(middlewares.TokenHeader))
	if raw == "" {
		ctx.JSON(http.StatusOK, false)
		return
	}

	userID, err := h.tokens.Verify(raw)
	if err != nil {
		ctx.JSON(http.StatusOK, false)
		return
	}

	_, err = h.users.GetByID(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			ctx.JSON(http.StatusOK, false)
			return
		}

		RespondInternal(ctx, "Could not validate token", err)
		return
	}

	ctx.JSON(http.StatusOK, true)
}

// Me returns the caller's account together with the token it presented.
func (h *AuthHandler) Me(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)
	token, _ := middlewares.TokenFromContext(ctx)

	u, err := h.users.GetByID(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "user_not_found", "User no longer exists")
			return
		}

		RespondInternal(ctx, "Could not load user", err)
		return
	}

	ctx.JSON(http.StatusOK, sessionResponse{Token: token, User: u})
}
