package handlers

import (
	"log/slog"
	"net/http"

	"github.com/geocoder89/storefront/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": middlewares.NewAPIError(ctx, status, code, message, details),
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondValidation(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusBadRequest, code, message, nil)
}

func RespondNotFound(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusNotFound, code, message, nil)
}

func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusConflict, code, message, nil)
}

// RespondDuplicate reports a uniqueness clash in the Conflict class while keeping the 400
// status that signup clients expect.
func RespondDuplicate(ctx *gin.Context, code, message string) {
	apiErr := middlewares.NewAPIError(ctx, http.StatusBadRequest, code, message, nil)
	apiErr.Title = middlewares.Title(http.StatusConflict)

	ctx.JSON(http.StatusBadRequest, gin.H{"error": apiErr})
}

// RespondInternal logs the cause and answers with a generic body; err never reaches the client.
func RespondInternal(ctx *gin.Context, message string, err error) {
	if err != nil {
		slog.ErrorContext(ctx.Request.Context(), message,
			"err", err,
			"route", ctx.FullPath(),
		)
	}
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

// RecoverPanic answers a recovered panic with the titled server error body.
func RecoverPanic(ctx *gin.Context, recovered any) {
	slog.ErrorContext(ctx.Request.Context(), "panic recovered",
		"panic", recovered,
		"route", ctx.FullPath(),
	)
	ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error": middlewares.NewAPIError(ctx, http.StatusInternalServerError, "internal_error", "Something went wrong", nil),
	})
}

// NoRoute gives unmatched paths the same error shape as everything else.
func NoRoute(ctx *gin.Context) {
	RespondNotFound(ctx, "route_not_found", "Route not found")
}
