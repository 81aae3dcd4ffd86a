package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Every failure path shares one envelope: {"detail": <message>}.

func RespondError(ctx *gin.Context, status int, detail string) {
	ctx.JSON(status, gin.H{"detail": detail})
}

func RespondBadRequest(ctx *gin.Context, detail string) {
	RespondError(ctx, http.StatusBadRequest, detail)
}

func RespondUnAuthorized(ctx *gin.Context, detail string) {
	RespondError(ctx, http.StatusUnauthorized, detail)
}

func RespondForbidden(ctx *gin.Context, detail string) {
	RespondError(ctx, http.StatusForbidden, detail)
}

func RespondNotFound(ctx *gin.Context, detail string) {
	RespondError(ctx, http.StatusNotFound, detail)
}

func RespondConflict(ctx *gin.Context, detail string) {
	RespondError(ctx, http.StatusConflict, detail)
}

func RespondInternal(ctx *gin.Context, detail string) {
	RespondError(ctx, http.StatusInternalServerError, detail)
}

func RespondUnavailable(ctx *gin.Context, detail string) {
	RespondError(ctx, http.StatusServiceUnavailable, detail)
}
