package handlers

import (
	"context"
	"errors"
	"net/http"

	"userhub/internal/auth"
	"userhub/internal/domain/user"
	"userhub/internal/security"

	"github.com/gin-gonic/gin"
)

// CredentialsStore is the slice of the users store the auth endpoints need.
type CredentialsStore interface {
	Insert(ctx context.Context, u user.User) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type AuthHandler struct {
	users CredentialsStore
	jwt   *auth.Manager
}

func NewAuthHandler(users CredentialsStore, jwtManager *auth.Manager) *AuthHandler {
	return &AuthHandler{
		users: users,
		jwt:   jwtManager,
	}
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// the length check runs before any hashing or storage happens
	if len(req.Password) < 6 {
		RespondBadRequest(ctx, "Password must be at least 6 characters long")
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u, err := h.users.Insert(ctx.Request.Context(), user.New(req.Email, req.Name, &hash))

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondConflict(ctx, "Email already registered")
			return
		}

		respondStoreError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	u, err := h.users.GetByEmail(ctx.Request.Context(), req.Email)

	if err != nil {
		// an unknown email reads the same as a bad password
		if errors.Is(err, user.ErrNotFound) {
			RespondUnAuthorized(ctx, "Invalid credentials")
			return
		}

		respondStoreError(ctx, err)
		return
	}

	if !u.HasPassword() {
		RespondUnAuthorized(ctx, "Invalid credentials")
		return
	}

	err = security.CheckPassword(*u.PasswordHash, req.Password)

	if err != nil {
		RespondUnAuthorized(ctx, "Invalid credentials")
		return
	}

	token, err := h.jwt.GenerateToken(u.ID)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  u,
	})
}
