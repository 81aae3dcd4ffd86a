package handlers

import (
	"context"
	"errors"
	"net/http"

	"userhub/internal/db"
	"userhub/internal/domain/user"

	"github.com/gin-gonic/gin"
)

type UsersStore interface {
	Insert(ctx context.Context, u user.User) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	Delete(ctx context.Context, id string) (user.User, error)
}

type UsersHandler struct {
	store UsersStore
}

func NewUsersHandler(store UsersStore) *UsersHandler {
	return &UsersHandler{store: store}
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	users, err := h.store.List(ctx.Request.Context())

	if err != nil {
		respondStoreError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, users)
}

// CreateUser inserts a user with no password hash; such users cannot
// log in until a password flow exists for them.
func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	var req user.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	u, err := h.store.Insert(ctx.Request.Context(), user.New(req.Email, req.Name, nil))

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

func (h *UsersHandler) GetUser(ctx *gin.Context) {
	id := ctx.Param("id")

	u, err := h.store.GetByID(ctx.Request.Context(), id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		respondStoreError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	id := ctx.Param("id")

	u, err := h.store.Delete(ctx.Request.Context(), id)

	if err != nil {
		// deleting an already-deleted user reports not found
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		respondStoreError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"detail": "User deleted successfully",
		"user":   u,
	})
}

// respondStoreError maps store failures that are not domain sentinels.
// Anything unclassified stays a 500 without leaking internals.
func respondStoreError(ctx *gin.Context, err error) {
	if errors.Is(err, db.ErrAcquireTimeout) {
		RespondUnavailable(ctx, "Database connection unavailable")
		return
	}

	RespondInternal(ctx, "Internal server error")
}
