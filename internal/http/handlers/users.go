package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/geocoder89/userapi/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type UsersService interface {
	GetUsers(ctx context.Context) ([]user.UserDTO, error)
	GetUserByID(ctx context.Context, id string) (user.UserDTO, error)
	CreateUser(ctx context.Context, req user.CreateUserRequest) (user.UserDTO, error)
	UpdateUser(ctx context.Context, id string, req user.UpdateUserRequest) (user.UserDTO, error)
	DeleteUser(ctx context.Context, id string) error
}

type UsersHandler struct {
	svc UsersService
}

func NewUsersHandler(svc UsersService) *UsersHandler {
	return &UsersHandler{svc: svc}
}

func (h *UsersHandler) GetUsers(ctx *gin.Context) {
	users, err := h.svc.GetUsers(ctx.Request.Context())
	if err != nil {
		RespondInternal(ctx, "Could not list users", err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, users)
}

func (h *UsersHandler) GetUserByID(ctx *gin.Context) {
	u, err := h.svc.GetUserByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not fetch user", err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, u)
}

func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	var req user.CreateUserRequest
	if !BindJSON(ctx, &req) {
		return
	}

	u, err := h.svc.CreateUser(ctx.Request.Context(), req)
	if err != nil {
		RespondInternal(ctx, "Could not create user", err)
		return
	}

	ctx.Header("Location", "/users/"+u.ID)
	ctx.JSON(http.StatusCreated, u)
}

func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	var req user.UpdateUserRequest
	if !BindJSON(ctx, &req) {
		return
	}

	u, err := h.svc.UpdateUser(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not update user", err)
		return
	}

	ctx.JSON(http.StatusOK, u)
}

// DeleteUser answers 204 whether or not the id existed.
func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	if err := h.svc.DeleteUser(ctx.Request.Context(), ctx.Param("id")); err != nil {
		RespondInternal(ctx, "Could not delete user", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
