package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"cam-server/internal/models"
)

// UserAdminStore is the persistence surface for the USER command family.
type UserAdminStore interface {
	GetUsersByApproval(ctx context.Context, approved bool) ([]*models.User, error)
	ApproveUser(ctx context.Context, id int64) (*models.User, error)
}

// UserHandler answers the USER command family:
//
//	USER|GET|true/false  list approved/pending users
//	USER|PUT|id          approve a user by id
type UserHandler struct {
	users UserAdminStore
}

func NewUserHandler(users UserAdminStore) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Command() string { return "USER" }

func (h *UserHandler) Handle(ctx context.Context, args []string) string {
	if len(args) < 3 {
		return "ERROR|Invalid format. Usage: USER|GET|true/false or USER|PUT|id"
	}

	switch strings.ToUpper(args[1]) {
	case "GET":
		return h.getUsers(ctx, args[2])
	case "PUT":
		return h.approveUser(ctx, args[2])
	default:
		return "ERROR|Unknown action. Supported: GET, PUT"
	}
}

func (h *UserHandler) getUsers(ctx context.Context, approvedParam string) string {
	approved, err := strconv.ParseBool(approvedParam)
	if err != nil {
		return "ERROR|Invalid value. Use true or false"
	}

	users, err := h.users.GetUsersByApproval(ctx, approved)
	if err != nil {
		return fmt.Sprintf("ERROR|%v", err)
	}
	if len(users) == 0 {
		return "SUCCESS|[]"
	}
	return successJSON(users)
}

func (h *UserHandler) approveUser(ctx context.Context, idParam string) string {
	userID, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		return "ERROR|Invalid user ID"
	}

	user, err := h.users.ApproveUser(ctx, userID)
	if err != nil {
		return fmt.Sprintf("ERROR|%v", err)
	}
	if user == nil {
		return "ERROR|User not found"
	}
	return successJSON(user)
}
