package command

import (
	"context"
	"fmt"
	"log"
)

// Authenticator is the auth collaborator: credential verification and
// approval gating live behind it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*int64, error)
	Register(ctx context.Context, username, email, password string) (bool, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
}

// LoginHandler answers LOGIN|email|password.
type LoginHandler struct {
	auth Authenticator
}

func NewLoginHandler(auth Authenticator) *LoginHandler {
	return &LoginHandler{auth: auth}
}

func (h *LoginHandler) Command() string { return "LOGIN" }

func (h *LoginHandler) Handle(ctx context.Context, args []string) string {
	if len(args) < 3 {
		return "ERROR|missing username or password"
	}

	userID, err := h.auth.Login(ctx, args[1], args[2])
	if err != nil {
		log.Printf("LOGIN failed: %v", err)
		return fmt.Sprintf("ERROR|%v", err)
	}
	if userID == nil {
		return "ERROR|invalid credentials or not approved"
	}
	return fmt.Sprintf("SUCCESS|%d", *userID)
}
