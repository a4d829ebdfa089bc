package command

import (
	"context"
	"fmt"
	"log"
)

// RegisterHandler answers REGISTER|username|email|password.
type RegisterHandler struct {
	auth Authenticator
}

func NewRegisterHandler(auth Authenticator) *RegisterHandler {
	return &RegisterHandler{auth: auth}
}

func (h *RegisterHandler) Command() string { return "REGISTER" }

func (h *RegisterHandler) Handle(ctx context.Context, args []string) string {
	if len(args) < 4 {
		return "ERROR|Invalid parameters for REGISTER command."
	}

	username, email, password := args[1], args[2], args[3]

	taken, err := h.auth.UsernameTaken(ctx, username)
	if err != nil {
		log.Printf("REGISTER failed: %v", err)
		return fmt.Sprintf("ERROR|%v", err)
	}
	if taken {
		return "ERROR|Username already exists."
	}

	ok, err := h.auth.Register(ctx, username, email, password)
	if err != nil {
		log.Printf("REGISTER failed: %v", err)
		return fmt.Sprintf("ERROR|%v", err)
	}
	if !ok {
		return "ERROR|User registration failed."
	}
	return "SUCCESS|User registered successfully. Awaiting approval."
}
