// Package command implements the textual request protocol: one
// `|`-delimited line in, one STATUS|payload line out.
package command

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
)

// Handler answers one command. It receives the full split-args array,
// including its own keyword at index 0, and must always return exactly
// one response line.
type Handler interface {
	Command() string
	Handle(ctx context.Context, args []string) string
}

// StreamHandler additionally consumes the connection's raw byte stream.
type StreamHandler interface {
	Handler
	HandleStream(ctx context.Context, args []string, stream io.Reader) string
}

// Dispatcher routes a request line to the handler registered for its
// uppercased command keyword.
type Dispatcher struct {
	handlers map[string]Handler
}

// NewDispatcher builds the registry once at startup. A duplicate command
// name is a configuration error.
func NewDispatcher(handlers ...Handler) (*Dispatcher, error) {
	registry := make(map[string]Handler, len(handlers))
	for _, h := range handlers {
		name := strings.ToUpper(h.Command())
		if _, exists := registry[name]; exists {
			return nil, fmt.Errorf("duplicate command handler: %s", name)
		}
		registry[name] = h
	}
	return &Dispatcher{handlers: registry}, nil
}

// Dispatch parses a request line and returns its single response line.
func (d *Dispatcher) Dispatch(ctx context.Context, line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return "ERROR|invalid request"
	}

	parts := strings.Split(line, "|")
	cmd := strings.ToUpper(parts[0])

	handler, ok := d.handlers[cmd]
	if !ok {
		return "ERROR|unknown command"
	}
	return Safe(func() string { return handler.Handle(ctx, parts) })
}

// Safe runs a handler invocation, converting a panic into an ERROR
// response so the one-response-per-request invariant always holds.
func Safe(fn func() string) (response string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Command handler panic: %v", r)
			response = fmt.Sprintf("ERROR|%v", r)
		}
	}()
	return fn()
}
