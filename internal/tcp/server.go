// Package tcp implements the connection server: a line-command protocol
// with a raw-byte upload sub-protocol on the same socket.
package tcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"sync"

	"cam-server/internal/command"
)

// Dispatcher routes one request line to one response line.
type Dispatcher interface {
	Dispatch(ctx context.Context, line string) string
}

// ConnectionPublisher fans out connection lifecycle events.
type ConnectionPublisher interface {
	DeviceConnected(remoteAddr string)
	DeviceDisconnected(remoteAddr string)
}

// Server accepts TCP connections and runs one session goroutine per
// connection. Sessions are isolated: a fault in one never reaches the
// accept loop or another session.
type Server struct {
	addr       string
	dispatcher Dispatcher
	uploads    command.StreamHandler
	events     ConnectionPublisher

	mu       sync.Mutex
	listener net.Listener
	cancel   context.CancelFunc
}

func NewServer(addr string, dispatcher Dispatcher, uploads command.StreamHandler, events ConnectionPublisher) *Server {
	return &Server{
		addr:       addr,
		dispatcher: dispatcher,
		uploads:    uploads,
		events:     events,
	}
}

// Start binds the listener and accepts connections until the context is
// cancelled or Stop is called. It blocks for the server's lifetime.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.listener = listener
	s.cancel = cancel
	s.mu.Unlock()

	log.Printf("TCP server started on %s", listener.Addr())

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				log.Println("TCP server stopped")
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				log.Println("TCP server stopped")
				return nil
			}
			log.Printf("Accept error: %v", err)
			continue
		}
		go s.handleConn(ctx, conn)
	}
}

// Stop cancels the accept loop and closes the listener. In-flight
// sessions finish on their own when their peers disconnect.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	if s.listener != nil {
		s.listener.Close()
	}
}

// Addr reports the bound listener address, for tests that listen on an
// ephemeral port.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	remote := conn.RemoteAddr().String()
	log.Printf("Client connected from %s", remote)
	if s.events != nil {
		s.events.DeviceConnected(remote)
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("Session panic for %s: %v", remote, r)
		}
		conn.Close()
		log.Printf("Client disconnected: %s", remote)
		if s.events != nil {
			s.events.DeviceDisconnected(remote)
		}
	}()

	reader := bufio.NewReader(conn)

	for ctx.Err() == nil {
		line, err := readLine(reader)
		if err != nil {
			if err != io.EOF {
				log.Printf("Read error for %s: %v", remote, err)
			} else {
				log.Printf("Client %s closed the connection", remote)
			}
			return
		}

		line = strings.TrimLeft(strings.TrimSpace(line), "\ufeff\u200b")
		if line == "" {
			continue
		}

		log.Printf("Request from %s: %s", remote, line)
		parts := strings.Split(line, "|")

		if strings.ToUpper(parts[0]) == "FRAMES" && len(parts) > 1 && strings.EqualFold(parts[1], "UPLOAD") {
			// Upload mode. The payload bytes follow on the same stream;
			// reading them through the session reader keeps any bytes it
			// already buffered past the header. One upload per session:
			// respond, then close.
			response := command.Safe(func() string {
				return s.uploads.HandleStream(ctx, parts, reader)
			})
			log.Printf("Response to %s: %s", remote, response)
			writeLine(conn, remote, response)
			return
		}

		response := s.dispatcher.Dispatch(ctx, line)
		log.Printf("Response to %s: %s", remote, response)
		if !writeLine(conn, remote, response) {
			return
		}
	}
}

// readLine reads bytes up to '\n', stripping a trailing '\r'. A final
// unterminated line before EOF is still returned.
func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimSuffix(line, "\r"), nil
		}
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

func writeLine(conn net.Conn, remote, response string) bool {
	if _, err := fmt.Fprintf(conn, "%s\n", response); err != nil {
		log.Printf("Write error for %s: %v", remote, err)
		return false
	}
	return true
}
