package tcp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoDispatcher struct {
	mu    sync.Mutex
	lines []string
}

func (d *echoDispatcher) Dispatch(ctx context.Context, line string) string {
	d.mu.Lock()
	d.lines = append(d.lines, line)
	d.mu.Unlock()
	return "SUCCESS|" + line
}

// uploadSink implements command.StreamHandler: it consumes the declared
// number of bytes from the stream, like the real FRAMES handler.
type uploadSink struct {
	mu       sync.Mutex
	received []byte
}

func (u *uploadSink) Command() string { return "FRAMES" }

func (u *uploadSink) Handle(ctx context.Context, args []string) string {
	return "ERROR|required stream"
}

func (u *uploadSink) HandleStream(ctx context.Context, args []string, stream io.Reader) string {
	if len(args) < 5 {
		return "ERROR|Usage: FRAMES|UPLOAD|deviceId|cameraId|length"
	}
	length, err := strconv.ParseInt(args[4], 10, 64)
	if err != nil {
		return "ERROR|Invalid length"
	}

	data := make([]byte, length)
	n, _ := io.ReadFull(stream, data)

	u.mu.Lock()
	u.received = append(u.received, data[:n]...)
	u.mu.Unlock()
	return fmt.Sprintf("OK|Received %d bytes", n)
}

type trackingPublisher struct {
	mu           sync.Mutex
	connected    int
	disconnected int
}

func (p *trackingPublisher) DeviceConnected(remoteAddr string) {
	p.mu.Lock()
	p.connected++
	p.mu.Unlock()
}

func (p *trackingPublisher) DeviceDisconnected(remoteAddr string) {
	p.mu.Lock()
	p.disconnected++
	p.mu.Unlock()
}

func startTestServer(t *testing.T) (*Server, *echoDispatcher, *uploadSink, *trackingPublisher, string) {
	t.Helper()

	dispatcher := &echoDispatcher{}
	uploads := &uploadSink{}
	events := &trackingPublisher{}
	server := NewServer("127.0.0.1:0", dispatcher, uploads, events)

	started := make(chan struct{})
	go func() {
		close(started)
		_ = server.Start(context.Background())
	}()
	<-started
	t.Cleanup(server.Stop)

	// Wait for the listener to bind.
	var addr string
	require.Eventually(t, func() bool {
		if a := server.Addr(); a != nil {
			addr = a.String()
			return true
		}
		return false
	}, time.Second, 5*time.Millisecond)

	return server, dispatcher, uploads, events, addr
}

func TestServerLineModeKeepsSessionOpen(t *testing.T) {
	_, dispatcher, _, _, addr := startTestServer(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	reader := bufio.NewReader(conn)
	for i := 0; i < 3; i++ {
		line := fmt.Sprintf("CAMERA|GET|%d", i)
		_, err = fmt.Fprintf(conn, "%s\r\n", line)
		require.NoError(t, err)

		response, err := reader.ReadString('\n')
		require.NoError(t, err)
		assert.Equal(t, "SUCCESS|"+line+"\n", response)
	}

	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()
	assert.Len(t, dispatcher.lines, 3)
}

func TestServerSkipsBlankLinesAndStripsBOM(t *testing.T) {
	_, dispatcher, _, _, addr := startTestServer(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("\n   \n\ufeffLOGIN|a@b.com|pw\n"))
	require.NoError(t, err)

	response, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS|LOGIN|a@b.com|pw\n", response)

	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()
	require.Len(t, dispatcher.lines, 1)
	assert.Equal(t, "LOGIN|a@b.com|pw", dispatcher.lines[0])
}

func TestServerUploadModeIsOneShot(t *testing.T) {
	_, dispatcher, uploads, _, addr := startTestServer(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	payload := []byte("0123456789abcdef")
	_, err = fmt.Fprintf(conn, "frames|upload|dev-1|1|%d\n", len(payload))
	require.NoError(t, err)
	_, err = conn.Write(payload)
	require.NoError(t, err)

	reader := bufio.NewReader(conn)
	response, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("OK|Received %d bytes\n", len(payload)), response)

	// The session closes after the upload response.
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, err = reader.ReadByte()
	assert.ErrorIs(t, err, io.EOF)

	uploads.mu.Lock()
	assert.Equal(t, payload, uploads.received)
	uploads.mu.Unlock()

	// The upload never went through the line dispatcher.
	dispatcher.mu.Lock()
	assert.Empty(t, dispatcher.lines)
	dispatcher.mu.Unlock()
}

// The upload payload may arrive in the same TCP segment as the header;
// bytes buffered past the header must still reach the upload handler.
func TestServerUploadPayloadInSameWrite(t *testing.T) {
	_, _, uploads, _, addr := startTestServer(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	payload := []byte("all-at-once")
	_, err = conn.Write(append([]byte(fmt.Sprintf("FRAMES|UPLOAD|dev-1|1|%d\n", len(payload))), payload...))
	require.NoError(t, err)

	response, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("OK|Received %d bytes\n", len(payload)), response)

	uploads.mu.Lock()
	assert.Equal(t, payload, uploads.received)
	uploads.mu.Unlock()
}

func TestServerConcurrentSessionsAreIsolated(t *testing.T) {
	_, _, _, events, addr := startTestServer(t)

	const sessions = 10
	var wg sync.WaitGroup
	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			conn, err := net.Dial("tcp", addr)
			require.NoError(t, err)
			defer conn.Close()

			reader := bufio.NewReader(conn)
			for j := 0; j < 5; j++ {
				line := fmt.Sprintf("USER|GET|%d-%d", i, j)
				_, err := fmt.Fprintf(conn, "%s\n", line)
				require.NoError(t, err)

				response, err := reader.ReadString('\n')
				require.NoError(t, err)
				// Each session sees exactly its own responses, in order.
				require.Equal(t, "SUCCESS|"+line+"\n", response)
			}
		}(i)
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		events.mu.Lock()
		defer events.mu.Unlock()
		return events.connected == sessions && events.disconnected == sessions
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServerStopUnblocksStart(t *testing.T) {
	dispatcher := &echoDispatcher{}
	server := NewServer("127.0.0.1:0", dispatcher, &uploadSink{}, nil)

	done := make(chan error, 1)
	go func() {
		done <- server.Start(context.Background())
	}()

	require.Eventually(t, func() bool { return server.Addr() != nil }, time.Second, 5*time.Millisecond)
	server.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestReadLineStripsCarriageReturn(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("hello\r\nworld\n"))

	line, err := readLine(reader)
	require.NoError(t, err)
	assert.Equal(t, "hello", line)

	line, err = readLine(reader)
	require.NoError(t, err)
	assert.Equal(t, "world", line)

	_, err = readLine(reader)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadLineReturnsFinalUnterminatedLine(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("no-newline"))

	line, err := readLine(reader)
	require.NoError(t, err)
	assert.Equal(t, "no-newline", line)

	_, err = readLine(reader)
	assert.ErrorIs(t, err, io.EOF)
}
