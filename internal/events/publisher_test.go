package events

import (
	"testing"

	"cam-server/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledPublisherIsNoOp(t *testing.T) {
	cfg := config.New()
	cfg.RabbitMQEnabled = false

	p, err := NewPublisher(cfg)
	require.NoError(t, err)
	defer p.Close()

	// Event loss must never fail a producing operation; with publishing
	// disabled every event is simply dropped.
	assert.NotPanics(t, func() {
		p.DeviceConnected("10.0.0.1:1234")
		p.DeviceDisconnected("10.0.0.1:1234")
		p.VideoReceived(1, 2, 3)
		p.VideoProcessed(1, 30)
		p.VideoFailed(1)
	})
}
