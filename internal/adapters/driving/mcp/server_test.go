package mcp

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil content service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingContentService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{Content: &mockContentService{}})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})

	t.Run("with version service", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Content: &mockContentService{},
			Version: &mockVersionService{},
		})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingContentService)
	assert.NoError(t, (&Ports{Content: &mockContentService{}}).Validate())
}

func TestNewServer_NilPorts(t *testing.T) {
	server, err := NewServer(nil)

	assert.Nil(t, server)
	assert.ErrorIs(t, err, ErrMissingContentService)
}

func TestServer_ServeHTTPStopsOnCancel(t *testing.T) {
	server, err := NewServer(&Ports{Content: &mockContentService{}})
	require.NoError(t, err)
	assert.NotNil(t, server.Handler())

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.ServeHTTP(ctx, listener) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
