package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dysonfactory/internal/core/domain"
)

// feedServer is a minimal stand-in for the telemetry plugin: it accepts one
// websocket upgrade and pushes the configured frames.
func feedServer(t *testing.T, frames []string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		for _, frame := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				return
			}
		}
		// Hold the connection open until the client closes it.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				conn.Close()
				return
			}
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

const singlePlanetFrame = `{
	"Timestamp": 1700000000,
	"Planets": {
		"0": {
			"Name": "Sparta I",
			"Power": {"GenerationMW": 180, "ConsumptionMW": 140, "AccumulatorPercent": 85},
			"Production": [{"ItemName": "iron-ingot", "ProductionRate": 90, "ConsumptionRate": 60, "Storage": 1200}]
		}
	}
}`

func TestClientConnect(t *testing.T) {
	t.Run("should report connection unavailable for an unreachable feed", func(t *testing.T) {
		client := NewClient("ws://127.0.0.1:1")
		err := client.Connect(context.Background())
		assert.ErrorIs(t, err, domain.ErrConnectionUnavailable)
		assert.False(t, client.IsConnected())
	})

	t.Run("should be a no-op when already connected", func(t *testing.T) {
		server := feedServer(t, []string{singlePlanetFrame})
		client := NewClient(wsURL(server))
		defer client.Close()

		require.NoError(t, client.Connect(context.Background()))
		assert.NoError(t, client.Connect(context.Background()))
	})
}

func TestClientCurrentState(t *testing.T) {
	t.Run("should deliver the latest frame as factory state", func(t *testing.T) {
		server := feedServer(t, []string{singlePlanetFrame})
		client := NewClient(wsURL(server))
		defer client.Close()

		state, err := client.CurrentState(context.Background())
		require.NoError(t, err)
		require.Contains(t, state.Planets, 0)
		assert.Equal(t, "Sparta I", state.Planets[0].PlanetName)
		assert.True(t, client.IsConnected())
	})

	t.Run("should time out when no frame arrives within the wait budget", func(t *testing.T) {
		server := feedServer(t, nil)
		client := NewClient(wsURL(server))
		client.waitLimit = 300 * time.Millisecond
		defer client.Close()

		_, err := client.CurrentState(context.Background())
		assert.ErrorIs(t, err, domain.ErrTimeout)
	})

	t.Run("should report connection unavailable without retry loops", func(t *testing.T) {
		client := NewClient("ws://127.0.0.1:1")

		start := time.Now()
		_, err := client.CurrentState(context.Background())
		assert.ErrorIs(t, err, domain.ErrConnectionUnavailable)
		assert.Less(t, time.Since(start), 5*time.Second)
	})

	t.Run("should honor context cancellation while waiting", func(t *testing.T) {
		server := feedServer(t, nil)
		client := NewClient(wsURL(server))
		defer client.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		_, err := client.CurrentState(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestClientLatest(t *testing.T) {
	t.Run("should return nil before any frame arrives", func(t *testing.T) {
		client := NewClient("ws://127.0.0.1:1")
		assert.Nil(t, client.Latest())
	})

	t.Run("should keep the last state readable after close", func(t *testing.T) {
		server := feedServer(t, []string{singlePlanetFrame})
		client := NewClient(wsURL(server))

		_, err := client.CurrentState(context.Background())
		require.NoError(t, err)

		client.Close()
		assert.NotNil(t, client.Latest())
		assert.False(t, client.IsConnected())
	})
}

func TestClientClose(t *testing.T) {
	t.Run("should be idempotent", func(t *testing.T) {
		server := feedServer(t, []string{singlePlanetFrame})
		client := NewClient(wsURL(server))

		require.NoError(t, client.Connect(context.Background()))
		client.Close()
		client.Close()
		assert.False(t, client.IsConnected())
	})

	t.Run("should be safe on a never-connected client", func(t *testing.T) {
		client := NewClient("ws://127.0.0.1:1")
		client.Close()
	})
}

func TestClientDisconnectDetection(t *testing.T) {
	t.Run("should mark disconnected when the feed drops", func(t *testing.T) {
		upgrader := websocket.Upgrader{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				return
			}
			conn.WriteMessage(websocket.TextMessage, []byte(singlePlanetFrame))
			conn.Close()
		}))
		defer server.Close()

		client := NewClient(wsURL(server))
		defer client.Close()

		_, err := client.CurrentState(context.Background())
		require.NoError(t, err)

		assert.Eventually(t, func() bool {
			return !client.IsConnected()
		}, 2*time.Second, 20*time.Millisecond)
	})

	t.Run("should disconnect on an undecodable frame", func(t *testing.T) {
		server := feedServer(t, []string{"not json"})
		client := NewClient(wsURL(server))
		defer client.Close()

		require.NoError(t, client.Connect(context.Background()))
		assert.Eventually(t, func() bool {
			client.mu.RLock()
			defer client.mu.RUnlock()
			return !client.connected
		}, 2*time.Second, 20*time.Millisecond)
		assert.Nil(t, client.Latest())
	})
}
