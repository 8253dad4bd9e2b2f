package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{
	Subprotocols: []string{subprotocol},
}

// fakeFeedServer runs handler on each upgraded connection after
// completing the connection_init handshake.
func fakeFeedServer(t *testing.T, handler func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		var init Envelope
		require.NoError(t, conn.ReadJSON(&init))
		require.Equal(t, msgConnectionInit, init.Type)

		var payload initPayload
		require.NoError(t, json.Unmarshal(init.Payload, &payload))
		require.Equal(t, "test-token", payload.Authorization)

		require.NoError(t, conn.WriteJSON(Envelope{Type: msgConnectionAck}))

		if handler != nil {
			handler(conn)
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return strings.Replace(srv.URL, "http", "ws", 1)
}

func testConfig(endpoint string) Config {
	cfg := DefaultConfig(endpoint, "test-token")
	cfg.HandshakeTimeout = 2 * time.Second
	cfg.ReadTimeout = 2 * time.Second
	return cfg
}

func TestClientConnect(t *testing.T) {
	srv := fakeFeedServer(t, func(conn *websocket.Conn) {
		conn.ReadMessage()
	})
	defer srv.Close()

	client := NewClient(testConfig(wsURL(srv)), nil)
	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()

	assert.True(t, client.IsConnected())

	err := client.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already connected")
}

func TestClientConnectRejectedHandshake(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		var init Envelope
		require.NoError(t, conn.ReadJSON(&init))
		conn.WriteJSON(Envelope{Type: msgError, Payload: json.RawMessage(`"unauthorized"`)})
	}))
	defer srv.Close()

	client := NewClient(testConfig(wsURL(srv)), nil)
	err := client.Connect(context.Background())
	require.Error(t, err)

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.False(t, client.IsConnected())
}

func TestClientSubscribeRequiresConnection(t *testing.T) {
	client := NewClient(testConfig("ws://127.0.0.1:1"), nil)

	_, err := client.Subscribe(context.Background(), RaceEventOperationName, RaceEventSubscription, RaceEventVariables())
	require.Error(t, err)

	var connErr *ConnectionError
	assert.ErrorAs(t, err, &connErr)
}

func TestClientReceive(t *testing.T) {
	dataFrame := `{"id":"sub-1","type":"next","payload":{"data":{"raceEvent":null}}}`

	srv := fakeFeedServer(t, func(conn *websocket.Conn) {
		var sub Envelope
		require.NoError(t, conn.ReadJSON(&sub))
		require.Equal(t, msgSubscribe, sub.Type)
		require.NotEmpty(t, sub.ID)

		// Transport chatter is skipped, pings are answered.
		conn.WriteJSON(Envelope{Type: msgKeepAlive})
		conn.WriteJSON(Envelope{Type: msgPing})

		var pong Envelope
		require.NoError(t, conn.ReadJSON(&pong))
		require.Equal(t, msgPong, pong.Type)

		conn.WriteMessage(websocket.TextMessage, []byte(dataFrame))
		conn.WriteJSON(Envelope{ID: sub.ID, Type: msgComplete})
	})
	defer srv.Close()

	client := NewClient(testConfig(wsURL(srv)), nil)
	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()

	_, err := client.Subscribe(context.Background(), RaceEventOperationName, RaceEventSubscription, RaceEventVariables())
	require.NoError(t, err)

	raw, err := client.Receive(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, dataFrame, string(raw))

	_, err = client.Receive(context.Background())
	require.Error(t, err)
	assert.True(t, IsConnectionClosed(err))
}

func TestClientReceiveServerError(t *testing.T) {
	srv := fakeFeedServer(t, func(conn *websocket.Conn) {
		conn.WriteJSON(Envelope{ID: "sub-1", Type: msgError, Payload: json.RawMessage(`[{"message":"boom"}]`)})
	})
	defer srv.Close()

	client := NewClient(testConfig(wsURL(srv)), nil)
	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()

	_, err := client.Receive(context.Background())
	require.Error(t, err)

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Contains(t, connErr.Message, "boom")
}

func TestClientReceiveAfterPeerClose(t *testing.T) {
	srv := fakeFeedServer(t, nil)
	defer srv.Close()

	client := NewClient(testConfig(wsURL(srv)), nil)
	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()

	_, err := client.Receive(context.Background())
	require.Error(t, err)
	assert.True(t, IsConnectionClosed(err))
}
