// Package feed implements a graphql-transport-ws subscription client
// for the race event feed.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const subprotocol = "graphql-transport-ws"

// Config controls connection behavior for the feed client.
type Config struct {
	Endpoint         string
	Token            string
	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration
}

// DefaultConfig returns recommended connection settings.
func DefaultConfig(endpoint, token string) Config {
	return Config{
		Endpoint:         endpoint,
		Token:            token,
		HandshakeTimeout: 10 * time.Second,
		ReadTimeout:      5 * time.Minute,
	}
}

// Client maintains one live connection to the event feed. It performs
// the connection_init handshake, issues subscription requests, and
// delivers messages strictly in arrival order. No internal buffering,
// no automatic reconnect: a failed connection is the caller's problem.
type Client struct {
	cfg    Config
	conn   *websocket.Conn
	logger *logrus.Logger

	mu          sync.Mutex // guards writes to conn
	isConnected bool
}

// NewClient creates a feed client. Connect must be called before
// Subscribe or Receive.
func NewClient(cfg Config, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.New()
	}

	return &Client{
		cfg:    cfg,
		logger: logger,
	}
}

// Connect dials the feed endpoint, sends connection_init carrying the
// bearer token, and waits for connection_ack. Any other reply or
// transport failure is a ConnectionError.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isConnected {
		return &ConnectionError{Message: "already connected"}
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: c.cfg.HandshakeTimeout,
		Subprotocols:     []string{subprotocol},
	}

	conn, _, err := dialer.DialContext(ctx, c.cfg.Endpoint, nil)
	if err != nil {
		return &ConnectionError{Message: "dial failed", Cause: err}
	}

	initMsg := Envelope{Type: msgConnectionInit}
	initMsg.Payload, _ = json.Marshal(initPayload{Authorization: c.cfg.Token})

	if err := conn.WriteJSON(initMsg); err != nil {
		conn.Close()
		return &ConnectionError{Message: "connection_init failed", Cause: err}
	}

	// One acknowledgment is expected before subscribing.
	conn.SetReadDeadline(time.Now().Add(c.cfg.HandshakeTimeout))
	var ack Envelope
	if err := conn.ReadJSON(&ack); err != nil {
		conn.Close()
		return &ConnectionError{Message: "handshake read failed", Cause: err}
	}
	if ack.Type != msgConnectionAck {
		conn.Close()
		return &ConnectionError{Message: fmt.Sprintf("unexpected handshake reply %q", ack.Type)}
	}

	c.conn = conn
	c.isConnected = true

	c.logger.WithField("endpoint", c.cfg.Endpoint).Info("Connected to race event feed")
	return nil
}

// Subscribe sends a single subscription request and returns the
// generated subscription id. It does not wait for server confirmation
// beyond the transport's own acknowledgment semantics.
func (c *Client) Subscribe(ctx context.Context, operationName, query string, variables map[string]interface{}) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isConnected || c.conn == nil {
		return "", &ConnectionError{Message: "not connected"}
	}

	subID := uuid.New().String()
	msg := Envelope{ID: subID, Type: msgSubscribe}
	payload, err := json.Marshal(subscribePayload{
		OperationName: operationName,
		Query:         query,
		Variables:     variables,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal subscribe payload: %w", err)
	}
	msg.Payload = payload

	if err := c.conn.WriteJSON(msg); err != nil {
		return "", &ConnectionError{Message: "subscribe failed", Cause: err}
	}

	c.logger.WithFields(logrus.Fields{
		"subscription_id": subID,
		"operation":       operationName,
	}).Info("Subscribed to race events")

	return subID, nil
}

// Receive blocks until the next data message arrives and returns its
// raw JSON. Protocol pings are answered and skipped. Peer close, a
// server error frame, or read deadline expiry yields
// ConnectionClosedError / ConnectionError.
func (c *Client) Receive(ctx context.Context) (json.RawMessage, error) {
	if !c.connected() {
		return nil, &ConnectionError{Message: "not connected"}
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, &ConnectionClosedError{Cause: err}
		}

		if c.cfg.ReadTimeout > 0 {
			c.conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
		}

		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return nil, &ConnectionClosedError{Cause: err}
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			// Not even a protocol frame; hand it to the caller so the
			// normalizer can report it as malformed.
			return raw, nil
		}

		switch env.Type {
		case msgNext:
			return raw, nil
		case msgPing:
			if err := c.send(Envelope{Type: msgPong}); err != nil {
				return nil, &ConnectionClosedError{Cause: err}
			}
		case msgKeepAlive, msgConnectionAck, msgPong:
			// Skip transport chatter.
		case msgComplete:
			return nil, &ConnectionClosedError{Cause: fmt.Errorf("subscription %s completed", env.ID)}
		case msgError:
			return nil, &ConnectionError{Message: fmt.Sprintf("server error on subscription %s: %s", env.ID, string(env.Payload))}
		default:
			c.logger.WithField("type", env.Type).Debug("Ignoring unknown protocol frame")
		}
	}
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	c.isConnected = false
	return c.conn.Close()
}

// IsConnected reports whether the client holds a live connection.
func (c *Client) IsConnected() bool {
	return c.connected()
}

func (c *Client) connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isConnected && c.conn != nil
}

func (c *Client) send(msg Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isConnected || c.conn == nil {
		return &ConnectionError{Message: "not connected"}
	}
	return c.conn.WriteJSON(msg)
}
