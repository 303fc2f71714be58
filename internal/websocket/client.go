package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"loan-assist-be/internal/constant"
	"loan-assist-be/internal/dto"
	"loan-assist-be/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBufferSize = 256
)

// Conn is the subset of *websocket.Conn the pumps use.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	SetReadLimit(limit int64)
	Close() error
}

// QuestionAnswerer answers a question against a session's stored context.
type QuestionAnswerer interface {
	Answer(ctx context.Context, sessionID, question string) (string, error)
}

// Client is a middleman between one session's websocket connection and the hub.
type Client struct {
	hub       *Hub
	conn      Conn
	sessionID string
	answerer  QuestionAnswerer
	logger    logger.ILogger

	// Buffered channel of outbound messages, drained only by writePump.
	send chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

func newClient(hub *Hub, conn Conn, sessionID string, answerer QuestionAnswerer) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		sessionID: sessionID,
		answerer:  answerer,
		logger:    hub.logger,
		send:      make(chan []byte, sendBufferSize),
		done:      make(chan struct{}),
	}
}

// Send queues v for delivery. It is a no-op once the client is closed.
func (c *Client) Send(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("Client", "Failed to encode outbound message", map[string]interface{}{"session_id": c.sessionID, "error": err})
		return
	}

	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.send <- data:
	case <-c.done:
	}
}

func (c *Client) sendError(message string) {
	c.Send(dto.ErrorMessage{Type: constant.MessageTypeError, Message: message})
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// readPump reads and handles messages one at a time until the connection fails.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Client", "Recovered from panic in read loop", map[string]interface{}{
				"session_id": c.sessionID,
				"panic":      fmt.Sprint(r),
			})
		}
		c.hub.release(c)
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("Client", "Unexpected close", map[string]interface{}{"session_id": c.sessionID, "error": err})
			} else {
				c.logger.Info("Client", "Connection closed", map[string]interface{}{"session_id": c.sessionID})
			}
			return
		}

		c.handle(ctx, data)

		// A long model call may outlive the previous deadline.
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

func (c *Client) handle(ctx context.Context, data []byte) {
	var msg dto.InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.logger.Warn("Client", "Invalid inbound message", map[string]interface{}{"session_id": c.sessionID, "error": err})
		c.sendError(constant.RealtimeErrorInvalidJSON)
		return
	}

	switch msg.Type {
	case constant.MessageTypeQuestion:
		c.handleQuestion(ctx, msg.Question)
	case constant.MessageTypePing:
		c.Send(dto.PongMessage{Type: constant.MessageTypePong, Timestamp: time.Now().UTC()})
	default:
		c.logger.Warn("Client", "Unknown message type", map[string]interface{}{"session_id": c.sessionID, "type": msg.Type})
		c.sendError(constant.RealtimeErrorUnknownType)
	}
}

func (c *Client) handleQuestion(ctx context.Context, question string) {
	question = strings.TrimSpace(question)
	if question == "" {
		c.sendError(constant.RealtimeErrorEmptyQuestion)
		return
	}

	c.Send(dto.ProcessingMessage{Type: constant.MessageTypeProcessing, Message: constant.RealtimeMessageProcessing})

	answer, err := c.answerer.Answer(ctx, c.sessionID, question)
	if err != nil {
		c.logger.Error("Client", "Failed to answer question", map[string]interface{}{"session_id": c.sessionID, "error": err})
		c.sendError(constant.RealtimeErrorProcessingFails)
		return
	}

	c.Send(dto.AnswerMessage{
		Type:      constant.MessageTypeAnswer,
		Question:  question,
		Answer:    answer,
		Timestamp: time.Now().UTC(),
	})
}

// writePump is the only writer on the connection. After the client closes it
// flushes whatever is still queued, then closes the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			if err := c.write(websocket.TextMessage, message); err != nil {
				c.logger.Warn("Client", "Write failed", map[string]interface{}{"session_id": c.sessionID, "error": err})
				c.close()
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			c.flush()
			_ = c.write(websocket.CloseMessage, []byte{})
			return
		}
	}
}

func (c *Client) flush() {
	for {
		select {
		case message := <-c.send:
			if err := c.write(websocket.TextMessage, message); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}
