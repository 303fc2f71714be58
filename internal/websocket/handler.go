package websocket

import (
	"context"
	"encoding/json"
	"time"

	"loan-assist-be/internal/constant"
	"loan-assist-be/internal/dto"

	"github.com/gofiber/websocket/v2"
)

// ServeSession runs one session's realtime channel and returns once the
// connection is gone and every queued message has been written.
func ServeSession(ctx context.Context, hub *Hub, conn Conn, sessionID string, answerer QuestionAnswerer) {
	client := newClient(hub, conn, sessionID, answerer)

	session, ok := hub.register(client)
	if !ok {
		hub.logger.Warn("Hub", "Rejected connection without context", map[string]interface{}{"session_id": sessionID})
		data, _ := json.Marshal(dto.ErrorMessage{Type: constant.MessageTypeError, Message: constant.RealtimeErrorNoContext})
		_ = client.write(websocket.TextMessage, data)
		_ = conn.Close()
		return
	}

	written := make(chan struct{})
	go func() {
		defer close(written)
		client.writePump()
	}()

	client.Send(dto.SystemMessage{
		Type:      constant.MessageTypeSystem,
		Message:   constant.RealtimeMessageConnected,
		SessionId: sessionID,
		LoanName:  session.LoanName,
		Timestamp: time.Now().UTC(),
	})

	client.readPump(ctx)
	<-written
}
