package broadcast

import (
	"log/slog"
	"net/http"
	"time"

	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
)

const namespace = "/"

// SocketBroadcaster pushes events to every client of the default socket.io namespace
type SocketBroadcaster struct {
	server *socketio.Server
}

// NewSocketServer creates the socket.io server used for realtime map updates
func NewSocketServer() *socketio.Server {
	allowOrigin := func(r *http.Request) bool { return true }

	server := socketio.NewServer(&engineio.Options{
		PingTimeout:  60 * time.Second,
		PingInterval: 25 * time.Second,
		Transports: []transport.Transport{
			&websocket.Transport{CheckOrigin: allowOrigin},
			&polling.Transport{CheckOrigin: allowOrigin},
		},
	})

	server.OnConnect(namespace, func(s socketio.Conn) error {
		s.SetContext("")
		slog.Info("socket client connected", slog.String("id", s.ID()), slog.Any("remote", s.RemoteAddr()))
		return nil
	})

	server.OnError(namespace, func(s socketio.Conn, e error) {
		slog.Warn("socket error", slog.Any("error", e))
	})

	server.OnDisconnect(namespace, func(s socketio.Conn, reason string) {
		slog.Info("socket client disconnected", slog.String("id", s.ID()), slog.String("reason", reason))
	})

	return server
}

// NewSocketBroadcaster wraps a running socket.io server
func NewSocketBroadcaster(server *socketio.Server) *SocketBroadcaster {
	return &SocketBroadcaster{server: server}
}

// Broadcast sends event with payload to all connected clients
func (b *SocketBroadcaster) Broadcast(event string, payload any) {
	b.server.BroadcastToNamespace(namespace, event, payload)
}

// Count returns the number of connected clients
func (b *SocketBroadcaster) Count() int {
	return b.server.Count()
}
