package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/typerace/server/internal/lobby"
	"github.com/typerace/server/internal/metrics"
	"github.com/typerace/server/internal/middleware"
	"github.com/typerace/server/internal/session"
	"github.com/typerace/server/internal/storage"
)

const (
	// writeTimeout bounds a single frame write to one client.
	writeTimeout = 5 * time.Second

	// pingInterval paces the keepalive pings that flush out dead peers.
	pingInterval = 30 * time.Second

	// DefaultQueueSize is the per-session outbound queue depth. A client this
	// far behind on a critical frame is cut loose instead of slowing the game.
	DefaultQueueSize = 64
)

// Server wires the websocket endpoint to the registry and the lobby, and
// serves the HTTP side routes next to it.
type Server struct {
	Logger   *logrus.Logger
	Registry *session.Registry
	Lobby    *lobby.Manager
	Send     session.SendFunc

	// Version is reported on /version.
	Version string
	// ClientURL is the base the QR codes point players at.
	ClientURL string
	// Scores serves /scores; nil when no store is configured.
	Scores storage.TopScoreQuerier

	// QueueSize overrides DefaultQueueSize when positive.
	QueueSize int

	// DisableMetrics leaves /metrics unregistered.
	DisableMetrics bool
}

func (h *Server) queueSize() int {
	if h.QueueSize > 0 {
		return h.QueueSize
	}
	return DefaultQueueSize
}

// HandleWS upgrades the HTTP connection, registers a fresh session and pumps
// frames both ways until the client goes away. Every connection starts
// unidentified; the first accepted connect frame binds its display name.
func (h *Server) HandleWS() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			h.Logger.Warnf("WebSocket accept error from %s: %v", r.RemoteAddr, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		metrics.TotalConnections.Inc()
		metrics.ActiveSessions.Inc()
		defer metrics.ActiveSessions.Dec()
		middleware.LogConnectionOpen(h.Logger, r.RemoteAddr)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// The abort hook fires when a critical frame cannot be queued; tearing
		// the connection down unblocks both pumps.
		sess := session.New(h.queueSize(), func() {
			cancel()
			c.Close(websocket.StatusTryAgainLater, "Outbound queue overflowed.")
		})
		h.Registry.Add(sess)

		go h.writePump(ctx, c, sess)

		readErr := h.readPump(ctx, c, sess)

		// Release the name before the lobby broadcasts, so the departed
		// session never shows up in its own goodbye list.
		h.Registry.Remove(sess)
		h.Lobby.HandleDisconnect(sess)
		middleware.LogConnectionClosed(h.Logger, r.RemoteAddr, sess.Name(), readErr)
	}
}

// readPump reads text frames and hands them to the dispatcher until the
// connection drops or the context is canceled.
func (h *Server) readPump(ctx context.Context, c *websocket.Conn, sess *session.Session) error {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				h.Logger.Infof("WebSocket closed normally for %q", sess.Name())
				return nil
			}
			if ctx.Err() != nil {
				h.Logger.Infof("WebSocket context canceled for %q", sess.Name())
				return nil
			}
			h.Logger.Warnf("WebSocket read error for %q: %v", sess.Name(), err)
			return err
		}

		if msgType != websocket.MessageText {
			h.Logger.Warnf("Ignoring non-text message type %d from %q", msgType, sess.Name())
			metrics.IllegalFrames.Inc()
			continue
		}

		h.dispatch(sess, string(data))
	}
}

// writePump drains the session's outbound queue onto the wire and pings the
// peer between frames. Frames arrive pre-marshaled; a write or ping that
// cannot finish within writeTimeout ends the connection.
func (h *Server) writePump(ctx context.Context, c *websocket.Conn, sess *session.Session) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case frame := <-sess.Out():
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.Write(writeCtx, websocket.MessageText, frame)
			cancel()
			if err != nil {
				h.Logger.Warnf("WebSocket write error for %q: %v", sess.Name(), err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				h.Logger.Infof("WebSocket ping failed for %q: %v", sess.Name(), err)
				return
			}
		}
	}
}
