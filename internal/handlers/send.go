// Package handlers owns the transport surface: the websocket endpoint with
// its read and write pumps, the frame dispatcher that enforces verb legality
// per protocol state, and the HTTP side routes (health, version, metrics,
// QR codes, top scores).
package handlers

import (
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/typerace/server/internal/metrics"
	"github.com/typerace/server/internal/protocol"
	"github.com/typerace/server/internal/session"
)

// NewSendFunc builds the shared fan-out used by the lobby and every game.
// The event is marshaled exactly once and the same frame is offered to each
// target's bounded queue, so a stalled client never holds back anyone else.
func NewSendFunc(logger *logrus.Logger) session.SendFunc {
	return func(targets []*session.Session, ev any, critical bool) {
		if len(targets) == 0 {
			return
		}
		data, err := json.Marshal(ev)
		if err != nil {
			logger.Errorf("Failed to marshal outbound %T: %v", ev, err)
			return
		}
		label := messageLabel(ev)
		for _, s := range targets {
			if s.Enqueue(data, critical) {
				metrics.MessagesSent.WithLabelValues(label).Inc()
			} else {
				metrics.FramesDropped.Inc()
				logger.Warnf("Dropped %s frame for %q: outbound queue full", label, s.Name())
			}
		}
	}
}

// messageLabel maps an outbound event to its wire type for metrics.
func messageLabel(ev any) string {
	switch m := ev.(type) {
	case protocol.NameError:
		return m.Type
	case protocol.GamesList:
		return protocol.TypeGamesList
	case protocol.GameStart:
		return protocol.TypeGameStart
	case protocol.WordsList:
		return protocol.TypeWordsList
	case protocol.Scores:
		return protocol.TypeScores
	case protocol.Manager:
		return protocol.TypeManager
	}
	return "unknown"
}
