package handlers

import (
	"errors"

	"github.com/typerace/server/internal/metrics"
	"github.com/typerace/server/internal/protocol"
	"github.com/typerace/server/internal/session"
)

// dispatch parses one inbound frame and routes it when the verb is legal in
// the session's current state. Everything else is counted and dropped
// without a reply; the client is expected to know the protocol.
//
// The state check here is a pre-filter. The lobby and the game re-check
// every guard under their own locks, so a frame racing a state change is at
// worst dropped, never misapplied.
func (h *Server) dispatch(sess *session.Session, frame string) {
	cmd, ok := protocol.Parse(frame)
	if !ok {
		metrics.IllegalFrames.Inc()
		h.Logger.Debugf("Unparseable frame from %q: %q", sess.Name(), frame)
		return
	}
	metrics.CommandsReceived.WithLabelValues(cmd.Verb).Inc()

	state := sess.State()
	switch cmd.Verb {
	case protocol.VerbConnect:
		if state == session.StateUnidentified {
			h.connect(sess, cmd.Args[0])
			return
		}

	case protocol.VerbCreateGame:
		if state == session.StateIdentified {
			params, ok := protocol.ParseCreateArgs(cmd.Args)
			if !ok {
				metrics.IllegalFrames.Inc()
				h.Logger.Debugf("Bad create-game arguments from %q: %v", sess.Name(), cmd.Args)
				return
			}
			h.Lobby.CreateGame(sess, params)
			return
		}

	case protocol.VerbJoinGame:
		if state == session.StateIdentified {
			id, ok := protocol.ParseGameID(cmd.Args[0])
			if !ok {
				metrics.IllegalFrames.Inc()
				h.Logger.Debugf("Bad join-game id from %q: %q", sess.Name(), cmd.Args[0])
				return
			}
			h.Lobby.JoinGame(sess, id)
			return
		}

	case protocol.VerbDeleteGame:
		if state == session.StateCreated {
			h.Lobby.DeleteGame(sess)
			return
		}

	case protocol.VerbLeaveGame:
		if state == session.StateJoined {
			h.Lobby.LeaveGame(sess)
			return
		}

	case protocol.VerbStartGame:
		if state == session.StateCreated {
			h.Lobby.StartGame(sess)
			return
		}

	case protocol.VerbStartRound:
		if state == session.StateEndRound || state == session.StateScores {
			if g, ok := h.Lobby.Running(sess.GameID()); ok {
				g.StartRound(sess)
			}
			return
		}

	case protocol.VerbClaimWord:
		if state == session.StateRunning {
			if g, ok := h.Lobby.Running(sess.GameID()); ok {
				g.ClaimWord(sess, cmd.Args[0])
			}
			return
		}

	case protocol.VerbQuitGame:
		if state == session.StateRunning || state == session.StateEndRound || state == session.StateScores {
			if g, ok := h.Lobby.Running(sess.GameID()); ok {
				g.QuitGame(sess)
			}
			return
		}
	}

	metrics.IllegalFrames.Inc()
	h.Logger.Debugf("Ignoring %q from %q in state %s", cmd.Verb, sess.Name(), state)
}

// connect validates the requested display name. Rejections go back to the
// requester alone; on success the lobby takes over and sends the games list.
func (h *Server) connect(sess *session.Session, name string) {
	err := h.Registry.Identify(sess, name)
	switch {
	case err == nil:
		h.Logger.Infof("Session identified as %q", name)
		h.Lobby.Connect(sess)
	case errors.Is(err, session.ErrNameTooLong):
		h.Send([]*session.Session{sess}, protocol.NewTooLongName(), false)
	case errors.Is(err, session.ErrNameIncorrect):
		h.Send([]*session.Session{sess}, protocol.NewIncorrectName(), false)
	case errors.Is(err, session.ErrNameUsed):
		h.Send([]*session.Session{sess}, protocol.NewUsedName(), false)
	}
}
