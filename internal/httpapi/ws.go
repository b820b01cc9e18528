package httpapi

import (
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// handleEvents upgrades the request to a websocket and streams the session's
// event feed until the client disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket accept", "session_id", sess.ID, "error", err)
		return
	}
	defer conn.CloseNow()

	events, cancel := s.hub.Subscribe(sess.ID)
	defer cancel()

	s.logger.Debug("event feed opened", "session_id", sess.ID)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case event := <-events:
			if err := wsjson.Write(ctx, conn, event); err != nil {
				if !errors.Is(err, ctx.Err()) {
					s.logger.Debug("event feed closed", "session_id", sess.ID, "error", err)
				}
				return
			}
		}
	}
}
