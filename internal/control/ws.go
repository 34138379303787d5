package control

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/ldb-go/ldb/internal/logx"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWS upgrades to a websocket and streams the StatsSource
// snapshot (the "ldb" part of /stats, without the "process" block) to
// the client every second until the connection closes or Stop fires,
// the live-tail counterpart to the polling /stats endpoint.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logx.Warn("control: websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	sub := &subscriber{closed: make(chan struct{})}
	if !s.trackConn(sub) {
		return
	}
	defer s.untrackConn(sub)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-sub.closed:
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ticker.C:
			if err := conn.WriteJSON(s.stats.Stats()); err != nil {
				return
			}
		}
	}
}
