package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/xob0t/GoWipe/pkg/generator"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Event acts sent over the progress socket.
const (
	actProgress = "PROGRESS"
	actDone     = "DONE"
	actError    = "ERROR"
)

type event struct {
	Act    string            `json:"act"`
	Done   int               `json:"done,omitempty"`
	Total  int               `json:"total,omitempty"`
	Result *generator.Result `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
	Kind   string            `json:"kind,omitempty"`
}

// handleGenerateWS runs one generation per connection. The client sends a
// single generate request; the server answers with PROGRESS events (at most
// one per percent) followed by DONE or ERROR, then closes.
func (s *Server) handleGenerateWS(c *gin.Context) {
	if !c.IsWebsocket() {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warnf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	var req generateRequest
	if err := conn.ReadJSON(&req); err != nil || req.Folder == "" {
		msg := "folder is required"
		if err != nil {
			msg = err.Error()
		}
		conn.WriteJSON(event{Act: actError, Error: msg, Kind: generator.KindInvalidConfig})
		return
	}

	// The hijacked request context outlives the client, so a failed write is
	// what stops the run.
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	cfg := s.requestConfig(req)
	lastPct := -1
	cfg.Progress = func(done, total int) {
		pct := done * 100 / total
		if pct == lastPct {
			return
		}
		lastPct = pct
		if err := conn.WriteJSON(event{Act: actProgress, Done: done, Total: total}); err != nil {
			cancel()
		}
	}

	s.mu.Lock()
	res, err := s.generate(ctx, req.Folder, cfg)
	s.mu.Unlock()

	if err != nil {
		logger.Warnf("generate %s: %v", req.Folder, err)
		conn.WriteJSON(event{Act: actError, Error: err.Error(), Kind: generator.Kind(err)})
	} else {
		conn.WriteJSON(event{Act: actDone, Result: res})
	}
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
