package dashboard

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hirepulse/tadash/internal/analytics"
	"github.com/hirepulse/tadash/internal/tracker"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const pingInterval = 30 * time.Second

// wsMessage is the outgoing WebSocket message format.
type wsMessage struct {
	Type    string           `json:"type"` // "summary" or "error"
	Summary *summaryResponse `json:"summary,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// handleWebSocket sends the filtered summary on connect and again after
// every reload of the tracker data.
func (d *Dashboard) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	split := parseBool(r.URL.Query(), "split_rounds")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("dashboard: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel := d.cache.Subscribe()
	defer cancel()

	// Drain client frames so close and ping control messages are handled.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("dashboard: websocket read: %v", err)
				}
				return
			}
		}
	}()

	// The first Get may itself publish to updates; last skips that echo.
	last, err := d.cache.Get(r.Context())
	if err != nil {
		d.send(conn, wsMessage{Type: "error", Error: err.Error()})
	} else if !d.sendSummary(conn, last, f, split) {
		return
	}

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case ds, ok := <-updates:
			if !ok {
				return
			}
			if ds == last {
				continue
			}
			last = ds
			if !d.sendSummary(conn, ds, f, split) {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}

func (d *Dashboard) sendSummary(conn *websocket.Conn, ds *tracker.Dataset, f analytics.Filter, split bool) bool {
	resp := summaryResponse{
		Summary: analytics.Summarize(ds.Records, f, split),
		Dataset: infoOf(ds),
	}
	return d.send(conn, wsMessage{Type: "summary", Summary: &resp})
}

func (d *Dashboard) send(conn *websocket.Conn, msg wsMessage) bool {
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("dashboard: websocket write: %v", err)
		return false
	}
	return true
}
