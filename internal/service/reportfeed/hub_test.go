package reportfeed

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	e := echo.New()
	e.GET("/ws/reports", hub.ServeWS)
	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/reports"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	waitFor(t, func() bool { return hub.Len() == 1 })
	hub.Broadcast(&models.PortfolioReport{RunID: "r1", PortfolioID: "p1"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got models.PortfolioReport
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.RunID != "r1" || got.PortfolioID != "p1" {
		t.Fatalf("unexpected report: %+v", got)
	}

	_ = conn.Close()
	waitFor(t, func() bool { return hub.Len() == 0 })
}

func TestHubCloseDisconnects(t *testing.T) {
	hub := NewHub()
	e := echo.New()
	e.GET("/ws/reports", hub.ServeWS)
	srv := httptest.NewServer(e)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/reports", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	waitFor(t, func() bool { return hub.Len() == 1 })

	_ = hub.Close()
	if hub.Len() != 0 {
		t.Fatalf("expected no subscribers after close")
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected the connection to be closed")
	}
	hub.Broadcast(&models.PortfolioReport{RunID: "r2"})
}
