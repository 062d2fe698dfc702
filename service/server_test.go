package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

func dial(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(srv.HandleWebSocket))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Response {
	t.Helper()
	var resp Response
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return resp
}

func TestServerRoundTrip(t *testing.T) {
	conn := dial(t, NewServer())

	if resp := readFrame(t, conn); resp.Type != "reset" {
		t.Fatalf("first frame type = %q, want reset", resp.Type)
	}

	if err := conn.WriteJSON(Request{Type: "set", Cell: "A1", Text: "=2*3"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if resp := readFrame(t, conn); resp.Type != "reset" {
		t.Fatalf("frame type = %q, want reset", resp.Type)
	}
	resp := readFrame(t, conn)
	if resp.Type != "cell" || resp.Data == nil {
		t.Fatalf("frame = %+v, want cell state", resp)
	}
	if resp.Data.Cell != "A1" || resp.Data.Value != "6" || resp.Data.Text != "=2*3" {
		t.Fatalf("cell state = %+v", *resp.Data)
	}
}

func TestServerBroadcastsDependentUpdates(t *testing.T) {
	conn := dial(t, NewServer())
	if resp := readFrame(t, conn); resp.Type != "reset" {
		t.Fatalf("first frame type = %q, want reset", resp.Type)
	}

	if err := conn.WriteJSON(Request{Type: "set", Cell: "B1", Text: "=A1+1"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	// reset + B1
	readFrame(t, conn)
	if resp := readFrame(t, conn); resp.Data == nil || resp.Data.Value != "1" {
		t.Fatalf("B1 before A1 exists = %+v", resp)
	}

	if err := conn.WriteJSON(Request{Type: "set", Cell: "A1", Text: "4"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	// reset + A1 + B1 in position order (A1 first).
	readFrame(t, conn)
	a1 := readFrame(t, conn)
	b1 := readFrame(t, conn)
	if a1.Data == nil || a1.Data.Cell != "A1" || a1.Data.Value != "4" {
		t.Fatalf("A1 frame = %+v", a1)
	}
	if b1.Data == nil || b1.Data.Cell != "B1" || b1.Data.Value != "5" {
		t.Fatalf("B1 frame = %+v", b1)
	}
}

func TestServerReportsErrors(t *testing.T) {
	conn := dial(t, NewServer())
	if resp := readFrame(t, conn); resp.Type != "reset" {
		t.Fatalf("first frame type = %q, want reset", resp.Type)
	}

	if err := conn.WriteJSON(Request{Type: "set", Cell: "A1", Text: "=1+"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	resp := readFrame(t, conn)
	if resp.Type != "error" || resp.Message == "" {
		t.Fatalf("frame = %+v, want error", resp)
	}
}
