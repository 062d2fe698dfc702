package service

import (
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"sync"

	"github.com/gorilla/websocket"

	"tally/grid"
	"tally/sheet"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all for local dev
	},
}

// Request is one client operation on the shared sheet.
type Request struct {
	Type string `json:"type"` // "set", "clear", "erase"
	Cell string `json:"cell,omitempty"`
	Text string `json:"text,omitempty"`
}

// CellState is the wire form of one populated cell.
type CellState struct {
	Cell  string `json:"cell"`
	Value string `json:"value"`
	Text  string `json:"text"`
}

// Response is a server-to-client frame. A "reset" clears the client
// view and is followed by one "cell" frame per populated cell.
type Response struct {
	Type    string     `json:"type"` // "reset", "cell", "error"
	Data    *CellState `json:"data,omitempty"`
	Message string     `json:"message,omitempty"`
}

// Server shares one sheet across every connected client. Each
// mutation is applied under the lock and the resulting state is
// broadcast; the engine itself stays single-threaded.
type Server struct {
	mu      sync.Mutex
	sheet   *sheet.Sheet
	clients map[*websocket.Conn]bool
}

func NewServer() *Server {
	return &Server{
		sheet:   sheet.New(),
		clients: make(map[*websocket.Conn]bool),
	}
}

// ListenAndServe mounts the websocket endpoint at / and blocks.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.HandleWebSocket)
	log.Printf("sheet server listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.sendState(conn)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var req Request
		if err := json.Unmarshal(msg, &req); err != nil {
			log.Println("JSON error:", err)
			continue
		}

		s.mu.Lock()
		if err := s.apply(req); err != nil {
			if werr := conn.WriteJSON(Response{Type: "error", Message: err.Error()}); werr != nil {
				log.Printf("error write failed: %v", werr)
			}
		} else {
			s.broadcastAll()
		}
		s.mu.Unlock()
	}
}

// apply runs one request against the sheet. Caller must hold s.mu.
func (s *Server) apply(req Request) error {
	switch req.Type {
	case "set":
		return s.sheet.SetCell(grid.FromString(req.Cell), req.Text)
	case "clear":
		return s.sheet.ClearCell(grid.FromString(req.Cell))
	case "erase":
		s.sheet.Erase()
		return nil
	}
	log.Printf("unknown request type %q", req.Type)
	return nil
}

// sendState pushes a reset followed by every populated cell to one
// client. Caller must hold s.mu.
func (s *Server) sendState(conn *websocket.Conn) {
	for _, resp := range s.stateFrames() {
		if err := conn.WriteJSON(resp); err != nil {
			log.Printf("state write failed: %v", err)
			return
		}
	}
}

// broadcastAll pushes the full state to every client, dropping the
// ones that fail. Caller must hold s.mu.
func (s *Server) broadcastAll() {
	frames := s.stateFrames()
	for client := range s.clients {
		for _, resp := range frames {
			if err := client.WriteJSON(resp); err != nil {
				log.Printf("broadcast write failed: %v", err)
				_ = client.Close()
				delete(s.clients, client)
				break
			}
		}
	}
}

// stateFrames renders the sheet as a reset frame plus one frame per
// populated cell, in stable position order.
func (s *Server) stateFrames() []Response {
	positions := s.sheet.Positions()
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Less(positions[j])
	})

	frames := make([]Response, 0, len(positions)+1)
	frames = append(frames, Response{Type: "reset"})
	for _, pos := range positions {
		cell, err := s.sheet.GetCell(pos)
		if err != nil || cell == nil {
			continue
		}
		frames = append(frames, Response{Type: "cell", Data: &CellState{
			Cell:  pos.String(),
			Value: sheet.FormatValue(cell.GetValue()),
			Text:  cell.GetText(),
		}})
	}
	return frames
}
