package kernel

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/go-zeromq/zmq4"

	"tally/grid"
	"tally/sheet"
)

// Request is one operation frame sent to the kernel.
type Request struct {
	Op   string `json:"op"` // set, get, text, refs, clear, size, values, texts, erase
	Cell string `json:"cell,omitempty"`
	Text string `json:"text,omitempty"`
}

// Reply mirrors a request. Value carries the payload of read
// operations; Error the reason any request failed.
type Reply struct {
	OK    bool   `json:"ok"`
	Value string `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}

// Kernel serves a sheet over a ZeroMQ REP socket, one JSON request per
// message. The strict request/reply lockstep keeps the engine
// single-threaded without extra locking.
type Kernel struct {
	endpoint string
	sock     zmq4.Socket
	sheet    *sheet.Sheet
	shutdown chan struct{}
}

func New(endpoint string) *Kernel {
	return &Kernel{
		endpoint: endpoint,
		sheet:    sheet.New(),
		shutdown: make(chan struct{}),
	}
}

// Start binds the socket and serves until Stop is called.
func (k *Kernel) Start() error {
	k.sock = zmq4.NewRep(context.Background())
	if err := k.sock.Listen(k.endpoint); err != nil {
		return fmt.Errorf("failed to bind to %s: %w", k.endpoint, err)
	}
	log.Printf("kernel listening on %s", k.endpoint)

	for {
		msg, err := k.sock.Recv()
		if err != nil {
			select {
			case <-k.shutdown:
				return nil
			default:
			}
			log.Printf("recv error: %v", err)
			return err
		}

		reply := k.handle(msg.Bytes())
		data, err := json.Marshal(reply)
		if err != nil {
			log.Printf("marshal error: %v", err)
			data = []byte(`{"ok":false,"error":"internal error"}`)
		}
		if err := k.sock.Send(zmq4.NewMsg(data)); err != nil {
			log.Printf("send error: %v", err)
		}
	}
}

// Stop closes the socket and ends the serve loop.
func (k *Kernel) Stop() {
	close(k.shutdown)
	if k.sock != nil {
		k.sock.Close()
	}
}

func (k *Kernel) handle(data []byte) Reply {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Reply{Error: fmt.Sprintf("bad request: %v", err)}
	}

	switch req.Op {
	case "set":
		if err := k.sheet.SetCell(grid.FromString(req.Cell), req.Text); err != nil {
			return Reply{Error: err.Error()}
		}
		return Reply{OK: true}

	case "get":
		cell, err := k.cellFor(req.Cell)
		if err != nil {
			return Reply{Error: err.Error()}
		}
		if cell == nil {
			return Reply{OK: true}
		}
		return Reply{OK: true, Value: sheet.FormatValue(cell.GetValue())}

	case "text":
		cell, err := k.cellFor(req.Cell)
		if err != nil {
			return Reply{Error: err.Error()}
		}
		if cell == nil {
			return Reply{OK: true}
		}
		return Reply{OK: true, Value: cell.GetText()}

	case "refs":
		cell, err := k.cellFor(req.Cell)
		if err != nil {
			return Reply{Error: err.Error()}
		}
		if cell == nil {
			return Reply{OK: true}
		}
		labels := make([]string, 0, 4)
		for _, pos := range cell.GetReferencedCells() {
			labels = append(labels, pos.String())
		}
		return Reply{OK: true, Value: strings.Join(labels, " ")}

	case "clear":
		if err := k.sheet.ClearCell(grid.FromString(req.Cell)); err != nil {
			return Reply{Error: err.Error()}
		}
		return Reply{OK: true}

	case "size":
		size := k.sheet.GetPrintableSize()
		return Reply{OK: true, Value: fmt.Sprintf("%dx%d", size.Rows, size.Cols)}

	case "values":
		var b strings.Builder
		k.sheet.PrintValues(&b)
		return Reply{OK: true, Value: b.String()}

	case "texts":
		var b strings.Builder
		k.sheet.PrintTexts(&b)
		return Reply{OK: true, Value: b.String()}

	case "erase":
		k.sheet.Erase()
		return Reply{OK: true}
	}

	return Reply{Error: fmt.Sprintf("unknown op %q", req.Op)}
}

func (k *Kernel) cellFor(label string) (*sheet.Cell, error) {
	return k.sheet.GetCell(grid.FromString(label))
}
