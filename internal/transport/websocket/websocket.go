// Package websocket implements the "ws" transport over a single
// connection using gorilla/websocket: as a source at position 0 it
// dials (or, with the "listen" option, accepts one inbound connection)
// and yields one Pull per received frame; as a sink it sends one frame
// per Push.
package websocket

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/mjwatson/stream-proxy/internal/perr"
	"github.com/mjwatson/stream-proxy/internal/registry"
	"github.com/mjwatson/stream-proxy/internal/stage"
)

// Register adds "ws".
func Register(reg *registry.Registry) error {
	return reg.Register(registry.Registration{
		Name:        "ws",
		Factory:     newStage,
		Description: "websocket connection: dial or listen (source) / send (sink)",
	})
}

func newStage(position int, options string) (stage.Stage, error) {
	target, listen := strings.CutSuffix(options, ":listen")
	if target == "" {
		return nil, fmt.Errorf("ws requires a url or listen-address option, e.g. ws:ws://host/path")
	}
	if position == 0 {
		if listen {
			return newListenSource(target)
		}
		return newDialSource(target)
	}
	return newDialSink(target)
}

func newDialSource(url string) (*source, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, perr.WrapFatal(err, "transport/ws", "newDialSource", fmt.Sprintf("dial %s", url))
	}
	return &source{conn: conn}, nil
}

func newDialSink(url string) (*sink, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, perr.WrapFatal(err, "transport/ws", "newDialSink", fmt.Sprintf("dial %s", url))
	}
	return &sink{conn: conn}, nil
}

// newListenSource accepts exactly one inbound connection on addr, then
// serves it as the source of Pulled messages.
func newListenSource(addr string) (*source, error) {
	upgrader := websocket.Upgrader{}
	connCh := make(chan *websocket.Conn, 1)
	errCh := make(chan error, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			errCh <- err
			return
		}
		connCh <- conn
	})
	srv := &http.Server{Addr: addr, Handler: mux}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = srv.ListenAndServe()
	}()

	select {
	case conn := <-connCh:
		return &source{conn: conn, srv: srv}, nil
	case err := <-errCh:
		srv.Close()
		return nil, perr.WrapFatal(err, "transport/ws", "newListenSource", "upgrade connection")
	}
}

type source struct {
	conn *websocket.Conn
	srv  *http.Server
}

func (s *source) Pull() ([]byte, error) {
	_, data, err := s.conn.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil, perr.ErrEndOfTransport
		}
		return nil, perr.WrapFatal(err, "transport/ws", "Pull", "read frame")
	}
	return data, nil
}

func (s *source) Close() error {
	err := s.conn.Close()
	if s.srv != nil {
		_ = s.srv.Close()
	}
	return err
}

type sink struct {
	conn *websocket.Conn
}

func (s *sink) Push(_ stage.State, input []byte) (emitted, remainder []byte, err error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	if err := s.conn.WriteMessage(websocket.BinaryMessage, input); err != nil {
		return nil, nil, perr.WrapFatal(err, "transport/ws", "Push", "write frame")
	}
	return nil, nil, nil
}

func (s *sink) Close() error {
	return s.conn.Close()
}
