// Package tcp implements the "tcp" transport. At position 0 it listens
// and reads from accepted connections; bare "host:port" accepts a
// single connection and signals end-of-transport when it closes, while
// "host:port:keep" keeps the listener open and concatenates successive
// connections into one logical stream — grounded on the teacher's
// gateway package, which runs its accept loop alongside the rest of the
// pipeline under golang.org/x/sync/errgroup rather than a bare
// goroutine, so a listener failure cancels the run instead of leaking.
// At any other position it dials out and writes each push to the
// connection.
package tcp

import (
	"fmt"
	"net"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mjwatson/stream-proxy/internal/perr"
	"github.com/mjwatson/stream-proxy/internal/registry"
	"github.com/mjwatson/stream-proxy/internal/stage"
)

const chunkSize = 64 * 1024

// Register adds "tcp".
func Register(reg *registry.Registry) error {
	return reg.Register(registry.Registration{
		Name:        "tcp",
		Factory:     newStage,
		Description: "listen and read (source) / dial and write (sink)",
	})
}

func newStage(position int, options string) (stage.Stage, error) {
	options = strings.TrimPrefix(options, "//")
	addr, rest, _ := strings.Cut(options, ":")
	if addr == "" {
		return nil, fmt.Errorf("tcp requires a host:port option, e.g. tcp:0.0.0.0:9000")
	}
	addr = addr + ":" + rest2(rest)
	if position == 0 {
		return newSource(addr, strings.Contains(options, ":keep"))
	}
	return &sink{addr: addr}, nil
}

// rest2 extracts the port from the "port[:keep]" remainder produced by
// cutting the "host:port[:keep]" options string only once above.
func rest2(rest string) string {
	port, _, _ := strings.Cut(rest, ":")
	return port
}

type source struct {
	ln   net.Listener
	keep bool

	mu     sync.Mutex
	buf    chan []byte
	g      *errgroup.Group
	closed bool
}

func newSource(addr string, keep bool) (*source, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, perr.WrapFatal(err, "transport/tcp", "newSource", fmt.Sprintf("listen %s", addr))
	}
	s := &source{ln: ln, keep: keep, buf: make(chan []byte, 64)}
	g := &errgroup.Group{}
	s.g = g
	g.Go(s.acceptLoop)
	return s, nil
}

func (s *source) acceptLoop() error {
	defer close(s.buf)
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if s.isClosed() {
				return nil
			}
			return err
		}
		s.readConn(conn)
		if !s.keep {
			return nil
		}
	}
}

func (s *source) readConn(conn net.Conn) {
	defer conn.Close()
	buf := make([]byte, chunkSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			s.buf <- chunk
		}
		if err != nil {
			return
		}
	}
}

func (s *source) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *source) Pull() ([]byte, error) {
	chunk, ok := <-s.buf
	if !ok {
		if err := s.g.Wait(); err != nil {
			return nil, perr.WrapFatal(err, "transport/tcp", "Pull", "accept connection")
		}
		return nil, perr.ErrEndOfTransport
	}
	return chunk, nil
}

func (s *source) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	err := s.ln.Close()
	_ = s.g.Wait()
	return err
}

type sink struct {
	addr string
	conn net.Conn
}

func (s *sink) Push(_ stage.State, input []byte) (emitted, remainder []byte, err error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	if s.conn == nil {
		conn, err := net.Dial("tcp", s.addr)
		if err != nil {
			return nil, nil, perr.WrapFatal(err, "transport/tcp", "Push", fmt.Sprintf("dial %s", s.addr))
		}
		s.conn = conn
	}
	if _, err := s.conn.Write(input); err != nil {
		return nil, nil, perr.WrapFatal(err, "transport/tcp", "Push", "write connection")
	}
	return nil, nil, nil
}

func (s *sink) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
