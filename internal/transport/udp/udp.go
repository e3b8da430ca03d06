// Package udp implements the "udp" transport: a bound socket as the
// source, one datagram per Pull; a connected socket as the sink, one
// datagram per Push. Unlike tcp, there is no stream to split — each
// datagram is already message-shaped, so this stage is commonly paired
// directly with a codec rather than with delim/length framing.
package udp

import (
	"fmt"
	"net"
	"strings"

	"github.com/mjwatson/stream-proxy/internal/perr"
	"github.com/mjwatson/stream-proxy/internal/registry"
	"github.com/mjwatson/stream-proxy/internal/stage"
)

const maxDatagram = 64 * 1024

// Register adds "udp".
func Register(reg *registry.Registry) error {
	return reg.Register(registry.Registration{
		Name:        "udp",
		Factory:     newStage,
		Description: "bound socket (source) / connected socket (sink)",
	})
}

func newStage(position int, options string) (stage.Stage, error) {
	host, port, ok := strings.Cut(strings.TrimPrefix(options, "//"), ":")
	if !ok || port == "" {
		return nil, fmt.Errorf("udp requires a host:port option, e.g. udp:0.0.0.0:9000")
	}
	addr := host + ":" + port
	if position == 0 {
		laddr, err := net.ResolveUDPAddr("udp", addr)
		if err != nil {
			return nil, perr.WrapInvalidOption(err, "transport/udp", "newStage", fmt.Sprintf("resolve %s", addr))
		}
		conn, err := net.ListenUDP("udp", laddr)
		if err != nil {
			return nil, perr.WrapFatal(err, "transport/udp", "newStage", fmt.Sprintf("listen %s", addr))
		}
		return &source{conn: conn}, nil
	}
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, perr.WrapInvalidOption(err, "transport/udp", "newStage", fmt.Sprintf("resolve %s", addr))
	}
	return &sink{addr: raddr}, nil
}

type source struct {
	conn *net.UDPConn
}

func (s *source) Pull() ([]byte, error) {
	buf := make([]byte, maxDatagram)
	n, _, err := s.conn.ReadFromUDP(buf)
	if err != nil {
		return nil, perr.WrapFatal(err, "transport/udp", "Pull", "read datagram")
	}
	return buf[:n], nil
}

func (s *source) Close() error {
	return s.conn.Close()
}

type sink struct {
	addr *net.UDPAddr
	conn *net.UDPConn
}

func (s *sink) Push(_ stage.State, input []byte) (emitted, remainder []byte, err error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	if s.conn == nil {
		conn, err := net.DialUDP("udp", nil, s.addr)
		if err != nil {
			return nil, nil, perr.WrapFatal(err, "transport/udp", "Push", fmt.Sprintf("dial %s", s.addr))
		}
		s.conn = conn
	}
	if _, err := s.conn.Write(input); err != nil {
		return nil, nil, perr.WrapFatal(err, "transport/udp", "Push", "write datagram")
	}
	return nil, nil, nil
}

func (s *sink) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
