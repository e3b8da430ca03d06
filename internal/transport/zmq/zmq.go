// Package zmq implements the "zmq" transport over ZeroMQ sockets, using
// go-zeromq/zmq4 — the pure-Go ZMQ binding, chosen over a cgo binding so
// the module stays buildable without a system libzmq (SPEC_FULL.md §6
// notes this is the one dependency with no grounding in the retrieved
// examples). Options take the form "mode:endpoint", e.g. "pub:tcp://*:5555".
//
// pull/sub/rep are sources (position 0); push/pub/req are sinks. rep
// and req keep their socket's mandatory request/reply alternation valid
// even though a Puller only ever returns bytes and a Pusher only ever
// consumes them: rep sends an empty acknowledgement reply immediately
// after every Recv, before handing the message back to Pull's caller;
// req sends then immediately receives and discards the mandatory reply
// before Push returns. Neither socket ever exposes the reply payload
// itself, since the stage contract has no slot for it — the pipeline
// here is one-directional by construction, and req/rep both hide that
// fact from their peer rather than fail to speak the protocol at all.
package zmq

import (
	"context"
	"fmt"
	"strings"

	zmq4 "github.com/go-zeromq/zmq4"

	"github.com/mjwatson/stream-proxy/internal/perr"
	"github.com/mjwatson/stream-proxy/internal/registry"
	"github.com/mjwatson/stream-proxy/internal/stage"
)

// Register adds "zmq".
func Register(reg *registry.Registry) error {
	return reg.Register(registry.Registration{
		Name:        "zmq",
		Factory:     newStage,
		Description: "ZeroMQ pull/sub/rep (source) or push/pub/req (sink)",
	})
}

func newStage(position int, options string) (stage.Stage, error) {
	mode, endpoint, ok := strings.Cut(options, ":")
	if !ok || endpoint == "" {
		return nil, fmt.Errorf("zmq requires a mode:endpoint option, e.g. zmq:pub:tcp://*:5555")
	}
	mode = strings.ToLower(mode)

	if position == 0 {
		switch mode {
		case "pull":
			return newSource(zmq4.NewPull(context.Background()), endpoint, true, false)
		case "sub":
			sock := zmq4.NewSub(context.Background())
			if err := sock.Dial(endpoint); err != nil {
				return nil, perr.WrapFatal(err, "transport/zmq", "newStage", fmt.Sprintf("dial %s", endpoint))
			}
			if err := sock.SetOption(zmq4.OptionSubscribe, ""); err != nil {
				return nil, perr.WrapFatal(err, "transport/zmq", "newStage", "subscribe")
			}
			return &source{sock: sock}, nil
		case "rep":
			return newSource(zmq4.NewRep(context.Background()), endpoint, true, true)
		default:
			return nil, fmt.Errorf("zmq: unsupported source mode %q (use pull, sub, or rep)", mode)
		}
	}

	switch mode {
	case "push":
		return newSink(zmq4.NewPush(context.Background()), endpoint, true, false)
	case "pub":
		sock := zmq4.NewPub(context.Background())
		if err := sock.Listen(endpoint); err != nil {
			return nil, perr.WrapFatal(err, "transport/zmq", "newStage", fmt.Sprintf("listen %s", endpoint))
		}
		return &sink{sock: sock}, nil
	case "req":
		return newSink(zmq4.NewReq(context.Background()), endpoint, true, true)
	default:
		return nil, fmt.Errorf("zmq: unsupported sink mode %q (use push, pub, or req)", mode)
	}
}

func newSource(sock zmq4.Socket, endpoint string, listen, ackReply bool) (*source, error) {
	var err error
	if listen {
		err = sock.Listen(endpoint)
	} else {
		err = sock.Dial(endpoint)
	}
	if err != nil {
		return nil, perr.WrapFatal(err, "transport/zmq", "newSource", fmt.Sprintf("bind %s", endpoint))
	}
	return &source{sock: sock, ackReply: ackReply}, nil
}

func newSink(sock zmq4.Socket, endpoint string, dial, drainReply bool) (*sink, error) {
	var err error
	if dial {
		err = sock.Dial(endpoint)
	} else {
		err = sock.Listen(endpoint)
	}
	if err != nil {
		return nil, perr.WrapFatal(err, "transport/zmq", "newSink", fmt.Sprintf("connect %s", endpoint))
	}
	return &sink{sock: sock, drainReply: drainReply}, nil
}

type source struct {
	sock zmq4.Socket
	// ackReply is set for rep: the socket's state machine requires a
	// Send immediately after every Recv, so Pull sends an empty
	// acknowledgement reply before returning the request bytes.
	ackReply bool
}

func (s *source) Pull() ([]byte, error) {
	msg, err := s.sock.Recv()
	if err != nil {
		return nil, perr.WrapFatal(err, "transport/zmq", "Pull", "recv")
	}
	if s.ackReply {
		if err := s.sock.Send(zmq4.NewMsg(nil)); err != nil {
			return nil, perr.WrapFatal(err, "transport/zmq", "Pull", "send ack reply")
		}
	}
	return msg.Bytes(), nil
}

func (s *source) Close() error {
	return s.sock.Close()
}

type sink struct {
	sock zmq4.Socket
	// drainReply is set for req: the socket's state machine requires a
	// Recv immediately after every Send, so Push receives and discards
	// the mandatory reply before returning.
	drainReply bool
}

func (s *sink) Push(_ stage.State, input []byte) (emitted, remainder []byte, err error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	if err := s.sock.Send(zmq4.NewMsg(input)); err != nil {
		return nil, nil, perr.WrapFatal(err, "transport/zmq", "Push", "send")
	}
	if s.drainReply {
		if _, err := s.sock.Recv(); err != nil {
			return nil, nil, perr.WrapFatal(err, "transport/zmq", "Push", "recv mandatory reply")
		}
	}
	return nil, nil, nil
}

func (s *sink) Close() error {
	return s.sock.Close()
}
