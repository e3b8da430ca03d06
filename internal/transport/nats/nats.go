// Package nats implements the "nats" transport, grounded on the
// teacher's natsclient package: subscribe on a subject as a source (one
// Pull per received message), publish to a subject as a sink. Options
// take the form "url,subject", e.g. "nats://localhost:4222,updates".
package nats

import (
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/mjwatson/stream-proxy/internal/perr"
	"github.com/mjwatson/stream-proxy/internal/registry"
	"github.com/mjwatson/stream-proxy/internal/stage"
)

// Register adds "nats".
func Register(reg *registry.Registry) error {
	return reg.Register(registry.Registration{
		Name:        "nats",
		Factory:     newStage,
		Description: "subscribe (source) / publish (sink) on a subject",
	})
}

func newStage(position int, options string) (stage.Stage, error) {
	url, subject, ok := strings.Cut(options, ",")
	if !ok || subject == "" {
		return nil, fmt.Errorf("nats requires a url,subject option, e.g. nats://localhost:4222,updates")
	}
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, perr.WrapFatal(err, "transport/nats", "newStage", fmt.Sprintf("connect %s", url))
	}

	if position == 0 {
		msgs := make(chan *nats.Msg, 256)
		sub, err := conn.ChanSubscribe(subject, msgs)
		if err != nil {
			conn.Close()
			return nil, perr.WrapFatal(err, "transport/nats", "newStage", fmt.Sprintf("subscribe %s", subject))
		}
		return &source{conn: conn, sub: sub, msgs: msgs}, nil
	}
	return &sink{conn: conn, subject: subject}, nil
}

type source struct {
	conn *nats.Conn
	sub  *nats.Subscription
	msgs chan *nats.Msg
}

func (s *source) Pull() ([]byte, error) {
	msg, ok := <-s.msgs
	if !ok {
		return nil, perr.ErrEndOfTransport
	}
	return msg.Data, nil
}

func (s *source) Close() error {
	err := s.sub.Unsubscribe()
	s.conn.Close()
	return err
}

type sink struct {
	conn    *nats.Conn
	subject string
}

func (s *sink) Push(_ stage.State, input []byte) (emitted, remainder []byte, err error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	if err := s.conn.Publish(s.subject, input); err != nil {
		return nil, nil, perr.WrapFatal(err, "transport/nats", "Push", fmt.Sprintf("publish %s", s.subject))
	}
	return nil, nil, nil
}

func (s *sink) Close() error {
	s.conn.Close()
	return nil
}
