// Package builtins wires every transport and codec stage into a
// registry, mirroring the teacher's componentregistry/register.go
// pattern of one Register call per known stage kind.
package builtins

import (
	"github.com/mjwatson/stream-proxy/internal/codec/delim"
	"github.com/mjwatson/stream-proxy/internal/codec/escape"
	"github.com/mjwatson/stream-proxy/internal/codec/length"
	"github.com/mjwatson/stream-proxy/internal/codec/logstage"
	"github.com/mjwatson/stream-proxy/internal/codec/rate"
	"github.com/mjwatson/stream-proxy/internal/codec/transform"
	"github.com/mjwatson/stream-proxy/internal/codec/urlenc"
	"github.com/mjwatson/stream-proxy/internal/codec/xmljson"
	"github.com/mjwatson/stream-proxy/internal/registry"
	"github.com/mjwatson/stream-proxy/internal/transport/file"
	"github.com/mjwatson/stream-proxy/internal/transport/folder"
	"github.com/mjwatson/stream-proxy/internal/transport/nats"
	"github.com/mjwatson/stream-proxy/internal/transport/stdio"
	"github.com/mjwatson/stream-proxy/internal/transport/tcp"
	"github.com/mjwatson/stream-proxy/internal/transport/udp"
	"github.com/mjwatson/stream-proxy/internal/transport/websocket"
	"github.com/mjwatson/stream-proxy/internal/transport/zmq"
)

// Register populates reg with every known transport and codec stage.
func Register(reg *registry.Registry) error {
	registrars := []func(*registry.Registry) error{
		stdio.Register,
		file.Register,
		folder.Register,
		tcp.Register,
		udp.Register,
		zmq.Register,
		nats.Register,
		websocket.Register,
		transform.Register,
		length.Register,
		delim.Register,
		urlenc.Register,
		escape.Register,
		logstage.Register,
		xmljson.Register,
		rate.Register,
	}
	for _, register := range registrars {
		if err := register(reg); err != nil {
			return err
		}
	}
	return nil
}
