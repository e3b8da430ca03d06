// Package specparse turns the CLI's positional stage tokens into a built
// pipeline.Pipeline. A token is "name" or "name:options"; options are
// passed through verbatim to the stage's factory, which parses them
// itself (the pattern differs per stage: an address, a delimiter string,
// an integer, a ZMQ mode).
package specparse

import (
	"fmt"
	"strings"

	"github.com/mjwatson/stream-proxy/internal/perr"
	"github.com/mjwatson/stream-proxy/internal/pipeline"
	"github.com/mjwatson/stream-proxy/internal/registry"
	"github.com/mjwatson/stream-proxy/internal/stage"
)

// Token is one parsed CLI argument.
type Token struct {
	Name    string
	Options string // "" if the token had no ':' suffix
}

// Parse splits each argument on its first ':' into name/options. An
// empty argument list, or any empty token, is an invalid-option error.
func Parse(args []string) ([]Token, error) {
	if len(args) == 0 {
		return nil, perr.WrapInvalidOption(
			fmt.Errorf("no stages given"), "specparse", "Parse", "argument count validation")
	}
	tokens := make([]Token, 0, len(args))
	for _, arg := range args {
		if arg == "" {
			return nil, perr.WrapInvalidOption(
				fmt.Errorf("empty stage token"), "specparse", "Parse", "token validation")
		}
		name, options, _ := strings.Cut(arg, ":")
		tokens = append(tokens, Token{Name: name, Options: options})
	}
	return tokens, nil
}

// Build resolves each token through reg, passing its position in the
// pipeline so position-sensitive factories (tcp, udp, folder, nats,
// zmq, websocket) can construct a source at position 0 and a
// sink/connector everywhere else, then wraps the result in a validated
// pipeline.Pipeline.
func Build(tokens []Token, reg *registry.Registry) (*pipeline.Pipeline, error) {
	stages := make([]stage.Stage, 0, len(tokens))
	for i, tok := range tokens {
		s, err := reg.Build(tok.Name, i, tok.Options)
		if err != nil {
			return nil, fmt.Errorf("stage %d (%s): %w", i, tok.Name, err)
		}
		stages = append(stages, s)
	}
	return pipeline.New(stages)
}
