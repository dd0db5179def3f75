package feed

import (
	"errors"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/specialistvlad/evalgraph/internal/ctyconv"
	"github.com/specialistvlad/evalgraph/internal/runtime"
)

// ErrInvalidMessage is returned for payloads that cannot become a mutation.
var ErrInvalidMessage = errors.New("invalid feed message")

// Message is a decoded editor payload.
type Message struct {
	Name   string         `mapstructure:"name"`
	Value  any            `mapstructure:"value"`
	Patch  map[string]any `mapstructure:"patch"`
	Delete bool           `mapstructure:"delete"`
}

// Decode reads a payload as received from the socket: a JSON object decoded
// into a map.
func Decode(payload any) (Message, error) {
	var msg Message
	if _, ok := payload.(map[string]any); !ok {
		return msg, fmt.Errorf("%w: payload must be an object, got %T", ErrInvalidMessage, payload)
	}
	if err := mapstructure.Decode(payload, &msg); err != nil {
		return msg, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	if msg.Name == "" {
		return msg, fmt.Errorf("%w: missing name", ErrInvalidMessage)
	}
	return msg, nil
}

// Mutation converts the message into the runtime mutation it describes.
// Values are converted to cty values so they compare equal to values of the
// same shape loaded from the definition.
func (m Message) Mutation() (runtime.Mutation, error) {
	switch {
	case m.Delete && m.Patch != nil:
		return nil, fmt.Errorf("%w: %q: delete and patch are exclusive", ErrInvalidMessage, m.Name)
	case m.Delete:
		return runtime.Delete{Name: m.Name}, nil
	case m.Patch != nil:
		return runtime.Merge{Name: m.Name, Patch: m.Patch}, nil
	}
	v, err := ctyconv.ToCty(m.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidMessage, m.Name, err)
	}
	return runtime.Set{Name: m.Name, Value: v}, nil
}
