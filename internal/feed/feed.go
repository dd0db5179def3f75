package feed

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/evalgraph/internal/ctxlog"
	"github.com/specialistvlad/evalgraph/internal/runtime"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultEvent is the event the feed listens to when none is configured.
const DefaultEvent = "expose"

// Sink receives the mutations of one message and runs a round.
type Sink interface {
	Apply(ctx context.Context, muts ...runtime.Mutation) (*runtime.RoundResult, error)
}

// Options configures the Socket.IO connection.
type Options struct {
	URL                string
	Namespace          string
	Event              string
	AckEvent           string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// Feed is a Socket.IO client delivering editor changes to a Sink.
type Feed struct {
	opts Options
}

// New returns a feed with defaults applied to opts.
func New(opts Options) *Feed {
	if opts.Event == "" {
		opts.Event = DefaultEvent
	}
	if opts.Namespace == "" {
		opts.Namespace = "/"
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 15 * time.Second
	}
	return &Feed{opts: opts}
}

// Run connects to the server and delivers every received payload to sink,
// one at a time, until ctx is cancelled. A connection failure is returned;
// cancellation is not an error.
func (f *Feed) Run(ctx context.Context, sink Sink) error {
	logger := ctxlog.FromContext(ctx).With("feed", f.opts.URL, "event", f.opts.Event)

	io, err := f.connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	payloads := make(chan any, 64)
	io.On(types.EventName(f.opts.Event), func(data ...any) {
		if len(data) == 0 {
			return
		}
		select {
		case payloads <- data[0]:
		case <-ctx.Done():
		}
	})
	io.On(types.EventName("disconnect"), func(reason ...any) {
		logger.Warn("Socket disconnected", "reason", reason)
	})

	var ack func(*runtime.RoundResult)
	if f.opts.AckEvent != "" {
		ack = func(res *runtime.RoundResult) {
			io.Emit(f.opts.AckEvent, Ack(res))
		}
	}

	logger.Info("Listening for editor changes")
	return Dispatch(ctx, payloads, sink, ack)
}

func (f *Feed) connect(ctx context.Context) (*socket.Socket, error) {
	logger := ctxlog.FromContext(ctx).With("url", f.opts.URL)

	parsedURL, err := url.Parse(f.opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if f.opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(f.opts.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Successfully connected", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connectChan <- err
	})

	logger.Debug("Initiating connection...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return io, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(f.opts.ConnectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", f.opts.ConnectTimeout)
	}
}

// Dispatch delivers payloads to sink until ctx is cancelled or payloads is
// closed. Invalid payloads and failed rounds are logged and skipped. ack,
// when not nil, is called with the result of every round.
func Dispatch(ctx context.Context, payloads <-chan any, sink Sink, ack func(*runtime.RoundResult)) error {
	logger := ctxlog.FromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case payload, ok := <-payloads:
			if !ok {
				return nil
			}
			msg, err := Decode(payload)
			if err != nil {
				logger.Warn("Dropping feed message", "error", err)
				continue
			}
			mut, err := msg.Mutation()
			if err != nil {
				logger.Warn("Dropping feed message", "name", msg.Name, "error", err)
				continue
			}
			res, err := sink.Apply(ctx, mut)
			if err != nil {
				logger.Error("Round failed", "name", msg.Name, "error", err)
			}
			if res != nil && ack != nil {
				ack(res)
			}
		}
	}
}

// Ack is the acknowledgement payload for a round.
func Ack(res *runtime.RoundResult) map[string]any {
	outputs := make(map[string]any, len(res.Outputs))
	for name, out := range res.Outputs {
		native, err := runtime.Native(out)
		if err != nil {
			continue
		}
		outputs[name] = native
	}
	return map[string]any{
		"round":     res.Number,
		"id":        res.ID.String(),
		"evaluated": res.Evaluated,
		"outputs":   outputs,
	}
}
