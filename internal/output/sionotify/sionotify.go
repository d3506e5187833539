// Package sionotify announces compiled documents to a socket.io endpoint.
// It is an output.Writer: every stored document is emitted as one
// "definition" event, so a listening host can reload it without polling
// the output directory.
package sionotify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/specialistvlad/extforge/internal/ctxlog"
	"github.com/specialistvlad/extforge/internal/synth"
)

// Event is the event name every document is emitted under.
const Event = "definition"

// DefaultConnectTimeout bounds how long Dial waits for the handshake.
const DefaultConnectTimeout = 15 * time.Second

var ErrNotConnected = errors.New("socket.io notifier is not connected")

// Payload is the body of one emitted event.
type Payload struct {
	Kind        string `json:"kind"`
	Name        string `json:"name"`
	LogicalName string `json:"logical_name"`
	Document    string `json:"document"`
}

// Options configures Dial.
type Options struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// Notifier emits documents over an established connection.
type Notifier struct {
	emit      func(event string, payload any)
	connected func() bool
	close     func()
	sid       string
}

// Dial connects to the endpoint and waits for the handshake to finish.
func Dial(ctx context.Context, o Options) (*Notifier, error) {
	logger := ctxlog.FromContext(ctx).With("writer", "sionotify", "url", o.URL)

	parsed, err := url.Parse(o.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("URL %q must be absolute", o.URL)
	}
	timeout := o.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	opts := socket.DefaultOptions()
	if parsed.Path != "" {
		opts.SetPath(parsed.Path)
	}
	if o.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connected := make(chan error, 1)
	manager := socket.NewManager(fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host), opts)
	io := manager.Socket(o.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		connected <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connected <- err
	})

	logger.Debug("Initiating connection...")
	io.Connect()

	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}

	logger.Info("Connected.", "sid", io.Id())
	return &Notifier{
		emit:      func(event string, payload any) { io.Emit(event, payload) },
		connected: io.Connected,
		close:     func() { io.Disconnect() },
		sid:       string(io.Id()),
	}, nil
}

// Write emits doc. Emission is fire-and-forget once the connection is up.
func (n *Notifier) Write(ctx context.Context, doc synth.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !n.connected() {
		return ErrNotConnected
	}
	n.emit(Event, Payload{
		Kind:        string(doc.Kind),
		Name:        doc.Name,
		LogicalName: doc.LogicalName,
		Document:    string(doc.Data),
	})
	ctxlog.FromContext(ctx).Debug("Emitted definition.", "sid", n.sid, "logical_name", doc.LogicalName)
	return nil
}

// Close disconnects from the endpoint.
func (n *Notifier) Close() error {
	n.close()
	return nil
}
