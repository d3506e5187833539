// Package natsdispatch serves rule dispatch as NATS request/reply.
//
// A request is a JSON object {"class": "...", "arguments": {...}}. The
// reply carries either "result" or "error"; transport failures never leave
// a request unanswered.
package natsdispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/specialistvlad/extforge/internal/ctxlog"
	"github.com/specialistvlad/extforge/internal/dispatch"
)

// DefaultSubject is the subject served when none is configured.
const DefaultSubject = "extforge.dispatch"

// QueueGroup load-balances requests across every serving process.
const QueueGroup = "extforge"

// Dispatcher runs one rule.
type Dispatcher interface {
	Dispatch(ctx context.Context, class string, bag map[string]any) (any, error)
}

// Request is the payload of a dispatch request.
type Request struct {
	Class     string         `json:"class"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// Reply is the payload of a dispatch reply.
type Reply struct {
	Result any         `json:"result,omitempty"`
	Error  *ReplyError `json:"error,omitempty"`
}

// ReplyError describes a failed dispatch.
type ReplyError struct {
	Message string `json:"message"`
	Phase   string `json:"phase,omitempty"`
}

// Handler answers dispatch requests.
type Handler struct {
	dispatcher Dispatcher
}

// NewHandler creates a Handler over d.
func NewHandler(d Dispatcher) *Handler {
	return &Handler{dispatcher: d}
}

// HandleRequest decodes one request, dispatches it and encodes the reply.
func (h *Handler) HandleRequest(ctx context.Context, data []byte) []byte {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return encode(Reply{Error: &ReplyError{Message: fmt.Sprintf("invalid request: %v", err)}})
	}

	result, err := h.dispatcher.Dispatch(ctx, req.Class, req.Arguments)
	if err != nil {
		re := &ReplyError{Message: err.Error()}
		var de *dispatch.Error
		if errors.As(err, &de) {
			re.Phase = de.Phase.String()
		}
		return encode(Reply{Error: re})
	}
	return encode(Reply{Result: result})
}

func encode(r Reply) []byte {
	data, err := json.Marshal(r)
	if err != nil {
		data, _ = json.Marshal(Reply{Error: &ReplyError{Message: fmt.Sprintf("encode reply: %v", err)}})
	}
	return data
}

// Start subscribes h to subject on nc. The subscription ends when ctx is
// done or the returned subscription is drained.
func (h *Handler) Start(ctx context.Context, nc *nats.Conn, subject string) (*nats.Subscription, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	logger := ctxlog.FromContext(ctx).With("subject", subject)

	sub, err := nc.QueueSubscribe(subject, QueueGroup, func(msg *nats.Msg) {
		reply := h.HandleRequest(ctx, msg.Data)
		if msg.Reply == "" {
			logger.Warn("Dispatch request without reply subject dropped.")
			return
		}
		if err := msg.Respond(reply); err != nil {
			logger.Error("Failed to respond to dispatch request.", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}
	logger.Info("NATS dispatch transport started.")

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			logger.Warn("Failed to drain dispatch subscription.", "error", err)
		}
	}()
	return sub, nil
}

// Client sends dispatch requests over NATS.
type Client struct {
	nc      *nats.Conn
	subject string
}

// NewClient creates a Client publishing to subject.
func NewClient(nc *nats.Conn, subject string) *Client {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Client{nc: nc, subject: subject}
}

// Dispatch sends one request and waits for its reply until ctx is done.
func (c *Client) Dispatch(ctx context.Context, class string, bag map[string]any) (any, error) {
	data, err := json.Marshal(Request{Class: class, Arguments: bag})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	msg, err := c.nc.RequestWithContext(ctx, c.subject, data)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", c.subject, err)
	}
	return DecodeReply(msg.Data)
}

// RemoteError is a dispatch failure reported by the serving process.
type RemoteError struct {
	Message string
	Phase   string
}

func (e *RemoteError) Error() string {
	if e.Phase == "" {
		return e.Message
	}
	return e.Phase + ": " + e.Message
}

// DecodeReply turns a reply payload into a result or a *RemoteError.
func DecodeReply(data []byte) (any, error) {
	var r Reply
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	if r.Error != nil {
		return nil, &RemoteError{Message: r.Error.Message, Phase: r.Error.Phase}
	}
	return r.Result, nil
}
