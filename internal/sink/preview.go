package sink

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/specialistvlad/pathscript/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultPreviewEvent is the event a script is emitted under.
const DefaultPreviewEvent = "script"

// Preview pushes the script to a socket.io server for live display. When
// ReplyEvent is set the sink waits for the server to answer with it.
type Preview struct {
	URL                string
	Namespace          string
	Event              string
	ReplyEvent         string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

func (p *Preview) Name() string { return "preview" }

func (p *Preview) timeout() time.Duration {
	if p.Timeout <= 0 {
		return 15 * time.Second
	}
	return p.Timeout
}

func (p *Preview) namespace() string {
	if p.Namespace == "" {
		return "/"
	}
	return p.Namespace
}

func (p *Preview) event() string {
	if p.Event == "" {
		return DefaultPreviewEvent
	}
	return p.Event
}

// payload is the message body sent to the preview server.
func payload(a *Artifact) map[string]any {
	return map[string]any{
		"session":  a.Session,
		"run_type": a.RunType,
		"name":     a.Name,
		"text":     a.Text,
	}
}

func (p *Preview) Write(ctx context.Context, a *Artifact) error {
	logger := ctxlog.FromContext(ctx).With("sink", "preview", "url", p.URL)

	io, err := p.connect(ctx)
	if err != nil {
		return err
	}
	defer io.Disconnect()

	replies := make(chan struct{}, 1)
	if p.ReplyEvent != "" {
		io.Once(types.EventName(p.ReplyEvent), func(...any) {
			logger.Debug("Reply event received", "event", p.ReplyEvent)
			replies <- struct{}{}
		})
	}

	logger.Info("Emitting script", "event", p.event(), "sid", io.Id(), "bytes", len(a.Text))
	if err := io.Emit(p.event(), payload(a)); err != nil {
		return fmt.Errorf("failed to emit event '%s': %w", p.event(), err)
	}

	if p.ReplyEvent == "" {
		return nil
	}
	select {
	case <-replies:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context cancelled while waiting for event '%s'", p.ReplyEvent)
	case <-time.After(p.timeout()):
		return fmt.Errorf("timed out after %v waiting for event '%s'", p.timeout(), p.ReplyEvent)
	}
}

func (p *Preview) connect(ctx context.Context) (*socket.Socket, error) {
	logger := ctxlog.FromContext(ctx).With("sink", "preview", "url", p.URL)

	parsedURL, err := url.Parse(p.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("preview URL %q needs a scheme and a host", p.URL)
	}

	opts := socket.DefaultOptions()
	// An empty path keeps the client's /socket.io default.
	if path := strings.TrimRight(parsedURL.Path, "/"); path != "" {
		opts.SetPath(path)
	}
	if p.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connected := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(p.namespace(), opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Debug("Connected", "sid", io.Id())
		select {
		case connected <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connected <- err:
		default:
		}
	})

	io.Connect()

	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return io, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(p.timeout()):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %v waiting for socket.io connection", p.timeout())
	}
}
