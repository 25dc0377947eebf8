package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mjhall/arcticspa/internal/codec"
	"github.com/mjhall/arcticspa/internal/logging"
	"github.com/mjhall/arcticspa/internal/protocol"
)

const (
	// DefaultPort is the controller's fixed TCP control port.
	DefaultPort = 65534

	// DefaultTimeout is the default overall poll deadline.
	DefaultTimeout = 5 * time.Second

	// chunkSize is the socket read size per decode cycle.
	chunkSize = 4096
)

// ErrNotConnected is returned by ReadFrames before Connect or after Close.
var ErrNotConnected = errors.New("not connected")

// TimeoutError reports a poll that ran out of time before every requested
// packet type was observed. It is distinct from a connection failure: the
// controller was reachable but did not produce all requested data in time.
type TimeoutError struct {
	Missing []protocol.TypeKey
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	names := make([]string, len(e.Missing))
	for i, kind := range e.Missing {
		names[i] = kind.String()
	}
	return fmt.Sprintf("poll timed out waiting for: %s", strings.Join(names, ", "))
}

// Client drives one TCP connection to a controller.
//
// A Client is not safe for concurrent use; each instance owns at most one
// socket and each call sequence is connect, read, close.
type Client struct {
	Host string
	Port int

	dec  *protocol.Decoder
	conn net.Conn
	buf  []byte
}

// New creates a client for the controller at host, with the wire codec
// registered for every packet type the vendor application decodes.
func New(host string) *Client {
	dec := protocol.NewDecoder()
	codec.RegisterDefaults(dec)

	return &Client{
		Host: host,
		Port: DefaultPort,
		dec:  dec,
		buf:  make([]byte, chunkSize),
	}
}

// Decoder returns the client's frame decoder, for registering additional
// payload codecs before polling.
func (c *Client) Decoder() *protocol.Decoder {
	return c.dec
}

// Connect dials the controller and transmits the init sequence. Any existing
// connection is closed first.
func (c *Client) Connect(ctx context.Context) error {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	addr := net.JoinHostPort(c.Host, fmt.Sprintf("%d", c.Port))

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to controller at %s: %w", addr, err)
	}

	if _, err := conn.Write(protocol.InitSequence()); err != nil {
		conn.Close()
		return fmt.Errorf("failed to send init sequence: %w", err)
	}

	logging.Debug("Connected to controller",
		zap.String("addr", addr),
	)

	c.conn = conn
	return nil
}

// ReadFrames blocks for one socket read and decodes whatever arrived.
// A framing error in the middle of the chunk returns the frames decoded
// before it together with the error.
func (c *Client) ReadFrames() ([]*protocol.Frame, error) {
	if c.conn == nil {
		return nil, ErrNotConnected
	}

	n, err := c.conn.Read(c.buf)
	if err != nil {
		return nil, err
	}

	return c.dec.Decode(c.buf[:n])
}

// Close releases the connection. Safe to call when not connected.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Poll connects, requests data, and collects the most recent frame of each
// requested packet type, disconnecting when done.
//
// The deadline covers the whole call as wall-clock time, enforced through the
// socket read deadline so that a controller trickling unwanted frames cannot
// keep the loop alive past it. On success every requested kind is a key in
// the returned map. On timeout the error is a *TimeoutError naming the kinds
// still missing; connection failures surface as ordinary errors.
func (c *Client) Poll(ctx context.Context, kinds []protocol.TypeKey, timeout time.Duration) (map[protocol.TypeKey]*protocol.Frame, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	deadline := time.Now().Add(timeout)

	dialCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	if err := c.Connect(dialCtx); err != nil {
		return nil, err
	}
	defer c.Close()

	want := make(map[protocol.TypeKey]bool, len(kinds))
	for _, kind := range kinds {
		want[kind] = true
	}
	got := make(map[protocol.TypeKey]*protocol.Frame, len(kinds))

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Checked before the read so a request already satisfied (including
		// an empty one) never blocks on controller traffic.
		if len(got) == len(want) {
			return got, nil
		}

		if err := c.conn.SetReadDeadline(deadline); err != nil {
			return nil, fmt.Errorf("failed to set read deadline: %w", err)
		}

		frames, err := c.ReadFrames()

		// Last-write-wins per kind: a later frame of a requested type
		// replaces the earlier one. Unrequested kinds are discarded.
		for _, frame := range frames {
			if want[frame.Kind] {
				got[frame.Kind] = frame
			}
		}

		if err != nil {
			var derr *protocol.DecodeError
			switch {
			case errors.As(err, &derr):
				// Bad read cycle. Drop the rest of the chunk and keep the
				// connection; the next reply realigns on a frame boundary.
				logging.Warn("Discarding undecodable read cycle",
					zap.String("host", c.Host),
					zap.Error(derr),
				)
			case isTimeout(err):
				return nil, &TimeoutError{Missing: missingKinds(want, got)}
			default:
				return nil, fmt.Errorf("connection to %s failed: %w", c.Host, err)
			}
		}
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func missingKinds(want map[protocol.TypeKey]bool, got map[protocol.TypeKey]*protocol.Frame) []protocol.TypeKey {
	var missing []protocol.TypeKey
	for kind := range want {
		if _, ok := got[kind]; !ok {
			missing = append(missing, kind)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}
