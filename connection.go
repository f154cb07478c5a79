package servicepoint

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/pior/servicepoint/protocol"
)

// Transport delivers framed packets to a display. Send is fire and forget:
// no reply is read.
type Transport interface {
	Send(ctx context.Context, frame []byte) error
	Close() error
}

// Sendable is implemented by *Packet and *Command.
type Sendable interface {
	intoPacket() (*Packet, error)
}

func (p *Packet) intoPacket() (*Packet, error) {
	if _, err := p.ref(); err != nil {
		return nil, err
	}
	return p, nil
}

func (c *Command) intoPacket() (*Packet, error) {
	return NewPacket(c)
}

// Connection sends packets to one display. It is safe for concurrent use and
// does not keep any sent buffer.
type Connection struct {
	addr         string
	transport    Transport
	logger       zerolog.Logger
	writeTimeout time.Duration

	mu     sync.Mutex
	closed bool
}

type options struct {
	logger       zerolog.Logger
	writeTimeout time.Duration
	dialer       *net.Dialer
}

// Option configures a Connection.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithWriteTimeout bounds each send when the context has no deadline.
func WithWriteTimeout(d time.Duration) Option {
	return func(o *options) { o.writeTimeout = d }
}

// WithDialer sets the dialer used by Open and Dial.
func WithDialer(d *net.Dialer) Option {
	return func(o *options) { o.dialer = d }
}

func buildOptions(opts []Option) options {
	o := options{logger: zerolog.Nop(), writeTimeout: time.Second}
	for _, opt := range opts {
		opt(&o)
	}
	if o.dialer == nil {
		o.dialer = &net.Dialer{}
	}
	return o
}

// Open prepares a UDP connection to the display at addr. A missing port
// defaults to DefaultPort. UDP is connectionless, so Open succeeds even when
// nothing listens at addr.
func Open(addr string, opts ...Option) (*Connection, error) {
	return Dial(context.Background(), addr, opts...)
}

// Dial is Open with a context for address resolution.
func Dial(ctx context.Context, addr string, opts ...Option) (*Connection, error) {
	o := buildOptions(opts)

	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, strconv.Itoa(DefaultPort))
	}

	o.logger.Info().Str("addr", addr).Msg("connecting")
	conn, err := o.dialer.DialContext(ctx, "udp", addr)
	if err != nil {
		return nil, &ConnectionError{Op: "open", Err: err}
	}
	return newConnection(addr, &netTransport{conn: conn}, o), nil
}

// OpenWebSocket connects to a WebSocket relay that forwards each binary
// message to a display.
func OpenWebSocket(ctx context.Context, url string, opts ...Option) (*Connection, error) {
	o := buildOptions(opts)

	o.logger.Info().Str("url", url).Msg("connecting")
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, &ConnectionError{Op: "open", Err: err}
	}
	return newConnection(url, &wsTransport{conn: conn}, o), nil
}

// FromNetConn sends packets over an already established net.Conn.
func FromNetConn(conn net.Conn, opts ...Option) *Connection {
	return newConnection(conn.RemoteAddr().String(), &netTransport{conn: conn}, buildOptions(opts))
}

// NewConnection wraps any Transport.
func NewConnection(t Transport, opts ...Option) *Connection {
	return newConnection("", t, buildOptions(opts))
}

// Fake returns a Connection that accepts every packet and sends nothing.
func Fake(opts ...Option) *Connection {
	return newConnection("fake", fakeTransport{}, buildOptions(opts))
}

func newConnection(addr string, t Transport, o options) *Connection {
	return &Connection{
		addr:         addr,
		transport:    t,
		logger:       o.logger,
		writeTimeout: o.writeTimeout,
	}
}

// Addr returns the address the connection was opened with.
func (c *Connection) Addr() string {
	return c.addr
}

// Send encodes s if needed and hands the frame to the transport. It consumes
// s, also when sending fails.
func (c *Connection) Send(ctx context.Context, s Sendable) error {
	p, err := s.intoPacket()
	if err != nil {
		return err
	}
	pk, err := p.take()
	if err != nil {
		return err
	}
	return c.SendFrame(ctx, pk.frame)
}

// SendFrame sends an already framed packet.
func (c *Connection) SendFrame(ctx context.Context, frame []byte) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrConnectionClosed
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := ctx.Deadline(); !ok && c.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.writeTimeout)
		defer cancel()
	}

	if c.logger.GetLevel() <= zerolog.DebugLevel {
		if h, err := protocol.DecodeHeader(frame); err == nil {
			c.logger.Debug().
				Stringer("command", protocol.CommandCode(h.CommandCode)).
				Int("bytes", len(frame)).
				Msg("sending packet")
		}
	}

	if err := c.transport.Send(ctx, frame); err != nil {
		return &ConnectionError{Op: "send", Err: err}
	}
	return nil
}

// Close closes the transport. Later sends fail with ErrConnectionClosed.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	if err := c.transport.Close(); err != nil {
		return &ConnectionError{Op: "close", Err: err}
	}
	return nil
}

// netTransport writes one datagram per frame.
type netTransport struct {
	conn net.Conn
}

func (t *netTransport) Send(ctx context.Context, frame []byte) error {
	if deadline, ok := ctx.Deadline(); ok {
		if err := t.conn.SetWriteDeadline(deadline); err != nil {
			return err
		}
	} else {
		_ = t.conn.SetWriteDeadline(time.Time{})
	}
	_, err := t.conn.Write(frame)
	return err
}

func (t *netTransport) Close() error {
	return t.conn.Close()
}

// wsTransport writes one binary message per frame.
type wsTransport struct {
	conn *websocket.Conn
}

func (t *wsTransport) Send(ctx context.Context, frame []byte) error {
	return t.conn.Write(ctx, websocket.MessageBinary, frame)
}

func (t *wsTransport) Close() error {
	return t.conn.Close(websocket.StatusNormalClosure, "")
}

type fakeTransport struct{}

func (fakeTransport) Send(context.Context, []byte) error { return nil }

func (fakeTransport) Close() error { return nil }
