package channel

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zhouzirui/onboard/internal/model/chat"
)

// State 连接生命周期状态
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers once per inbound frame, or once when the
// transport drops. Exactly one of Envelope and Err is meaningful.
type Event struct {
	Envelope chat.Envelope
	Err      error
}

// Handler consumes inbound events. Handlers run on the read goroutine and
// must not block.
type Handler func(Event)

// Options 连接配置选项
type Options struct {
	HandshakeTimeout time.Duration // 握手超时
	WriteTimeout     time.Duration // 写入超时
	PongWait         time.Duration // 等待对端消息/pong 的最长时间
	PingInterval     time.Duration // Ping间隔
	Header           http.Header
}

// DefaultOptions 默认连接选项
func DefaultOptions() Options {
	return Options{
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
		PongWait:         60 * time.Second,
		PingInterval:     54 * time.Second,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = def.HandshakeTimeout
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = def.WriteTimeout
	}
	if o.PongWait <= 0 {
		o.PongWait = def.PongWait
	}
	if o.PingInterval <= 0 || o.PingInterval >= o.PongWait {
		o.PingInterval = o.PongWait * 9 / 10
	}
	return o
}

type subscriber struct {
	id uint64
	fn Handler
}

// Connection owns a single duplex websocket to the agent endpoint.
//
// A Connection is opened at most once. Inbound frames are decoded on one
// read goroutine and fanned out to subscribers in arrival order; writes are
// serialized so outbound frames leave in Send call order.
type Connection struct {
	endpoint string
	opts     Options

	mu    sync.RWMutex
	conn  *websocket.Conn
	state State

	writeMu sync.Mutex

	subMu  sync.RWMutex
	subs   []subscriber
	nextID uint64
	slotID uint64

	done      chan struct{}
	closeOnce sync.Once
}

// New creates an idle connection for endpoint. Nothing is dialed until Open.
func New(endpoint string, opts Options) *Connection {
	return &Connection{
		endpoint: endpoint,
		opts:     opts.withDefaults(),
		state:    StateIdle,
		done:     make(chan struct{}),
	}
}

// Dial creates a connection and opens it.
func Dial(ctx context.Context, endpoint string, opts Options) (*Connection, error) {
	c := New(endpoint, opts)
	if err := c.Open(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Endpoint returns the address this connection dials.
func (c *Connection) Endpoint() string {
	return c.endpoint
}

// State returns the current lifecycle state.
func (c *Connection) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Open 建立连接并立即开始监听入站帧
func (c *Connection) Open(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrAlreadyOpened
	}
	c.state = StateConnecting
	c.mu.Unlock()

	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: c.opts.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, c.endpoint, c.opts.Header)
	if err != nil {
		_ = c.Close()
		return &ConnectionError{Op: "dial", Endpoint: c.endpoint, Err: err}
	}

	c.mu.Lock()
	if c.state == StateClosed {
		// Close won the race against the handshake.
		c.mu.Unlock()
		conn.Close()
		return ErrNotReady
	}
	c.conn = conn
	c.state = StateOpen
	c.mu.Unlock()

	conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	log.Printf("[channel] connected to %s", c.endpoint)

	go c.readLoop(conn)
	go c.pingLoop(conn)
	return nil
}

// Send writes env as one text frame. It fails with ErrNotReady unless the
// connection is open.
func (c *Connection) Send(env chat.Envelope) error {
	c.mu.RLock()
	conn, state := c.conn, c.state
	c.mu.RUnlock()

	if state != StateOpen || conn == nil {
		return ErrNotReady
	}

	frame, err := EncodeEnvelope(env)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return &ConnectionError{Op: "write", Endpoint: c.endpoint, Err: err}
	}
	return nil
}

// Subscribe registers h for every inbound event. Subscribers are invoked in
// registration order. The returned func removes h and is safe to call twice.
func (c *Connection) Subscribe(h Handler) (unsubscribe func()) {
	c.subMu.Lock()
	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, subscriber{id: id, fn: h})
	c.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { c.remove(id) })
	}
}

// OnMessage installs h in the single OnMessage slot, replacing whatever was
// installed there before. Passing nil clears the slot. Handlers added with
// Subscribe are unaffected.
func (c *Connection) OnMessage(h Handler) {
	c.subMu.Lock()
	prev := c.slotID
	c.slotID = 0
	if h != nil {
		c.nextID++
		c.slotID = c.nextID
		c.subs = append(c.subs, subscriber{id: c.slotID, fn: h})
	}
	c.subMu.Unlock()

	if prev != 0 {
		c.remove(prev)
	}
}

func (c *Connection) remove(id uint64) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	kept := make([]subscriber, 0, len(c.subs))
	for _, s := range c.subs {
		if s.id != id {
			kept = append(kept, s)
		}
	}
	c.subs = kept
}

func (c *Connection) dispatch(ev Event) {
	c.subMu.RLock()
	subs := c.subs
	c.subMu.RUnlock()

	for _, s := range subs {
		s.fn(ev)
	}
}

// Close 关闭连接，可重复调用
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		conn := c.conn
		c.state = StateClosed
		c.mu.Unlock()

		close(c.done)

		if conn == nil {
			return
		}
		deadline := time.Now().Add(c.opts.WriteTimeout)
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		err = conn.Close()
		log.Printf("[channel] closed connection to %s", c.endpoint)
	})
	return err
}

func (c *Connection) readLoop(conn *websocket.Conn) {
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if c.State() == StateClosed {
				return
			}
			if IsNormalClosure(err) {
				log.Printf("[channel] remote closed connection: %v", err)
			} else {
				log.Printf("[channel] read error: %v", err)
			}
			_ = c.Close()
			c.dispatch(Event{Err: &ConnectionError{Op: "read", Endpoint: c.endpoint, Err: err}})
			return
		}

		conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))

		env, err := DecodeEnvelope(frame)
		if err != nil {
			log.Printf("[channel] dropping frame: %v", err)
			c.dispatch(Event{Err: err})
			continue
		}
		c.dispatch(Event{Envelope: env})
	}
}

// pingLoop 定期发送ping消息
func (c *Connection) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(c.opts.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				log.Printf("[channel] ping failed: %v", err)
				return
			}
		}
	}
}
