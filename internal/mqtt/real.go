package mqtt

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/sweeney/watchface/internal/face"
	"github.com/sweeney/watchface/internal/xslog"
)

// DefaultBufferSize bounds the messages held while the broker is unreachable.
const DefaultBufferSize = 100

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
	retryInterval  = 5 * time.Second
)

// Config holds the broker connection settings.
type Config struct {
	Broker     string
	Prefix     string
	ClientID   string // base name; a random suffix is appended
	BufferSize int
}

// ClientID returns base with a short random suffix so several faces can
// share a broker.
func ClientID(base string) string {
	if base == "" {
		base = "watchface"
	}
	return base + "-" + uuid.NewString()[:8]
}

// RealClient publishes to and subscribes from an actual MQTT broker.
// Messages published while disconnected are buffered and replayed in order
// on reconnect.
type RealClient struct {
	client  paho.Client
	topics  Topics
	handler Handler
	logger  *slog.Logger

	mu             sync.Mutex
	buf            *ringBuffer
	everConnected  bool
	closed         bool
	onConnectionFn func(bool)
}

// Option configures a RealClient.
type Option func(*RealClient)

// WithConnectionHandler registers a callback for connection state changes.
func WithConnectionHandler(fn func(connected bool)) Option {
	return func(r *RealClient) { r.onConnectionFn = fn }
}

// NewRealClient connects to the broker and subscribes to the inbound topics.
// Decoded inbound events are passed to handler.
func NewRealClient(cfg Config, handler Handler, logger *slog.Logger, opts ...Option) (*RealClient, error) {
	r := newRealClient(cfg, handler, logger, opts...)

	will, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "OFFLINE", Reason: "LWT"})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	po := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(ClientID(cfg.ClientID)).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(retryInterval).
		SetOrderMatters(false).
		SetWill(r.topics.System, string(will), 1, true).
		SetOnConnectHandler(r.onConnect).
		SetConnectionLostHandler(r.onConnectionLost)

	r.client = paho.NewClient(po)
	if err := r.connect(connectTimeout); err != nil {
		return nil, err
	}
	return r, nil
}

// connect waits for the first connection. On failure the client is
// disconnected so its retry loop stops and no handler runs later.
func (r *RealClient) connect(timeout time.Duration) error {
	token := r.client.Connect()
	var err error
	switch {
	case !token.WaitTimeout(timeout):
		err = errors.New("connection timeout")
	case token.Error() != nil:
		err = fmt.Errorf("connect to broker: %w", token.Error())
	default:
		return nil
	}
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.client.Disconnect(0)
	return err
}

func newRealClient(cfg Config, handler Handler, logger *slog.Logger, opts ...Option) *RealClient {
	size := cfg.BufferSize
	if size <= 0 {
		size = DefaultBufferSize
	}
	r := &RealClient{
		topics:  NewTopics(cfg.Prefix),
		handler: handler,
		logger:  logger,
		buf:     newRingBuffer(size),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Publish sends a face notice at QoS 0.
func (r *RealClient) Publish(n face.Notice) error {
	payload, err := FormatPayload(n)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	return r.publish(r.topics.Events, 0, false, payload)
}

// PublishSystem sends a lifecycle event at QoS 1.
func (r *RealClient) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return r.publish(r.topics.System, 1, event.Retained, payload)
}

func (r *RealClient) publish(topic string, qos byte, retained bool, payload []byte) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return errors.New("mqtt: client closed")
	}
	if !r.client.IsConnectionOpen() {
		if r.buf.push(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained}) {
			r.logger.Warn("mqtt buffer full, dropping oldest", xslog.Count(r.buf.capacity))
		}
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	token := r.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// onConnect runs on the paho goroutine after every (re)connect. Tokens are
// not waited on here; paho may deliver their completion on this goroutine.
func (r *RealClient) onConnect(c paho.Client) {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return
	}

	filters := make(map[string]byte, 3)
	for _, t := range r.topics.Inbound() {
		filters[t] = 1
	}
	sub := c.SubscribeMultiple(filters, r.handleMessage)
	go func() {
		if sub.WaitTimeout(publishTimeout) && sub.Error() != nil {
			r.logger.Error("mqtt subscribe failed", xslog.Error(sub.Error()))
		}
	}()

	r.mu.Lock()
	pending := r.buf.drainAll()
	reconnect := r.everConnected
	r.everConnected = true
	fn := r.onConnectionFn
	r.mu.Unlock()

	for _, m := range pending {
		c.Publish(m.topic, m.qos, m.retained, m.payload)
	}
	if reconnect {
		payload, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "RECONNECTED"})
		if err == nil {
			c.Publish(r.topics.System, 1, false, payload)
		}
	}

	r.logger.Info("mqtt connected", xslog.Count(len(pending)), slog.Bool("reconnect", reconnect))
	if fn != nil {
		fn(true)
	}
}

func (r *RealClient) onConnectionLost(_ paho.Client, err error) {
	r.logger.Warn("mqtt connection lost", xslog.Error(err))
	r.mu.Lock()
	fn := r.onConnectionFn
	r.mu.Unlock()
	if fn != nil {
		fn(false)
	}
}

func (r *RealClient) handleMessage(_ paho.Client, m paho.Message) {
	ev, err := r.topics.Decode(m.Topic(), m.Payload())
	if err != nil {
		r.logger.Warn("mqtt message dropped", xslog.Topic(m.Topic()), xslog.Error(err))
		return
	}
	r.logger.Debug("mqtt message", xslog.Topic(m.Topic()), slog.String("event", ev.EventName()))
	if r.handler != nil {
		r.handler(ev)
	}
}

// Buffered reports the number of messages waiting for a connection.
func (r *RealClient) Buffered() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.len()
}

// IsConnected reports whether the broker connection is open.
func (r *RealClient) IsConnected() bool {
	return r.client.IsConnectionOpen()
}

// Close disconnects from the broker. Safe to call more than once.
func (r *RealClient) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()
	r.client.Disconnect(1000) // 1 second timeout
	return nil
}
