// Package mqtt publishes acsd decision telemetry over MQTT, with the same
// rate-limiting and batched-publish shape the rest of this codebase's
// network-facing clients use.
package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	MQTT "github.com/eclipse/paho.mqtt.golang"

	"github.com/open-acs/acsd/pkg/logx"
)

// Client publishes ACS decision telemetry to an MQTT broker.
type Client struct {
	client      MQTT.Client
	logger      *logx.Logger
	config      *Config
	connected   bool
	lastPublish time.Time

	messageQueue   []*QueuedMessage
	queueMutex     sync.Mutex
	maxQueueSize   int
	batchInterval  time.Duration
	lastBatchFlush time.Time

	rateLimiter *RateLimiter
}

// Config holds MQTT broker configuration.
type Config struct {
	BrokerURL string
	ClientID  string
	Username  string
	Password  string
	Topic     string
	QoS       byte
	Retain    bool
	Enabled   bool
}

// NewClient builds a disconnected Client; call Connect to establish the
// broker session.
func NewClient(config *Config, logger *logx.Logger) *Client {
	return &Client{
		logger:        logger,
		config:        config,
		messageQueue:  make([]*QueuedMessage, 0, 16),
		maxQueueSize:  16,
		batchInterval: 2 * time.Second,
		rateLimiter:   &RateLimiter{maxMessages: 5, windowSize: time.Second},
	}
}

// Connect establishes the broker connection. A no-op when the client is
// disabled in config.
func (c *Client) Connect() error {
	if !c.config.Enabled {
		c.logger.Debug("mqtt client disabled")
		return nil
	}

	opts := MQTT.NewClientOptions()
	opts.AddBroker(c.config.BrokerURL)
	opts.SetClientID(c.config.ClientID)
	if c.config.Username != "" {
		opts.SetUsername(c.config.Username)
		opts.SetPassword(c.config.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(time.Minute)
	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)

	c.client = MQTT.NewClient(opts)
	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect failed: %w", token.Error())
	}

	c.logger.Info("mqtt client connected", "broker", c.config.BrokerURL)
	return nil
}

// Disconnect closes the broker session.
func (c *Client) Disconnect() {
	if c.client != nil && c.connected {
		c.client.Disconnect(250)
		c.connected = false
		c.logger.Info("mqtt client disconnected")
	}
}

func (c *Client) onConnect(client MQTT.Client) {
	c.connected = true
	c.logger.Info("mqtt connection established")
}

func (c *Client) onConnectionLost(client MQTT.Client, err error) {
	c.connected = false
	c.logger.Error("mqtt connection lost", "error", err)
}

// Decision is the telemetry payload published for one completed ACS
// invocation.
type Decision struct {
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
	Channel   int       `json:"channel,omitempty"`
	LowestNF  int8      `json:"lowest_nf,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// PublishDecision publishes a retained Decision to config.Topic, subject to
// rate limiting and batching.
func (c *Client) PublishDecision(d Decision) error {
	if !c.config.Enabled {
		return nil
	}

	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal decision: %w", err)
	}

	if !c.rateLimiter.Allow() {
		return c.queueMessage(c.config.Topic, data)
	}
	return c.publishBatched(c.config.Topic, data)
}

func (c *Client) publishBatched(topic string, payload []byte) error {
	c.queueMutex.Lock()
	defer c.queueMutex.Unlock()

	c.messageQueue = append(c.messageQueue, &QueuedMessage{Topic: topic, Payload: payload, Time: time.Now()})

	if len(c.messageQueue) >= c.maxQueueSize || time.Since(c.lastBatchFlush) >= c.batchInterval {
		return c.flushMessageQueueLocked()
	}
	return nil
}

func (c *Client) queueMessage(topic string, payload []byte) error {
	c.queueMutex.Lock()
	defer c.queueMutex.Unlock()

	if len(c.messageQueue) >= c.maxQueueSize {
		c.logger.Warn("mqtt queue full, dropping decision message", "topic", topic)
		return nil
	}
	c.messageQueue = append(c.messageQueue, &QueuedMessage{Topic: topic, Payload: payload, Time: time.Now()})
	return nil
}

// flushMessageQueueLocked publishes every queued message; caller holds
// queueMutex.
func (c *Client) flushMessageQueueLocked() error {
	for _, msg := range c.messageQueue {
		if err := c.publishDirect(msg.Topic, msg.Payload); err != nil {
			c.logger.Error("failed to publish queued decision", "topic", msg.Topic, "error", err)
		}
	}
	c.messageQueue = c.messageQueue[:0]
	c.lastBatchFlush = time.Now()
	return nil
}

func (c *Client) publishDirect(topic string, payload []byte) error {
	if !c.connected {
		return fmt.Errorf("not connected to mqtt broker")
	}
	token := c.client.Publish(topic, c.config.QoS, c.config.Retain, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, token.Error())
	}
	c.lastPublish = time.Now()
	return nil
}

// IsConnected reports whether the broker session is live.
func (c *Client) IsConnected() bool {
	return c.connected && c.client != nil && c.client.IsConnected()
}

// QueuedMessage is a decision publish waiting for the next batch flush.
type QueuedMessage struct {
	Topic   string
	Payload []byte
	Time    time.Time
}

// RateLimiter is a fixed-window publish rate limiter.
type RateLimiter struct {
	mu           sync.Mutex
	lastCheck    time.Time
	messageCount int
	maxMessages  int
	windowSize   time.Duration
}

// Allow reports whether a publish is permitted under the current window,
// consuming one slot if so.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastCheck) >= rl.windowSize {
		rl.messageCount = 0
		rl.lastCheck = now
	}
	if rl.messageCount < rl.maxMessages {
		rl.messageCount++
		return true
	}
	return false
}
