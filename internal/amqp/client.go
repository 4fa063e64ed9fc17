package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"fiscal/internal/log"
)

// Circuit breaker states
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures    = 5
	openTimeout    = 30 * time.Second
	maxBackoff     = 30 * time.Second
	publishTimeout = 5 * time.Second
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

// Client publishes and consumes ledger events on a direct exchange. Publishing
// goes through a circuit breaker and reconnects lazily after broker failures.
type Client struct {
	url          string
	exchangeName string
	queueName    string
	logger       *log.Logger

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	state        int32
	failureCount int64
	lastFailure  time.Time
}

func NewClient(url, exchangeName, queueName string, logger *log.Logger) (*Client, error) {
	client := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		logger:       logger.WithComponent(log.ComponentAMQP),
	}
	if err := client.connect(); err != nil {
		return nil, err
	}
	return client, nil
}

func (c *Client) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked()
}

func (c *Client) connectLocked() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := setup(channel, c.exchangeName, c.queueName); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}

	c.conn = conn
	c.channel = channel
	return nil
}

func setup(ch *amqp091.Channel, exchangeName, queueName string) error {
	err := ch.ExchangeDeclare(
		exchangeName, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// The routing key is the queue name.
	if err := ch.QueueBind(queueName, queueName, exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// activeChannel returns an open channel, reconnecting if the previous one
// was closed by the broker.
func (c *Client) activeChannel() (*amqp091.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil && !c.channel.IsClosed() {
		return c.channel, nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	if err := c.connectLocked(); err != nil {
		return nil, err
	}
	c.logger.Info("Reconnected to AMQP broker", "exchange", c.exchangeName)
	return c.channel, nil
}

// PublishTransaction announces a newly recorded transaction.
func (c *Client) PublishTransaction(ctx context.Context, id int64, version uint64) error {
	return c.publish(ctx, NewTransactionRecorded(id, version))
}

// PublishBill announces a newly scheduled bill.
func (c *Client) PublishBill(ctx context.Context, id string) error {
	return c.publish(ctx, NewBillScheduled(id))
}

func (c *Client) publish(ctx context.Context, msg *LedgerEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.isCircuitOpen() {
		return fmt.Errorf("publish %s: %w", msg.Type, ErrCircuitOpen)
	}

	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ch, err := c.activeChannel()
	if err != nil {
		c.recordFailure()
		return fmt.Errorf("publish %s: %w", msg.Type, err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    msg.MessageID,
			Type:         string(msg.Type),
			Timestamp:    msg.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		if isConnectionError(err) {
			c.recordFailure()
		}
		return fmt.Errorf("publish message: %w", err)
	}
	c.recordSuccess()

	c.logger.DebugContext(ctx, "Published ledger event",
		log.FieldMessageID, msg.MessageID,
		"type", msg.Type,
		log.FieldTxID, msg.TransactionID,
		log.FieldBillID, msg.BillID)
	return nil
}

// Handler processes one event. Returning an error requeues the message.
type Handler func(ctx context.Context, msg *LedgerEvent) error

// Consume delivers events to handler until ctx is cancelled, reconnecting
// with exponential backoff when the broker goes away.
func (c *Client) Consume(ctx context.Context, handler Handler) error {
	for attempt := 0; ; attempt++ {
		err := c.consumeOnce(ctx, handler)
		if ctx.Err() != nil {
			c.logger.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		}
		if err == nil {
			attempt = 0
			continue
		}

		wait := exponentialBackoff(attempt)
		c.logger.WarnContext(ctx, "Consumer interrupted, retrying", log.FieldError, err, "retry_in", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (c *Client) consumeOnce(ctx context.Context, handler Handler) error {
	ch, err := c.activeChannel()
	if err != nil {
		return err
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	msgs, err := ch.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.logger.InfoContext(ctx, "Started consuming ledger events", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}
			c.deliver(ctx, delivery, handler)
		}
	}
}

func (c *Client) deliver(ctx context.Context, delivery amqp091.Delivery, handler Handler) {
	msg, err := LedgerEventFromJSON(delivery.Body)
	if err != nil {
		c.logger.ErrorContext(ctx, "Dropping malformed message", log.FieldError, err, log.FieldMessageID, delivery.MessageId)
		delivery.Nack(false, false)
		return
	}

	if err := handler(ctx, msg); err != nil {
		c.logger.ErrorContext(ctx, "Failed to handle message",
			log.FieldError, err,
			log.FieldMessageID, msg.MessageID,
			log.FieldTxID, msg.TransactionID)
		// A redelivered message that fails again is dropped; the pending
		// export sweep picks the row up later.
		delivery.Nack(false, !delivery.Redelivered)
		return
	}
	delivery.Ack(false)
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Client) isCircuitOpen() bool {
	switch atomic.LoadInt32(&c.state) {
	case StateOpen:
		c.mu.Lock()
		last := c.lastFailure
		c.mu.Unlock()
		if time.Since(last) > openTimeout {
			atomic.CompareAndSwapInt32(&c.state, StateOpen, StateHalfOpen)
			return false
		}
		return true
	default:
		return false
	}
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	c.mu.Lock()
	c.lastFailure = time.Now()
	c.mu.Unlock()
	if atomic.AddInt64(&c.failureCount, 1) >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

func exponentialBackoff(attempt int) time.Duration {
	if attempt >= 5 {
		return maxBackoff
	}
	return min(time.Second<<attempt, maxBackoff)
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := err.Error()
	for _, s := range []string{"connection refused", "connection closed", "EOF", "broken pipe", "closed network connection"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
