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

	"gofinances/internal/core"
	"gofinances/internal/log"
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
	publishTimeout = 5 * time.Second
	maxBackoff     = 30 * time.Second

	// maxDeliveryAttempts bounds how often a failing message is handled
	// before it is dead-lettered.
	maxDeliveryAttempts = 5
	retryCountHeader    = "x-retry-count"
)

var errChannelClosed = errors.New("message channel closed")

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
	breakerMu    sync.Mutex
	lastFailure  time.Time
}

// NewClient connects to the broker and declares the exchange, queue and
// binding used for transaction events.
func NewClient(url, exchangeName, queueName string, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	client := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		logger:       logger.WithComponent(log.ComponentAMQP),
	}
	if _, err := client.ensureChannel(); err != nil {
		return nil, err
	}
	return client, nil
}

func (c *Client) ensureChannel() (*amqp091.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil && !c.conn.IsClosed() && c.channel != nil && !c.channel.IsClosed() {
		return c.channel, nil
	}
	c.closeLocked()

	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	c.conn, c.channel = conn, channel

	if err := c.setup(); err != nil {
		c.closeLocked()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	return channel, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(c.deadLetterQueue(), true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare dead-letter queue: %w", err)
	}
	err = c.channel.QueueBind(c.deadLetterQueue(), c.deadLetterQueue(), c.exchangeName, false, nil)
	if err != nil {
		return fmt.Errorf("bind dead-letter queue: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		amqp091.Table{
			"x-dead-letter-exchange":    c.exchangeName,
			"x-dead-letter-routing-key": c.deadLetterQueue(),
		},
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// routing key is the queue name on the direct exchange
	err = c.channel.QueueBind(c.queueName, c.queueName, c.exchangeName, false, nil)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// deadLetterQueue holds messages that failed maxDeliveryAttempts times.
func (c *Client) deadLetterQueue() string {
	return c.queueName + ".dead"
}

// PublishTransactionRegistered publishes the event for a newly appended
// transaction. Publishing is refused while the circuit breaker is open.
func (c *Client) PublishTransactionRegistered(ctx context.Context, userID string, tx core.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.isCircuitOpen() {
		return fmt.Errorf("circuit breaker is open: skipping publish of transaction %s", tx.ID)
	}

	body, err := NewTransactionRegisteredMessage(userID, tx).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	channel, err := c.ensureChannel()
	if err != nil {
		c.recordFailure()
		return err
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = channel.PublishWithContext(
		pubCtx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		c.recordFailure()
		if isConnectionError(err) {
			c.reset()
		}
		return fmt.Errorf("publish message: %w", err)
	}
	c.recordSuccess()

	c.log().InfoContext(ctx, "Published transaction registered message",
		log.FieldUserID, userID,
		log.FieldTransactionID, tx.ID,
		"exchange", c.exchangeName,
		"queue", c.queueName)
	return nil
}

// ConsumeTransactionRegistered delivers messages to handler until ctx is
// done. Malformed messages are dropped. A handler failure is retried after a
// backoff up to maxDeliveryAttempts times and then dead-lettered. A lost
// connection is re-established with exponential backoff.
func (c *Client) ConsumeTransactionRegistered(ctx context.Context, handler func(context.Context, *TransactionRegisteredMessage) error) error {
	for attempt := 0; ; attempt++ {
		err := c.consume(ctx, handler)
		if ctx.Err() != nil {
			c.log().InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		}
		if !isConnectionError(err) && !errors.Is(err, errChannelClosed) {
			return err
		}

		wait := exponentialBackoff(attempt)
		c.log().WarnContext(ctx, "AMQP consumer disconnected, retrying",
			log.FieldError, err.Error(),
			"attempt", attempt+1,
			"backoff", wait.String())
		c.reset()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (c *Client) consume(ctx context.Context, handler func(context.Context, *TransactionRegisteredMessage) error) error {
	channel, err := c.ensureChannel()
	if err != nil {
		return err
	}
	if err := channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	msgs, err := channel.Consume(
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

	c.log().InfoContext(ctx, "Started consuming transaction messages", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errChannelClosed
			}

			msg, err := TransactionRegisteredMessageFromJSON(delivery.Body)
			if err != nil {
				c.log().ErrorContext(ctx, "Failed to decode message", log.FieldError, err.Error())
				delivery.Nack(false, false) // drop, never requeue
				continue
			}

			if err := handler(ctx, msg); err != nil {
				c.log().ErrorContext(ctx, "Failed to handle message",
					log.FieldError, err.Error(),
					log.FieldUserID, msg.UserID,
					log.FieldTransactionID, msg.Transaction.ID)
				c.retryOrDeadLetter(ctx, channel, delivery)
				continue
			}

			delivery.Ack(false)
			c.log().DebugContext(ctx, "Processed transaction message",
				log.FieldUserID, msg.UserID,
				log.FieldTransactionID, msg.Transaction.ID)
		}
	}
}

// retryOrDeadLetter republishes a failed delivery with its attempt count
// bumped, after a backoff, or rejects it to the dead-letter queue once the
// attempts are used up.
func (c *Client) retryOrDeadLetter(ctx context.Context, channel *amqp091.Channel, delivery amqp091.Delivery) {
	attempts := retryCount(delivery.Headers) + 1
	if attempts >= maxDeliveryAttempts {
		c.log().WarnContext(ctx, "Dead-lettering message after repeated failures",
			"attempts", attempts,
			"queue", c.deadLetterQueue())
		delivery.Nack(false, false)
		return
	}

	select {
	case <-ctx.Done():
		delivery.Nack(false, true)
		return
	case <-time.After(exponentialBackoff(attempts - 1)):
	}

	headers := amqp091.Table{}
	for k, v := range delivery.Headers {
		headers[k] = v
	}
	headers[retryCountHeader] = int32(attempts)

	err := channel.PublishWithContext(ctx, c.exchangeName, c.queueName, false, false, amqp091.Publishing{
		ContentType:  delivery.ContentType,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    delivery.Timestamp,
		Headers:      headers,
		Body:         delivery.Body,
	})
	if err != nil {
		c.log().ErrorContext(ctx, "Failed to republish message, requeueing", log.FieldError, err.Error())
		delivery.Nack(false, true)
		return
	}
	delivery.Ack(false)
}

// retryCount reads the attempt counter set by retryOrDeadLetter. Missing or
// unreadable values count as zero.
func retryCount(headers amqp091.Table) int {
	switch v := headers[retryCountHeader].(type) {
	case int:
		return v
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	default:
		return 0
	}
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) != StateOpen {
		return false
	}
	c.breakerMu.Lock()
	last := c.lastFailure
	c.breakerMu.Unlock()
	if time.Since(last) > openTimeout {
		atomic.CompareAndSwapInt32(&c.state, StateOpen, StateHalfOpen)
		return false
	}
	return true
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	c.breakerMu.Lock()
	c.lastFailure = time.Now()
	c.breakerMu.Unlock()
	if atomic.AddInt64(&c.failureCount, 1) >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

// exponentialBackoff returns 1s, 2s, 4s... capped at maxBackoff.
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"connection", "eof", "broken pipe", "dial"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func (c *Client) log() *log.Logger {
	if c.logger == nil {
		return log.FromContext(context.Background())
	}
	return c.logger
}

func (c *Client) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Client) closeLocked() {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var err error
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err = c.conn.Close()
		c.conn = nil
	}
	return err
}
