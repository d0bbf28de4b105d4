package socialgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	opGetFollowing      = "get-following"
	opGetFollowingStats = "get-following-stats"
)

type rpcEnvelope struct {
	Op   string `json:"op"`
	Args []any  `json:"args"`
}

// AMQPClient speaks request/response over RabbitMQ: requests go to the peer
// service's queue, replies come back on an exclusive reply queue matched by
// correlation id.
type AMQPClient struct {
	conn    *amqp.Connection
	ch      *amqp.Channel
	queue   string
	replyTo string
	timeout time.Duration

	mu      sync.Mutex
	pending map[string]chan []byte
}

// NewAMQPClient connects to the broker, declares the reply queue and starts
// the reply dispatcher.
func NewAMQPClient(url, queue string, timeout time.Duration) (*AMQPClient, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("error establishing connection with rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("error opening channel for rabbitmq: %w", err)
	}

	replyQ, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("error declaring reply queue: %w", err)
	}

	deliveries, err := ch.Consume(replyQ.Name, "", true, true, false, false, nil)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("error consuming reply queue: %w", err)
	}

	c := &AMQPClient{
		conn:    conn,
		ch:      ch,
		queue:   queue,
		replyTo: replyQ.Name,
		timeout: timeout,
		pending: map[string]chan []byte{},
	}
	go c.dispatch(deliveries)
	return c, nil
}

func (c *AMQPClient) dispatch(deliveries <-chan amqp.Delivery) {
	for d := range deliveries {
		c.mu.Lock()
		ch, ok := c.pending[d.CorrelationId]
		if ok {
			delete(c.pending, d.CorrelationId)
		}
		c.mu.Unlock()
		if ok {
			ch <- d.Body
		}
	}
}

// GetFollowing fetches one page of the user's following relations.
func (c *AMQPClient) GetFollowing(ctx context.Context, userID string, page int) (*PaginatedRelations, error) {
	body, err := c.call(ctx, opGetFollowing, userID, page)
	if err != nil {
		return nil, err
	}
	var rels PaginatedRelations
	if err := json.Unmarshal(body, &rels); err != nil {
		return nil, fmt.Errorf("bad %s reply: %w", opGetFollowing, err)
	}
	return &rels, nil
}

// GetFollowingStats fetches the user's aggregate follow counters.
func (c *AMQPClient) GetFollowingStats(ctx context.Context, userID string) (*FollowingStats, error) {
	body, err := c.call(ctx, opGetFollowingStats, userID)
	if err != nil {
		return nil, err
	}
	var stats FollowingStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("bad %s reply: %w", opGetFollowingStats, err)
	}
	return &stats, nil
}

func (c *AMQPClient) call(ctx context.Context, op string, args ...any) ([]byte, error) {
	body, err := json.Marshal(rpcEnvelope{Op: op, Args: args})
	if err != nil {
		return nil, err
	}

	corrID := uuid.NewString()
	reply := make(chan []byte, 1)
	c.mu.Lock()
	c.pending[corrID] = reply
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err = c.ch.PublishWithContext(ctx, "", c.queue, false, false, amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: corrID,
		ReplyTo:       c.replyTo,
		Body:          body,
	})
	if err != nil {
		c.drop(corrID)
		return nil, fmt.Errorf("%s publish: %w", op, err)
	}

	select {
	case b := <-reply:
		return b, nil
	case <-ctx.Done():
		c.drop(corrID)
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	}
}

func (c *AMQPClient) drop(corrID string) {
	c.mu.Lock()
	delete(c.pending, corrID)
	c.mu.Unlock()
}

// Close tears down the channel and connection.
func (c *AMQPClient) Close() error {
	if err := c.ch.Close(); err != nil {
		c.conn.Close()
		return err
	}
	return c.conn.Close()
}
