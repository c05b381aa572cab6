package rabbitmq

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/streadway/amqp"
)

// DefaultQueue is used when Config.Queue is empty.
const DefaultQueue = "car_rented"

// CarRentedEvent is published after a reservation has been stored.
type CarRentedEvent struct {
	EventID       string    `json:"eventId"`
	RentalID      uint      `json:"rentalId"`
	UserID        uint      `json:"userId"`
	CarID         uint      `json:"carId"`
	CarName       string    `json:"carName"`
	RentStartedAt time.Time `json:"rentStartedAt"`
	RentEndedAt   time.Time `json:"rentEndedAt"`
	RentedAt      time.Time `json:"rentedAt"`
}

// ErrMalformedEvent marks a delivery body that can never be decoded.
// Such messages are dropped instead of requeued.
var ErrMalformedEvent = errors.New("malformed rental event")

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	mu      sync.Mutex // serialises publishes on the shared channel
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// NewClient connects to RabbitMQ, opens a channel and declares the rental
// event queue.
func NewClient(cfg Config) (*Client, error) {
	queue := cfg.Queue
	if queue == "" {
		queue = DefaultQueue
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", queue, err)
	}

	log.Printf("RabbitMQ client connected and %s declared.", queue)

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   queue,
	}, nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// PublishCarRented publishes the event as a persistent JSON message on the
// rental queue. An empty EventID is filled with a fresh UUID.
func (c *Client) PublishCarRented(event CarRentedEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal rental event to JSON: %w", err)
	}
	return c.publish(event.EventID, body)
}

func (c *Client) publish(messageID string, body []byte) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.channel.Publish(
		"",      // exchange: default exchange
		c.queue, // routing key: the queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    messageID,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Printf(" [x] Sent rental event %s", messageID)
	return nil
}

// ConsumeRentalEvents starts a goroutine that hands every delivery on the
// rental queue to messageHandler. A nil error acks the message; other errors
// nack it, with requeue unless ShouldRequeue says otherwise.
func (c *Client) ConsumeRentalEvents(messageHandler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.queue, // queue
		"",      // consumer tag
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.Printf(" [*] Waiting for rental events on %s", c.queue)

	go func() {
		for msg := range msgs {
			if err := messageHandler(msg); err != nil {
				requeue := ShouldRequeue(err)
				log.Printf("Error processing message %d (requeue=%t): %v", msg.DeliveryTag, requeue, err)
				if requeueErr := msg.Nack(false, requeue); requeueErr != nil {
					log.Printf("Error nacking message %d: %v", msg.DeliveryTag, requeueErr)
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				log.Printf("Error acking message %d: %v", msg.DeliveryTag, ackErr)
			}
		}
	}()

	return nil
}

// ShouldRequeue reports whether a failed delivery may succeed on redelivery.
func ShouldRequeue(err error) bool {
	return !errors.Is(err, ErrMalformedEvent)
}

// DecodeCarRented parses a delivery body produced by PublishCarRented.
// Failures wrap ErrMalformedEvent.
func DecodeCarRented(body []byte) (CarRentedEvent, error) {
	var event CarRentedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return CarRentedEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return event, nil
}

// LogRentalMessage is the default consumer handler; it logs each event.
// Malformed bodies are rejected so they get nacked.
func LogRentalMessage(msg amqp.Delivery) error {
	event, err := DecodeCarRented(msg.Body)
	if err != nil {
		return err
	}
	log.Printf("Car %d (%s) rented by user %d from %s to %s",
		event.CarID, event.CarName, event.UserID,
		event.RentStartedAt.Format(time.RFC3339), event.RentEndedAt.Format(time.RFC3339))
	return nil
}
