// Package inventory hands ingredient-usage reports off to the inventory
// collaborator over RabbitMQ. The report is a value; whether or how the
// consumer debits stock is outside this service.
package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
)

const usageExchange = "inventory_usage"

// UsageReport is the message published when an order is submitted. ReportID
// lets consumers deduplicate redelivered messages.
type UsageReport struct {
	ReportID    string                     `json:"reportId"`
	BranchCode  string                     `json:"branchCode"`
	TableNumber string                     `json:"tableNumber"`
	Usage       map[string]decimal.Decimal `json:"usage"`
	SubmittedAt time.Time                  `json:"submittedAt"`
}

// AMQPPublisher publishes usage reports to a topic exchange.
type AMQPPublisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Dial connects to RabbitMQ and declares the usage exchange.
func Dial(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(usageExchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPPublisher{conn: conn, ch: ch}, nil
}

// PublishUsage sends the report with routing key usage.<branch>.<table>.
func (p *AMQPPublisher) PublishUsage(ctx context.Context, branch, tableNumber string, usage map[string]decimal.Decimal) error {
	body, err := json.Marshal(UsageReport{
		ReportID:    uuid.New().String(),
		BranchCode:  branch,
		TableNumber: tableNumber,
		Usage:       usage,
		SubmittedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal usage report: %w", err)
	}

	key := fmt.Sprintf("usage.%s.%s", branch, tableNumber)
	return p.ch.PublishWithContext(ctx, usageExchange, key, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		ContentType:  "application/json",
		Body:         body,
	})
}

// Close shuts down the channel and connection.
func (p *AMQPPublisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// NopPublisher discards usage reports. Used when RabbitMQ is not configured.
type NopPublisher struct{}

func (NopPublisher) PublishUsage(ctx context.Context, branch, tableNumber string, usage map[string]decimal.Decimal) error {
	return nil
}
