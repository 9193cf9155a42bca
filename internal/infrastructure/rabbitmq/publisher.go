package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/jhoicas/Restaurante-api/internal/application/fulfillment"
)

var _ fulfillment.StockEventPublisher = (*Publisher)(nil)

const exchangeName = "stock_topic"

// Publisher publica eventos de stock en un exchange topic de RabbitMQ.
// Es best effort: los casos de uso ya lo llaman después de commit y solo
// loggean el error, así que ningún fallo aquí revierte nada.
type Publisher struct {
	conn *amqp.Connection
}

// Connect abre la conexión con el broker y declara el exchange.
func Connect(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(exchangeName, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{conn: conn}, nil
}

// Close cierra la conexión con el broker.
func (p *Publisher) Close() error {
	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn.Close()
	}
	return nil
}

// PublishStockChanged publica un cambio de stock ya commiteado con routing key
// stock.changed.<restaurantID>.
func (p *Publisher) PublishStockChanged(ctx context.Context, ev fulfillment.StockChangedEvent) error {
	key := fmt.Sprintf("stock.changed.%s", ev.RestaurantID)
	return p.publish(ctx, key, ev)
}

// PublishLowStock publica una alerta de stock bajo con routing key
// stock.low.<restaurantID>.
func (p *Publisher) PublishLowStock(ctx context.Context, ev fulfillment.LowStockEvent) error {
	key := fmt.Sprintf("stock.low.%s", ev.RestaurantID)
	return p.publish(ctx, key, ev)
}

func (p *Publisher) publish(ctx context.Context, routingKey string, msg any) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = ch.PublishWithContext(ctx, exchangeName, routingKey, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}
