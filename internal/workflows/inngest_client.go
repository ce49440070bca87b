package workflows

import (
	"context"
	"fmt"

	"github.com/inngest/inngestgo"
	"github.com/sirupsen/logrus"

	"github.com/UnicornIn/distribuidores/internal/config"
	"github.com/UnicornIn/distribuidores/internal/models"
)

// OrderCreatedEvent es el nombre del evento emitido al crear un pedido
const OrderCreatedEvent = "orders/order.created"

// InngestClient emite eventos de pedidos hacia Inngest para los flujos
// de seguimiento y recordatorio
type InngestClient struct {
	client inngestgo.Client
	logger *logrus.Logger
}

// NewInngestClient crea una nueva instancia del cliente
func NewInngestClient(cfg *config.Config, logger *logrus.Logger) (*InngestClient, error) {
	if cfg.Inngest.EventKey == "" {
		return nil, fmt.Errorf("INNGEST_EVENT_KEY not configured")
	}
	if cfg.Inngest.SigningKey == "" {
		return nil, fmt.Errorf("INNGEST_SIGNING_KEY not configured")
	}

	client, err := inngestgo.NewClient(inngestgo.ClientOpts{
		EventKey:   &cfg.Inngest.EventKey,
		SigningKey: &cfg.Inngest.SigningKey,
		AppID:      cfg.Inngest.AppID,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating Inngest client: %w", err)
	}

	return &InngestClient{
		client: client,
		logger: logger,
	}, nil
}

// NotifyOrderCreated publica el evento de pedido creado. Los datos llevan
// lo necesario para que un flujo externo arme recordatorios sin volver a
// consultar la base.
func (c *InngestClient) NotifyOrderCreated(order *models.Order, distributorEmail string) error {
	_, err := c.client.Send(context.Background(), inngestgo.Event{
		Name: OrderCreatedEvent,
		Data: map[string]interface{}{
			"order_id":          order.ID,
			"distributor_id":    order.DistributorID,
			"distributor_email": distributorEmail,
			"tier":              order.Tier,
			"site":              order.Site(),
			"total":             order.Total.String(),
			"currency":          order.Currency,
			"created_at":        order.CreatedAt,
		},
	})
	if err != nil {
		return fmt.Errorf("error sending order created event: %w", err)
	}

	c.logger.WithField("order_id", order.ID).Info("Evento de pedido publicado")
	return nil
}

// GetClient retorna el cliente de Inngest
func (c *InngestClient) GetClient() inngestgo.Client {
	return c.client
}
