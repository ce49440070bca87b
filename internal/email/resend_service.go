package email

import (
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"

	"github.com/UnicornIn/distribuidores/internal/config"
	"github.com/UnicornIn/distribuidores/internal/models"
)

// ResendService maneja el envío de correos electrónicos usando Resend API
type ResendService struct {
	client *resend.Client
	cfg    *config.Config
	logger *logrus.Logger
}

// NewResendService crea una nueva instancia de ResendService
func NewResendService(cfg *config.Config, logger *logrus.Logger) *ResendService {
	return &ResendService{
		client: resend.NewClient(cfg.Email.ResendAPIKey),
		cfg:    cfg,
		logger: logger,
	}
}

// NotifyOrderCreated envía el resumen del pedido a tesorería, a la bodega
// que lo despacha y al distribuidor que lo hizo
func (s *ResendService) NotifyOrderCreated(order *models.Order, distributorEmail string) error {
	subject := fmt.Sprintf("Nuevo pedido %s - %s", order.ID, order.DistributorName)
	htmlContent := s.orderHTML(order)

	to := []string{
		s.cfg.Email.TreasuryInbox,
		s.cfg.SiteInbox(string(order.Site())),
	}
	if distributorEmail != "" {
		to = append(to, distributorEmail)
	}

	request := &resend.SendEmailRequest{
		From:    s.cfg.Email.FromAddress,
		To:      to,
		Subject: subject,
		Html:    htmlContent,
	}

	result, err := s.client.Emails.Send(request)
	if err != nil {
		return fmt.Errorf("error sending email via Resend: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"email_id": result.Id,
		"order_id": order.ID,
		"to":       to,
	}).Info("Notificación de pedido enviada")

	return nil
}

func (s *ResendService) orderHTML(order *models.Order) string {
	var rows strings.Builder
	for _, line := range order.Lines {
		rows.WriteString(fmt.Sprintf(`
			<tr>
				<td>%s</td>
				<td>%s</td>
				<td style="text-align: right;">%d</td>
				<td style="text-align: right;">%s</td>
				<td style="text-align: right;">%s</td>
			</tr>`,
			line.ProductID, line.Name, line.Quantity,
			line.UnitPrice.String(), line.LineTotal.String()))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Nuevo Pedido</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #f8f9fa; padding: 20px; text-align: center; border-radius: 8px; }
        table { width: 100%%; border-collapse: collapse; margin: 20px 0; }
        th, td { padding: 8px; border-bottom: 1px solid #ddd; }
        th { text-align: left; background-color: #f8f9fa; }
        .total { font-size: 18px; font-weight: bold; color: #007bff; }
        .footer { margin-top: 30px; padding: 20px; background-color: #f8f9fa; border-radius: 8px; font-size: 14px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Nuevo Pedido</h1>
            <p>Número: %s</p>
            <p>Fecha: %s</p>
        </div>

        <p><strong>Distribuidor:</strong> %s</p>
        <p><strong>Teléfono:</strong> %s</p>
        <p><strong>Dirección de entrega:</strong> %s</p>
        <p><strong>Despacha:</strong> %s</p>

        <table>
            <tr>
                <th>Código</th>
                <th>Producto</th>
                <th>Cant.</th>
                <th>Precio Unit.</th>
                <th>Total</th>
            </tr>
            %s
        </table>

        <p>Subtotal: %s %s</p>
        <p>IVA: %s %s</p>
        <p class="total">Total: %s %s</p>

        <div class="footer">
            <p>Este es un email automático del sistema de pedidos para distribuidores.</p>
        </div>
    </div>
</body>
</html>`,
		order.ID,
		order.CreatedAt.Format("02/01/2006 15:04"),
		order.DistributorName,
		order.DistributorPhone,
		order.Address,
		order.Site(),
		rows.String(),
		order.Subtotal.String(), order.Currency,
		order.Tax.String(), order.Currency,
		order.Total.String(), order.Currency)
}
