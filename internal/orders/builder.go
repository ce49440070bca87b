package orders

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/UnicornIn/distribuidores/internal/models"
	"github.com/UnicornIn/distribuidores/internal/pricing"
	"github.com/UnicornIn/distribuidores/internal/stock"
)

// CatalogLookup resuelve un producto por identificador. El segundo retorno
// es falso cuando el producto no existe.
type CatalogLookup func(productID string) (*models.Product, bool)

// Builder convierte el carrito de un distribuidor en un borrador de pedido
// con precios resueltos y totales consistentes
type Builder struct {
	resolver *pricing.Resolver
	view     *stock.View
	ids      *IDGenerator
}

// NewBuilder crea una nueva instancia del constructor de pedidos
func NewBuilder(resolver *pricing.Resolver, view *stock.View, ids *IDGenerator) *Builder {
	return &Builder{
		resolver: resolver,
		view:     view,
		ids:      ids,
	}
}

// Draft representa un pedido construido junto con las reservas de inventario
// que el caller debe confirmar atómicamente al persistirlo
type Draft struct {
	Order        *models.Order
	Reservations []stock.Reservation
}

// BuildOrder valida el carrito, resuelve precios por tier y arma el pedido
// en estado processing junto con sus reservas de inventario. Cualquier falla
// deja el inventario intacto: las reservas solo se confirman cuando el caller
// persiste el pedido completo.
func (b *Builder) BuildOrder(distributor *models.User, tier models.PricingTier, req models.CreateOrderRequest, lookup CatalogLookup) (*Draft, error) {
	items := make([]models.CartItem, 0, len(req.Cart))
	for _, item := range req.Cart {
		if item.Quantity == 0 {
			continue
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, models.NewEngineError(models.ErrEmptyOrder,
			"el pedido debe contener al menos una línea")
	}
	if strings.TrimSpace(req.Address) == "" {
		return nil, models.NewEngineError(models.ErrMissingAddress,
			"el pedido requiere dirección de entrega")
	}

	site := tier.Site()
	lines := make([]models.OrderLine, 0, len(items))
	reservations := make([]stock.Reservation, 0, len(items))
	subtotal := decimal.Zero
	tax := decimal.Zero
	currency := pricing.CurrencyCOP

	for i, item := range items {
		product, ok := lookup(item.ID)
		if !ok {
			return nil, models.NewEngineError(models.ErrProductNotFound,
				"producto %s no encontrado", item.ID)
		}

		reservation, err := b.view.ValidateAndReserve(product, site, item.Quantity)
		if err != nil {
			return nil, err
		}

		quote, err := b.resolver.Resolve(tier, product)
		if err != nil {
			return nil, err
		}
		currency = quote.Currency

		qty := decimal.NewFromInt(int64(item.Quantity))
		line := models.OrderLine{
			LineNo:    i + 1,
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  item.Quantity,
			UnitPrice: quote.UnitPrice,
			UnitBase:  quote.UnitBase,
			UnitTax:   quote.UnitTax,
			LineTotal: quote.UnitPrice.Mul(qty),
		}

		subtotal = subtotal.Add(quote.UnitBase.Mul(qty))
		tax = tax.Add(quote.UnitTax.Mul(qty))
		lines = append(lines, line)
		reservations = append(reservations, reservation)
	}

	order := &models.Order{
		ID:               b.ids.Next(),
		DistributorID:    distributor.ID.String(),
		DistributorName:  distributor.Name,
		DistributorPhone: distributor.Phone,
		Lines:            lines,
		Address:          strings.TrimSpace(req.Address),
		Notes:            req.Notes,
		Tier:             tier,
		Currency:         currency,
		Subtotal:         subtotal,
		Tax:              tax,
		Total:            subtotal.Add(tax),
		Status:           models.StatusProcessing,
		CreatedAt:        time.Now().UTC(),
	}

	return &Draft{Order: order, Reservations: reservations}, nil
}
