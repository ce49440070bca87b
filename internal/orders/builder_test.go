package orders

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UnicornIn/distribuidores/internal/models"
	"github.com/UnicornIn/distribuidores/internal/pricing"
	"github.com/UnicornIn/distribuidores/internal/stock"
)

func newTestBuilder() *Builder {
	return NewBuilder(pricing.NewResolver(), stock.NewView(), NewIDGenerator())
}

func testDistributor(tier models.PricingTier) *models.User {
	return &models.User{
		ID:    uuid.New(),
		Name:  "Distribuciones La Ceja",
		Phone: "3001234567",
		Role:  models.RoleDistributor,
		Tier:  &tier,
	}
}

func testCatalog() map[string]*models.Product {
	return map[string]*models.Product{
		"P001": {
			ID:                 "P001",
			Name:               "Shampoo Reparador 500ml",
			PriceDomestic:      decimal.NewFromInt(10000),
			PriceInternational: decimal.RequireFromString("4.20"),
			TaxRate:            models.DomesticTaxRate,
			IsActive:           true,
			StockMedellin:      20,
			StockGuarne:        8,
		},
		"P002": {
			ID:                 "P002",
			Name:               "Tratamiento Capilar 300ml",
			PriceDomestic:      decimal.NewFromInt(25500),
			PriceInternational: decimal.RequireFromString("9.99"),
			TaxRate:            models.DomesticTaxRate,
			IsActive:           true,
			StockMedellin:      5,
			StockGuarne:        5,
		},
	}
}

func lookupFrom(catalog map[string]*models.Product) CatalogLookup {
	return func(id string) (*models.Product, bool) {
		p, ok := catalog[id]
		return p, ok
	}
}

func TestBuildOrderWithTax(t *testing.T) {
	b := newTestBuilder()
	distributor := testDistributor(models.TierWithTax)

	draft, err := b.BuildOrder(distributor, models.TierWithTax, models.CreateOrderRequest{
		Cart:    []models.CartItem{{ID: "P001", Quantity: 2}},
		Address: "Calle 10 # 43-12, Medellín",
	}, lookupFrom(testCatalog()))
	require.NoError(t, err)

	order := draft.Order
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(20000)))
	assert.True(t, order.Tax.Equal(decimal.NewFromInt(3800)))
	assert.True(t, order.Total.Equal(decimal.NewFromInt(23800)))
	assert.True(t, order.Total.Equal(order.Subtotal.Add(order.Tax)))
	assert.Equal(t, models.StatusProcessing, order.Status)
	assert.Equal(t, pricing.CurrencyCOP, order.Currency)
	assert.True(t, IsCanonical(order.ID))

	require.Len(t, order.Lines, 1)
	line := order.Lines[0]
	assert.Equal(t, 1, line.LineNo)
	assert.Equal(t, "Shampoo Reparador 500ml", line.Name)
	assert.True(t, line.UnitPrice.Equal(decimal.NewFromInt(11900)))
	assert.True(t, line.LineTotal.Equal(decimal.NewFromInt(23800)))

	require.Len(t, draft.Reservations, 1)
	assert.Equal(t, models.SiteMedellin, draft.Reservations[0].Site)
	assert.Equal(t, 2, draft.Reservations[0].Quantity)
}

func TestBuildOrderInternational(t *testing.T) {
	b := newTestBuilder()
	distributor := testDistributor(models.TierWithoutTaxInternational)

	draft, err := b.BuildOrder(distributor, models.TierWithoutTaxInternational, models.CreateOrderRequest{
		Cart:    []models.CartItem{{ID: "P001", Quantity: 3}},
		Address: "1200 Brickell Ave, Miami FL",
	}, lookupFrom(testCatalog()))
	require.NoError(t, err)

	order := draft.Order
	assert.True(t, order.Subtotal.Equal(decimal.RequireFromString("12.60")))
	assert.True(t, order.Tax.IsZero())
	assert.True(t, order.Total.Equal(decimal.RequireFromString("12.60")))
	assert.Equal(t, pricing.CurrencyUSD, order.Currency)

	// Los pedidos internacionales se despachan desde guarne
	require.Len(t, draft.Reservations, 1)
	assert.Equal(t, models.SiteGuarne, draft.Reservations[0].Site)
}

func TestBuildOrderMultipleLines(t *testing.T) {
	b := newTestBuilder()
	distributor := testDistributor(models.TierWithoutTax)

	draft, err := b.BuildOrder(distributor, models.TierWithoutTax, models.CreateOrderRequest{
		Cart: []models.CartItem{
			{ID: "P001", Quantity: 2},
			{ID: "P002", Quantity: 1},
		},
		Address: "Carrera 50 # 12-30, Itagüí",
	}, lookupFrom(testCatalog()))
	require.NoError(t, err)

	order := draft.Order
	require.Len(t, order.Lines, 2)
	assert.Equal(t, 1, order.Lines[0].LineNo)
	assert.Equal(t, 2, order.Lines[1].LineNo)
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(45500)))
	assert.True(t, order.Tax.IsZero())
	assert.True(t, order.Total.Equal(decimal.NewFromInt(45500)))
}

func TestBuildOrderFiltersZeroQuantities(t *testing.T) {
	b := newTestBuilder()
	distributor := testDistributor(models.TierWithTax)

	draft, err := b.BuildOrder(distributor, models.TierWithTax, models.CreateOrderRequest{
		Cart: []models.CartItem{
			{ID: "P001", Quantity: 0},
			{ID: "P002", Quantity: 1},
		},
		Address: "Calle 10 # 43-12, Medellín",
	}, lookupFrom(testCatalog()))
	require.NoError(t, err)

	require.Len(t, draft.Order.Lines, 1)
	assert.Equal(t, "P002", draft.Order.Lines[0].ProductID)
}

func TestBuildOrderEmptyCart(t *testing.T) {
	b := newTestBuilder()
	distributor := testDistributor(models.TierWithTax)

	for _, cart := range [][]models.CartItem{
		nil,
		{{ID: "P001", Quantity: 0}},
	} {
		_, err := b.BuildOrder(distributor, models.TierWithTax, models.CreateOrderRequest{
			Cart:    cart,
			Address: "Calle 10 # 43-12, Medellín",
		}, lookupFrom(testCatalog()))
		requireKind(t, err, models.ErrEmptyOrder)
	}
}

func TestBuildOrderMissingAddress(t *testing.T) {
	b := newTestBuilder()
	distributor := testDistributor(models.TierWithTax)

	_, err := b.BuildOrder(distributor, models.TierWithTax, models.CreateOrderRequest{
		Cart:    []models.CartItem{{ID: "P001", Quantity: 1}},
		Address: "   ",
	}, lookupFrom(testCatalog()))
	requireKind(t, err, models.ErrMissingAddress)
}

func TestBuildOrderProductNotFound(t *testing.T) {
	b := newTestBuilder()
	distributor := testDistributor(models.TierWithTax)

	_, err := b.BuildOrder(distributor, models.TierWithTax, models.CreateOrderRequest{
		Cart:    []models.CartItem{{ID: "P999", Quantity: 1}},
		Address: "Calle 10 # 43-12, Medellín",
	}, lookupFrom(testCatalog()))
	requireKind(t, err, models.ErrProductNotFound)
}

func TestBuildOrderInsufficientStock(t *testing.T) {
	b := newTestBuilder()
	distributor := testDistributor(models.TierWithTax)
	catalog := testCatalog()

	_, err := b.BuildOrder(distributor, models.TierWithTax, models.CreateOrderRequest{
		Cart:    []models.CartItem{{ID: "P001", Quantity: 50}},
		Address: "Calle 10 # 43-12, Medellín",
	}, lookupFrom(catalog))
	requireKind(t, err, models.ErrInsufficientStock)

	// El inventario queda intacto tras la falla
	assert.Equal(t, 20, catalog["P001"].StockMedellin)
	assert.Equal(t, 8, catalog["P001"].StockGuarne)
}

func TestBuildOrderInactiveProduct(t *testing.T) {
	b := newTestBuilder()
	distributor := testDistributor(models.TierWithTax)
	catalog := testCatalog()
	catalog["P002"].IsActive = false

	_, err := b.BuildOrder(distributor, models.TierWithTax, models.CreateOrderRequest{
		Cart:    []models.CartItem{{ID: "P002", Quantity: 1}},
		Address: "Calle 10 # 43-12, Medellín",
	}, lookupFrom(catalog))
	requireKind(t, err, models.ErrProductUnavailable)
}

func TestBuildOrderNegativeQuantity(t *testing.T) {
	b := newTestBuilder()
	distributor := testDistributor(models.TierWithTax)

	_, err := b.BuildOrder(distributor, models.TierWithTax, models.CreateOrderRequest{
		Cart:    []models.CartItem{{ID: "P001", Quantity: -2}},
		Address: "Calle 10 # 43-12, Medellín",
	}, lookupFrom(testCatalog()))
	requireKind(t, err, models.ErrInvalidQuantity)
}
