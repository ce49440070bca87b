// Package pricing centraliza la resolución de precios por tier de
// distribuidor. Toda regla de redondeo vive aquí y en ningún otro lado.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/UnicornIn/distribuidores/internal/models"
)

// CurrencyCOP y CurrencyUSD son las monedas soportadas
const (
	CurrencyCOP = "COP"
	CurrencyUSD = "USD"
)

// Quote representa el desglose de precio unitario para un producto bajo un tier.
// Los montos ya vienen redondeados: COP a unidades enteras, USD a dos decimales.
// El redondeo se aplica una sola vez a nivel unitario, antes de multiplicar
// por cantidad, para que los totales de línea sean cantidad × precio redondeado.
type Quote struct {
	Tier      models.PricingTier `json:"tier"`
	Currency  string             `json:"currency"`
	UnitBase  decimal.Decimal    `json:"unit_base"`
	UnitTax   decimal.Decimal    `json:"unit_tax"`
	UnitPrice decimal.Decimal    `json:"unit_price"`
}

// Resolver resuelve precios unitarios según el tier del distribuidor
type Resolver struct{}

// NewResolver crea una nueva instancia del resolver de precios
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve calcula el precio unitario aplicable a un producto bajo un tier.
// Retorna ProductUnavailable si el producto está inactivo.
func (r *Resolver) Resolve(tier models.PricingTier, product *models.Product) (Quote, error) {
	if !product.IsActive {
		return Quote{}, models.NewEngineError(models.ErrProductUnavailable,
			"producto %s no disponible", product.ID)
	}

	switch tier {
	case models.TierWithoutTax:
		base := roundCOP(product.PriceDomestic)
		return Quote{
			Tier:      tier,
			Currency:  CurrencyCOP,
			UnitBase:  base,
			UnitTax:   decimal.Zero,
			UnitPrice: base,
		}, nil

	case models.TierWithTax:
		base := roundCOP(product.PriceDomestic)
		tax := roundCOP(product.PriceDomestic.Mul(product.TaxRate))
		return Quote{
			Tier:      tier,
			Currency:  CurrencyCOP,
			UnitBase:  base,
			UnitTax:   tax,
			UnitPrice: base.Add(tax),
		}, nil

	case models.TierWithoutTaxInternational:
		base := roundUSD(product.PriceInternational)
		return Quote{
			Tier:      tier,
			Currency:  CurrencyUSD,
			UnitBase:  base,
			UnitTax:   decimal.Zero,
			UnitPrice: base,
		}, nil
	}

	return Quote{}, models.NewEngineError(models.ErrUnauthorized,
		"tier de precios desconocido: %s", tier)
}

// roundCOP redondea montos en pesos a la unidad entera más cercana
func roundCOP(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// roundUSD redondea montos en dólares a dos decimales
func roundUSD(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
