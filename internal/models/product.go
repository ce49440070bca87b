package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DomesticTaxRate es la tarifa de IVA aplicada a ventas nacionales con IVA
var DomesticTaxRate = decimal.NewFromFloat(0.19)

// Product representa un producto vendible del catálogo.
// Los precios forman la cuádrupla {doméstico, doméstico con IVA,
// internacional, tarifa de IVA}; el stock se lleva por bodega y solo se
// modifica mediante operaciones explícitas del repositorio.
type Product struct {
	ID            string          `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Category      string          `json:"category" db:"category"`
	Description   string          `json:"description" db:"description"`
	ImageURL      string          `json:"image_url" db:"image_url"`
	PriceDomestic decimal.Decimal `json:"price_domestic" db:"price_domestic"`
	// PriceDomesticTax es el precio doméstico con IVA ya embebido; se
	// almacena como referencia pero la resolución siempre parte del base.
	PriceDomesticTax   decimal.Decimal `json:"price_domestic_tax" db:"price_domestic_tax"`
	PriceInternational decimal.Decimal `json:"price_international" db:"price_international"`
	TaxRate            decimal.Decimal `json:"tax_rate" db:"tax_rate"`
	DiscountMargin     decimal.Decimal `json:"discount_margin" db:"discount_margin"`
	TypeCode           *int            `json:"type_code,omitempty" db:"type_code"`
	IsActive           bool            `json:"is_active" db:"is_active"`
	StockMedellin      int             `json:"stock_medellin" db:"stock_medellin"`
	StockGuarne        int             `json:"stock_guarne" db:"stock_guarne"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// StockAt retorna las unidades disponibles en una bodega
func (p *Product) StockAt(site Site) int {
	switch site {
	case SiteMedellin:
		return p.StockMedellin
	case SiteGuarne:
		return p.StockGuarne
	}
	return 0
}

// Stock retorna el stock completo como mapa bodega → cantidad
func (p *Product) Stock() map[Site]int {
	return map[Site]int{
		SiteMedellin: p.StockMedellin,
		SiteGuarne:   p.StockGuarne,
	}
}

// CreateProductRequest representa el request para crear un producto
type CreateProductRequest struct {
	Name               string          `json:"name" binding:"required"`
	Category           string          `json:"category" binding:"required"`
	Description        string          `json:"description"`
	ImageURL           string          `json:"image_url"`
	PriceDomestic      decimal.Decimal `json:"price_domestic" binding:"required"`
	PriceDomesticTax   decimal.Decimal `json:"price_domestic_tax"`
	PriceInternational decimal.Decimal `json:"price_international" binding:"required"`
	DiscountMargin     decimal.Decimal `json:"discount_margin"`
	TypeCode           *int            `json:"type_code,omitempty"`
	StockMedellin      int             `json:"stock_medellin"`
	StockGuarne        int             `json:"stock_guarne"`
}

// UpdateProductRequest representa el request para actualizar un producto.
// Solo los campos presentes se modifican.
type UpdateProductRequest struct {
	Name               *string          `json:"name,omitempty"`
	Category           *string          `json:"category,omitempty"`
	Description        *string          `json:"description,omitempty"`
	ImageURL           *string          `json:"image_url,omitempty"`
	PriceDomestic      *decimal.Decimal `json:"price_domestic,omitempty"`
	PriceDomesticTax   *decimal.Decimal `json:"price_domestic_tax,omitempty"`
	PriceInternational *decimal.Decimal `json:"price_international,omitempty"`
	DiscountMargin     *decimal.Decimal `json:"discount_margin,omitempty"`
	TypeCode           *int             `json:"type_code,omitempty"`
	IsActive           *bool            `json:"is_active,omitempty"`
}

// SetStockRequest representa el request para fijar stock absoluto por bodega
type SetStockRequest struct {
	Medellin *int `json:"medellin,omitempty"`
	Guarne   *int `json:"guarne,omitempty"`
}

// AvailableProduct es la proyección del catálogo para un distribuidor:
// precio resuelto según su tier y stock de su bodega. La cuádrupla de
// precios cruda nunca se serializa en esta vista.
type AvailableProduct struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Currency    string          `json:"currency"`
	Stock       int             `json:"stock"`
	TierUsed    PricingTier     `json:"tier_used"`
	Discount    decimal.Decimal `json:"discount_margin"`
}

// WarehouseProduct es la proyección del catálogo para una bodega: solo el
// stock de su propio sitio y los precios que dicha bodega factura.
type WarehouseProduct struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	Category           string           `json:"category"`
	IsActive           bool             `json:"is_active"`
	Stock              map[Site]int     `json:"stock"`
	PriceDomestic      *decimal.Decimal `json:"price_domestic,omitempty"`
	PriceDomesticTax   *decimal.Decimal `json:"price_domestic_tax,omitempty"`
	PriceInternational *decimal.Decimal `json:"price_international,omitempty"`
}
