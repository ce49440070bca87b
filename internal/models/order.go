package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus representa el estado de un pedido dentro del flujo de despacho
type OrderStatus string

const (
	StatusProcessing OrderStatus = "processing"
	StatusInTransit  OrderStatus = "in_transit"
	StatusInvoiced   OrderStatus = "invoiced"
)

// IsValid verifica que el estado sea uno de los valores conocidos
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusProcessing, StatusInTransit, StatusInvoiced:
		return true
	}
	return false
}

// OrderLine representa una línea de un pedido. Inmutable una vez creada:
// nombre y precios son instantáneas tomadas al momento del pedido.
type OrderLine struct {
	LineNo    int             `json:"line_no" db:"line_no"`
	ProductID string          `json:"product_id" db:"product_id"`
	Name      string          `json:"name" db:"name"`
	Quantity  int             `json:"quantity" db:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`
	UnitBase  decimal.Decimal `json:"unit_base" db:"unit_base"`
	UnitTax   decimal.Decimal `json:"unit_tax" db:"unit_tax"`
	LineTotal decimal.Decimal `json:"line_total" db:"line_total"`
}

// Order representa un pedido de un distribuidor. El tier se captura al
// crear el pedido y no se vuelve a derivar; los totales se calculan una
// sola vez a partir de las líneas almacenadas.
type Order struct {
	ID               string          `json:"id" db:"id"`
	DistributorID    string          `json:"distributor_id" db:"distributor_id"`
	DistributorName  string          `json:"distributor_name" db:"distributor_name"`
	DistributorPhone string          `json:"distributor_phone" db:"distributor_phone"`
	Lines            []OrderLine     `json:"lines"`
	Address          string          `json:"address" db:"address"`
	Notes            string          `json:"notes" db:"notes"`
	Tier             PricingTier     `json:"tier" db:"tier"`
	Currency         string          `json:"currency" db:"currency"`
	Subtotal         decimal.Decimal `json:"subtotal" db:"subtotal"`
	Tax              decimal.Decimal `json:"tax" db:"tax"`
	Total            decimal.Decimal `json:"total" db:"total"`
	Status           OrderStatus     `json:"status" db:"status"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

// Site retorna la bodega que atiende este pedido, derivada del tier capturado
func (o *Order) Site() Site {
	return o.Tier.Site()
}

// CartItem representa una selección producto/cantidad del carrito
type CartItem struct {
	ID       string `json:"id" binding:"required"`
	Quantity int    `json:"quantity"`
}

// CreateOrderRequest representa el request para crear un pedido. El tier
// nunca viene del cliente: se deriva del perfil del distribuidor autenticado.
type CreateOrderRequest struct {
	Cart    []CartItem `json:"cart"`
	Address string     `json:"address"`
	Notes   string     `json:"notes"`
}

// TransitionOrderRequest representa el request para avanzar el estado de un pedido
type TransitionOrderRequest struct {
	TargetState OrderStatus `json:"target_state" binding:"required"`
}

// OrderListResponse representa la respuesta de listados de pedidos
type OrderListResponse struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
}
