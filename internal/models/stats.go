package models

import "github.com/shopspring/decimal"

// PopularProduct representa un producto con sus unidades facturadas acumuladas
type PopularProduct struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Units     int    `json:"units"`
}

// DashboardStats representa el resumen operativo del panel de administración
type DashboardStats struct {
	TotalProducts   int             `json:"total_products"`
	LowStock        []Product       `json:"low_stock"`
	OutOfStock      []Product       `json:"out_of_stock"`
	PendingBySite   map[Site]int    `json:"pending_by_site"`
	MonthlyInvoiced decimal.Decimal `json:"monthly_invoiced"`
}
