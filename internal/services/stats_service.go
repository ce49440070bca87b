package services

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/UnicornIn/distribuidores/internal/models"
)

// lowStockThreshold es el tope de unidades totales para considerar un
// producto escaso en el panel
const lowStockThreshold = 40

// StatsProductStore son las consultas de inventario que alimenta el panel
type StatsProductStore interface {
	CountActive() (int, error)
	LowStock(threshold int) ([]models.Product, error)
	OutOfStock() ([]models.Product, error)
}

// StatsOrderStore son las consultas de pedidos que alimenta el panel
type StatsOrderStore interface {
	PendingCountBySite() (map[models.Site]int, error)
	MonthlyInvoiced(now time.Time) (decimal.Decimal, error)
	Recent(limit int) ([]models.Order, error)
	PopularProducts(now time.Time, limit int) ([]models.PopularProduct, error)
}

// StatsService arma el resumen operativo del panel de administración
type StatsService struct {
	products StatsProductStore
	orders   StatsOrderStore
	logger   *logrus.Logger
}

// NewStatsService crea una nueva instancia del servicio de estadísticas
func NewStatsService(products StatsProductStore, orders StatsOrderStore, logger *logrus.Logger) *StatsService {
	return &StatsService{
		products: products,
		orders:   orders,
		logger:   logger,
	}
}

// Dashboard retorna el resumen del panel: total de productos activos,
// productos escasos y agotados, pedidos pendientes por sede y ventas
// facturadas del mes en curso
func (s *StatsService) Dashboard() (*models.DashboardStats, error) {
	totalProducts, err := s.products.CountActive()
	if err != nil {
		return nil, err
	}

	lowStock, err := s.products.LowStock(lowStockThreshold)
	if err != nil {
		return nil, err
	}

	outOfStock, err := s.products.OutOfStock()
	if err != nil {
		return nil, err
	}

	pending, err := s.orders.PendingCountBySite()
	if err != nil {
		return nil, err
	}

	monthly, err := s.orders.MonthlyInvoiced(time.Now().UTC())
	if err != nil {
		return nil, err
	}

	return &models.DashboardStats{
		TotalProducts:   totalProducts,
		LowStock:        lowStock,
		OutOfStock:      outOfStock,
		PendingBySite:   pending,
		MonthlyInvoiced: monthly,
	}, nil
}

// RecentOrders retorna los últimos pedidos recibidos
func (s *StatsService) RecentOrders() ([]models.Order, error) {
	return s.orders.Recent(5)
}

// PopularProducts retorna los productos con más unidades facturadas en el
// mes en curso
func (s *StatsService) PopularProducts() ([]models.PopularProduct, error) {
	return s.orders.PopularProducts(time.Now().UTC(), 5)
}
