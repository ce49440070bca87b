package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/UnicornIn/distribuidores/internal/models"
	"github.com/UnicornIn/distribuidores/internal/stock"
)

const orderColumns = `id, distributor_id, distributor_name, distributor_phone,
	address, notes, tier, currency, subtotal, tax, total, status, created_at`

// OrderRepository maneja las operaciones de base de datos para Order
type OrderRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewOrderRepository crea una nueva instancia del repositorio
func NewOrderRepository(db *DB, logger *logrus.Logger) *OrderRepository {
	return &OrderRepository{
		db:     db,
		logger: logger,
	}
}

// Create persiste un pedido con sus líneas y confirma los descuentos de
// inventario en la misma transacción. Si cualquier descuento falla por
// stock insuficiente, nada queda escrito.
func (r *OrderRepository) Create(order *models.Order, reservations []stock.Reservation) error {
	return r.db.WithTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO orders (
				id, distributor_id, distributor_name, distributor_phone,
				address, notes, tier, currency, subtotal, tax, total, status, created_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
			)
		`,
			order.ID, order.DistributorID, order.DistributorName, order.DistributorPhone,
			order.Address, order.Notes, order.Tier, order.Currency,
			order.Subtotal, order.Tax, order.Total, order.Status, order.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("error creating order: %w", err)
		}

		for _, line := range order.Lines {
			_, err := tx.Exec(`
				INSERT INTO order_lines (
					order_id, line_no, product_id, name, qty,
					unit_price, unit_base, unit_tax, line_total
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			`,
				order.ID, line.LineNo, line.ProductID, line.Name, line.Quantity,
				line.UnitPrice, line.UnitBase, line.UnitTax, line.LineTotal,
			)
			if err != nil {
				return fmt.Errorf("error creating order line: %w", err)
			}
		}

		for _, res := range reservations {
			if err := DecrementStock(tx, res.ProductID, res.Site, res.Quantity); err != nil {
				return err
			}
		}

		return nil
	})
}

func scanOrder(scanner interface{ Scan(...interface{}) error }) (*models.Order, error) {
	var order models.Order
	err := scanner.Scan(
		&order.ID, &order.DistributorID, &order.DistributorName, &order.DistributorPhone,
		&order.Address, &order.Notes, &order.Tier, &order.Currency,
		&order.Subtotal, &order.Tax, &order.Total, &order.Status, &order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByID obtiene un pedido con sus líneas
func (r *OrderRepository) GetByID(id string) (*models.Order, error) {
	order, err := scanOrder(r.db.QueryRowWithTimeout(
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NewEngineError(models.ErrOrderNotFound,
				"pedido %s no encontrado", id)
		}
		return nil, fmt.Errorf("error querying order: %w", err)
	}

	lines, err := r.linesFor(id)
	if err != nil {
		return nil, err
	}
	order.Lines = lines
	return order, nil
}

func (r *OrderRepository) linesFor(orderID string) ([]models.OrderLine, error) {
	rows, err := r.db.QueryWithTimeout(`
		SELECT line_no, product_id, name, qty, unit_price, unit_base, unit_tax, line_total
		FROM order_lines
		WHERE order_id = $1
		ORDER BY line_no
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("error querying order lines: %w", err)
	}
	defer rows.Close()

	var lines []models.OrderLine
	for rows.Next() {
		var line models.OrderLine
		err := rows.Scan(
			&line.LineNo, &line.ProductID, &line.Name, &line.Quantity,
			&line.UnitPrice, &line.UnitBase, &line.UnitTax, &line.LineTotal,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning order line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order lines: %w", err)
	}
	return lines, nil
}

func (r *OrderRepository) listOrders(query string, args ...interface{}) ([]models.Order, error) {
	rows, err := r.db.QueryWithTimeout(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	for i := range orders {
		lines, err := r.linesFor(orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Lines = lines
	}
	return orders, nil
}

// ListAll obtiene todos los pedidos, más recientes primero
func (r *OrderRepository) ListAll() ([]models.Order, error) {
	return r.listOrders(`SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`)
}

// ListByDistributor obtiene los pedidos de un distribuidor
func (r *OrderRepository) ListByDistributor(distributorID string) ([]models.Order, error) {
	return r.listOrders(`
		SELECT `+orderColumns+` FROM orders
		WHERE distributor_id = $1
		ORDER BY created_at DESC
	`, distributorID)
}

// ListBySite obtiene los pedidos que despacha una bodega. La sede se deriva
// del tier capturado: los internacionales salen de guarne, el resto de medellin.
func (r *OrderRepository) ListBySite(site models.Site) ([]models.Order, error) {
	op := "<>"
	if site == models.SiteGuarne {
		op = "="
	}
	query := fmt.Sprintf(`
		SELECT %s FROM orders
		WHERE tier %s $1
		ORDER BY created_at DESC
	`, orderColumns, op)
	return r.listOrders(query, models.TierWithoutTaxInternational)
}

// UpdateStatus avanza el estado de un pedido solo si su estado actual sigue
// siendo el esperado. Retorna falso cuando otro request ganó la carrera y el
// caller debe releer y revalidar.
func (r *OrderRepository) UpdateStatus(id string, from, to models.OrderStatus) (bool, error) {
	result, err := r.db.ExecWithTimeout(`
		UPDATE orders SET status = $1 WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return false, fmt.Errorf("error updating order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error getting rows affected: %w", err)
	}
	return rowsAffected == 1, nil
}

// Recent obtiene los pedidos más recientes
func (r *OrderRepository) Recent(limit int) ([]models.Order, error) {
	return r.listOrders(`
		SELECT `+orderColumns+` FROM orders
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
}

// PopularProducts obtiene los productos con más unidades facturadas en el
// mes en curso
func (r *OrderRepository) PopularProducts(now time.Time, limit int) ([]models.PopularProduct, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	rows, err := r.db.QueryWithTimeout(`
		SELECT l.product_id, l.name, SUM(l.qty) AS units
		FROM order_lines l
		JOIN orders o ON o.id = l.order_id
		WHERE o.status = $1 AND o.created_at >= $2
		GROUP BY l.product_id, l.name
		ORDER BY units DESC
		LIMIT $3
	`, models.StatusInvoiced, monthStart, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying popular products: %w", err)
	}
	defer rows.Close()

	var popular []models.PopularProduct
	for rows.Next() {
		var p models.PopularProduct
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Units); err != nil {
			return nil, fmt.Errorf("error scanning popular product: %w", err)
		}
		popular = append(popular, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating popular products: %w", err)
	}
	return popular, nil
}

// PendingCountBySite cuenta los pedidos en processing que despacha cada bodega
func (r *OrderRepository) PendingCountBySite() (map[models.Site]int, error) {
	rows, err := r.db.QueryWithTimeout(`
		SELECT tier, COUNT(*) FROM orders
		WHERE status = $1
		GROUP BY tier
	`, models.StatusProcessing)
	if err != nil {
		return nil, fmt.Errorf("error querying pending orders: %w", err)
	}
	defer rows.Close()

	pending := map[models.Site]int{
		models.SiteMedellin: 0,
		models.SiteGuarne:   0,
	}
	for rows.Next() {
		var tier models.PricingTier
		var count int
		if err := rows.Scan(&tier, &count); err != nil {
			return nil, fmt.Errorf("error scanning pending count: %w", err)
		}
		pending[tier.Site()] += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending counts: %w", err)
	}
	return pending, nil
}

// MonthlyInvoiced suma el total facturado del mes en curso
func (r *OrderRepository) MonthlyInvoiced(now time.Time) (decimal.Decimal, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var total decimal.Decimal
	err := r.db.QueryRowWithTimeout(`
		SELECT COALESCE(SUM(total), 0) FROM orders
		WHERE status = $1 AND created_at >= $2
	`, models.StatusInvoiced, monthStart).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error querying monthly sales: %w", err)
	}
	return total, nil
}
