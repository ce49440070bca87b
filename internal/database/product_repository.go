package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/UnicornIn/distribuidores/internal/models"
)

const productColumns = `id, name, category, description, image_url,
	price_domestic, price_domestic_tax, price_international, tax_rate,
	discount_margin, type_code, is_active, stock_medellin, stock_guarne,
	created_at, updated_at`

// ProductRepository maneja las operaciones de base de datos para Product
type ProductRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewProductRepository crea una nueva instancia del repositorio
func NewProductRepository(db *DB, logger *logrus.Logger) *ProductRepository {
	return &ProductRepository{
		db:     db,
		logger: logger,
	}
}

func scanProduct(scanner interface{ Scan(...interface{}) error }) (*models.Product, error) {
	var product models.Product
	err := scanner.Scan(
		&product.ID, &product.Name, &product.Category, &product.Description,
		&product.ImageURL, &product.PriceDomestic, &product.PriceDomesticTax,
		&product.PriceInternational, &product.TaxRate, &product.DiscountMargin,
		&product.TypeCode, &product.IsActive, &product.StockMedellin,
		&product.StockGuarne, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Create crea un nuevo producto con el siguiente identificador secuencial P###.
// El cálculo del consecutivo y la inserción corren en la misma transacción.
func (r *ProductRepository) Create(req *models.CreateProductRequest) (*models.Product, error) {
	taxRate := models.DomesticTaxRate
	priceDomesticTax := req.PriceDomesticTax
	if priceDomesticTax.IsZero() {
		priceDomesticTax = req.PriceDomestic.Mul(decimal.NewFromInt(1).Add(taxRate)).Round(0)
	}

	now := time.Now().UTC()
	product := &models.Product{
		Name:               req.Name,
		Category:           req.Category,
		Description:        req.Description,
		ImageURL:           req.ImageURL,
		PriceDomestic:      req.PriceDomestic,
		PriceDomesticTax:   priceDomesticTax,
		PriceInternational: req.PriceInternational,
		TaxRate:            taxRate,
		DiscountMargin:     req.DiscountMargin,
		TypeCode:           req.TypeCode,
		IsActive:           true,
		StockMedellin:      req.StockMedellin,
		StockGuarne:        req.StockGuarne,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err := r.db.WithTransaction(func(tx *sql.Tx) error {
		var lastSeq int
		err := tx.QueryRow(`
			SELECT COALESCE(MAX(CAST(SUBSTRING(id FROM 2) AS INTEGER)), 0)
			FROM products
			WHERE id ~ '^P[0-9]+$'
		`).Scan(&lastSeq)
		if err != nil {
			return fmt.Errorf("error getting next product sequence: %w", err)
		}
		product.ID = fmt.Sprintf("P%03d", lastSeq+1)

		_, err = tx.Exec(`
			INSERT INTO products (
				id, name, category, description, image_url,
				price_domestic, price_domestic_tax, price_international, tax_rate,
				discount_margin, type_code, is_active, stock_medellin, stock_guarne,
				created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
			)
		`,
			product.ID, product.Name, product.Category, product.Description,
			product.ImageURL, product.PriceDomestic, product.PriceDomesticTax,
			product.PriceInternational, product.TaxRate, product.DiscountMargin,
			product.TypeCode, product.IsActive, product.StockMedellin,
			product.StockGuarne, product.CreatedAt, product.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("error creating product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

// GetByID obtiene un producto por ID, incluyendo inactivos. Quien consume
// decide si un producto inactivo es vendible.
func (r *ProductRepository) GetByID(id string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRowWithTimeout(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NewEngineError(models.ErrProductNotFound,
				"producto %s no encontrado", id)
		}
		return nil, fmt.Errorf("error querying product: %w", err)
	}
	return product, nil
}

// List obtiene todos los productos, activos e inactivos
func (r *ProductRepository) List() ([]models.Product, error) {
	return r.list(`SELECT ` + productColumns + ` FROM products ORDER BY id`)
}

// ListActive obtiene los productos activos del catálogo
func (r *ProductRepository) ListActive() ([]models.Product, error) {
	return r.list(`SELECT ` + productColumns + ` FROM products WHERE is_active = true ORDER BY id`)
}

func (r *ProductRepository) list(query string, args ...interface{}) ([]models.Product, error) {
	rows, err := r.db.QueryWithTimeout(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning product: %w", err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}

// Update aplica una actualización parcial a un producto
func (r *ProductRepository) Update(id string, req *models.UpdateProductRequest) (*models.Product, error) {
	sets := []string{"updated_at = $1"}
	args := []interface{}{time.Now().UTC()}

	appendSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.Name != nil {
		appendSet("name", *req.Name)
	}
	if req.Category != nil {
		appendSet("category", *req.Category)
	}
	if req.Description != nil {
		appendSet("description", *req.Description)
	}
	if req.ImageURL != nil {
		appendSet("image_url", *req.ImageURL)
	}
	if req.PriceDomestic != nil {
		appendSet("price_domestic", *req.PriceDomestic)
	}
	if req.PriceDomesticTax != nil {
		appendSet("price_domestic_tax", *req.PriceDomesticTax)
	}
	if req.PriceInternational != nil {
		appendSet("price_international", *req.PriceInternational)
	}
	if req.DiscountMargin != nil {
		appendSet("discount_margin", *req.DiscountMargin)
	}
	if req.TypeCode != nil {
		appendSet("type_code", *req.TypeCode)
	}
	if req.IsActive != nil {
		appendSet("is_active", *req.IsActive)
	}

	args = append(args, id)
	query := "UPDATE products SET "
	for i, s := range sets {
		if i > 0 {
			query += ", "
		}
		query += s
	}
	query += fmt.Sprintf(" WHERE id = $%d", len(args))

	result, err := r.db.ExecWithTimeout(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error updating product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, models.NewEngineError(models.ErrProductNotFound,
			"producto %s no encontrado", id)
	}

	return r.GetByID(id)
}

// SetStock fija valores absolutos de stock por bodega
func (r *ProductRepository) SetStock(id string, req *models.SetStockRequest) (*models.Product, error) {
	sets := []string{"updated_at = $1"}
	args := []interface{}{time.Now().UTC()}

	if req.Medellin != nil {
		args = append(args, *req.Medellin)
		sets = append(sets, fmt.Sprintf("stock_medellin = $%d", len(args)))
	}
	if req.Guarne != nil {
		args = append(args, *req.Guarne)
		sets = append(sets, fmt.Sprintf("stock_guarne = $%d", len(args)))
	}

	args = append(args, id)
	query := "UPDATE products SET "
	for i, s := range sets {
		if i > 0 {
			query += ", "
		}
		query += s
	}
	query += fmt.Sprintf(" WHERE id = $%d", len(args))

	result, err := r.db.ExecWithTimeout(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error setting stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, models.NewEngineError(models.ErrProductNotFound,
			"producto %s no encontrado", id)
	}

	return r.GetByID(id)
}

// Delete marca un producto como inactivo
func (r *ProductRepository) Delete(id string) error {
	result, err := r.db.ExecWithTimeout(`
		UPDATE products SET is_active = false, updated_at = $1 WHERE id = $2
	`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("error deleting product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.NewEngineError(models.ErrProductNotFound,
			"producto %s no encontrado", id)
	}
	return nil
}

// DecrementStock descuenta unidades de una bodega dentro de una transacción.
// La condición stock >= cantidad en el WHERE garantiza que el stock nunca
// queda negativo aunque dos pedidos concurrentes pidan la última unidad.
func DecrementStock(tx *sql.Tx, productID string, site models.Site, qty int) error {
	column := "stock_medellin"
	if site == models.SiteGuarne {
		column = "stock_guarne"
	}

	query := fmt.Sprintf(`
		UPDATE products
		SET %s = %s - $1, updated_at = $2
		WHERE id = $3 AND %s >= $1
	`, column, column, column)

	result, err := tx.Exec(query, qty, time.Now().UTC(), productID)
	if err != nil {
		return fmt.Errorf("error decrementing stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.NewEngineError(models.ErrInsufficientStock,
			"stock insuficiente para %s en %s", productID, site)
	}
	return nil
}

// CountActive cuenta los productos activos del catálogo
func (r *ProductRepository) CountActive() (int, error) {
	var count int
	err := r.db.QueryRowWithTimeout(`
		SELECT COUNT(*) FROM products WHERE is_active = true
	`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting products: %w", err)
	}
	return count, nil
}

// LowStock obtiene productos activos con stock total entre 1 y el umbral
func (r *ProductRepository) LowStock(threshold int) ([]models.Product, error) {
	return r.list(`
		SELECT `+productColumns+`
		FROM products
		WHERE is_active = true
		  AND stock_medellin + stock_guarne BETWEEN 1 AND $1
		ORDER BY stock_medellin + stock_guarne ASC
	`, threshold)
}

// OutOfStock obtiene productos activos sin unidades en ninguna bodega
func (r *ProductRepository) OutOfStock() ([]models.Product, error) {
	return r.list(`
		SELECT ` + productColumns + `
		FROM products
		WHERE is_active = true AND stock_medellin + stock_guarne = 0
		ORDER BY id
	`)
}
