package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/UnicornIn/distribuidores/internal/models"
	"github.com/UnicornIn/distribuidores/internal/pricing"
	"github.com/UnicornIn/distribuidores/internal/stock"
)

// ProductStore es la persistencia de catálogo que necesita el servicio
type ProductStore interface {
	Create(req *models.CreateProductRequest) (*models.Product, error)
	GetByID(id string) (*models.Product, error)
	List() ([]models.Product, error)
	ListActive() ([]models.Product, error)
	Update(id string, req *models.UpdateProductRequest) (*models.Product, error)
	SetStock(id string, req *models.SetStockRequest) (*models.Product, error)
	Delete(id string) error
}

// CatalogCache es la caché de proyecciones del catálogo. Puede ser nil;
// sin caché todas las lecturas van a la base de datos.
type CatalogCache interface {
	Get(key string) (string, error)
	SetWithTTL(key string, value interface{}, ttl time.Duration) error
	Delete(key string) error
}

// ProductService maneja el catálogo y sus proyecciones por rol
type ProductService struct {
	store    ProductStore
	cache    CatalogCache
	cacheTTL time.Duration
	resolver *pricing.Resolver
	view     *stock.View
	logger   *logrus.Logger
}

// NewProductService crea una nueva instancia del servicio de catálogo
func NewProductService(store ProductStore, cache CatalogCache, cacheTTL time.Duration, logger *logrus.Logger) *ProductService {
	return &ProductService{
		store:    store,
		cache:    cache,
		cacheTTL: cacheTTL,
		resolver: pricing.NewResolver(),
		view:     stock.NewView(),
		logger:   logger,
	}
}

func availableCacheKey(tier models.PricingTier) string {
	return fmt.Sprintf("catalog:available:%s", tier)
}

// Available retorna el catálogo vendible para un distribuidor: solo productos
// activos, con el precio resuelto según su tier y el stock de su sede. La
// cuádrupla de precios cruda nunca sale de esta proyección.
func (s *ProductService) Available(distributor *models.User) ([]models.AvailableProduct, error) {
	tier := distributor.PricingTierOrDefault()
	site := tier.Site()

	if s.cache != nil {
		if cached, err := s.cache.Get(availableCacheKey(tier)); err == nil && cached != "" {
			var projection []models.AvailableProduct
			if err := json.Unmarshal([]byte(cached), &projection); err == nil {
				return projection, nil
			}
		}
	}

	products, err := s.store.ListActive()
	if err != nil {
		return nil, err
	}

	projection := make([]models.AvailableProduct, 0, len(products))
	for i := range products {
		product := &products[i]
		quote, err := s.resolver.Resolve(tier, product)
		if err != nil {
			// Un producto inactivo colado en el listado se omite, no tumba la vista
			continue
		}
		projection = append(projection, models.AvailableProduct{
			ID:          product.ID,
			Name:        product.Name,
			Category:    product.Category,
			Description: product.Description,
			ImageURL:    product.ImageURL,
			UnitPrice:   quote.UnitPrice,
			Currency:    quote.Currency,
			Stock:       product.StockAt(site),
			TierUsed:    tier,
			Discount:    product.DiscountMargin,
		})
	}

	if s.cache != nil {
		if payload, err := json.Marshal(projection); err == nil {
			if err := s.cache.SetWithTTL(availableCacheKey(tier), payload, s.cacheTTL); err != nil {
				s.logger.WithError(err).Warn("Error guardando catálogo en caché")
			}
		}
	}

	return projection, nil
}

// ForWarehouse retorna el catálogo con el stock visible para el rol: una
// bodega solo observa su sede, la otra se reporta en cero. Cada bodega ve
// solo los precios que factura: los domésticos en medellin, el
// internacional en guarne. Un admin ve los tres.
func (s *ProductService) ForWarehouse(actor *models.User) ([]models.WarehouseProduct, error) {
	site, ok := actor.WarehouseSite()
	if actor.Role == models.RoleWarehouse && !ok {
		return nil, models.NewEngineError(models.ErrUnauthorized,
			"usuario de bodega sin sede asignada")
	}

	products, err := s.store.List()
	if err != nil {
		return nil, err
	}

	projection := make([]models.WarehouseProduct, 0, len(products))
	for i := range products {
		product := &products[i]
		wp := models.WarehouseProduct{
			ID:       product.ID,
			Name:     product.Name,
			Category: product.Category,
			IsActive: product.IsActive,
			Stock:    s.view.Visible(actor.Role, site, product),
		}
		switch {
		case actor.Role == models.RoleAdmin:
			wp.PriceDomestic = &product.PriceDomestic
			wp.PriceDomesticTax = &product.PriceDomesticTax
			wp.PriceInternational = &product.PriceInternational
		case site == models.SiteGuarne:
			wp.PriceInternational = &product.PriceInternational
		default:
			wp.PriceDomestic = &product.PriceDomestic
			wp.PriceDomesticTax = &product.PriceDomesticTax
		}
		projection = append(projection, wp)
	}
	return projection, nil
}

// Get retorna un producto completo; solo para roles administrativos
func (s *ProductService) Get(id string) (*models.Product, error) {
	return s.store.GetByID(id)
}

// ListAll retorna el catálogo completo con la cuádrupla de precios
func (s *ProductService) ListAll() ([]models.Product, error) {
	return s.store.List()
}

// Create crea un producto e invalida las proyecciones cacheadas
func (s *ProductService) Create(req *models.CreateProductRequest) (*models.Product, error) {
	product, err := s.store.Create(req)
	if err != nil {
		return nil, err
	}
	s.invalidateCache()

	s.logger.WithFields(logrus.Fields{
		"product_id": product.ID,
		"name":       product.Name,
	}).Info("Producto creado")

	return product, nil
}

// Update aplica una actualización parcial e invalida las proyecciones cacheadas
func (s *ProductService) Update(id string, req *models.UpdateProductRequest) (*models.Product, error) {
	product, err := s.store.Update(id, req)
	if err != nil {
		return nil, err
	}
	s.invalidateCache()
	return product, nil
}

// SetStock fija stock absoluto por bodega e invalida las proyecciones cacheadas
func (s *ProductService) SetStock(id string, req *models.SetStockRequest) (*models.Product, error) {
	product, err := s.store.SetStock(id, req)
	if err != nil {
		return nil, err
	}
	s.invalidateCache()
	return product, nil
}

// Delete marca un producto como inactivo e invalida las proyecciones cacheadas
func (s *ProductService) Delete(id string) error {
	if err := s.store.Delete(id); err != nil {
		return err
	}
	s.invalidateCache()
	return nil
}

func (s *ProductService) invalidateCache() {
	if s.cache == nil {
		return
	}
	for _, tier := range []models.PricingTier{
		models.TierWithoutTax,
		models.TierWithTax,
		models.TierWithoutTaxInternational,
	} {
		if err := s.cache.Delete(availableCacheKey(tier)); err != nil {
			s.logger.WithError(err).Warn("Error invalidando caché de catálogo")
		}
	}
}
