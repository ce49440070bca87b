package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UnicornIn/distribuidores/internal/models"
)

type fakeProductStore struct {
	products []models.Product
	updated  map[string]*models.UpdateProductRequest
}

func (f *fakeProductStore) Create(req *models.CreateProductRequest) (*models.Product, error) {
	product := models.Product{
		ID:                 "P099",
		Name:               req.Name,
		Category:           req.Category,
		PriceDomestic:      req.PriceDomestic,
		PriceInternational: req.PriceInternational,
		TaxRate:            models.DomesticTaxRate,
		IsActive:           true,
		StockMedellin:      req.StockMedellin,
		StockGuarne:        req.StockGuarne,
	}
	f.products = append(f.products, product)
	return &product, nil
}

func (f *fakeProductStore) GetByID(id string) (*models.Product, error) {
	for i := range f.products {
		if f.products[i].ID == id {
			return &f.products[i], nil
		}
	}
	return nil, models.NewEngineError(models.ErrProductNotFound, "producto %s no encontrado", id)
}

func (f *fakeProductStore) List() ([]models.Product, error) {
	return f.products, nil
}

func (f *fakeProductStore) ListActive() ([]models.Product, error) {
	var active []models.Product
	for _, p := range f.products {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return active, nil
}

func (f *fakeProductStore) Update(id string, req *models.UpdateProductRequest) (*models.Product, error) {
	if f.updated == nil {
		f.updated = make(map[string]*models.UpdateProductRequest)
	}
	f.updated[id] = req
	return f.GetByID(id)
}

func (f *fakeProductStore) SetStock(id string, req *models.SetStockRequest) (*models.Product, error) {
	p, err := f.GetByID(id)
	if err != nil {
		return nil, err
	}
	if req.Medellin != nil {
		p.StockMedellin = *req.Medellin
	}
	if req.Guarne != nil {
		p.StockGuarne = *req.Guarne
	}
	return p, nil
}

func (f *fakeProductStore) Delete(id string) error {
	p, err := f.GetByID(id)
	if err != nil {
		return err
	}
	p.IsActive = false
	return nil
}

type fakeCache struct {
	entries map[string]string
	sets    int
	deletes int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]string)}
}

func (c *fakeCache) Get(key string) (string, error) {
	return c.entries[key], nil
}

func (c *fakeCache) SetWithTTL(key string, value interface{}, _ time.Duration) error {
	c.sets++
	c.entries[key] = string(value.([]byte))
	return nil
}

func (c *fakeCache) Delete(key string) error {
	c.deletes++
	delete(c.entries, key)
	return nil
}

func catalogStore() *fakeProductStore {
	return &fakeProductStore{products: []models.Product{
		{
			ID:                 "P001",
			Name:               "Shampoo Reparador 500ml",
			Category:           "capilar",
			PriceDomestic:      decimal.NewFromInt(10000),
			PriceInternational: decimal.RequireFromString("4.20"),
			TaxRate:            models.DomesticTaxRate,
			IsActive:           true,
			StockMedellin:      50,
			StockGuarne:        12,
		},
		{
			ID:                 "P002",
			Name:               "Tratamiento Capilar 300ml",
			Category:           "capilar",
			PriceDomestic:      decimal.NewFromInt(25500),
			PriceInternational: decimal.RequireFromString("9.99"),
			TaxRate:            models.DomesticTaxRate,
			IsActive:           false,
			StockMedellin:      5,
			StockGuarne:        5,
		},
	}}
}

func newTestProductService(store *fakeProductStore, cache CatalogCache) *ProductService {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewProductService(store, cache, time.Minute, logger)
}

func tierDistributor(tier models.PricingTier) *models.User {
	return &models.User{ID: uuid.New(), Role: models.RoleDistributor, Tier: &tier}
}

func TestAvailableResolvesPriceAndSiteStock(t *testing.T) {
	svc := newTestProductService(catalogStore(), nil)

	available, err := svc.Available(tierDistributor(models.TierWithTax))
	require.NoError(t, err)

	// Solo el producto activo aparece en el catálogo vendible
	require.Len(t, available, 1)
	p := available[0]
	assert.Equal(t, "P001", p.ID)
	assert.True(t, p.UnitPrice.Equal(decimal.NewFromInt(11900)))
	assert.Equal(t, "COP", p.Currency)
	assert.Equal(t, 50, p.Stock, "tier doméstico despacha desde medellin")
	assert.Equal(t, models.TierWithTax, p.TierUsed)
}

func TestAvailableInternationalUsesGuarneStock(t *testing.T) {
	svc := newTestProductService(catalogStore(), nil)

	available, err := svc.Available(tierDistributor(models.TierWithoutTaxInternational))
	require.NoError(t, err)

	require.Len(t, available, 1)
	assert.True(t, available[0].UnitPrice.Equal(decimal.RequireFromString("4.20")))
	assert.Equal(t, "USD", available[0].Currency)
	assert.Equal(t, 12, available[0].Stock)
}

func TestAvailableCachesProjectionPerTier(t *testing.T) {
	cache := newFakeCache()
	svc := newTestProductService(catalogStore(), cache)
	distributor := tierDistributor(models.TierWithTax)

	first, err := svc.Available(distributor)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	second, err := svc.Available(distributor)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets, "la segunda lectura sale de la caché")
	assert.Equal(t, len(first), len(second))
	assert.True(t, first[0].UnitPrice.Equal(second[0].UnitPrice))
}

func TestMutationsInvalidateCache(t *testing.T) {
	cache := newFakeCache()
	store := catalogStore()
	svc := newTestProductService(store, cache)

	_, err := svc.Available(tierDistributor(models.TierWithTax))
	require.NoError(t, err)
	require.Equal(t, 1, cache.sets)

	isActive := true
	_, err = svc.Update("P002", &models.UpdateProductRequest{IsActive: &isActive})
	require.NoError(t, err)
	assert.Equal(t, 3, cache.deletes, "se invalida la proyección de cada tier")
	assert.Empty(t, cache.entries)
}

func TestForWarehouseHidesOtherSite(t *testing.T) {
	svc := newTestProductService(catalogStore(), nil)
	guarneSite := models.SiteGuarne
	warehouse := &models.User{ID: uuid.New(), Role: models.RoleWarehouse, Site: &guarneSite}

	projection, err := svc.ForWarehouse(warehouse)
	require.NoError(t, err)

	require.Len(t, projection, 2)
	assert.Equal(t, 0, projection[0].Stock[models.SiteMedellin])
	assert.Equal(t, 12, projection[0].Stock[models.SiteGuarne])
	assert.Nil(t, projection[0].PriceDomestic, "guarne no ve precios domésticos")
	require.NotNil(t, projection[0].PriceInternational)
	assert.True(t, projection[0].PriceInternational.Equal(decimal.RequireFromString("4.20")))
}

func TestForWarehouseMedellinSeesDomesticPrices(t *testing.T) {
	svc := newTestProductService(catalogStore(), nil)
	medellinSite := models.SiteMedellin
	warehouse := &models.User{ID: uuid.New(), Role: models.RoleWarehouse, Site: &medellinSite}

	projection, err := svc.ForWarehouse(warehouse)
	require.NoError(t, err)

	require.Len(t, projection, 2)
	require.NotNil(t, projection[0].PriceDomestic)
	assert.True(t, projection[0].PriceDomestic.Equal(decimal.NewFromInt(10000)))
	require.NotNil(t, projection[0].PriceDomesticTax)
	assert.Nil(t, projection[0].PriceInternational, "medellin no ve el precio internacional")
}

func TestForWarehouseAdminSeesEverything(t *testing.T) {
	svc := newTestProductService(catalogStore(), nil)
	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}

	projection, err := svc.ForWarehouse(admin)
	require.NoError(t, err)

	require.Len(t, projection, 2)
	assert.Equal(t, 50, projection[0].Stock[models.SiteMedellin])
	assert.Equal(t, 12, projection[0].Stock[models.SiteGuarne])
	require.NotNil(t, projection[0].PriceDomestic)
	assert.True(t, projection[0].PriceDomestic.Equal(decimal.NewFromInt(10000)))
}

func TestDeleteSoftDeletes(t *testing.T) {
	store := catalogStore()
	svc := newTestProductService(store, nil)

	require.NoError(t, svc.Delete("P001"))

	available, err := svc.Available(tierDistributor(models.TierWithTax))
	require.NoError(t, err)
	assert.Empty(t, available)

	// El producto sigue existiendo para vistas administrativas
	p, err := svc.Get("P001")
	require.NoError(t, err)
	assert.False(t, p.IsActive)
}
