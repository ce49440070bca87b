package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/UnicornIn/distribuidores/internal/database"
	"github.com/UnicornIn/distribuidores/internal/models"
	"github.com/UnicornIn/distribuidores/internal/services"
)

// API maneja todos los endpoints de la API
type API struct {
	productService *services.ProductService
	orderService   *services.OrderService
	statsService   *services.StatsService
	userRepo       *database.UserRepository
	logger         *logrus.Logger
}

// NewAPI crea una nueva instancia de la API
func NewAPI(
	productService *services.ProductService,
	orderService *services.OrderService,
	statsService *services.StatsService,
	userRepo *database.UserRepository,
	logger *logrus.Logger,
) *API {
	return &API{
		productService: productService,
		orderService:   orderService,
		statsService:   statsService,
		userRepo:       userRepo,
		logger:         logger,
	}
}

// writeEngineError mapea los errores tipados del motor a códigos HTTP.
// Solo esta capa conoce HTTP; el motor retorna kinds.
func (api *API) writeEngineError(c *gin.Context, err error) {
	var engineErr *models.EngineError
	if !errors.As(err, &engineErr) {
		api.logger.WithError(err).Error("Error interno procesando request")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Internal error"))
		return
	}

	switch engineErr.Kind {
	case models.ErrProductNotFound, models.ErrOrderNotFound:
		c.JSON(http.StatusNotFound, models.NewNotFoundError(engineErr.Message))
	case models.ErrProductUnavailable, models.ErrInsufficientStock, models.ErrIllegalTransition:
		c.JSON(http.StatusConflict, models.NewConflictError(engineErr.Message))
	case models.ErrInvalidQuantity, models.ErrEmptyOrder, models.ErrMissingAddress:
		c.JSON(http.StatusBadRequest, models.NewValidationError(engineErr.Message, nil))
	case models.ErrUnauthorized:
		c.JSON(http.StatusForbidden, models.NewForbiddenError(engineErr.Message))
	default:
		api.logger.WithError(err).Error("Error del motor sin mapeo HTTP")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Internal error"))
	}
}

// GetAvailableProducts retorna el catálogo vendible para el distribuidor
// autenticado con precios resueltos por su tier
func (api *API) GetAvailableProducts(c *gin.Context) {
	user := currentUser(c)

	available, err := api.productService.Available(user)
	if err != nil {
		api.writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": available, "total": len(available)})
}

// GetWarehouseCatalog retorna el catálogo con el stock visible para el rol
func (api *API) GetWarehouseCatalog(c *gin.Context) {
	user := currentUser(c)

	projection, err := api.productService.ForWarehouse(user)
	if err != nil {
		api.writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": projection, "total": len(projection)})
}

// GetProducts retorna el catálogo completo con la cuádrupla de precios
func (api *API) GetProducts(c *gin.Context) {
	products, err := api.productService.ListAll()
	if err != nil {
		api.writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products, "total": len(products)})
}

// GetProduct retorna un producto por ID
func (api *API) GetProduct(c *gin.Context) {
	product, err := api.productService.Get(c.Param("id"))
	if err != nil {
		api.writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// CreateProduct crea un nuevo producto
func (api *API) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	product, err := api.productService.Create(&req)
	if err != nil {
		api.writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// UpdateProduct aplica una actualización parcial a un producto
func (api *API) UpdateProduct(c *gin.Context) {
	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	product, err := api.productService.Update(c.Param("id"), &req)
	if err != nil {
		api.writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// SetProductStock fija stock absoluto por bodega
func (api *API) SetProductStock(c *gin.Context) {
	var req models.SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	product, err := api.productService.SetStock(c.Param("id"), &req)
	if err != nil {
		api.writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct marca un producto como inactivo
func (api *API) DeleteProduct(c *gin.Context) {
	if err := api.productService.Delete(c.Param("id")); err != nil {
		api.writeEngineError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateOrder crea un pedido para el distribuidor autenticado. El tier
// nunca viene del request; se deriva del perfil del usuario.
func (api *API) CreateOrder(c *gin.Context) {
	user := currentUser(c)

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	order, err := api.orderService.Create(user, req)
	if err != nil {
		api.writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// ListOrders retorna los pedidos visibles para el actor autenticado
func (api *API) ListOrders(c *gin.Context) {
	user := currentUser(c)

	orders, err := api.orderService.List(user)
	if err != nil {
		api.writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.OrderListResponse{Orders: orders, Total: len(orders)})
}

// GetOrder retorna un pedido si el actor puede verlo
func (api *API) GetOrder(c *gin.Context) {
	user := currentUser(c)

	order, err := api.orderService.Get(user, c.Param("id"))
	if err != nil {
		api.writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// TransitionOrder avanza el estado de un pedido según el rol del actor
func (api *API) TransitionOrder(c *gin.Context) {
	user := currentUser(c)

	var req models.TransitionOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	order, err := api.orderService.Transition(user, c.Param("id"), req.TargetState)
	if err != nil {
		api.writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// GetDashboard retorna el resumen operativo del panel
func (api *API) GetDashboard(c *gin.Context) {
	stats, err := api.statsService.Dashboard()
	if err != nil {
		api.writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetRecentOrders retorna los últimos pedidos recibidos
func (api *API) GetRecentOrders(c *gin.Context) {
	orders, err := api.statsService.RecentOrders()
	if err != nil {
		api.writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetPopularProducts retorna los productos con más unidades pedidas
func (api *API) GetPopularProducts(c *gin.Context) {
	popular, err := api.statsService.PopularProducts()
	if err != nil {
		api.writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": popular})
}

// CreateUser crea un usuario del sistema
func (api *API) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	if req.Role == models.RoleWarehouse && (req.Site == nil || !req.Site.IsValid()) {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Warehouse users require a valid site", []models.ErrorDetail{
			{Field: "site", Issue: "Must be medellin or guarne"},
		}))
		return
	}
	if req.Tier != nil && !req.Tier.IsValid() {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid pricing tier", []models.ErrorDetail{
			{Field: "tier", Issue: "Must be without_tax, with_tax or without_tax_international"},
		}))
		return
	}

	user, err := api.userRepo.CreateUser(&req)
	if err != nil {
		api.writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// ListUsers retorna todos los usuarios
func (api *API) ListUsers(c *gin.Context) {
	users, err := api.userRepo.ListUsers()
	if err != nil {
		api.writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "total": len(users)})
}

// CreateAPIKey emite una API key para un usuario
func (api *API) CreateAPIKey(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid user ID", []models.ErrorDetail{
			{Field: "id", Issue: "Must be a valid UUID"},
		}))
		return
	}

	var req models.CreateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	if _, err := api.userRepo.GetUserByID(userID); err != nil {
		c.JSON(http.StatusNotFound, models.NewNotFoundError("User not found"))
		return
	}

	keyModel, plainKey, err := api.userRepo.CreateAPIKey(userID, req.Name)
	if err != nil {
		api.writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.CreateAPIKeyResponse{
		ID:     keyModel.ID.String(),
		APIKey: plainKey,
	})
}

// DeactivateAPIKey desactiva una API key
func (api *API) DeactivateAPIKey(c *gin.Context) {
	keyID, err := uuid.Parse(c.Param("keyId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid API key ID", []models.ErrorDetail{
			{Field: "keyId", Issue: "Must be a valid UUID"},
		}))
		return
	}

	if err := api.userRepo.DeactivateAPIKey(keyID); err != nil {
		c.JSON(http.StatusNotFound, models.NewNotFoundError("API key not found"))
		return
	}

	c.Status(http.StatusNoContent)
}
