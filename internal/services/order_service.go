package services

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/UnicornIn/distribuidores/internal/models"
	"github.com/UnicornIn/distribuidores/internal/orders"
	"github.com/UnicornIn/distribuidores/internal/stock"
)

// CatalogStore es la vista del catálogo que necesita el servicio de pedidos
type CatalogStore interface {
	GetByID(id string) (*models.Product, error)
}

// OrderStore es la persistencia de pedidos que necesita el servicio
type OrderStore interface {
	Create(order *models.Order, reservations []stock.Reservation) error
	GetByID(id string) (*models.Order, error)
	UpdateStatus(id string, from, to models.OrderStatus) (bool, error)
	ListAll() ([]models.Order, error)
	ListByDistributor(distributorID string) ([]models.Order, error)
	ListBySite(site models.Site) ([]models.Order, error)
}

// OrderNotifier recibe el pedido recién creado para notificaciones externas.
// Se invoca fuera del camino crítico; sus errores solo se loguean.
type OrderNotifier interface {
	NotifyOrderCreated(order *models.Order, distributorEmail string) error
}

// OrderService es la fachada de creación y avance de pedidos
type OrderService struct {
	catalog   CatalogStore
	store     OrderStore
	builder   *orders.Builder
	lifecycle *orders.Lifecycle
	locks     *stock.LockMap
	notifiers []OrderNotifier
	logger    *logrus.Logger
}

// NewOrderService crea una nueva instancia del servicio de pedidos
func NewOrderService(catalog CatalogStore, store OrderStore, builder *orders.Builder, locks *stock.LockMap, logger *logrus.Logger, notifiers ...OrderNotifier) *OrderService {
	return &OrderService{
		catalog:   catalog,
		store:     store,
		builder:   builder,
		lifecycle: orders.NewLifecycle(),
		locks:     locks,
		notifiers: notifiers,
		logger:    logger,
	}
}

// Create construye y persiste un pedido para el distribuidor autenticado.
// La secuencia validar-descontar-persistir corre bajo los locks de cada
// (producto, sede) del carrito para que dos pedidos simultáneos por la
// última unidad nunca terminen ambos confirmados.
func (s *OrderService) Create(distributor *models.User, req models.CreateOrderRequest) (*models.Order, error) {
	tier := distributor.PricingTierOrDefault()
	site := tier.Site()

	keys := make([]string, 0, len(req.Cart))
	for _, item := range req.Cart {
		keys = append(keys, stock.Key(item.ID, site))
	}
	release := s.locks.Acquire(keys)
	defer release()

	// Lecturas frescas bajo lock: el stock visto aquí es el que se descuenta.
	// Solo un producto genuinamente inexistente se reporta como ausente; una
	// falla de infraestructura se propaga tal cual, no como "no encontrado".
	fetched := make(map[string]*models.Product, len(req.Cart))
	var lookupErr error
	lookup := func(id string) (*models.Product, bool) {
		if p, ok := fetched[id]; ok {
			return p, true
		}
		p, err := s.catalog.GetByID(id)
		if err != nil {
			var engErr *models.EngineError
			if !errors.As(err, &engErr) || engErr.Kind != models.ErrProductNotFound {
				lookupErr = err
			}
			return nil, false
		}
		fetched[id] = p
		return p, true
	}

	draft, err := s.builder.BuildOrder(distributor, tier, req, lookup)
	if err != nil {
		if lookupErr != nil {
			return nil, lookupErr
		}
		return nil, err
	}

	if err := s.store.Create(draft.Order, draft.Reservations); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":    draft.Order.ID,
		"distributor": draft.Order.DistributorID,
		"tier":        draft.Order.Tier,
		"total":       draft.Order.Total.String(),
		"lines":       len(draft.Order.Lines),
	}).Info("Pedido creado")

	for _, notifier := range s.notifiers {
		go func(n OrderNotifier) {
			if err := n.NotifyOrderCreated(draft.Order, distributor.Email); err != nil {
				s.logger.WithError(err).WithField("order_id", draft.Order.ID).
					Warn("Error notificando pedido creado")
			}
		}(notifier)
	}

	return draft.Order, nil
}

// Transition avanza el estado de un pedido validando rol y tabla de
// transiciones. El UPDATE condicionado al estado leído serializa requests
// concurrentes; si otro request gana la carrera se relee y revalida una vez.
func (s *OrderService) Transition(actor *models.User, orderID string, target models.OrderStatus) (*models.Order, error) {
	order, err := s.store.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	if err := s.lifecycle.CanTransition(order.Status, actor.Role, target); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateStatus(orderID, order.Status, target)
	if err != nil {
		return nil, err
	}
	if !updated {
		order, err = s.store.GetByID(orderID)
		if err != nil {
			return nil, err
		}
		if err := s.lifecycle.CanTransition(order.Status, actor.Role, target); err != nil {
			return nil, err
		}
		updated, err = s.store.UpdateStatus(orderID, order.Status, target)
		if err != nil {
			return nil, err
		}
		if !updated {
			return nil, models.NewEngineError(models.ErrIllegalTransition,
				"el pedido %s cambió de estado durante la operación", orderID)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": orderID,
		"from":     order.Status,
		"to":       target,
		"actor":    actor.Role,
	}).Info("Estado de pedido actualizado")

	return s.store.GetByID(orderID)
}

// List retorna los pedidos visibles para el actor: un distribuidor ve los
// suyos, una bodega los de su sede y los demás roles ven todo.
func (s *OrderService) List(actor *models.User) ([]models.Order, error) {
	switch actor.Role {
	case models.RoleDistributor:
		return s.store.ListByDistributor(actor.ID.String())
	case models.RoleWarehouse:
		site, ok := actor.WarehouseSite()
		if !ok {
			return nil, models.NewEngineError(models.ErrUnauthorized,
				"usuario de bodega sin sede asignada")
		}
		return s.store.ListBySite(site)
	default:
		return s.store.ListAll()
	}
}

// Get retorna un pedido si el actor tiene permiso de verlo
func (s *OrderService) Get(actor *models.User, orderID string) (*models.Order, error) {
	order, err := s.store.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case models.RoleDistributor:
		if order.DistributorID != actor.ID.String() {
			return nil, models.NewEngineError(models.ErrUnauthorized,
				"el pedido %s pertenece a otro distribuidor", orderID)
		}
	case models.RoleWarehouse:
		site, ok := actor.WarehouseSite()
		if !ok || order.Site() != site {
			return nil, models.NewEngineError(models.ErrUnauthorized,
				"el pedido %s no se despacha desde esta sede", orderID)
		}
	}

	return order, nil
}
