// Package stock implementa la proyección de inventario por rol y la
// validación de cantidades previa a la reserva.
package stock

import (
	"github.com/UnicornIn/distribuidores/internal/models"
)

// View proyecta y valida inventario según el rol del solicitante
type View struct{}

// NewView crea una nueva instancia de la vista de inventario
func NewView() *View {
	return &View{}
}

// Visible retorna el inventario que un rol puede observar. Un usuario de
// bodega solo ve su propia sede; la otra se reporta en cero. Cualquier
// otro rol ve ambas sedes. Es una proyección de lectura, nunca muta stock.
func (v *View) Visible(role models.Role, site models.Site, product *models.Product) map[models.Site]int {
	full := product.Stock()
	if role != models.RoleWarehouse {
		return full
	}

	visible := map[models.Site]int{
		models.SiteMedellin: 0,
		models.SiteGuarne:   0,
	}
	visible[site] = full[site]
	return visible
}

// Reservation representa una reserva validada pendiente de confirmar.
// Quien la recibe es responsable de confirmar el descuento de inventario
// atómicamente junto con la persistencia del pedido.
type Reservation struct {
	ProductID string
	Site      models.Site
	Quantity  int
}

// ValidateAndReserve valida una cantidad solicitada contra el inventario
// de una sede. Retorna InvalidQuantity si la cantidad no es positiva e
// InsufficientStock si excede lo disponible.
func (v *View) ValidateAndReserve(product *models.Product, site models.Site, requestedQty int) (Reservation, error) {
	if requestedQty <= 0 {
		return Reservation{}, models.NewEngineError(models.ErrInvalidQuantity,
			"cantidad inválida %d para producto %s", requestedQty, product.ID)
	}

	available := product.StockAt(site)
	if requestedQty > available {
		return Reservation{}, models.NewEngineError(models.ErrInsufficientStock,
			"stock insuficiente para %s en %s: disponible %d, solicitado %d",
			product.ID, site, available, requestedQty)
	}

	return Reservation{
		ProductID: product.ID,
		Site:      site,
		Quantity:  requestedQty,
	}, nil
}
