// Package orders implementa la construcción de pedidos y su máquina de
// estados de despacho.
package orders

import (
	"github.com/UnicornIn/distribuidores/internal/models"
)

// transitions es la tabla explícita (estado actual, rol) -> estados permitidos.
// Agregar un rol o estado es editar la tabla, no cambiar el flujo de código.
var transitions = map[models.OrderStatus]map[models.Role][]models.OrderStatus{
	models.StatusProcessing: {
		models.RoleProduction: {models.StatusInTransit},
		models.RoleBilling:    {models.StatusInvoiced},
	},
	models.StatusInTransit: {
		models.RoleBilling: {models.StatusInvoiced},
	},
	models.StatusInvoiced: {},
}

// fulfillmentRoles son los roles con alguna fila en la tabla de transiciones.
// Un rol fuera de este conjunto recibe Unauthorized; un rol del conjunto que
// intenta un par (estado, destino) no permitido recibe IllegalTransition.
var fulfillmentRoles = map[models.Role]bool{
	models.RoleProduction: true,
	models.RoleBilling:    true,
}

// Lifecycle valida transiciones de estado de pedidos según el rol del actor
type Lifecycle struct{}

// NewLifecycle crea una nueva instancia de la máquina de estados
func NewLifecycle() *Lifecycle {
	return &Lifecycle{}
}

// CanTransition verifica si el rol puede llevar un pedido del estado actual
// al destino. No muta el pedido; el caller persiste el nuevo estado.
func (l *Lifecycle) CanTransition(current models.OrderStatus, role models.Role, target models.OrderStatus) error {
	if !fulfillmentRoles[role] {
		return models.NewEngineError(models.ErrUnauthorized,
			"rol %s no puede cambiar estados de pedidos", role)
	}
	if !target.IsValid() {
		return models.NewEngineError(models.ErrIllegalTransition,
			"estado destino desconocido: %s", target)
	}

	for _, allowed := range transitions[current][role] {
		if allowed == target {
			return nil
		}
	}
	return models.NewEngineError(models.ErrIllegalTransition,
		"rol %s no puede pasar un pedido de %s a %s", role, current, target)
}
