package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UnicornIn/distribuidores/internal/models"
)

func requireKind(t *testing.T, err error, kind models.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	var engineErr *models.EngineError
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, kind, engineErr.Kind)
}

func TestCanTransitionAllowedPairs(t *testing.T) {
	l := NewLifecycle()

	assert.NoError(t, l.CanTransition(models.StatusProcessing, models.RoleProduction, models.StatusInTransit))
	assert.NoError(t, l.CanTransition(models.StatusProcessing, models.RoleBilling, models.StatusInvoiced))
	assert.NoError(t, l.CanTransition(models.StatusInTransit, models.RoleBilling, models.StatusInvoiced))
}

func TestCanTransitionSweepFromProcessing(t *testing.T) {
	l := NewLifecycle()

	targets := []models.OrderStatus{models.StatusProcessing, models.StatusInTransit, models.StatusInvoiced}
	for _, target := range targets {
		for _, role := range []models.Role{models.RoleProduction, models.RoleBilling} {
			err := l.CanTransition(models.StatusProcessing, role, target)
			allowed := (role == models.RoleProduction && target == models.StatusInTransit) ||
				(role == models.RoleBilling && target == models.StatusInvoiced)
			if allowed {
				assert.NoError(t, err, "%s -> %s por %s", models.StatusProcessing, target, role)
			} else {
				requireKind(t, err, models.ErrIllegalTransition)
			}
		}
	}
}

func TestCanTransitionRolesWithoutPermission(t *testing.T) {
	l := NewLifecycle()

	for _, role := range []models.Role{models.RoleAdmin, models.RoleDistributor, models.RoleWarehouse} {
		err := l.CanTransition(models.StatusProcessing, role, models.StatusInTransit)
		requireKind(t, err, models.ErrUnauthorized)
	}
}

func TestCanTransitionInvoicedIsTerminal(t *testing.T) {
	l := NewLifecycle()

	targets := []models.OrderStatus{models.StatusProcessing, models.StatusInTransit, models.StatusInvoiced}
	for _, role := range []models.Role{models.RoleProduction, models.RoleBilling} {
		for _, target := range targets {
			err := l.CanTransition(models.StatusInvoiced, role, target)
			requireKind(t, err, models.ErrIllegalTransition)
		}
	}
}

func TestCanTransitionProductionCannotInvoiceInTransit(t *testing.T) {
	l := NewLifecycle()

	err := l.CanTransition(models.StatusInTransit, models.RoleProduction, models.StatusInvoiced)
	requireKind(t, err, models.ErrIllegalTransition)
}

func TestCanTransitionUnknownTarget(t *testing.T) {
	l := NewLifecycle()

	err := l.CanTransition(models.StatusProcessing, models.RoleProduction, models.OrderStatus("cancelled"))
	requireKind(t, err, models.ErrIllegalTransition)
}
