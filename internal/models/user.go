package models

import (
	"time"

	"github.com/google/uuid"
)

// Role representa el rol de un usuario dentro del sistema
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleDistributor Role = "distributor"
	RoleProduction  Role = "production"
	RoleBilling     Role = "billing"
	RoleWarehouse   Role = "warehouse"
)

// Site representa una bodega física con inventario independiente
type Site string

const (
	SiteMedellin Site = "medellin"
	SiteGuarne   Site = "guarne"
)

// IsValid verifica que el sitio sea una bodega conocida
func (s Site) IsValid() bool {
	return s == SiteMedellin || s == SiteGuarne
}

// PricingTier representa la clasificación comercial de un distribuidor.
// Determina la columna de precio base y si se aplica IVA doméstico.
type PricingTier string

const (
	TierWithoutTax              PricingTier = "without_tax"
	TierWithTax                 PricingTier = "with_tax"
	TierWithoutTaxInternational PricingTier = "without_tax_international"
)

// IsValid verifica que el tier sea uno de los valores conocidos
func (t PricingTier) IsValid() bool {
	switch t {
	case TierWithoutTax, TierWithTax, TierWithoutTaxInternational:
		return true
	}
	return false
}

// Site retorna la bodega que despacha pedidos de este tier
func (t PricingTier) Site() Site {
	if t == TierWithoutTaxInternational {
		return SiteGuarne
	}
	return SiteMedellin
}

// User representa un usuario del sistema (admin, distribuidor o personal interno)
type User struct {
	ID        uuid.UUID    `json:"id" db:"id"`
	Name      string       `json:"name" db:"name"`
	Email     string       `json:"email" db:"email"`
	Phone     string       `json:"phone" db:"phone"`
	Role      Role         `json:"role" db:"role"`
	Site      *Site        `json:"site,omitempty" db:"site"`
	Tier      *PricingTier `json:"tier,omitempty" db:"tier"`
	IsActive  bool         `json:"is_active" db:"is_active"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}

// WarehouseSite retorna la bodega asignada al usuario, o falso si no tiene
func (u *User) WarehouseSite() (Site, bool) {
	if u.Site == nil {
		return "", false
	}
	return *u.Site, true
}

// PricingTierOrDefault retorna el tier del distribuidor; con_iva por defecto
// para cuentas antiguas sin tier configurado.
func (u *User) PricingTierOrDefault() PricingTier {
	if u.Tier == nil {
		return TierWithTax
	}
	return *u.Tier
}

// APIKey representa una credencial de acceso asociada a un usuario
type APIKey struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	Name       string     `json:"name" db:"name"`
	KeyHash    string     `json:"-" db:"key_hash"`
	IsActive   bool       `json:"is_active" db:"is_active"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty" db:"last_used_at"`
}

// CreateUserRequest representa el request para crear un usuario
type CreateUserRequest struct {
	Name  string       `json:"name" binding:"required"`
	Email string       `json:"email" binding:"required,email"`
	Phone string       `json:"phone" binding:"required"`
	Role  Role         `json:"role" binding:"required,oneof=admin distributor production billing warehouse"`
	Site  *Site        `json:"site,omitempty"`
	Tier  *PricingTier `json:"tier,omitempty"`
}

// CreateAPIKeyRequest representa el request para emitir una API key
type CreateAPIKeyRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateAPIKeyResponse incluye la clave en claro, visible solo al emitirla
type CreateAPIKeyResponse struct {
	ID     string `json:"id"`
	APIKey string `json:"api_key"`
}
