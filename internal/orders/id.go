package orders

import (
	"fmt"
	"sync"
	"time"
)

const (
	idPrefix        = "PED-"
	idTimestampSize = 14 // YYYYMMDDHHmmss
)

// IDGenerator emite identificadores de pedido ordenables por fecha con el
// formato PED-YYYYMMDDHHmmss. Cuando varios pedidos caen en el mismo segundo
// se agrega un sufijo -N para mantener la unicidad.
type IDGenerator struct {
	mu       sync.Mutex
	now      func() time.Time
	last     string
	sequence int
}

// NewIDGenerator crea un nuevo generador de identificadores de pedido
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// Next emite el siguiente identificador de pedido
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	stamp := g.now().Format("20060102150405")
	if stamp == g.last {
		g.sequence++
		return fmt.Sprintf("%s%s-%d", idPrefix, stamp, g.sequence)
	}

	g.last = stamp
	g.sequence = 0
	return idPrefix + stamp
}

// IsCanonical reporta si un identificador sigue el formato PED-YYYYMMDDHHmmss.
// Los identificadores legados que no lo siguen se aceptan tal cual en el
// resto del sistema; nunca se reformatean.
func IsCanonical(id string) bool {
	if len(id) < len(idPrefix)+idTimestampSize || id[:len(idPrefix)] != idPrefix {
		return false
	}
	for _, c := range id[len(idPrefix) : len(idPrefix)+idTimestampSize] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
