package stock

import (
	"fmt"
	"sort"
	"sync"

	"github.com/UnicornIn/distribuidores/internal/models"
)

// LockMap mantiene un mutex por clave (producto, sede). Serializa las
// secuencias reservar-descontar-persistir para que dos pedidos simultáneos
// por la última unidad nunca dejen inventario negativo.
type LockMap struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLockMap crea un nuevo mapa de locks por producto y sede
func NewLockMap() *LockMap {
	return &LockMap{
		locks: make(map[string]*sync.Mutex),
	}
}

// Key construye la clave de lock para un producto en una sede
func Key(productID string, site models.Site) string {
	return fmt.Sprintf("%s:%s", productID, site)
}

func (lm *LockMap) lockFor(key string) *sync.Mutex {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	l, ok := lm.locks[key]
	if !ok {
		l = &sync.Mutex{}
		lm.locks[key] = l
	}
	return l
}

// Acquire toma los locks de todas las claves dadas. Las claves se ordenan
// y deduplican antes de adquirir para evitar deadlocks entre pedidos que
// comparten productos. Retorna la función que libera en orden inverso.
func (lm *LockMap) Acquire(keys []string) func() {
	unique := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			unique = append(unique, k)
		}
	}
	sort.Strings(unique)

	held := make([]*sync.Mutex, 0, len(unique))
	for _, k := range unique {
		l := lm.lockFor(k)
		l.Lock()
		held = append(held, l)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
