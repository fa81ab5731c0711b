package cache

import (
	"context"
	"time"
)

// Cache define el contrato de la capa de caché.
// Permite cambiar la implementación (Redis, in-memory) sin tocar los services.
type Cache interface {
	// Get busca una key y hace unmarshal en dest.
	// Returns: (found bool, error)
	// - found = true: cache hit, data ya está en dest
	// - found = false: cache miss, dest queda intacto
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set guarda un valor con TTL
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete elimina keys del caché
	Delete(ctx context.Context, keys ...string) error

	// DeletePattern elimina todas las keys que matcheen el patrón
	DeletePattern(ctx context.Context, pattern string) error

	// Ping verifica la conexión
	Ping(ctx context.Context) error
}
