package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	apprecipe "github.com/jhoicas/Restaurante-api/internal/application/recipe"
	"github.com/jhoicas/Restaurante-api/internal/domain/repository"
	"github.com/jhoicas/Restaurante-api/pkg/logger"
)

// Cache es el puerto del caché TTL en memoria. La ausencia de una clave
// siempre significa "recalcular", nunca "no disponible".
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	InvalidatePrefix(prefix string)
}

// MenuAvailability disponibilidad de un plato para el listado de carta.
type MenuAvailability struct {
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Available  bool            `json:"available"`
}

// Service responde "¿se puede hacer este plato ahora?" para listados de carta.
// Es una capa de optimización puramente consultiva: el pre-chequeo del camino
// de mutación del fulfillment nunca pasa por aquí, y cualquier fallo de lectura
// degrada a "asumir disponible" en vez de bloquear el listado.
type Service struct {
	menuRepo repository.MenuItemRepository
	resolver *apprecipe.Resolver
	cache    Cache
	ttl      time.Duration
	log      *logger.Logger
}

// NewService construye el servicio de disponibilidad. ttl típico: decenas de segundos.
func NewService(menuRepo repository.MenuItemRepository, resolver *apprecipe.Resolver, cache Cache, ttl time.Duration, log *logger.Logger) *Service {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Service{menuRepo: menuRepo, resolver: resolver, cache: cache, ttl: ttl, log: log}
}

// keyPrefix delimita todas las claves de disponibilidad de un restaurante.
func keyPrefix(restaurantID string) string {
	return fmt.Sprintf("avail:%s:", restaurantID)
}

func itemKey(restaurantID, menuItemID string) string {
	return keyPrefix(restaurantID) + menuItemID
}

// InvalidateRestaurant borra toda la disponibilidad cacheada del restaurante.
// Implementa el puerto de invalidación que usan fulfillment, purchase y recetas.
func (s *Service) InvalidateRestaurant(restaurantID string) {
	s.cache.InvalidatePrefix(keyPrefix(restaurantID))
}

// ListMenuAvailability enriquece el listado de platos activos con su
// disponibilidad actual, usando el caché por plato.
func (s *Service) ListMenuAvailability(ctx context.Context, restaurantID string, limit, offset int) ([]MenuAvailability, error) {
	items, err := s.menuRepo.ListActive(ctx, restaurantID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]MenuAvailability, 0, len(items))
	for _, item := range items {
		avail := s.itemAvailable(ctx, restaurantID, item.ID, item.TrackInventory, item.Amount)
		out = append(out, MenuAvailability{
			MenuItemID: item.ID,
			Name:       item.Name,
			Price:      item.Price,
			Available:  avail,
		})
	}
	return out, nil
}

// CheckItem responde la disponibilidad consultiva de un solo plato.
func (s *Service) CheckItem(ctx context.Context, restaurantID, menuItemID string) (bool, error) {
	item, err := s.menuRepo.GetByID(ctx, menuItemID, restaurantID)
	if err != nil {
		return false, err
	}
	if item == nil {
		return false, nil
	}
	return s.itemAvailable(ctx, restaurantID, item.ID, item.TrackInventory, item.Amount), nil
}

func (s *Service) itemAvailable(ctx context.Context, restaurantID, menuItemID string, trackInventory bool, amount decimal.Decimal) bool {
	key := itemKey(restaurantID, menuItemID)
	if v, ok := s.cache.Get(key); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	avail := true
	if trackInventory && !amount.GreaterThan(decimal.Zero) {
		avail = false
	} else {
		ok, err := s.resolver.CheckAvailable(ctx, menuItemID, restaurantID, 1)
		if err != nil {
			// Lectura fallida: degradar a disponible, nunca bloquear el listado.
			s.log.Warn().Err(err).Str("menu_item_id", menuItemID).Msg("disponibilidad degradada a true por error de lectura")
			return true
		}
		avail = ok
	}
	s.cache.Set(key, avail, s.ttl)
	return avail
}
