package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/ordergateway/internal/domain"
)

// orderRepositoryInMemory: потокобезопасное in-memory хранилище заказов.
type orderRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Order
}

// NewOrderRepository возвращает пустое in-memory хранилище.
func NewOrderRepository() domain.OrderRepository {
	return &orderRepositoryInMemory{
		items: make(map[string]domain.Order),
	}
}

// Save вставляет или заменяет заказ целиком. Побеждает последняя запись.
func (r *orderRepositoryInMemory) Save(order *domain.Order) (*domain.Order, error) {
	if order == nil || order.OrderID == "" {
		return nil, domain.ErrInvalidArgument
	}

	// Храним копию, чтобы вызывающий не мог менять запись в обход Save.
	stored := *order

	r.mu.Lock()
	r.items[stored.OrderID] = stored
	r.mu.Unlock()

	return &stored, nil
}

func (r *orderRepositoryInMemory) FindByID(id string) (domain.Order, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	return order, ok
}

// FindAll возвращает снимок всех заказов, отсортированный по OrderID.
func (r *orderRepositoryInMemory) FindAll() []domain.Order {
	return r.collect(func(domain.Order) bool { return true })
}

func (r *orderRepositoryInMemory) FindByStatus(status domain.OrderStatus) []domain.Order {
	return r.collect(func(o domain.Order) bool { return o.Status == status })
}

func (r *orderRepositoryInMemory) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}

func (r *orderRepositoryInMemory) ExistsByID(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.items[id]
	return ok
}

func (r *orderRepositoryInMemory) DeleteByID(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, id)
}

func (r *orderRepositoryInMemory) collect(match func(domain.Order) bool) []domain.Order {
	r.mu.RLock()
	result := make([]domain.Order, 0, len(r.items))
	for _, order := range r.items {
		if match(order) {
			result = append(result, order)
		}
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].OrderID < result[j].OrderID
	})
	return result
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
