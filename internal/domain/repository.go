package domain

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Save вставляет или полностью заменяет заказ по OrderID и возвращает сохранённую копию.
	// Возвращает ErrInvalidArgument, если заказ nil или без идентификатора.
	Save(order *Order) (*Order, error)
	// FindByID возвращает заказ и признак его наличия.
	FindByID(id string) (Order, bool)
	// FindAll возвращает снимок всех заказов.
	FindAll() []Order
	// FindByStatus возвращает заказы с указанным статусом.
	FindByStatus(status OrderStatus) []Order
	// Count возвращает число заказов без построения снимка.
	Count() int
	// ExistsByID сообщает, есть ли заказ с таким идентификатором.
	ExistsByID(id string) bool
	// DeleteByID удаляет заказ; отсутствие записи не считается ошибкой.
	DeleteByID(id string)
}
