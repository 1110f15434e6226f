package database

// StateRepository persists the delivery cursor between polls and restarts.
type StateRepository interface {
	GetCursor() (int, error)
	SetCursor(value int) error
}

type DeliveryRepository interface {
	RecordDelivery(delivery Delivery) error
	GetDeliveryStats() (DeliveryStats, error)
	GetLastDelivery() (*Delivery, error)
	GetRecentDeliveries(source DeliverySource, limit int) ([]Delivery, error)
}

var (
	_ StateRepository    = (*StateStore)(nil)
	_ DeliveryRepository = (*DeliveryStore)(nil)
)
