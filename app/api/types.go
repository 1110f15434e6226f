package api

import (
	"github.com/lysyi3m/quote-relay/app/database"
	"github.com/lysyi3m/quote-relay/app/feed"
	"github.com/lysyi3m/quote-relay/app/tasks"
)

type GeneratorInterface interface {
	Run(deliveries []database.Delivery) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

// Pinger reports database reachability; *database.DB implements it.
type Pinger interface {
	Ping() error
}

var _ Pinger = (*database.DB)(nil)

type Handler struct {
	db           Pinger
	stateRepo    database.StateRepository
	deliveryRepo database.DeliveryRepository
	scheduler    tasks.TaskSchedulerInterface
	generator    GeneratorInterface
	feedSize     int
	chatID       int64
}
