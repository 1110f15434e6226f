package database

import (
	"time"
)

type DeliverySource string

const (
	DeliverySourcePoll   DeliverySource = "poll"
	DeliverySourceRandom DeliverySource = "random"
)

type Delivery struct {
	ID          int64
	QuoteNumber int
	Text        string
	Source      DeliverySource
	ChatID      int64
	DeliveredAt time.Time
}

type DeliveryStats struct {
	Total  int
	Poll   int
	Random int
}
