package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type DeliveryStore struct {
	db *DB
}

func NewDeliveryStore(db *DB) *DeliveryStore {
	return &DeliveryStore{db: db}
}

func (s *DeliveryStore) RecordDelivery(delivery Delivery) error {
	deliveredAt := delivery.DeliveredAt
	if deliveredAt.IsZero() {
		deliveredAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO deliveries (quote_number, text, source, chat_id, delivered_at)
		VALUES (?, ?, ?, ?, ?)
	`, delivery.QuoteNumber, delivery.Text, string(delivery.Source), delivery.ChatID, deliveredAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to record delivery: %w", err)
	}

	return nil
}

func (s *DeliveryStore) GetDeliveryStats() (DeliveryStats, error) {
	var stats DeliveryStats
	err := s.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN source = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN source = ? THEN 1 ELSE 0 END), 0)
		FROM deliveries
	`, string(DeliverySourcePoll), string(DeliverySourceRandom)).Scan(&stats.Total, &stats.Poll, &stats.Random)
	if err != nil {
		return DeliveryStats{}, fmt.Errorf("failed to get delivery stats: %w", err)
	}

	return stats, nil
}

// GetLastDelivery returns nil when nothing has been delivered yet.
func (s *DeliveryStore) GetLastDelivery() (*Delivery, error) {
	var d Delivery
	var source string
	var deliveredAt int64

	err := s.db.QueryRow(`
		SELECT id, quote_number, text, source, chat_id, delivered_at
		FROM deliveries
		ORDER BY delivered_at DESC, id DESC
		LIMIT 1
	`).Scan(&d.ID, &d.QuoteNumber, &d.Text, &source, &d.ChatID, &deliveredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last delivery: %w", err)
	}

	d.Source = DeliverySource(source)
	d.DeliveredAt = time.Unix(0, deliveredAt).UTC()

	return &d, nil
}

// GetRecentDeliveries returns up to limit deliveries from source, newest first.
func (s *DeliveryStore) GetRecentDeliveries(source DeliverySource, limit int) ([]Delivery, error) {
	rows, err := s.db.Query(`
		SELECT id, quote_number, text, source, chat_id, delivered_at
		FROM deliveries
		WHERE source = ?
		ORDER BY delivered_at DESC, id DESC
		LIMIT ?
	`, string(source), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query deliveries: %w", err)
	}
	defer rows.Close()

	deliveries := make([]Delivery, 0, limit)
	for rows.Next() {
		var d Delivery
		var src string
		var deliveredAt int64

		if err := rows.Scan(&d.ID, &d.QuoteNumber, &d.Text, &src, &d.ChatID, &deliveredAt); err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}

		d.Source = DeliverySource(src)
		d.DeliveredAt = time.Unix(0, deliveredAt).UTC()
		deliveries = append(deliveries, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate deliveries: %w", err)
	}

	return deliveries, nil
}
