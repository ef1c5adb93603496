package db

import "context"

// InsertDomainEvent appends one event to the durable event log.
func (s *Store) InsertDomainEvent(ctx context.Context, topic, aggregateID string, payload []byte) error {
	_, err := s.Pool.Exec(ctx,
		"INSERT INTO domain_events (topic, aggregate_id, payload) VALUES ($1, $2, $3)",
		topic, aggregateID, payload)
	return err
}

// ListDomainEvents returns recent events for a topic, newest first.
func (s *Store) ListDomainEvents(ctx context.Context, topic string, limit int32) ([]DomainEventRow, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT id, topic, aggregate_id, payload, occurred_at
		 FROM domain_events WHERE topic = $1
		 ORDER BY occurred_at DESC LIMIT $2`,
		topic, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DomainEventRow
	for rows.Next() {
		var r DomainEventRow
		if err := rows.Scan(&r.ID, &r.Topic, &r.AggregateID, &r.Payload, &r.OccurredAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
