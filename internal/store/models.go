package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ablomov/remindd/internal/domain"
)

// Row encodings: the enabled set and preferred times are stored as JSON,
// quiet hours as nullable minutes-since-midnight columns.

func encodeEnabled(enabled map[domain.Category]bool) (string, error) {
	var list []domain.Category
	for _, c := range domain.Categories() {
		if enabled[c] {
			list = append(list, c)
		}
	}
	b, err := json.Marshal(list)
	return string(b), err
}

func decodeEnabled(s string) (map[domain.Category]bool, error) {
	var list []domain.Category
	if err := json.Unmarshal([]byte(s), &list); err != nil {
		return nil, err
	}
	enabled := make(map[domain.Category]bool, len(list))
	for _, c := range list {
		enabled[c] = true
	}
	return enabled, nil
}

func encodeTimes(times map[domain.Category]domain.ClockTime) (string, error) {
	m := make(map[domain.Category]string, len(times))
	for c, t := range times {
		m[c] = t.String()
	}
	b, err := json.Marshal(m)
	return string(b), err
}

func decodeTimes(s string) (map[domain.Category]domain.ClockTime, error) {
	var m map[domain.Category]string
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, err
	}
	times := make(map[domain.Category]domain.ClockTime, len(m))
	for c, v := range m {
		t, err := domain.ParseClock(v)
		if err != nil {
			return nil, fmt.Errorf("category %s: %w", c, err)
		}
		times[c] = t
	}
	return times, nil
}

func quietToNull(q *domain.QuietHours) (from, to sql.NullInt64) {
	if q == nil {
		return sql.NullInt64{}, sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(q.Start.Minutes()), Valid: true},
		sql.NullInt64{Int64: int64(q.End.Minutes()), Valid: true}
}

func quietFromNull(from, to sql.NullInt64) *domain.QuietHours {
	if !from.Valid || !to.Valid {
		return nil
	}
	return &domain.QuietHours{
		Start: domain.ClockFromMinutes(int(from.Int64)),
		End:   domain.ClockFromMinutes(int(to.Int64)),
	}
}
