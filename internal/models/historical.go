package models

import "time"

// Historical is a single observed subscriber count for an account.
type Historical struct {
	ID              int64     `json:"id"`
	AccountID       string    `json:"account_id"`
	SubscriberCount int64     `json:"subscriber_count"`
	ObservedAt      time.Time `json:"date"`
}

// Key returns the (account, date) uniqueness key of the observation.
func (h Historical) Key() HistoricalKey {
	return NewHistoricalKey(h.AccountID, h.ObservedAt)
}

// HistoricalKey identifies one observation slot. The time is kept as Unix
// microseconds so keys built from values read back from either store compare
// equal to keys built from freshly parsed input.
type HistoricalKey struct {
	AccountID  string
	ObservedAt int64
}

// NewHistoricalKey builds a HistoricalKey from an account id and timestamp.
func NewHistoricalKey(accountID string, observedAt time.Time) HistoricalKey {
	return HistoricalKey{AccountID: accountID, ObservedAt: observedAt.UTC().UnixMicro()}
}

// CanonicalTime normalizes an observation timestamp to UTC with microsecond
// precision, the precision both stores keep.
func CanonicalTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
