package entity

// CachedEntry is a value written to the cache together with its write time.
// Timestamps are epoch milliseconds.
type CachedEntry[T any] struct {
	Timestamp      int64  `json:"timestamp"`
	ExpirationTime *int64 `json:"expirationTime,omitempty"`
	Data           T      `json:"data"`
}
