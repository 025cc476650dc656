package cache

import "time"

// NoopStore is a no-op implementation used when SQLite is not configured.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) Get(_ string, _ time.Duration) ([]byte, bool, error) { return nil, false, nil }
func (n *NoopStore) Put(_ string, _ []byte) error                        { return nil }
func (n *NoopStore) Prune(_ time.Time) (int64, error)                    { return 0, nil }
func (n *NoopStore) Close() error                                        { return nil }
