package bonddb

// Database is the flat key-value store the ledger persists its records in.
// Implementations must be safe for concurrent use.
//
// Get returns (nil, nil) when the key is absent so that callers can treat
// missing records as empty without inspecting driver-specific errors.
type Database interface {
	Put(key []byte, value []byte) error
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Delete(key []byte) error
	Close()
}
