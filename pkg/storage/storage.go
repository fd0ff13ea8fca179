// Package storage provides the persistent key-value store the preference
// cache lives in. The interface mirrors a browser localStorage surface:
// synchronous string get/set under fixed keys.
package storage

// Store is the persistent client-side key-value store.
type Store interface {
	// GetItem returns the stored value and whether the key was present.
	GetItem(key string) (string, bool)
	// SetItem stores the value, replacing any previous one.
	SetItem(key, value string) error
}
