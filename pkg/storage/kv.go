package storage

// KVStore is the persistence contract the pipeline is written against.
// Values are JSON documents; any backend that can hold small JSON blobs
// under string keys satisfies it.
type KVStore interface {
	// Get returns the value for key, with found=false when the key is absent.
	Get(key string) (value []byte, found bool, err error)
	// Set writes the value for key, overwriting blindly. Immutability policy
	// lives above this contract, in the BaselineRepository.
	Set(key string, value []byte) error
	// Keys returns every key with the given prefix, sorted ascending.
	Keys(prefix string) ([]string, error)
}
