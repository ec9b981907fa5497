package core

type (
	// KeyValueLoader reads whole collections out of shared storage.
	KeyValueLoader interface {
		// Load decodes the value stored under key into v. When the key does
		// not exist, v is left untouched so the caller-provided value acts as
		// the default.
		Load(key string, v interface{}) error
	}

	// KeyValueStore is the persistence collaborator shared by every process of
	// the same installation. Values are whole collections; writes replace the
	// stored value wholesale (last-write-wins per key, see Update).
	KeyValueStore interface {
		KeyValueLoader

		Save(key string, v interface{}) error

		// Update re-reads the latest persisted value under key into v (not any
		// in-memory cached copy), then calls apply and persists the result.
		// This read-before-write step is what keeps concurrent processes from
		// composing updates on top of stale snapshots; it does not merge
		// concurrent edits within the same collection.
		Update(key string, v interface{}, apply func() error) error

		// Watch registers fn to run whenever another process writes key.
		Watch(key string, fn func())

		Close() error
	}
)
