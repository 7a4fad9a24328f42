package store

// Store holds resolved cache values. Get reports ok=false for a missing
// key; Clear drops every value. Implementations may be remote, so every
// operation can fail.
type Store interface {
	Get(key string) (value any, ok bool, err error)
	Set(key string, value any) error
	Clear() error
	ForEach(fn func(key string, value any)) error
	Close() error
}
