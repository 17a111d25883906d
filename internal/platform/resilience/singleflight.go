package resilience

import "golang.org/x/sync/singleflight"

// Group is a typed singleflight.Group. Callers that arrive while a call for
// the same key is in flight wait for it and receive its result.
type Group[V any] struct {
	g singleflight.Group
}

// Do runs fn once per key at a time. shared is true when the result went to
// more than one caller.
func (g *Group[V]) Do(key string, fn func() (V, error)) (V, error, bool) {
	v, err, shared := g.g.Do(key, func() (any, error) {
		return fn()
	})
	out, _ := v.(V)
	return out, err, shared
}

// Forget drops key so the next Do starts a fresh call.
func (g *Group[V]) Forget(key string) {
	g.g.Forget(key)
}
