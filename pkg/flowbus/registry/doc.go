// Package registry provides a generic thread-safe, insertion-ordered
// registry for values indexed by key.
//
// flowbus uses it for the registration store (handlers fire in the order
// they were registered), the resolver's capability catalog and its
// matching-set cache, and the Services dependency container.
//
// # Basic Usage
//
//	r := registry.New[string, int]()
//	r.Register("one", 1)
//	r.Register("two", 2)
//
//	r.Keys() // [one two]
//
// Register on an existing key updates the value in place; Insert refuses
// to overwrite and reports whether it stored the value:
//
//	if !r.Insert("one", 10) {
//	    // "one" was already taken
//	}
//
// # Lazy Initialization
//
// GetOrCreate is atomic - the factory function is called at most once per
// key, even under concurrent access:
//
//	set := cache.GetOrCreate(t, func() *TypeSet { return compute(t) })
//
// # Thread Safety
//
// All Registry methods are safe for concurrent use. Range and Filter work
// on a snapshot, so callbacks may mutate the registry:
//
//	r.Range(func(key string, value int) bool {
//	    if value < 0 {
//	        r.Delete(key) // Won't affect current iteration
//	    }
//	    return true
//	})
package registry
