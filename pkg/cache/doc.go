// Package cache provides a generic TTL cache with in-memory and Redis backends.
//
// The web session store is built on it: a single instance runs with Memory, a
// horizontally scaled deployment points both replicas at the same Redis.
//
//	var sessions cache.Cache[session.Session] = cache.NewMemory[session.Session](
//		cache.WithDefaultTTL(24*time.Hour),
//		cache.WithMaxEntries(10_000),
//	)
//	if client != nil {
//		sessions = cache.NewRedis[session.Session](client, nil, cache.WithPrefix("session"))
//	}
package cache
