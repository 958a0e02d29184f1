// Package session holds the per-browser workspace of the composer: the compose draft,
// the recipient list loaded from the last upload and the state of the latest batch run.
//
// Sessions are identified by an opaque cookie token and persisted through a Store.
// CacheStore adapts any cache.Cache, so the same code runs on the in-memory LRU in
// development and on Redis in production:
//
//	store := session.NewCacheStore(cache.NewRedis(client, cache.JSONMarshaler[session.Session]{},
//		cache.WithPrefix("session:")))
//
// Every value handed out by CacheStore is a deep copy. A batch run works on its own copy
// and saves it after each recipient; request handlers refuse to modify a session while
// its run is in progress.
package session
