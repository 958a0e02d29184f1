// Package subscription fetches the list of unsubscribed addresses from a remote endpoint.
//
// The endpoint answers GET requests with {"emails": [...]}. Any non-2xx status,
// network failure or malformed body is reported as a *TransportError, which the
// campaign processor treats as fatal for the whole run:
//
//	client := subscription.New(cfg.Subscription, subscription.WithLogger(log))
//	set, err := client.FetchUnsubscribed(ctx)
//	if err != nil {
//		return err // errors.Is(err, subscription.ErrTransport)
//	}
//	if set.Contains("ann@example.com") {
//		// skip
//	}
//
// Results are never cached. Concurrent fetches share one in-flight request.
package subscription
