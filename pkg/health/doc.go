// Package health serves liveness and readiness probes.
//
// Readiness runs every registered check concurrently under one timeout. A failing
// required check makes the probe answer 503; a failing optional check only marks
// the response as degraded:
//
//	http.Handle("/health/ready", health.ReadinessHandler(health.Checks{
//		"redis":        redis.Healthcheck(client),
//		"subscription": subs.Healthcheck(),
//	}, health.WithOptional("subscription")))
//
// Responses are plain text unless ?format=json or an Accept: application/json header is sent.
package health
