// Package middleware provides the net/http middleware stacked in front of the
// viewer router.
//
// This package includes:
//   - Prometheus request and instance metrics
//   - OpenTelemetry server spans
//   - A verbose per-request log line
//
// # Prometheus Metrics
//
// Metrics are registered on an explicit registerer so several registries can
// coexist in one process (tests, embedded use):
//
//	m := middleware.NewMetrics(middleware.WithRegistry(reg))
//	handler := m.Handler(router)
//
// Collected series:
//   - modelview_requests_total: requests by route class, method and status
//   - modelview_request_duration_seconds: handling time by route class
//   - modelview_response_bytes_total: body bytes written by route class
//   - modelview_active_instances: instances currently serving
//   - modelview_instance_transitions_total: lifecycle transitions by target state
//
// Expose them on a separate listener with promhttp.HandlerFor.
//
// # OpenTelemetry
//
// Tracing starts one server span per request using the global tracer
// provider unless WithTracerProvider is given. The span context is attached to
// the request context, so handlers can call SpanFromContext.
package middleware
