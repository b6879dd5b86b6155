// Package server implements the HTTP and WebSocket surface using Echo.
//
// Routes: message ingress (/chatrooms), admin (broadcast, metrics, analysis
// snapshots), the client WebSocket (/ws), and observability (health,
// Prometheus). Handlers split by concern: handlers_api.go, handlers_ws.go,
// handlers_health.go.
package server
