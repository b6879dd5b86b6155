// Package chat provides the application service layer.
//
// Orchestrates the ingress and read-path use cases: message submission, admin
// broadcasts, room listings, and the metrics/analysis snapshots. Sits between
// HTTP handlers and the broker/state components. Depends on domain
// interfaces, not concrete implementations.
package chat
