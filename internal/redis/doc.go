// Package redis implements the broker and the shared chat state on Redis.
//
// Provides PubSub (room channels, the broadcast channel, and the analysis
// queue) and RoomStore (active-room set, per-room analysis counters, and the
// connected-user counter). All mutations are single Redis commands, so they
// stay atomic across any number of instances.
package redis
