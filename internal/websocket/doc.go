// Package websocket implements the delivery engine using the actor pattern.
//
// The Hub owns every live client connection and consumes the broker's room
// channel pattern subscription, pushing each message to exactly the members
// of its room (or to everyone for admin broadcasts). Uses single goroutine +
// command channel (no mutexes on connection state). Per-connection write
// goroutines handle slow clients gracefully.
package websocket
