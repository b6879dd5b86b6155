// Package analysis implements the asynchronous message analysis pipeline.
//
// The Worker consumes the analysis channel independently of message delivery:
// for each message it classifies mood and safety, substituting deterministic
// fallback labels when the classifier fails or times out, then increments the
// per-room counters atomically. A slow classifier never stalls fan-out, and a
// failed classification never stops the loop.
package analysis
