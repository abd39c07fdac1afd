// Package broadcast implements the shop status broadcaster using the actor pattern.
//
// One goroutine owns the connection set and the write path into the status store; transport
// goroutines talk to it over a command channel. New clients get the current snapshot before
// anything else, and every accepted update is fanned out to all connected clients.
// Per-connection writer goroutines isolate slow or broken sockets.
package broadcast
