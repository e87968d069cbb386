// Package events carries domain events from the services that produce them
// to whatever sinks are configured.
//
// The primary components are:
// - Event: a typed envelope around a JSON payload (see CardReviewed)
// - EventHandler / EventEmitter: the consuming and producing sides
// - InMemoryEventEmitter: synchronous fan-out to registered handlers
// - AsyncEmitter: a bounded queue and worker pool in front of another emitter
package events
