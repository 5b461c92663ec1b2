// Package events carries notifications from review sessions to whatever is
// rendering them.
//
// A session publishes an Event on every state change (card shown, success
// recorded, record failed, exited). The CLI re-renders from these events and
// the HTTP layer logs them. The primary components are:
// - Event: a typed notification with a JSON payload
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
package events
