// Package events decouples services from the background task machinery.
//
// A service that wants work done asynchronously (for example generating an
// insight after a memory is captured) emits a TaskRequestEvent instead of
// constructing a task directly. Handlers registered on the emitter turn
// those events into concrete tasks. This keeps the service layer free of
// task package imports and avoids circular dependencies.
package events
