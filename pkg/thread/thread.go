// Package thread locks graphics work to the main OS thread.
// A GL context is current on exactly one thread, so every call that touches
// the context has to go through Call once Wrap is running.
// See: https://github.com/golang/go/wiki/LockOSThread
package thread

import "github.com/faiface/mainthread"

// Wrap runs f and serves Call requests on the main thread.
// Wrap returns when f finishes.
func Wrap(f func()) { mainthread.Run(f) }

// Call queues f on the main thread and blocks until f finishes.
func Call(f func()) { mainthread.Call(f) }

// CallErr is Call for functions that return an error.
func CallErr(f func() error) error { return mainthread.CallErr(f) }
