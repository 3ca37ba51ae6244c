// Package state owns the schema tree, the form data and the UI state of a
// form builder session. Every mutation goes through Store; every accessor
// returns a deep copy so callers can never alias the owned state. Changes are
// announced per topic to subscribers, synchronously and in registration
// order.
package state
