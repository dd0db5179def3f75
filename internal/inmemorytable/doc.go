// Package inmemorytable provides a thread-safe, in-memory implementation
// of the tablestore.Store interface. It is suitable for a single process
// where exposing nodes do not need to be persisted.
package inmemorytable
