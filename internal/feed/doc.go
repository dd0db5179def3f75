// Package feed connects the runtime to an editor over Socket.IO.
//
// The editor emits one event per change. Each payload names an exposing
// node and carries either a new value, a patch to merge into the current
// value, or a deletion:
//
//	{"name": "x", "value": 6}
//	{"name": "input1", "patch": {"value": "bye"}}
//	{"name": "draft", "delete": true}
//
// Every payload becomes a runtime mutation and triggers one round. When an
// acknowledgement event is configured, the feed answers each round with its
// ID, number and outputs.
package feed
