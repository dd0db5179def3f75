// Package runtime drives evaluation rounds over a set of bindings.
//
// A binding is a named node whose value the application consumes. Each call
// to Round applies the mutations queued since the previous round, takes a
// snapshot of the exposing table, evaluates the bindings affected by what
// changed and collects the follow-up mutations those bindings request.
//
// Follow-up mutations are never applied inside the round that produced them.
// They are returned in RoundResult.Pending and applied at the start of the
// next round, so a round always observes one consistent table.
package runtime
