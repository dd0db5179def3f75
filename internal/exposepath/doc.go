// internal/exposepath/doc.go

/*
Package exposepath provides a structured representation for dependency
paths: the dotted, optionally indexed addresses through which an expression
reads an exposing node, e.g. `table1.data[0].name`.

The first segment always names the exposing node. Further segments descend
into its value. Two paths are related when one is a prefix of the other,
which is how the runtime decides whether a change to one exposing value
affects a consumer.
*/
package exposepath
