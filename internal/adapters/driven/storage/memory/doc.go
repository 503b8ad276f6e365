// Package memory provides in-memory implementations of the driven store
// ports. Carts kept here live for the lifetime of the process.
package memory
