// Package value reads and writes model trees built from map[string]any,
// []any and scalars. Writes are copy-on-write: Set and Remove return a new
// root and leave the input, and every subtree off the written path, untouched.
package value
