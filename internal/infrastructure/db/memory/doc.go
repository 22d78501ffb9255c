// Package memory is the volatile Entity Store. Each repository guards its
// map with a single mutex so every read, create and conditional update is
// atomic, and hands out copies so callers never share stored values.
package memory
