// Package interp blends two full-state documents into the intermediate
// states used for transition frames.
package interp
