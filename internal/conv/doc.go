// Package conv converts between integer widths with bounds checks.
//
// It is used where counts come from untrusted bytes (archive section
// headers) or where a growing buffer must stay addressable by uint32 offsets
// (CSR row pointers). Conversions that are safe by construction use plain
// casts.
package conv
