// Package mmap provides read-only memory mappings of cache files.
//
// On unix platforms files are mapped with mmap(2) through golang.org/x/sys/unix.
// Other platforms fall back to reading the file into a heap buffer so that
// callers can use the same Mapping API everywhere.
//
// The byte slice returned by Mapping.Bytes is only valid until Close.
package mmap
