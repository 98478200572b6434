// Package persistence stores CSR matrices in a compact columnar archive.
//
// An archive holds four named arrays: data (float32), indices (uint32),
// indptr (uint32) and shape (two int64 values). Every array is stored as a
// section with its element count, its stored byte length and a CRC32C of the
// uncompressed bytes; sections may be LZ4 or ZSTD block compressed. A CRC32C
// footer covers the whole file.
//
// Layout (little-endian):
//
//	header   magic "XMC1" | version u16 | compression u8 | sections u8 | reserved [8]
//	section  name len u8 | name | kind u8 | count u64 | stored len u64 | crc u32 | payload
//	footer   crc32c of all preceding bytes u32
//
// Decoding failures are reported as *CacheCorruptError, which callers treat
// as a cache miss. Files are written through a temporary file and a rename so
// that readers never observe a partial archive.
package persistence
