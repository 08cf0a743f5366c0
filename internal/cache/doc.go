// Package cache stores synthesized audio in a byte-bounded in-memory LRU
// backed by an optional zstd-compressed disk tier.
package cache
