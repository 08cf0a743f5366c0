package cache

import "github.com/charmbracelet/log"

// Tiered is a memory cache in front of an optional disk cache.
type Tiered struct {
	memory *MemoryCache
	disk   *DiskCache
}

// Config configures a Tiered cache.
type Config struct {
	MemoryCapacity int64  // bytes
	DiskCapacity   int64  // bytes; zero disables the disk tier
	Dir            string // disk tier directory
	Compression    int    // zstd level, zero stores raw PCM
}

// DefaultConfig returns a memory-only configuration.
func DefaultConfig() Config {
	return Config{
		MemoryCapacity: 64 << 20,
		Compression:    3,
	}
}

// New builds a tiered cache from config.
func New(config Config) (*Tiered, error) {
	t := &Tiered{memory: NewMemoryCache(config.MemoryCapacity)}
	if config.DiskCapacity > 0 && config.Dir != "" {
		disk, err := NewDiskCache(config.Dir, config.DiskCapacity, config.Compression)
		if err != nil {
			return nil, err
		}
		t.disk = disk
	}
	return t, nil
}

// Get checks memory then disk; disk hits are promoted to memory.
func (t *Tiered) Get(key string) ([]byte, bool) {
	if v, ok := t.memory.Get(key); ok {
		return v, true
	}
	if t.disk == nil {
		return nil, false
	}
	v, ok := t.disk.Get(key)
	if !ok {
		return nil, false
	}
	if err := t.memory.Put(key, v); err != nil {
		log.Debug("not promoting cache entry", "key", key, "error", err)
	}
	return v, true
}

// Put writes to both tiers. A value too large for memory may still land
// on disk.
func (t *Tiered) Put(key string, value []byte) error {
	memErr := t.memory.Put(key, value)
	if t.disk == nil {
		return memErr
	}
	if err := t.disk.Put(key, value); err != nil {
		return err
	}
	return nil
}

// Delete removes key from both tiers.
func (t *Tiered) Delete(key string) error {
	_ = t.memory.Delete(key)
	if t.disk != nil {
		return t.disk.Delete(key)
	}
	return nil
}

// Clear empties both tiers.
func (t *Tiered) Clear() error {
	_ = t.memory.Clear()
	if t.disk != nil {
		return t.disk.Clear()
	}
	return nil
}

// Stats returns memory-tier counters; use TierStats for both.
func (t *Tiered) Stats() Stats {
	return t.memory.Stats()
}

// TierStats returns counters per tier.
func (t *Tiered) TierStats() map[Level]Stats {
	out := map[Level]Stats{LevelMemory: t.memory.Stats()}
	if t.disk != nil {
		out[LevelDisk] = t.disk.Stats()
	}
	return out
}

// Close releases the disk tier.
func (t *Tiered) Close() error {
	if t.disk != nil {
		return t.disk.Close()
	}
	return nil
}
