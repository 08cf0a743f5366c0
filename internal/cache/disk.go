package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zstd"
)

const (
	compressedExt = ".zst"
	rawExt        = ".pcm"
)

// DiskCache stores values as files named by key, zstd-compressed when a
// compression level is set. The index is rebuilt from the directory on
// open, so entries survive restarts.
type DiskCache struct {
	dir      string
	capacity int64
	size     int64

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	index map[string]*diskEntry

	mu    sync.Mutex
	stats Stats
}

type diskEntry struct {
	path       string
	size       int64 // on disk
	lastAccess time.Time
}

// NewDiskCache opens (creating if needed) a disk cache in dir. A level of
// zero stores values uncompressed.
func NewDiskCache(dir string, capacity int64, level int) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dc := &DiskCache{
		dir:      dir,
		capacity: capacity,
		index:    make(map[string]*diskEntry),
	}

	var err error
	if level > 0 {
		dc.encoder, err = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
	}
	// Existing entries may be compressed regardless of the current level.
	dc.decoder, err = zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	if err := dc.scan(); err != nil {
		return nil, err
	}
	return dc, nil
}

func (dc *DiskCache) scan() error {
	entries, err := os.ReadDir(dc.dir)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		ext := filepath.Ext(name)
		if e.IsDir() || (ext != compressedExt && ext != rawExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		key := strings.TrimSuffix(name, ext)
		dc.index[key] = &diskEntry{
			path:       filepath.Join(dc.dir, name),
			size:       info.Size(),
			lastAccess: info.ModTime(),
		}
		dc.size += info.Size()
	}
	log.Debug("disk cache opened", "dir", dc.dir, "items", len(dc.index), "size", dc.size)
	return nil
}

// Get reads and decompresses a value. Unreadable entries are dropped.
func (dc *DiskCache) Get(key string) ([]byte, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	entry, ok := dc.index[key]
	if !ok {
		dc.stats.Misses++
		return nil, false
	}

	data, err := os.ReadFile(entry.path)
	if err == nil && strings.HasSuffix(entry.path, compressedExt) {
		data, err = dc.decoder.DecodeAll(data, nil)
	}
	if err != nil {
		log.Warn("dropping unreadable cache entry", "path", entry.path, "error", err)
		dc.removeLocked(key)
		dc.stats.Misses++
		return nil, false
	}

	entry.lastAccess = time.Now()
	_ = os.Chtimes(entry.path, entry.lastAccess, entry.lastAccess)
	dc.stats.Hits++
	return data, true
}

// Put writes a value, evicting least recently accessed files to make room.
func (dc *DiskCache) Put(key string, value []byte) error {
	if !validKey(key) {
		return ErrInvalidKey
	}

	data, ext := value, rawExt
	if dc.encoder != nil {
		data, ext = dc.encoder.EncodeAll(value, nil), compressedExt
	}
	size := int64(len(data))
	if size > dc.capacity {
		return ErrItemTooLarge
	}

	dc.mu.Lock()
	defer dc.mu.Unlock()

	dc.removeLocked(key)
	for dc.size+size > dc.capacity && len(dc.index) > 0 {
		dc.evictOldest()
	}

	path := filepath.Join(dc.dir, key+ext)
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	dc.index[key] = &diskEntry{path: path, size: size, lastAccess: time.Now()}
	dc.size += size
	return nil
}

// Delete removes an entry and its file.
func (dc *DiskCache) Delete(key string) error {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	dc.removeLocked(key)
	return nil
}

// Clear removes every entry.
func (dc *DiskCache) Clear() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	for key := range dc.index {
		dc.removeLocked(key)
	}
	return nil
}

// Stats returns a snapshot of the counters.
func (dc *DiskCache) Stats() Stats {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	s := dc.stats
	s.Capacity = dc.capacity
	s.Size = dc.size
	s.Items = len(dc.index)
	return s
}

// Close releases the zstd coders.
func (dc *DiskCache) Close() error {
	if dc.encoder != nil {
		if err := dc.encoder.Close(); err != nil {
			return err
		}
	}
	dc.decoder.Close()
	return nil
}

func (dc *DiskCache) removeLocked(key string) {
	entry, ok := dc.index[key]
	if !ok {
		return
	}
	if err := os.Remove(entry.path); err != nil && !os.IsNotExist(err) {
		log.Debug("removing cache file", "path", entry.path, "error", err)
	}
	dc.size -= entry.size
	delete(dc.index, key)
}

func (dc *DiskCache) evictOldest() {
	keys := make([]string, 0, len(dc.index))
	for k := range dc.index {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return dc.index[keys[i]].lastAccess.Before(dc.index[keys[j]].lastAccess)
	})
	dc.removeLocked(keys[0])
	dc.stats.Evictions++
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
