package cache

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// writeJSON marshals v and writes it to path, choosing a plain or
// gzip-compressed encoding per compress/level, always via a temp file
// renamed into place so a crash mid-write never leaves a partially
// written file behind for a later load to trip over.
func writeJSON(path string, v any, compress bool, level int) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}

	target := path
	if compress {
		target = path + ".gz"
	}

	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", target, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if compress {
		if level < gzip.HuffmanOnly || level > gzip.BestCompression {
			level = gzip.DefaultCompression
		}
		gz, err := gzip.NewWriterLevel(tmp, level)
		if err != nil {
			tmp.Close()
			return fmt.Errorf("build gzip writer for %s: %w", target, err)
		}
		if _, err := gz.Write(data); err != nil {
			gz.Close()
			tmp.Close()
			return fmt.Errorf("write %s: %w", target, err)
		}
		if err := gz.Close(); err != nil {
			tmp.Close()
			return fmt.Errorf("close gzip writer for %s: %w", target, err)
		}
	} else if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", target, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file for %s: %w", target, err)
	}

	// Clear whichever sibling encoding the caller isn't using, so a
	// session that toggles compression doesn't accumulate stale copies.
	if compress {
		_ = os.Remove(path)
	} else {
		_ = os.Remove(path + ".gz")
	}

	if err := os.Rename(tmpPath, target); err != nil {
		return fmt.Errorf("rename into place %s: %w", target, err)
	}
	return nil
}

// readJSON loads v from path, preferring a .gz sibling if present, and
// falling back to the uncompressed file otherwise. This lets a session
// be read regardless of what the compression setting was at write time.
func readJSON(path string, v any) error {
	gzPath := path + ".gz"
	if data, err := os.ReadFile(gzPath); err == nil {
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("open gzip %s: %w", gzPath, err)
		}
		defer gz.Close()
		dec := json.NewDecoder(gz)
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("decode %s: %w", gzPath, err)
		}
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
