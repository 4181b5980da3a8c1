// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package snapshot

import (
	"fmt"
	"os"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// sourceCacheSize is how many files the cache keeps resident.
const sourceCacheSize = 32

// cachedFile holds one file's lines plus the modtime observed at read
// time, so edits invalidate the entry.
type cachedFile struct {
	lines   []string
	modTime time.Time
}

// SourceCache caches source files line by line.
//
// Description:
//
//	The snapshot builder reads the same files repeatedly while a
//	debugging session steps through code, so lines are cached behind an
//	LRU. Entries are revalidated against the file's modtime on every
//	lookup, matching editor-while-debugging workflows.
//
// Thread Safety:
//
//	SourceCache is safe for concurrent use (the underlying LRU is
//	synchronized), though the agent only ever uses it from one goroutine.
type SourceCache struct {
	files *lru.Cache[string, cachedFile]
}

// NewSourceCache creates an empty cache.
func NewSourceCache() *SourceCache {
	// lru.New only fails for non-positive sizes.
	files, err := lru.New[string, cachedFile](sourceCacheSize)
	if err != nil {
		panic(fmt.Sprintf("snapshot: source cache init: %v", err))
	}
	return &SourceCache{files: files}
}

// Line returns the 1-based line lineno of the file, or ("", false) when
// the file or the line cannot be resolved.
func (c *SourceCache) Line(path string, lineno int) (string, bool) {
	if lineno < 1 {
		return "", false
	}
	lines, err := c.lines(path)
	if err != nil || lineno > len(lines) {
		return "", false
	}
	return lines[lineno-1], true
}

func (c *SourceCache) lines(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		c.files.Remove(path)
		return nil, err
	}

	if cached, ok := c.files.Get(path); ok && cached.modTime.Equal(info.ModTime()) {
		return cached.lines, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	c.files.Add(path, cachedFile{lines: lines, modTime: info.ModTime()})
	return lines, nil
}
