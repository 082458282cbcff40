package utils

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"
)

// IgnoreFileName is read from the root of every served directory.
const IgnoreFileName = ".static-ignore"

// IgnorePattern is one compiled line of an ignore file.
type IgnorePattern struct {
	Source  string
	matcher glob.Glob
	dirOnly bool
	base    bool
}

// ignoreCacheEntry holds compiled ignore patterns with metadata
type ignoreCacheEntry struct {
	patterns []IgnorePattern
	modTime  time.Time
}

// Global cache for ignore patterns
var (
	ignoreCache = make(map[string]*ignoreCacheEntry)
	cacheMutex  sync.RWMutex
)

// GetIgnorePatterns reads and compiles the patterns from root's ignore file.
// If the file does not exist, it returns an empty pattern list.
func GetIgnorePatterns(root string) ([]IgnorePattern, error) {
	ignorePath := filepath.Join(root, IgnoreFileName)

	fileInfo, err := os.Stat(ignorePath)
	if os.IsNotExist(err) {
		return []IgnorePattern{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("error checking %s: %w", IgnoreFileName, err)
	}

	cacheMutex.RLock()
	if cached, exists := ignoreCache[ignorePath]; exists {
		if fileInfo.ModTime().Equal(cached.modTime) {
			cacheMutex.RUnlock()
			return cached.patterns, nil
		}
	}
	cacheMutex.RUnlock()

	lines, err := readIgnoreFile(ignorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", IgnoreFileName, err)
	}

	patterns := make([]IgnorePattern, 0, len(lines))
	for _, line := range lines {
		pattern, err := compileIgnorePattern(line)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q in %s: %w", line, ignorePath, err)
		}
		patterns = append(patterns, pattern)
	}

	cacheMutex.Lock()
	ignoreCache[ignorePath] = &ignoreCacheEntry{
		patterns: patterns,
		modTime:  fileInfo.ModTime(),
	}
	cacheMutex.Unlock()

	return patterns, nil
}

func compileIgnorePattern(line string) (IgnorePattern, error) {
	pattern := IgnorePattern{Source: line}
	expr := strings.TrimPrefix(line, "/")
	if strings.HasSuffix(expr, "/") {
		pattern.dirOnly = true
		expr = strings.TrimSuffix(expr, "/")
	}
	// Patterns without a separator match a name at any depth.
	pattern.base = !strings.Contains(expr, "/") && !strings.HasPrefix(line, "/")

	matcher, err := glob.Compile(expr, '/')
	if err != nil {
		return IgnorePattern{}, err
	}
	pattern.matcher = matcher
	return pattern, nil
}

// wellKnown is the one dot-directory that is served (RFC 8615).
const wellKnown = ".well-known"

// IsDefaultIgnored reports whether a slash-separated relative path is always
// skipped: node_modules and every dot-prefixed segment (.git, .DS_Store, the
// ignore file itself) except .well-known.
func IsDefaultIgnored(relativePath string) bool {
	for _, part := range strings.Split(filepath.ToSlash(relativePath), "/") {
		switch {
		case part == "" || part == "." || part == wellKnown:
			continue
		case part == "node_modules":
			return true
		case strings.HasPrefix(part, "."):
			return true
		}
	}
	return false
}

// IsIgnored checks a slash-separated relative path against compiled patterns.
func IsIgnored(relativePath string, isDir bool, patterns []IgnorePattern) bool {
	relativePath = filepath.ToSlash(relativePath)
	for _, pattern := range patterns {
		if pattern.dirOnly && !isDir {
			continue
		}
		candidate := relativePath
		if pattern.base {
			candidate = path.Base(relativePath)
		}
		if pattern.matcher.Match(candidate) {
			return true
		}
	}
	return false
}

func readIgnoreFile(ignorePath string) ([]string, error) {
	content, err := os.ReadFile(ignorePath)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(content), "\n")
	var patterns []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			patterns = append(patterns, line)
		}
	}
	return patterns, nil
}
