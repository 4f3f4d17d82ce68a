// Package prompts holds the generation templates and the request builder that
// turns form fields into a prompt. Templates live in embedded JSON files keyed
// by template name.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// Set is one parsed template file, template name to template text.
type Set map[string]string

// Keys returns the template names in sorted order.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

var (
	setsMu sync.RWMutex
	sets   = make(map[string]Set)
)

// Load parses filename from the embedded templates, caching the result.
func Load(filename string) (Set, error) {
	setsMu.RLock()
	set, ok := sets[filename]
	setsMu.RUnlock()
	if ok {
		return set, nil
	}

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	setsMu.Lock()
	sets[filename] = set
	setsMu.Unlock()
	return set, nil
}

// Get returns the template stored under key in filename.
func Get(filename, key string) (string, error) {
	set, err := Load(filename)
	if err != nil {
		return "", err
	}
	template, ok := set[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return template, nil
}

// MustGet is Get for templates that ship with the binary; a miss panics.
func MustGet(filename, key string) string {
	template, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return template
}

// List returns the template names in filename.
func List(filename string) ([]string, error) {
	set, err := Load(filename)
	if err != nil {
		return nil, err
	}
	return set.Keys(), nil
}

// ClearCache drops every parsed file.
func ClearCache() {
	setsMu.Lock()
	sets = make(map[string]Set)
	setsMu.Unlock()
}

var placeholderPattern = regexp.MustCompile(`\{\{\.([A-Za-z][A-Za-z0-9]*)\}\}`)

// Placeholders returns the distinct {{.Key}} names used by template, in order of first use.
func Placeholders(template string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Format replaces {{.Key}} placeholders with values from data in a single pass.
// A value that itself contains a placeholder is inserted as-is, and placeholders
// with no entry in data are left in place.
func Format(template string, data map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := strings.TrimSuffix(strings.TrimPrefix(match, "{{."), "}}")
		if value, ok := data[key]; ok {
			return value
		}
		return match
	})
}
