package cms

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a content file cannot be located in any locale.
var ErrNotFound = errors.New("cms: not found")

const (
	defaultContentDir = "content"
	defaultLang       = "en"
	defaultCacheTTL   = 5 * time.Minute
)

// Client reads marketing content from <dir>/<lang>/, falling back to the
// default locale, and caches parsed documents for a TTL.
type Client struct {
	dir      string
	fallback string
	ttl      time.Duration
	now      func() time.Time

	mu    sync.RWMutex
	items map[string]cacheEntry
}

type cacheEntry struct {
	value   any
	expires time.Time
}

// Option customises a Client.
type Option func(*Client)

// WithCacheTTL overrides how long parsed documents are reused.
func WithCacheTTL(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithFallbackLang sets the locale consulted when a file is missing.
func WithFallbackLang(lang string) Option {
	return func(c *Client) {
		if lang = normalizeLang(lang); lang != "" {
			c.fallback = lang
		}
	}
}

// WithClock overrides the time source used for cache expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient constructs a Client rooted at dir.
func NewClient(dir string, opts ...Option) *Client {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = defaultContentDir
	}
	c := &Client{
		dir:      dir,
		fallback: defaultLang,
		ttl:      defaultCacheTTL,
		now:      time.Now,
		items:    map[string]cacheEntry{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dir returns the content root.
func (c *Client) Dir() string { return c.dir }

// Purge drops every cached document.
func (c *Client) Purge() {
	c.mu.Lock()
	c.items = map[string]cacheEntry{}
	c.mu.Unlock()
}

func (c *Client) cached(key string) (any, bool) {
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expires) {
		return nil, false
	}
	return entry.value, true
}

func (c *Client) store(key string, v any) {
	c.mu.Lock()
	c.items[key] = cacheEntry{value: v, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// readLocalized returns the raw bytes of name for lang, trying the fallback
// locale when the localized file does not exist.
func (c *Client) readLocalized(lang, name string) ([]byte, string, error) {
	if name == "" || strings.Contains(name, "..") || strings.ContainsRune(name, os.PathSeparator) {
		return nil, "", ErrNotFound
	}
	priority := []string{normalizeLang(lang)}
	if priority[0] != c.fallback {
		priority = append(priority, c.fallback)
	}
	for _, candidate := range priority {
		if candidate == "" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(c.dir, candidate, name))
		if err == nil {
			return data, candidate, nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return nil, "", fmt.Errorf("cms: read %s/%s: %w", candidate, name, err)
	}
	return nil, "", ErrNotFound
}

// loadYAML decodes a localized YAML document into T through the cache.
func loadYAML[T any](c *Client, lang, name string) (T, error) {
	var zero T
	key := "yaml|" + normalizeLang(lang) + "|" + name
	if v, ok := c.cached(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}
	data, _, err := c.readLocalized(lang, name)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(data, &out); err != nil {
		return zero, fmt.Errorf("cms: parse %s: %w", name, err)
	}
	c.store(key, out)
	return out, nil
}

func normalizeLang(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	return lang
}
