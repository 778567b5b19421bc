// Package cache stores conversion results in Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"docconv/internal/infra/logging"
)

const keyPrefix = "convcache:"

// Entry is a cached conversion result: either a file body or extracted text.
type Entry struct {
	Body        []byte
	Filename    string
	ContentType string
	Text        string
	IsText      bool
}

// ResultCache is a Redis-backed cache. A nil *ResultCache is a valid, disabled cache.
type ResultCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *ResultCache {
	if rdb == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 1 * time.Minute
	}
	return &ResultCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached entry, or nil on a miss.
func (c *ResultCache) Get(ctx context.Context, key string) (*Entry, error) {
	if c == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	fields, err := c.rdb.HGetAll(ctx, key).Result()
	if errors.Is(err, redis.Nil) || (err == nil && len(fields) == 0) {
		return nil, nil
	}
	if err != nil {
		logging.Warn("Redis read failed", "error", err)
		return nil, err
	}

	logging.Info("Conversion cache hit", "key", key)
	return &Entry{
		Body:        []byte(fields["body"]),
		Filename:    fields["filename"],
		ContentType: fields["content_type"],
		Text:        fields["text"],
		IsText:      fields["is_text"] == "1",
	}, nil
}

// Set stores e under key. Failures are logged, never returned to the caller.
func (c *ResultCache) Set(ctx context.Context, key string, e Entry) {
	if c == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	isText := "0"
	if e.IsText {
		isText = "1"
	}
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"body", e.Body,
			"filename", e.Filename,
			"content_type", e.ContentType,
			"text", e.Text,
			"is_text", isText,
		)
		pipe.Expire(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		logging.Warn("Redis write failed", "error", err)
	}
}

// KeyBuilder hashes request parameters and input files into a cache key.
type KeyBuilder struct {
	h hash.Hash
}

func NewKey(conversion string) *KeyBuilder {
	k := &KeyBuilder{h: sha256.New()}
	k.Add(conversion)
	return k
}

// Add mixes a length-prefixed string into the key.
func (k *KeyBuilder) Add(s string) *KeyBuilder {
	fmt.Fprintf(k.h, "%d:%s;", len(s), s)
	return k
}

// AddFile mixes the file's name and contents into the key.
func (k *KeyBuilder) AddFile(name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	k.Add(name)
	_, err = io.Copy(k.h, f)
	k.h.Write([]byte{0})
	return err
}

func (k *KeyBuilder) String() string {
	return keyPrefix + hex.EncodeToString(k.h.Sum(nil))
}
