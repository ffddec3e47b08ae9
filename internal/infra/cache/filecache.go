package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const (
	// Key material is a prefix of the frame and prompt. Enough bytes to
	// distinguish frames in practice while keeping hashing cheap.
	frameKeyBytes  = 8 * 1024
	promptKeyBytes = 256
	keyLen         = 16
)

type entry struct {
	Prompt   string    `json:"prompt"`
	Response string    `json:"response"`
	CachedAt time.Time `json:"cached_at"`
}

// FileCache persists one JSON file per (frame, prompt) key. Entries are
// never evicted.
type FileCache struct {
	dir    string
	logger *zap.Logger
}

func NewFileCache(dir string, logger *zap.Logger) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileCache{dir: dir, logger: logger}, nil
}

func (c *FileCache) Get(_ context.Context, frame []byte, prompt string) (string, bool) {
	data, err := os.ReadFile(c.path(frame, prompt))
	if err != nil {
		return "", false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.logger.Warn("corrupt cache entry, ignoring", zap.Error(err))
		return "", false
	}
	return e.Response, true
}

func (c *FileCache) Put(_ context.Context, frame []byte, prompt string, response string) error {
	e := entry{
		Prompt:   prompt,
		Response: response,
		CachedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if err := os.WriteFile(c.path(frame, prompt), data, 0644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

func (c *FileCache) path(frame []byte, prompt string) string {
	return filepath.Join(c.dir, Key(frame, prompt)+".json")
}

// Key derives the truncated content hash used as the cache file name.
func Key(frame []byte, prompt string) string {
	h := sha256.New()
	if len(frame) > frameKeyBytes {
		frame = frame[:frameKeyBytes]
	}
	h.Write(frame)
	p := prompt
	if len(p) > promptKeyBytes {
		p = p[:promptKeyBytes]
	}
	h.Write([]byte(p))
	return hex.EncodeToString(h.Sum(nil))[:keyLen]
}
