package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	DefaultPreferencesName = "devices_prefs"

	redisDefaultTimeout = 5 * time.Second
)

// Preferences is a named set of string values, the on-device key-value
// storage the device list lives in.
type Preferences interface {
	// Get reports ok=false when key has no value.
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// FilePreferences keeps all values of one preference set in a single JSON
// object file. Writes replace the file atomically.
type FilePreferences struct {
	path string

	mu sync.Mutex
}

func NewFilePreferences(path string) *FilePreferences {
	return &FilePreferences{path: path}
}

// DefaultPreferencesPath is <user config dir>/sensor-monitor/devices_prefs.json.
func DefaultPreferencesPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sensor-monitor", DefaultPreferencesName+".json"), nil
}

func (f *FilePreferences) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (f *FilePreferences) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return err
	}
	values[key] = value

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create preferences file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write preferences file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write preferences file: %w", err)
	}
	return os.Rename(tmp.Name(), f.path)
}

func (f *FilePreferences) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read preferences file: %w", err)
	}

	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse preferences file %s: %w", f.path, err)
	}
	return values, nil
}

var _ Preferences = &FilePreferences{}

// RedisPreferences stores each key as "<name>:<key>".
type RedisPreferences struct {
	client *redis.Client
	name   string
}

func NewRedisPreferences(client *redis.Client, name string) *RedisPreferences {
	if name == "" {
		name = DefaultPreferencesName
	}
	return &RedisPreferences{client: client, name: name}
}

// NewRedisClient parses a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func (r *RedisPreferences) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisDefaultTimeout)
	defer cancel()

	v, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *RedisPreferences) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisDefaultTimeout)
	defer cancel()

	return r.client.Set(ctx, r.key(key), value, 0).Err()
}

func (r *RedisPreferences) key(key string) string {
	return r.name + ":" + key
}

var _ Preferences = &RedisPreferences{}
