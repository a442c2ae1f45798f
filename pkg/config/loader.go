package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	mu     sync.RWMutex
	cache  = make(map[string]any)
	loaded sync.Once
)

// Load parses environment variables into the provided configuration struct.
// The default .env file is loaded once per process before the first parse;
// a missing file is not an error. Each configuration type is parsed once
// and cached, so repeated calls for the same type are cheap and return
// identical values.
//
// Example:
//
//	var cfg worker.Config
//	if err := config.Load(&cfg); err != nil {
//		// Handle error
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	loaded.Do(func() {
		// The .env file is optional.
		_ = godotenv.Load()
	})

	key := typeName[T]()

	mu.RLock()
	cached, ok := cache[key]
	mu.RUnlock()
	if ok {
		*v = cached.(T)
		return nil
	}

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	mu.Lock()
	// Another goroutine may have parsed the same type concurrently; keep
	// the first stored value so all callers observe the same config.
	if cached, ok := cache[key]; ok {
		*v = cached.(T)
	} else {
		cache[key] = *v
	}
	mu.Unlock()

	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
// Intended for configurations the application cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

// LoadEnv loads the given env files into the process environment before
// any configs are parsed. Later files override earlier ones. Use it when
// the env files live somewhere other than the working directory.
func LoadEnv(paths ...string) error {
	if err := godotenv.Overload(paths...); err != nil {
		return errors.Join(ErrLoadingEnvFiles, err)
	}
	return nil
}

// MustLoadEnv works like LoadEnv but panics on failure.
func MustLoadEnv(paths ...string) {
	if err := LoadEnv(paths...); err != nil {
		panic(fmt.Sprintf("failed to load env files: %v", err))
	}
}

// ResetCache clears all cached configurations. Intended for tests that
// mutate the environment between loads.
func ResetCache() {
	mu.Lock()
	cache = make(map[string]any)
	mu.Unlock()
}

func typeName[T any]() string {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return fmt.Sprintf("%T", *new(T))
	}
	return t.String()
}
