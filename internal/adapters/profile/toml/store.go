package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/balance-dispatcher/internal/domain"
	"github.com/bnema/balance-dispatcher/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	profileFileMode   = 0o644
	profileDirMode    = 0o755
	profileConfigDir  = ".config/dispatch"
	profileConfigFile = "selectors.toml"
	tempFilePattern   = ".selectors-*.toml.tmp"
)

// Store keeps the locator profile in a TOML file.
type Store struct {
	path string
	mu   sync.RWMutex
}

var _ ports.LocatorProfileStore = (*Store)(nil)

// DefaultPath is selectors.toml under the user's dispatch config directory.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, profileConfigDir, profileConfigFile), nil
}

func NewStore(path string) (*Store, error) {
	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve selectors path: %w", err)
	}

	return &Store{path: filepath.Clean(absPath)}, nil
}

func (s *Store) Path() string {
	return s.path
}

// Load reads the profile. A missing file yields the default profile together
// with an error wrapping domain.ErrProfileNotFound.
func (s *Store) Load(ctx context.Context) (domain.LocatorProfile, error) {
	if err := ctx.Err(); err != nil {
		return domain.LocatorProfile{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultLocatorProfile(), fmt.Errorf("%w: %s", domain.ErrProfileNotFound, s.path)
		}
		return domain.LocatorProfile{}, fmt.Errorf("read selectors file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return domain.LocatorProfile{}, fmt.Errorf("decode selectors file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return domain.LocatorProfile{}, err
	}
	file.applyDefaults()

	profile := fromSchema(file)
	if err := profile.Validate(); err != nil {
		return domain.LocatorProfile{}, fmt.Errorf("invalid selectors file %s: %w", s.path, err)
	}

	return profile, nil
}

func (s *Store) Save(ctx context.Context, profile domain.LocatorProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("invalid locator profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeSchema(toSchema(profile))
}

func (s *Store) writeSchema(file fileSchema) error {
	if err := os.MkdirAll(filepath.Dir(s.path), profileDirMode); err != nil {
		return fmt.Errorf("create selectors directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode selectors file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(s.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp selectors file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp selectors file: %w", err)
	}

	if err := tempFile.Chmod(profileFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp selectors file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp selectors file: %w", err)
	}

	if err := os.Rename(tempName, s.path); err != nil {
		return fmt.Errorf("replace selectors file: %w", err)
	}

	cleanup = false
	return nil
}
