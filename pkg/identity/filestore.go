package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	masterminds "github.com/Masterminds/semver/v3"
	"github.com/ghodss/yaml"
)

const fileStoreLogPrefix = "identity:filestore"

const (
	// StateFileName is the file holding identities inside the state directory.
	StateFileName = "identities.yaml"
	// StateVersion is written to every state file.
	StateVersion = "1.0.0"
	// supportedStateVersions constrains state files this build can read.
	supportedStateVersions = "^1.0.0"
)

type stateFile struct {
	Version    string     `json:"version"`
	Default    string     `json:"default,omitempty"`
	Identities []Identity `json:"identities"`
}

// FileStore keeps identities in a YAML file. Writes replace the file atomically;
// concurrent use within one process is serialized.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// OpenFileStore opens, creating if needed, the state file in dir.
// Failures are returned as *StateError.
func OpenFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, &StateError{Op: "open", Err: errors.New("state directory is empty")}
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, &StateError{Op: "create state directory", Err: err}
	}

	s := &FileStore{path: filepath.Join(dir, StateFileName)}
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		if err := s.save(&stateFile{Version: StateVersion}); err != nil {
			return nil, &StateError{Op: "initialize state file", Err: err}
		}
		slog.Debug(fmt.Sprintf("%s - initialized %s", fileStoreLogPrefix, s.path))
	} else if err != nil {
		return nil, &StateError{Op: "stat state file", Err: err}
	}

	if _, err := s.load(); err != nil {
		return nil, &StateError{Op: "load state file", Err: err}
	}
	return s, nil
}

// Path returns the state file path.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) load() (*stateFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var st stateFile
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("%s - failed to parse %s: %w", fileStoreLogPrefix, s.path, err)
	}
	if err := checkStateVersion(st.Version); err != nil {
		return nil, err
	}
	for i := range st.Identities {
		st.Identities[i].IsDefault = st.Identities[i].Name == st.Default
	}
	return &st, nil
}

func (s *FileStore) save(st *stateFile) error {
	st.Version = StateVersion
	for i := range st.Identities {
		st.Identities[i].IsDefault = st.Identities[i].Name == st.Default
	}
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("%s - failed to encode state: %w", fileStoreLogPrefix, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".identities-*.yaml")
	if err != nil {
		return fmt.Errorf("%s - failed to create temp file: %w", fileStoreLogPrefix, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%s - failed to write state: %w", fileStoreLogPrefix, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s - failed to write state: %w", fileStoreLogPrefix, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%s - failed to replace state file: %w", fileStoreLogPrefix, err)
	}
	return nil
}

func checkStateVersion(v string) error {
	if v == "" {
		return nil
	}
	version, err := masterminds.NewVersion(v)
	if err != nil {
		return fmt.Errorf("%s - invalid state version %q: %w", fileStoreLogPrefix, v, err)
	}
	constraint, err := masterminds.NewConstraint(supportedStateVersions)
	if err != nil {
		return err
	}
	if !constraint.Check(version) {
		return fmt.Errorf("%s - state version %s is not supported (want %s)", fileStoreLogPrefix, v, supportedStateVersions)
	}
	return nil
}

// update loads the state, applies fn and saves the result when fn succeeds.
func (s *FileStore) update(fn func(st *stateFile) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(st); err != nil {
		return err
	}
	return s.save(st)
}

func (s *FileStore) read() (*stateFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (st *stateFile) find(name string) int {
	for i := range st.Identities {
		if st.Identities[i].Name == name {
			return i
		}
	}
	return -1
}

func (s *FileStore) Get(_ context.Context, name string) (*Identity, error) {
	st, err := s.read()
	if err != nil {
		return nil, err
	}
	i := st.find(name)
	if i < 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	ident := st.Identities[i]
	return &ident, nil
}

func (s *FileStore) List(_ context.Context) ([]Identity, error) {
	st, err := s.read()
	if err != nil {
		return nil, err
	}
	out := append([]Identity(nil), st.Identities...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *FileStore) Default(_ context.Context) (*Identity, error) {
	st, err := s.read()
	if err != nil {
		return nil, err
	}
	if st.Default == "" {
		return nil, ErrNoDefault
	}
	i := st.find(st.Default)
	if i < 0 {
		return nil, ErrNoDefault
	}
	ident := st.Identities[i]
	return &ident, nil
}

func (s *FileStore) Create(_ context.Context, ident *Identity) error {
	return s.update(func(st *stateFile) error {
		if st.find(ident.Name) >= 0 {
			return fmt.Errorf("%s: %w", ident.Name, ErrIdentityExists)
		}
		stored := *ident
		stored.IsDefault = false
		st.Identities = append(st.Identities, stored)
		return nil
	})
}

func (s *FileStore) SetDefault(_ context.Context, name string) error {
	return s.update(func(st *stateFile) error {
		if st.find(name) < 0 {
			return fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		st.Default = name
		return nil
	})
}

func (s *FileStore) SetDefaultIfAbsent(_ context.Context, name string) (bool, error) {
	claimed := false
	err := s.update(func(st *stateFile) error {
		if st.find(name) < 0 {
			return fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		if st.Default != "" && st.find(st.Default) >= 0 {
			return nil
		}
		st.Default = name
		claimed = true
		return nil
	})
	return claimed, err
}

func (s *FileStore) Delete(_ context.Context, name string) error {
	return s.update(func(st *stateFile) error {
		i := st.find(name)
		if i < 0 {
			return fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		st.Identities = append(st.Identities[:i], st.Identities[i+1:]...)
		if st.Default == name {
			st.Default = ""
		}
		return nil
	})
}

var _ Store = (*FileStore)(nil)
