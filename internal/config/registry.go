package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// settingsFile is the on-disk shape of the registry.
type settingsFile struct {
	Server   string `yaml:"server,omitempty"`
	Port     string `yaml:"port,omitempty"`
	TLS      string `yaml:"tls,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	From     string `yaml:"from_address,omitempty"`
}

func (f *settingsFile) fields() map[Key]*string {
	return map[Key]*string{
		KeyServer:   &f.Server,
		KeyPort:     &f.Port,
		KeyTLS:      &f.TLS,
		KeyUsername: &f.Username,
		KeyPassword: &f.Password,
		KeyFrom:     &f.From,
	}
}

// Registry is the administrator-maintained settings store. Reads are safe
// from concurrent sends; Set and Unset are administrative.
type Registry struct {
	mu     sync.RWMutex
	values map[Key]string
}

// NewRegistry returns a registry seeded with values. Unknown keys are dropped.
func NewRegistry(values map[Key]string) *Registry {
	r := &Registry{values: make(map[Key]string, len(Keys))}
	for _, k := range Keys {
		if v, ok := values[k]; ok && strings.TrimSpace(v) != "" {
			r.values[k] = v
		}
	}
	return r
}

// Lookup implements Provider.
func (r *Registry) Lookup(key Key) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[key]
	return v, ok
}

// Set stores value under key. A blank value removes the key.
func (r *Registry) Set(key Key, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if strings.TrimSpace(value) == "" {
		delete(r.values, key)
		return
	}
	r.values[key] = value
}

// Unset removes key.
func (r *Registry) Unset(key Key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.values, key)
}

// Snapshot copies the current values.
func (r *Registry) Snapshot() map[Key]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[Key]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// LoadRegistry reads the given settings files in order, later files
// overriding non-empty values of earlier ones. Missing files are skipped.
func LoadRegistry(paths ...string) (*Registry, error) {
	var merged settingsFile
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
		}

		var layer settingsFile
		if err := yaml.Unmarshal(data, &layer); err != nil {
			return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
		}
		if layer.Password != "" {
			plain, err := Decrypt(layer.Username, layer.Password)
			if err != nil {
				return nil, fmt.Errorf("settings file %s: %w", path, err)
			}
			layer.Password = plain
		}
		if err := mergo.Merge(&merged, layer, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge settings file %s: %w", path, err)
		}
	}

	values := make(map[Key]string, len(Keys))
	for k, v := range merged.fields() {
		values[k] = *v
	}
	return NewRegistry(values), nil
}

// Save writes the registry to path as YAML with the password encrypted.
func (r *Registry) Save(path string) error {
	var out settingsFile
	fields := out.fields()
	for k, v := range r.Snapshot() {
		*fields[k] = v
	}
	if out.Password != "" {
		sealed, err := Encrypt(out.Username, out.Password)
		if err != nil {
			return fmt.Errorf("error encrypting password: %w", err)
		}
		out.Password = sealed
	}

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("error encoding settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
