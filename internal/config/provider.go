package config

import (
	"fmt"

	"holter-distributor/internal/domain"
)

// Provider supplies the policy snapshot a pass runs with.
type Provider interface {
	Load() (*Policy, error)
}

// FileProvider re-reads the configuration file on every call, so edits made
// between passes are picked up without a restart and nothing is cached.
type FileProvider struct {
	path string
}

// NewFileProvider creates a provider for path. An empty path uses the same
// search rules as Load.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// Load reads and validates a fresh policy snapshot.
func (p *FileProvider) Load() (*Policy, error) {
	v := newViper(p.path)
	if err := read(v); err != nil {
		return nil, err
	}

	var policy Policy
	if err := v.Unmarshal(&policy); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &policy, nil
}

// StaticProvider serves a fixed policy.
type StaticProvider struct {
	Policy *Policy
}

// Load validates and returns the fixed policy.
func (p StaticProvider) Load() (*Policy, error) {
	if p.Policy == nil {
		return nil, fmt.Errorf("%w: no policy", domain.ErrInvalidConfig)
	}
	if err := p.Policy.Validate(); err != nil {
		return nil, err
	}
	return p.Policy, nil
}
