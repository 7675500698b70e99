// Package vault holds one user's secrets in memory and enforces the rules
// that span more than one secret: legal and unique names.
package vault

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/atinyakov/secretkeeper/internal/secrets"
)

var (
	// ErrIllegalName is returned for a name that secrets.IsIllegalName rejects.
	ErrIllegalName = errors.New("secret name contains an illegal character")
	// ErrDuplicateName is returned when the name is already taken.
	ErrDuplicateName = errors.New("a secret with this name already exists")
	// ErrNotFound is returned when no secret has the given name.
	ErrNotFound = errors.New("secret not found")
)

// Vault is an ordered collection of secrets keyed by name.
// It is safe for concurrent use.
type Vault struct {
	mu    sync.Mutex
	items []secrets.Secret
}

// New returns an empty vault.
func New() *Vault {
	return &Vault{}
}

func (v *Vault) indexOf(name string) int {
	for i, s := range v.items {
		if s.Name() == name {
			return i
		}
	}
	return -1
}

func checkName(name string) error {
	if name == "" || secrets.IsIllegalName(name) {
		return fmt.Errorf("%w: %q", ErrIllegalName, name)
	}
	return nil
}

// Add appends s to the vault.
func (v *Vault) Add(s secrets.Secret) error {
	if err := checkName(s.Name()); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.indexOf(s.Name()) >= 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateName, s.Name())
	}
	v.items = append(v.items, s)
	return nil
}

// Get returns the secret called name.
func (v *Vault) Get(name string) (secrets.Secret, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	i := v.indexOf(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return v.items[i], nil
}

// Delete removes the secret called name.
func (v *Vault) Delete(name string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	i := v.indexOf(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	v.items = append(v.items[:i], v.items[i+1:]...)
	return nil
}

// Rename gives the secret called oldName the name newName. The secret keeps
// its uid and its position in List.
func (v *Vault) Rename(oldName, newName string) error {
	if err := checkName(newName); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	i := v.indexOf(oldName)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, oldName)
	}
	if oldName == newName {
		return nil
	}
	if v.indexOf(newName) >= 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateName, newName)
	}
	v.items[i].EditName(newName)
	return nil
}

// Move puts the secret called name into folder. An empty folder means
// secrets.Unlinked.
func (v *Vault) Move(name, folder string) error {
	if folder == "" {
		folder = secrets.Unlinked
	}
	return v.Update(name, func(s secrets.Secret) error {
		s.SetFolderName(folder)
		return nil
	})
}

// Update runs fn on the secret called name while holding the vault lock.
func (v *Vault) Update(name string, fn func(secrets.Secret) error) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	i := v.indexOf(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return fn(v.items[i])
}

// Replace swaps the secret called name for s, which must keep the same name.
func (v *Vault) Replace(name string, s secrets.Secret) error {
	if s.Name() != name {
		return fmt.Errorf("replace %q: secret is named %q", name, s.Name())
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	i := v.indexOf(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	v.items[i] = s
	return nil
}

// List returns the secrets in insertion order. A non-empty folder restricts
// the result to that folder.
func (v *Vault) List(folder string) []secrets.Secret {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]secrets.Secret, 0, len(v.items))
	for _, s := range v.items {
		if folder != "" && s.FolderName() != folder {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Folders returns the sorted distinct folder names in use.
func (v *Vault) Folders() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	seen := make(map[string]struct{})
	for _, s := range v.items {
		seen[s.FolderName()] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of secrets.
func (v *Vault) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.items)
}

// Lines renders every secret in its canonical form, in order.
func (v *Vault) Lines() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, len(v.items))
	for i, s := range v.items {
		out[i] = s.StringForDatabase()
	}
	return out
}

// Load parses lines and adds the resulting secrets. Lines that fail to parse
// or to add are reported to onBad, with their zero-based index, and skipped.
// onBad may be nil.
func (v *Vault) Load(lines []string, onBad func(i int, err error)) {
	for i, line := range lines {
		if line == "" {
			continue
		}
		s, err := secrets.Parse(line)
		if err == nil {
			err = v.Add(s)
		}
		if err != nil && onBad != nil {
			onBad(i, err)
		}
	}
}
