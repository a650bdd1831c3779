// Package labels provides the label table keyed by native address, with an
// overlay of temporary labels that only live for one generation run.
package labels

import (
	"maps"
	"slices"
	"strings"
)

// Label is a persistent, user defined label.
type Label struct {
	Name    string
	Comment string
	Aliases []string // additional names for the same address
}

// Names returns the label name followed by all non empty aliases.
func (l Label) Names() []string {
	names := make([]string, 0, 1+len(l.Aliases))
	for _, name := range append([]string{l.Name}, l.Aliases...) {
		if strings.TrimSpace(name) != "" {
			names = append(names, name)
		}
	}
	return names
}

// Kind is the family of a temporary label, it defines the label priority.
type Kind uint8

const (
	Generic   Kind = iota // type derived label like CODE_ or DATA8_
	Jump                  // target of an unconditional jump
	Call                  // target of a subroutine call
	PlusMinus             // relative branch label like + or --
)

// TempLabel is a label that is generated for a single generation run.
type TempLabel struct {
	Name     string
	Kind     Kind
	NoDemote bool // never replace with a plus/minus label
}

// Store contains the persistent labels and the temporary overlay.
// All addresses are normalized with the canonical function before use.
type Store struct {
	canonical  func(int) int
	persistent map[int]Label
	temporary  map[int]TempLabel

	locked    bool
	addresses []int // sorted address cache, valid while locked
}

// New returns a new label store. canonical normalizes mirrored addresses,
// nil keeps addresses unchanged.
func New(canonical func(int) int) *Store {
	if canonical == nil {
		canonical = func(address int) int { return address }
	}
	return &Store{
		canonical:  canonical,
		persistent: make(map[int]Label),
		temporary:  make(map[int]TempLabel),
	}
}

// Set sets the persistent label at the given address.
func (s *Store) Set(address int, label Label) {
	s.persistent[s.canonical(address)] = label
	s.addresses = nil
}

// Get returns the persistent label at the given address.
func (s *Store) Get(address int) (Label, bool) {
	label, ok := s.persistent[s.canonical(address)]
	return label, ok
}

// Temporary returns the temporary label at the given address.
func (s *Store) Temporary(address int) (TempLabel, bool) {
	label, ok := s.temporary[s.canonical(address)]
	return label, ok
}

// SetTemporary adds or replaces a temporary label. Persistent labels always
// win, the call returns false and changes nothing if one exists.
func (s *Store) SetTemporary(address int, label TempLabel) bool {
	address = s.canonical(address)
	if _, ok := s.persistent[address]; ok {
		return false
	}
	if _, ok := s.temporary[address]; !ok {
		s.addresses = nil
	}
	s.temporary[address] = label
	return true
}

// Name returns the effective label name at the given address, the
// persistent label takes precedence over a temporary one.
func (s *Store) Name(address int) string {
	address = s.canonical(address)
	if label, ok := s.persistent[address]; ok {
		return label.Name
	}
	if label, ok := s.temporary[address]; ok {
		return label.Name
	}
	return ""
}

// Comment returns the comment of the persistent label at the given address.
func (s *Store) Comment(address int) string {
	return s.persistent[s.canonical(address)].Comment
}

// Has returns whether any label exists at the given address.
func (s *Store) Has(address int) bool {
	return s.Name(address) != ""
}

// Effective returns the label at the given address as a Label value,
// converting a temporary label if no persistent label exists.
func (s *Store) Effective(address int) (Label, bool) {
	address = s.canonical(address)
	if label, ok := s.persistent[address]; ok {
		return label, true
	}
	if label, ok := s.temporary[address]; ok {
		return Label{Name: label.Name}, true
	}
	return Label{}, false
}

// Addresses returns all labelled addresses in ascending order. While the
// cache is locked the result is computed once and reused.
func (s *Store) Addresses() []int {
	if s.locked && s.addresses != nil {
		return s.addresses
	}

	keys := make(map[int]struct{}, len(s.persistent)+len(s.temporary))
	for address := range s.persistent {
		keys[address] = struct{}{}
	}
	for address := range s.temporary {
		keys[address] = struct{}{}
	}
	addresses := slices.Sorted(maps.Keys(keys))

	if s.locked {
		s.addresses = addresses
	}
	return addresses
}

// TemporaryAddresses returns the addresses of all temporary labels in ascending order.
func (s *Store) TemporaryAddresses() []int {
	return slices.Sorted(maps.Keys(s.temporary))
}

// Len returns the number of persistent labels.
func (s *Store) Len() int {
	return len(s.persistent)
}

// BeginTemporary starts a scope for temporary labels. The returned function
// restores the temporary overlay to the state it had when the scope started
// and must be deferred by the caller.
func (s *Store) BeginTemporary() (rollback func()) {
	snapshot := maps.Clone(s.temporary)
	return func() {
		s.temporary = snapshot
		s.addresses = nil
	}
}

// ClearTemporary removes all temporary labels.
func (s *Store) ClearTemporary() {
	clear(s.temporary)
	s.addresses = nil
}

// LockCache enables caching of the sorted address list. No labels may be
// added while the cache is locked.
func (s *Store) LockCache() {
	s.locked = true
	s.addresses = nil
}

// UnlockCache disables the address cache.
func (s *Store) UnlockCache() {
	s.locked = false
	s.addresses = nil
}
