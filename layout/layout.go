/*
Package layout places token state into a flat key-value storage.

State is split into named regions. A region is either a scalar slot stored
under a fixed key or a mapping whose keys are a fixed prefix followed by one
or two 20-byte addresses. Builder checks at construction time that no two
regions can ever produce the same key, so storage views computed from a
Layout never alias each other.
*/
package layout

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/config/limits"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// MaxKeyLen is the maximum length of a full storage key.
const MaxKeyLen = limits.MaxStorageKeyLen

// Kind is a type of storage region.
type Kind uint8

const (
	// KindSlot is a scalar value stored under a fixed key.
	KindSlot Kind = iota
	// KindMapping maps an address to a value.
	KindMapping
	// KindNestedMapping maps a pair of addresses to a value.
	KindNestedMapping
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindSlot:
		return "slot"
	case KindMapping:
		return "mapping"
	case KindNestedMapping:
		return "nested mapping"
	default:
		return fmt.Sprintf("unknown kind %d", uint8(k))
	}
}

// Arity returns the number of addresses in the key of the region of this kind.
func (k Kind) Arity() int {
	switch k {
	case KindMapping:
		return 1
	case KindNestedMapping:
		return 2
	default:
		return 0
	}
}

var (
	// ErrEmptyName is returned for regions without a name.
	ErrEmptyName = errors.New("empty region name")
	// ErrDuplicateName is returned when two regions share a name.
	ErrDuplicateName = errors.New("duplicate region name")
	// ErrEmptyKey is returned for regions with an empty key or prefix.
	ErrEmptyKey = errors.New("empty region key")
	// ErrOverlap is returned when keys of two regions may collide.
	ErrOverlap = errors.New("overlapping regions")
	// ErrKeyTooLong is returned when full keys of a region exceed MaxKeyLen.
	ErrKeyTooLong = errors.New("region key is too long")
)

// Region is a named part of the storage.
type Region struct {
	Name string
	Kind Kind
	// Key for slots, key prefix for mappings.
	Prefix []byte
}

// KeyLen returns the length of every full key of the region.
func (r Region) KeyLen() int {
	return len(r.Prefix) + r.Kind.Arity()*util.Uint160Size
}

// Key builds the full storage key for the given addresses. It panics if the
// number of addresses doesn't match the region kind.
func (r Region) Key(addrs ...util.Uint160) []byte {
	if len(addrs) != r.Kind.Arity() {
		panic(fmt.Sprintf("region %q (%s) expects %d address(es), got %d",
			r.Name, r.Kind, r.Kind.Arity(), len(addrs)))
	}

	key := make([]byte, 0, r.KeyLen())
	key = append(key, r.Prefix...)
	for i := range addrs {
		key = append(key, addrs[i].BytesBE()...)
	}

	return key
}

// Owns checks whether key belongs to the region.
func (r Region) Owns(key []byte) bool {
	return len(key) == r.KeyLen() && bytes.HasPrefix(key, r.Prefix)
}

// Builder collects regions and validates them on Build. Builder methods
// can be chained, the first registration error is reported by Build.
type Builder struct {
	regions []Region
	err     error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return new(Builder)
}

// Slot registers a scalar region stored under key.
func (b *Builder) Slot(name string, key []byte) *Builder {
	return b.add(name, KindSlot, key)
}

// Mapping registers an address-keyed region.
func (b *Builder) Mapping(name string, prefix []byte) *Builder {
	return b.add(name, KindMapping, prefix)
}

// NestedMapping registers a region keyed by an address pair.
func (b *Builder) NestedMapping(name string, prefix []byte) *Builder {
	return b.add(name, KindNestedMapping, prefix)
}

func (b *Builder) add(name string, kind Kind, prefix []byte) *Builder {
	if b.err != nil {
		return b
	}

	r := Region{
		Name:   name,
		Kind:   kind,
		Prefix: bytes.Clone(prefix),
	}

	if err := b.check(r); err != nil {
		b.err = fmt.Errorf("region %q: %w", name, err)
		return b
	}

	b.regions = append(b.regions, r)

	return b
}

func (b *Builder) check(r Region) error {
	switch {
	case r.Name == "":
		return ErrEmptyName
	case len(r.Prefix) == 0:
		return ErrEmptyKey
	case r.KeyLen() > MaxKeyLen:
		return fmt.Errorf("%w: %d > %d", ErrKeyTooLong, r.KeyLen(), MaxKeyLen)
	}

	for i := range b.regions {
		if b.regions[i].Name == r.Name {
			return ErrDuplicateName
		}

		// A prefix of one region being a prefix of another means that keys of
		// both can land in the same key range.
		if bytes.HasPrefix(b.regions[i].Prefix, r.Prefix) || bytes.HasPrefix(r.Prefix, b.regions[i].Prefix) {
			return fmt.Errorf("%w: with %q", ErrOverlap, b.regions[i].Name)
		}
	}

	return nil
}

// Build returns validated Layout.
func (b *Builder) Build() (Layout, error) {
	if b.err != nil {
		return Layout{}, b.err
	}

	l := Layout{
		regions: make([]Region, len(b.regions)),
	}
	copy(l.regions, b.regions)

	return l, nil
}

// Layout is an immutable set of non-overlapping regions. Layout instances
// must be constructed using Builder.
type Layout struct {
	regions []Region
}

// Region returns region by name.
func (l Layout) Region(name string) (Region, bool) {
	for i := range l.regions {
		if l.regions[i].Name == name {
			return l.regions[i], true
		}
	}

	return Region{}, false
}

// Regions returns all regions in registration order.
func (l Layout) Regions() []Region {
	res := make([]Region, len(l.regions))
	copy(res, l.regions)
	return res
}

// Key builds the storage key of the named region. It panics if the region is
// unknown or the number of addresses doesn't match its kind.
func (l Layout) Key(name string, addrs ...util.Uint160) []byte {
	r, ok := l.Region(name)
	if !ok {
		panic(fmt.Sprintf("unknown storage region %q", name))
	}

	return r.Key(addrs...)
}

// Locate returns the region that owns key.
func (l Layout) Locate(key []byte) (Region, bool) {
	for i := range l.regions {
		if l.regions[i].Owns(key) {
			return l.regions[i], true
		}
	}

	return Region{}, false
}

// Require checks that the Layout contains a region of the given kind with the
// given name.
func (l Layout) Require(name string, kind Kind) error {
	r, ok := l.Region(name)
	if !ok {
		return fmt.Errorf("missing storage region %q", name)
	}

	if r.Kind != kind {
		return fmt.Errorf("storage region %q is a %s, expected %s", name, r.Kind, kind)
	}

	return nil
}

// Seeker iterates over storage items with the given key prefix.
// *storage.MemCachedStore implements it.
type Seeker interface {
	Seek(rng storage.SeekRange, f func(k, v []byte) bool)
}

// Seek passes items of all regions from st into f region by region in
// registration order until f returns false. Items out of the Layout are
// skipped. Key and value must not be retained by f.
func (l Layout) Seek(st Seeker, f func(key, value []byte) bool) {
	for i := range l.regions {
		next := true

		st.Seek(storage.SeekRange{Prefix: l.regions[i].Prefix}, func(k, v []byte) bool {
			next = f(k, v)
			return next
		})

		if !next {
			return
		}
	}
}
