package aexpr

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// Kind tags which sort of mutable location an Identity names.
type Kind uint8

const (
	KindProperty Kind = iota // object property, keyed by name
	KindElement              // array slot, keyed by index
	KindLocal                // captured variable, keyed by binding name within a frame
	KindGlobal               // global binding, keyed by name under the fixed globals owner
)

func (k Kind) String() string {
	switch k {
	case KindProperty:
		return "property"
	case KindElement:
		return "element"
	case KindLocal:
		return "local"
	case KindGlobal:
		return "global"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Owner is anything that holds mutable locations: objects, arrays, closure frames
// and the global namespace. Owners are compared by identity, so implementations
// should be pointers or fixed values.
type Owner interface {
	OwnerID() uint64
}

var lastOwnerID atomic.Uint64

func nextOwnerID() uint64 {
	return lastOwnerID.Add(1)
}

type namespaceOwner uint64

func (n namespaceOwner) OwnerID() uint64 {
	return uint64(n)
}

// All global bindings share this owner, in every reactive system.
var globalsOwner Owner = namespaceOwner(xxhash.Sum64String("aexpr.globals") & 0x7fffffffffffffff)

// Identity is the raw address of a mutable location. Two reads resolve to the
// same Cell exactly when their identities are equal.
type Identity struct {
	Kind  Kind
	Owner Owner
	Key   string
	Index int
}

func PropertyOf(owner Owner, key string) Identity {
	return Identity{Kind: KindProperty, Owner: owner, Key: key}
}

func ElementOf(owner Owner, index int) Identity {
	return Identity{Kind: KindElement, Owner: owner, Index: index}
}

func LocalOf(frame Owner, name string) Identity {
	return Identity{Kind: KindLocal, Owner: frame, Key: name}
}

func GlobalOf(name string) Identity {
	return Identity{Kind: KindGlobal, Owner: globalsOwner, Key: name}
}

// Hash digests the identity into a stable 64 bit value for logs and reports.
// Equal identities always hash equally; distinct identities almost never collide.
func (id Identity) Hash() uint64 {
	var buf [17]byte
	buf[0] = byte(id.Kind)
	if id.Owner != nil {
		binary.LittleEndian.PutUint64(buf[1:9], id.Owner.OwnerID())
	}
	binary.LittleEndian.PutUint64(buf[9:], uint64(id.Index))

	d := xxhash.New()
	d.Write(buf[:])
	d.WriteString(id.Key)
	return d.Sum64()
}

func (id Identity) String() string {
	var owner uint64
	if id.Owner != nil {
		owner = id.Owner.OwnerID()
	}
	switch id.Kind {
	case KindElement:
		return fmt.Sprintf("element(#%d)[%d]", owner, id.Index)
	case KindGlobal:
		return "global." + id.Key
	default:
		return fmt.Sprintf("%s(#%d).%s", id.Kind, owner, id.Key)
	}
}
