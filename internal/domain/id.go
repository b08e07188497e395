// Package domain holds the ring identifier space and the plain data types
// shared by routing, storage, and the RPC layer.
package domain

import (
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"math/bits"
)

// Bits is the fixed width of the identifier ring.
const Bits = 64

// ID is a point on the 64-bit identifier ring. Arithmetic is native modular
// uint64 math; wraparound is implicit in the type.
type ID uint64

// HashString derives a ring identifier from an arbitrary string (a node
// address or a key) as the first 8 bytes of SHA-1, big-endian.
func HashString(s string) ID {
	sum := sha1.Sum([]byte(s))
	return ID(binary.BigEndian.Uint64(sum[:8]))
}

// Add returns id + 2^shift (mod 2^64).
func (id ID) Add(shift uint) ID {
	return id + ID(uint64(1)<<(shift%Bits))
}

// Cmp behaves like bytes.Compare / strings.Compare on the underlying uint64.
func (id ID) Cmp(other ID) int {
	switch {
	case id < other:
		return -1
	case id > other:
		return 1
	default:
		return 0
	}
}

// Equal reports whether id == other.
func (id ID) Equal(other ID) bool { return id == other }

// InOpen reports whether x lies in the open interval (a, b) on the ring.
// a == b is treated as the entire ring except a.
func InOpen(x, a, b ID) bool {
	if a == b {
		return x != a
	}
	if a < b {
		return x > a && x < b
	}
	return x > a || x < b
}

// InHalfOpen reports whether x lies in the half-open interval (a, b] on the
// ring. a == b is treated as the entire ring.
func InHalfOpen(x, a, b ID) bool {
	if a == b {
		return true
	}
	if a < b {
		return x > a && x <= b
	}
	return x > a || x <= b
}

// Between reports whether id lies in the half-open interval (a, b], the
// interval used throughout the routing and ownership logic.
func (id ID) Between(a, b ID) bool { return InHalfOpen(id, a, b) }

// BetweenOpen reports whether id lies in the open interval (a, b).
func (id ID) BetweenOpen(a, b ID) bool { return InOpen(id, a, b) }

// ToHexString renders the id as hex, optionally with a "0x" prefix.
func (id ID) ToHexString(prefix bool) string {
	if prefix {
		return fmt.Sprintf("0x%016x", uint64(id))
	}
	return fmt.Sprintf("%016x", uint64(id))
}

// ToBinaryString renders the id in base-2, zero padded to 64 bits.
func (id ID) ToBinaryString() string {
	return fmt.Sprintf("%064b", uint64(id))
}

// LeadingBit returns the bit position of the highest set bit, or -1 for 0.
func (id ID) LeadingBit() int {
	if id == 0 {
		return -1
	}
	return bits.Len64(uint64(id)) - 1
}

// FingerStart returns the start of finger-table entry i: self + 2^i.
func FingerStart(self ID, i int) ID { return self.Add(uint(i)) }
