// Package abi freezes the binary conventions of the foreign component
// model: 16-byte interface identifiers and the cgo vtable-call shims
// every other package in this module dispatches through.
//
// No algorithm here beyond byte comparison — the point of this package
// is to encode the layout convention in one place, per spec.
package abi

import "encoding/binary"

// UID is a 16-byte foreign-ABI interface or class identifier. Equality is
// byte-wise; there is no canonicalization beyond how the bytes were laid
// out when the UID was constructed.
type UID [16]byte

// NewUID builds a UID from the canonical 128-bit identifier groups as
// they appear in the foreign SDK's headers: a 32-bit group, two 16-bit
// groups, and an 8-byte tail. The first three groups are byte-swapped to
// little-endian; the tail is copied in source order. This swap is not
// arbitrary — the foreign ABI expects the bytes laid out exactly this
// way, and it must be computed here once rather than ad hoc at each call
// site.
func NewUID(group1 uint32, group2, group3 uint16, tail [8]byte) UID {
	var u UID
	binary.LittleEndian.PutUint32(u[0:4], group1)
	binary.LittleEndian.PutUint16(u[4:6], group2)
	binary.LittleEndian.PutUint16(u[6:8], group3)
	copy(u[8:16], tail[:])
	return u
}

// Equal reports byte-wise equality.
func (u UID) Equal(other UID) bool {
	return u == other
}

// Well-known interface UIDs, frozen here and nowhere else. Values are
// taken from the public VST3 interface identifiers.
var (
	IIDFUnknown = NewUID(0x00000000, 0x0000, 0x0000, [8]byte{0xC0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x46})

	IIDPluginFactory = NewUID(0x7A4D811C, 0x5211, 0x4A1F, [8]byte{0xAE, 0xD9, 0xD2, 0xEE, 0x0B, 0x43, 0xBF, 0x9F})

	IIDPluginFactory2 = NewUID(0x0007B650, 0xF24B, 0x4C0B, [8]byte{0xA4, 0x64, 0xED, 0xB9, 0xF0, 0x0B, 0x2A, 0xBB})

	IIDComponent = NewUID(0xE831FF31, 0xF2D5, 0x4B01, [8]byte{0x83, 0x6F, 0x5D, 0x38, 0x54, 0x34, 0xAE, 0xC6})

	IIDAudioProcessor = NewUID(0x42043F99, 0xB2A8, 0x4F3F, [8]byte{0xA2, 0x85, 0x7A, 0xA0, 0x39, 0x82, 0x15, 0xC1})

	IIDEditController = NewUID(0xDDB1188F, 0x2B0D, 0x4311, [8]byte{0x9E, 0xD0, 0xAE, 0xB4, 0x38, 0x95, 0x40, 0x52})

	IIDConnectionPoint = NewUID(0x70A4156F, 0x6E6E, 0x4026, [8]byte{0x98, 0x9F, 0x95, 0x5A, 0x55, 0x1E, 0xDE, 0x34})

	IIDEventList = NewUID(0x3A2C4214, 0x3463, 0x49FE, [8]byte{0xB2, 0xC4, 0xF0, 0x97, 0xBC, 0xD9, 0x62, 0x48})

	IIDPlugFrame = NewUID(0x367FAF01, 0xAFA9, 0x4693, [8]byte{0x8D, 0x4D, 0xA2, 0xA0, 0xED, 0x0A, 0x6E, 0x1E})

	IIDPlugView = NewUID(0x5BC32507, 0xD06C, 0x49EA, [8]byte{0x8F, 0x25, 0x87, 0x88, 0x94, 0x91, 0x99, 0x26})

	IIDComponentHandler = NewUID(0x93A0BEA3, 0x0BD0, 0x45DB, [8]byte{0x8E, 0x89, 0x0B, 0x0C, 0xC1, 0xE4, 0x6A, 0xC6})
)

// CategoryAudioModuleClass is the literal class-descriptor category
// string that marks a factory class as the DSP processor class this host
// can instantiate.
const CategoryAudioModuleClass = "Audio Module Class"
