package hash

// ---------------------------------------------------------------------------
// Frozen tag bytes for the unit hashing serialization format.
//
// IMPORTANT: These tags are FROZEN. Once assigned, a tag byte must never
// change meaning. Adding new tags is fine; changing existing ones breaks
// all previously computed content hashes and every cache keyed by them.
// ---------------------------------------------------------------------------

// HashVersion is the version prefix for the serialization format.
// Bumping this invalidates all existing content hashes.
const HashVersion byte = 1

// Tags identifying each item kind in the serialized byte stream.
const (
	TagReservedZero byte = 0x00 // version prefix / reserved

	// Canonical tree values
	TagSymbol byte = 0x01
	TagString byte = 0x02
	TagInt    byte = 0x03
	TagFloat  byte = 0x04
	TagBool   byte = 0x05
	TagNil    byte = 0x06
	TagList   byte = 0x07

	// Reserved 0x08-0x0F

	// Unit structure
	TagUnit           byte = 0x10
	TagScopeTable     byte = 0x11
	TagScope          byte = 0x12
	TagReferenceTable byte = 0x13

	// Resolved storage
	TagLocalRef  byte = 0x20
	TagNestedRef byte = 0x21
	TagEvalRef   byte = 0x22

	// Reserved 0xFE-0xFF
)

// allTags lists every defined tag for uniqueness verification in tests.
var allTags = []byte{
	TagReservedZero,
	TagSymbol, TagString, TagInt, TagFloat, TagBool, TagNil, TagList,
	TagUnit, TagScopeTable, TagScope, TagReferenceTable,
	TagLocalRef, TagNestedRef, TagEvalRef,
}
