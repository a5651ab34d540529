package hash

import "testing"

func TestTagsDistinctAndUnreserved(t *testing.T) {
	seen := make(map[byte]bool, len(allTags))
	for _, tag := range allTags {
		if seen[tag] {
			t.Errorf("tag 0x%02X assigned twice", tag)
		}
		seen[tag] = true
		if tag >= 0xFE {
			t.Errorf("tag 0x%02X falls in the reserved 0xFE-0xFF range", tag)
		}
	}
}

// Cached units are keyed by hashes over these bytes.
func TestTagsFrozen(t *testing.T) {
	frozen := map[string][2]byte{
		"symbol":          {TagSymbol, 0x01},
		"string":          {TagString, 0x02},
		"int":             {TagInt, 0x03},
		"float":           {TagFloat, 0x04},
		"bool":            {TagBool, 0x05},
		"nil":             {TagNil, 0x06},
		"list":            {TagList, 0x07},
		"unit":            {TagUnit, 0x10},
		"scope table":     {TagScopeTable, 0x11},
		"scope":           {TagScope, 0x12},
		"reference table": {TagReferenceTable, 0x13},
		"local ref":       {TagLocalRef, 0x20},
		"nested ref":      {TagNestedRef, 0x21},
		"eval ref":        {TagEvalRef, 0x22},
	}
	for name, pair := range frozen {
		if pair[0] != pair[1] {
			t.Errorf("%s tag = 0x%02X, frozen at 0x%02X", name, pair[0], pair[1])
		}
	}
	if HashVersion != 1 {
		t.Errorf("HashVersion = %d; bumping it must come with new golden files", HashVersion)
	}
}
