// Package common keeps enumerations shared between configuration and the
// document model. They live apart from config so dom does not have to pull in
// configuration handling.
package common

// Serialization profile used when producing LDraw code.
// ENUM(full, repository, library)
type CodeFormat int

// EmitsLockMarkers reports whether editor lock markers are written.
func (f CodeFormat) EmitsLockMarkers() bool {
	return f == CodeFormatFull
}

// EmitsEditorMeta reports whether editor specific meta-commands (groups,
// step terminators) are written.
func (f CodeFormat) EmitsEditorMeta() bool {
	return f != CodeFormatLibrary
}

// Back face culling state of a page or of a point inside a page.
// ENUM(notset, disabled, ccw, cw)
type CullingMode int

// Certified reports whether the mode is one of winding directions.
func (m CullingMode) Certified() bool {
	return m == CullingModeCcw || m == CullingModeCw
}

// Reverse returns opposite winding, non-certified modes are returned as is.
func (m CullingMode) Reverse() CullingMode {
	switch m {
	case CullingModeCcw:
		return CullingModeCw
	case CullingModeCw:
		return CullingModeCcw
	default:
		return m
	}
}
