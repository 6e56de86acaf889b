package format

// AlignBlock returns n aligned up to the next 16-byte boundary.
//
// Example:
//
//	AlignBlock(1)  = 16
//	AlignBlock(16) = 16
//	AlignBlock(17) = 32
func AlignBlock(n int) int {
	return (n + BlockAlignmentMask) & ^BlockAlignmentMask
}

// AlignPage returns n aligned up to the next multiple of pageSize, which must
// be a power of two. A pageSize <= 0 selects PageSize.
//
// Example:
//
//	AlignPage(1, 4096)    = 4096
//	AlignPage(4096, 4096) = 4096
//	AlignPage(4097, 4096) = 8192
func AlignPage(n, pageSize int) int {
	if pageSize <= 0 {
		pageSize = PageSize
	}
	mask := pageSize - 1
	return (n + mask) & ^mask
}

// IsAligned reports whether addr is a multiple of align (a power of two).
func IsAligned(addr uintptr, align int) bool {
	return addr&uintptr(align-1) == 0
}
