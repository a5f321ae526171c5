package types

const (
	// PageSize is the fixed size, in bytes, of every page and every frame.
	PageSize = 4096
	// PageLSNOffset is the byte offset of the 8-byte LSN prefix every page reserves
	// for the WAL-gated flush check in bufferpool.
	PageLSNOffset = 0
)

// InvalidPageID is the reserved sentinel for "no page bound to this frame".
const InvalidPageID int64 = -1
