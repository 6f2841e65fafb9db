package tbytes

import (
	"bytes"
)

type (
	// Reader is a cursor over a fully buffered ISF file. It keeps the
	// original slice around so that the curve payload can be handed out
	// as a zero-copy view instead of a duplicate.
	Reader struct {
		bytes.Reader
		buf []byte
	}
)
