package rtcore

import "errors"

var (
	// ErrBadOptions indicates an invalid Options value.
	ErrBadOptions = errors.New("rtcore: invalid options")

	// ErrLeaked indicates blocks were still live when the runtime closed.
	ErrLeaked = errors.New("rtcore: blocks leaked")
)
