package space

import "errors"

var (
	// ErrInvalidActionSpace reports a leaf that cannot be merged into a
	// MultiDiscrete action layout.
	ErrInvalidActionSpace = errors.New("invalid action space")

	// ErrUnsupportedSample reports a value schema inference cannot describe.
	ErrUnsupportedSample = errors.New("unsupported sample type")

	// ErrSampleMismatch reports a sample that does not conform to its schema.
	ErrSampleMismatch = errors.New("sample does not match space")

	// ErrInexact reports an integer outside the range an Array element
	// holds exactly.
	ErrInexact = errors.New("integer not exactly representable")

	// ErrSizeMismatch reports a flat array whose length does not fit the layout.
	ErrSizeMismatch = errors.New("flat size mismatch")
)
