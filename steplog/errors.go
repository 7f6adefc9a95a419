package steplog

import (
	"errors"
	"fmt"
)

// ErrNilResult is returned by a wrapped step whose delegate succeeded with a nil table.
var ErrNilResult = errors.New("step returned a nil table without an error")

// ErrInvalidConfiguration is wrapped by every error returned while building a wrapper.
var ErrInvalidConfiguration = errors.New("invalid step logger configuration")

var (
	ErrNilStep                 = fmt.Errorf("%w: nil step supplied", ErrInvalidConfiguration)
	ErrNoExtractors            = fmt.Errorf("%w: at least one extractor is required", ErrInvalidConfiguration)
	ErrNilExtractor            = fmt.Errorf("%w: extractor without function supplied", ErrInvalidConfiguration)
	ErrUnknownKwarg            = fmt.Errorf("%w: kwarg is not accepted by any extractor", ErrInvalidConfiguration)
	ErrKwargsWithoutExtractors = fmt.Errorf("%w: kwargs are only supported together with extractors", ErrInvalidConfiguration)
	ErrEmptyName               = fmt.Errorf("%w: empty name supplied", ErrInvalidConfiguration)
)
