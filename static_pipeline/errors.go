package static_pipeline

import "errors"

var (
	ErrDuplicateAlias = errors.New("duplicate alias")
	ErrMissingPath    = errors.New("path does not exist")
	ErrNotRegular     = errors.New("unexpected file type")
	ErrAlreadyLoaded  = errors.New("static pipeline already loaded")
	ErrNotLoaded      = errors.New("static pipeline not loaded")
	ErrUnknownAlias   = errors.New("unknown alias")
)
