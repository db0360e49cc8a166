package template

import (
	_ "embed"
	"sync"

	vaerrors "github.com/vast-data/vast-admin-mcp/pkg/errors"
)

var (
	//go:embed data/default.yaml
	defaultTemplate []byte

	defaultOnce sync.Once
	defaultSet  *Set
	defaultErr  error
)

// DefaultDocument returns the embedded default template document.
func DefaultDocument() []byte {
	return defaultTemplate
}

// Default loads and caches the embedded default template. The document is
// compiled into the binary, so it is parsed once per process.
func Default() (*Set, error) {
	defaultOnce.Do(func() {
		defaultSet, defaultErr = Load(defaultTemplate, nil)
	})

	if defaultErr != nil {
		return nil, defaultErr
	}
	if defaultSet == nil {
		return nil, vaerrors.New(vaerrors.ErrCodeInternal, "default template not initialized")
	}
	return defaultSet, nil
}
