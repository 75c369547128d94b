package poisearch

import "github.com/kailas-cloud/poisearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEmptyInput     = domain.ErrEmptyInput
	ErrTransport      = domain.ErrTransport
	ErrAuthentication = domain.ErrAuthentication
	ErrDecode         = domain.ErrDecode
	ErrTimeout        = domain.ErrTimeout
	ErrCanceled       = domain.ErrCanceled
	ErrCategoryLimit  = domain.ErrCategoryLimit
)

// BackendError is a non-2xx backend response. Use errors.As() to inspect it.
type BackendError = domain.BackendError
