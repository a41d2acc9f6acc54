package hcloud

import (
	"errors"
	"strings"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// isInvalidParameter reports whether err will fail the same way on every
// attempt, so retrying is pointless.
func isInvalidParameter(err error) bool {
	if err == nil {
		return false
	}

	var apiErr hcloud.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case hcloud.ErrorCodeInvalidInput,
			hcloud.ErrorCodeNotFound,
			hcloud.ErrorCodeUniquenessError,
			hcloud.ErrorCodeForbidden,
			hcloud.ErrorCodeUnauthorized:
			return true
		}
		return false
	}

	errStr := err.Error()
	return strings.Contains(errStr, "invalid") ||
		strings.Contains(errStr, "not found") ||
		strings.Contains(errStr, "does not exist")
}
