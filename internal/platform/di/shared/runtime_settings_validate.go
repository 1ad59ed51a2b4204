// internal/platform/di/shared/runtime_settings_validate.go
package shared

import (
	"fmt"
	"strings"
)

// Validate fails fast on values that would break at first use.
// Optional settings may stay empty.
func (s RuntimeSettings) Validate() error {
	if strings.TrimSpace(s.ImageBucket) == "" {
		return fmt.Errorf("shared.runtime_settings: ImageBucket is empty")
	}
	// GCS bucket names cannot contain whitespace or slashes.
	if strings.ContainsAny(s.ImageBucket, " \t\r\n/") {
		return fmt.Errorf("shared.runtime_settings: ImageBucket is invalid (got %q)", s.ImageBucket)
	}

	for name, u := range map[string]string{
		"AppBaseURL":    s.AppBaseURL,
		"PublicBaseURL": s.PublicBaseURL,
	} {
		if u == "" {
			continue
		}
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("shared.runtime_settings: %s must start with http:// or https:// (got %q)", name, u)
		}
	}

	if strings.ContainsAny(s.GuestKeyPrefix, " \t\r\n") {
		return fmt.Errorf("shared.runtime_settings: GuestKeyPrefix contains whitespace (got %q)", s.GuestKeyPrefix)
	}
	return nil
}
