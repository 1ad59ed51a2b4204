// internal/platform/di/shared/runtime_settings.go
package shared

import (
	"errors"
	"os"
	"strings"

	appcfg "storefront/internal/infra/config"
)

const (
	defaultImageBucket    = "storefront-dev-images"
	defaultGuestKeyPrefix = "storefront:"
)

// RuntimeSettings are env/config values normalized once. No clients here.
type RuntimeSettings struct {
	ImageBucket      string // avatars + product images
	PublicBaseURL    string // optional CDN in front of the bucket
	AppBaseURL       string // links in mails
	GuestKeyPrefix   string // Redis key namespace
	SendGridSecretID string
}

// ResolveRuntimeSettings has no side effects; warnings are returned for the caller to log.
func ResolveRuntimeSettings(cfg *appcfg.Config) (RuntimeSettings, []string, error) {
	if cfg == nil {
		return RuntimeSettings{}, nil, errors.New("shared.runtime_settings: cfg is nil")
	}

	var warns []string
	var s RuntimeSettings

	s.ImageBucket = strings.TrimSpace(cfg.GCSBucket)
	if s.ImageBucket == "" {
		s.ImageBucket = defaultImageBucket
		warns = append(warns, "GCS_BUCKET is empty, using "+defaultImageBucket)
	}
	s.PublicBaseURL = normalizeBaseURL(getenvTrim("GCS_PUBLIC_BASE_URL"))
	s.AppBaseURL = normalizeBaseURL(cfg.AppBaseURL)

	s.GuestKeyPrefix = getenvOrDefault("GUEST_KEY_PREFIX", defaultGuestKeyPrefix)

	s.SendGridSecretID = strings.TrimSpace(cfg.SendGridSecretID)
	if strings.TrimSpace(cfg.SendGridAPIKey) == "" && s.SendGridSecretID == "" {
		warns = append(warns, "SENDGRID_API_KEY / SENDGRID_SECRET_ID are empty (mails are logged only)")
	}

	return s, warns, nil
}

func getenvTrim(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func getenvOrDefault(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func normalizeBaseURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return ""
	}
	return strings.TrimRight(u, "/")
}
