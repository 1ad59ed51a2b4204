package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcfg "storefront/internal/infra/config"
)

func TestResolveRuntimeSettings_Defaults(t *testing.T) {
	t.Setenv("GCS_PUBLIC_BASE_URL", "https://cdn.example.com/")
	t.Setenv("GUEST_KEY_PREFIX", "")

	s, warns, err := ResolveRuntimeSettings(&appcfg.Config{AppBaseURL: "https://shop.example.com/"})
	require.NoError(t, err)
	assert.Equal(t, defaultImageBucket, s.ImageBucket)
	assert.Equal(t, "https://cdn.example.com", s.PublicBaseURL)
	assert.Equal(t, "https://shop.example.com", s.AppBaseURL)
	assert.Equal(t, defaultGuestKeyPrefix, s.GuestKeyPrefix)
	assert.Len(t, warns, 2)
	assert.NoError(t, s.Validate())
}

func TestResolveRuntimeSettings_NilConfig(t *testing.T) {
	_, _, err := ResolveRuntimeSettings(nil)
	assert.Error(t, err)
}

func TestRuntimeSettingsValidate(t *testing.T) {
	ok := RuntimeSettings{ImageBucket: "shop-images", AppBaseURL: "http://localhost:8081"}
	require.NoError(t, ok.Validate())

	bad := ok
	bad.ImageBucket = "shop images"
	assert.Error(t, bad.Validate())

	bad = ok
	bad.AppBaseURL = "shop.example.com"
	assert.Error(t, bad.Validate())

	bad = ok
	bad.GuestKeyPrefix = "a b"
	assert.Error(t, bad.Validate())
}

func TestSecretName(t *testing.T) {
	p := &secretProviderSM{projectID: "proj"}

	name, err := p.secretName("sendgrid-api-key")
	require.NoError(t, err)
	assert.Equal(t, "projects/proj/secrets/sendgrid-api-key/versions/latest", name)

	name, err = p.secretName("projects/other/secrets/k")
	require.NoError(t, err)
	assert.Equal(t, "projects/other/secrets/k/versions/latest", name)

	_, err = p.secretName(" ")
	assert.Error(t, err)

	_, err = (&secretProviderSM{}).Access(context.Background(), "x")
	assert.ErrorIs(t, err, errSecretProviderNotConfigured)
}

func TestRedactPath(t *testing.T) {
	assert.Equal(t, "***/key.json", redactPath(`C:\creds\key.json`))
	assert.Equal(t, "", redactPath(" "))
}
