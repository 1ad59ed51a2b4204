// internal/platform/di/shared/secret_provider_sm.go
package shared

import (
	"context"
	"errors"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

var errSecretProviderNotConfigured = errors.New("shared: secret provider not configured")

// secretProviderSM reads plain-text secrets (e.g. the SendGrid API key).
type secretProviderSM struct {
	sm        *secretmanager.Client
	projectID string
	version   string
}

// secretName accepts a bare id or a full "projects/.../secrets/..." name.
func (p *secretProviderSM) secretName(secretID string) (string, error) {
	secretID = strings.TrimSpace(secretID)
	if secretID == "" {
		return "", errors.New("secretProviderSM: secretID is empty")
	}
	if strings.HasPrefix(secretID, "projects/") {
		if !strings.Contains(secretID, "/versions/") {
			secretID += "/versions/latest"
		}
		return secretID, nil
	}
	prj := strings.TrimSpace(p.projectID)
	if prj == "" {
		return "", errors.New("secretProviderSM: projectID is empty")
	}
	ver := strings.TrimSpace(p.version)
	if ver == "" {
		ver = "latest"
	}
	return "projects/" + prj + "/secrets/" + secretID + "/versions/" + ver, nil
}

func (p *secretProviderSM) Access(ctx context.Context, secretID string) (string, error) {
	if p == nil || p.sm == nil {
		return "", errSecretProviderNotConfigured
	}
	name, err := p.secretName(secretID)
	if err != nil {
		return "", err
	}
	resp, err := p.sm.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("secretProviderSM: AccessSecretVersion failed (%s): %w", name, err)
	}
	if resp == nil || resp.Payload == nil {
		return "", fmt.Errorf("secretProviderSM: empty payload (%s)", name)
	}
	return strings.TrimSpace(string(resp.Payload.Data)), nil
}
