// internal/infra/firestore/client.go
package firestoreinfra

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// ClientWrapper holds the Firestore client with the project it was opened for.
type ClientWrapper struct {
	Client    *firestore.Client
	ProjectID string
}

// NewClient opens a Firestore client. Empty credentialsFile means ADC.
// FIRESTORE_EMULATOR_HOST is honored by the SDK itself.
func NewClient(ctx context.Context, projectID string, credentialsFile string) (*ClientWrapper, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, fmt.Errorf("firestore: projectID is empty")
	}

	var opts []option.ClientOption
	if credentialsFile = strings.TrimSpace(credentialsFile); credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	if host := os.Getenv("FIRESTORE_EMULATOR_HOST"); host != "" {
		log.Printf("[firestore] using emulator host=%s project=%s", host, projectID)
	} else {
		log.Printf("[firestore] connected project=%s", projectID)
	}
	return &ClientWrapper{Client: client, ProjectID: projectID}, nil
}

// Ping reads one collection id. Firestore has no ping endpoint.
func (cw *ClientWrapper) Ping(ctx context.Context) error {
	if cw == nil || cw.Client == nil {
		return fmt.Errorf("firestore client is nil")
	}
	it := cw.Client.Collections(ctx)
	if _, err := it.Next(); err != nil && err != iterator.Done {
		return fmt.Errorf("firestore ping failed: %w", err)
	}
	return nil
}

func (cw *ClientWrapper) Close() error {
	if cw == nil || cw.Client == nil {
		return nil
	}
	return cw.Client.Close()
}
