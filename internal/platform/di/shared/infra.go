// internal/platform/di/shared/infra.go
package shared

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/firestore"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	guestadapter "storefront/internal/adapters/out/guest"
	guestdom "storefront/internal/domain/guest"
	appcfg "storefront/internal/infra/config"
	"storefront/internal/infra/database"
	firestoreinfra "storefront/internal/infra/firestore"
)

// Infra is shared runtime infrastructure for DI.
//   - owns external clients (Firestore / Firebase Auth / GCS / Secret Manager / Redis / Postgres)
//   - owns env/config-resolved runtime settings
//
// Infra must NOT depend on routers or handlers.
type Infra struct {
	Config    *appcfg.Config
	ProjectID string
	Settings  RuntimeSettings

	// Clients (owned; Close-managed)
	Firestore     *firestore.Client
	GCS           *storage.Client
	FirebaseApp   *firebase.App
	FirebaseAuth  *firebaseauth.Client
	SecretManager *secretmanager.Client
	Redis         *redis.Client // nil when REDIS_ADDR is empty
	Postgres      *database.DB  // nil unless TICKET_BACKEND=postgres
	GuestKV       guestdom.KV   // Redis or in-memory
	fsWrapper     *firestoreinfra.ClientWrapper

	// SendGridAPIKey is resolved from env or Secret Manager. Empty disables mail.
	SendGridAPIKey string
}

// NewInfra initializes shared infra.
// Firestore / GCS are strict. Firebase Auth, Secret Manager, Redis and Postgres
// are best-effort (warn + fall back) except when explicitly requested.
func NewInfra(ctx context.Context) (*Infra, error) {
	cfg := appcfg.Load()
	if cfg == nil {
		return nil, errors.New("shared.infra: config is nil")
	}

	settings, warns, err := ResolveRuntimeSettings(cfg)
	if err != nil {
		return nil, err
	}
	for _, w := range warns {
		log.Printf("[shared.infra] WARN: %s", w)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	projectID := strings.TrimSpace(cfg.FirestoreProjectID)
	if projectID == "" {
		return nil, errors.New("shared.infra: projectID is empty (set FIRESTORE_PROJECT_ID or GCP_PROJECT_ID)")
	}

	inf := &Infra{
		Config:    cfg,
		ProjectID: projectID,
		Settings:  settings,
	}

	credFile := strings.TrimSpace(cfg.FirestoreCredentialsFile)
	if credFile == "" {
		credFile = strings.TrimSpace(cfg.GCPCreds)
	}
	var clientOpts []option.ClientOption
	if credFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credFile))
		log.Printf("[shared.infra] Using credentials file for GCP clients: %s", redactPath(credFile))
	} else {
		log.Printf("[shared.infra] Using Application Default Credentials (no credentials file configured)")
	}

	// 1) Firestore (strict)
	{
		w, err := firestoreinfra.NewClient(ctx, projectID, credFile)
		if err != nil {
			return nil, fmt.Errorf("shared.infra: firestore init failed (project=%s): %w", projectID, err)
		}
		inf.fsWrapper = w
		inf.Firestore = w.Client
	}

	// 2) GCS (strict)
	{
		gcsClient, err := storage.NewClient(ctx, clientOpts...)
		if err != nil {
			_ = inf.Close()
			return nil, fmt.Errorf("shared.infra: storage.NewClient failed: %w", err)
		}
		inf.GCS = gcsClient
		log.Printf("[shared.infra] GCS storage client initialized bucket=%s", settings.ImageBucket)
	}

	// 3) Firebase App/Auth (best-effort; without it every caller is a guest)
	{
		fbCfg := &firebase.Config{ProjectID: strings.TrimSpace(cfg.FirebaseProjectID)}
		if fbCfg.ProjectID == "" {
			fbCfg.ProjectID = projectID
		}
		fbApp, err := firebase.NewApp(ctx, fbCfg, clientOpts...)
		if err != nil {
			log.Printf("[shared.infra] WARN: firebase app init failed: %v", err)
		} else {
			inf.FirebaseApp = fbApp
			authClient, err := fbApp.Auth(ctx)
			if err != nil {
				log.Printf("[shared.infra] WARN: firebase auth init failed: %v", err)
			} else {
				inf.FirebaseAuth = authClient
				log.Printf("[shared.infra] Firebase Auth initialized")
			}
		}
	}

	// 4) Secret Manager (best-effort) + SendGrid key
	inf.SendGridAPIKey = strings.TrimSpace(cfg.SendGridAPIKey)
	if inf.SendGridAPIKey == "" && settings.SendGridSecretID != "" {
		sm, err := secretmanager.NewClient(ctx, clientOpts...)
		if err != nil {
			log.Printf("[shared.infra] WARN: secretmanager.NewClient failed: %v (mail disabled)", err)
		} else {
			inf.SecretManager = sm
			p := &secretProviderSM{sm: sm, projectID: projectID}
			key, err := p.Access(ctx, settings.SendGridSecretID)
			if err != nil {
				log.Printf("[shared.infra] WARN: sendgrid secret not resolved: %v (mail disabled)", err)
			} else {
				inf.SendGridAPIKey = key
				log.Printf("[shared.infra] SendGrid API key resolved from Secret Manager")
			}
		}
	}

	// 5) Guest key-value store: Redis when configured, otherwise process memory
	if addr := strings.TrimSpace(cfg.RedisAddr); addr != "" {
		client, err := guestadapter.NewRedisClient(ctx, guestadapter.RedisConfig{
			Addr:     addr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			_ = inf.Close()
			return nil, fmt.Errorf("shared.infra: redis init failed: %w", err)
		}
		inf.Redis = client
		inf.GuestKV = guestadapter.NewRedisKV(client, settings.GuestKeyPrefix, cfg.GuestTTL)
	} else {
		log.Printf("[shared.infra] WARN: REDIS_ADDR is empty, guest carts live in process memory")
		inf.GuestKV = guestadapter.NewMemoryKV(cfg.GuestTTL)
	}

	// 6) Postgres (only for the ticket backend)
	if cfg.UsePostgresTickets() {
		db, err := database.NewConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			_ = inf.Close()
			return nil, fmt.Errorf("shared.infra: postgres init failed: %w", err)
		}
		inf.Postgres = db
	} else if cfg.TicketBackend == "postgres" {
		log.Printf("[shared.infra] WARN: TICKET_BACKEND=postgres but DATABASE_URL is empty, using firestore")
	}

	return inf, nil
}

func (i *Infra) Close() error {
	if i == nil {
		return nil
	}
	if i.fsWrapper != nil {
		_ = i.fsWrapper.Close()
	}
	if i.GCS != nil {
		_ = i.GCS.Close()
	}
	if i.SecretManager != nil {
		_ = i.SecretManager.Close()
	}
	if i.Redis != nil {
		_ = i.Redis.Close()
	}
	if i.Postgres != nil {
		_ = i.Postgres.Close()
	}
	return nil
}

// Ping checks Firestore and (when configured) Redis. Used by /readyz.
func (i *Infra) Ping(ctx context.Context) error {
	if i == nil {
		return errors.New("shared.infra: nil")
	}
	if err := i.fsWrapper.Ping(ctx); err != nil {
		return err
	}
	if i.Redis != nil {
		if err := i.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
	}
	return nil
}

func redactPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = strings.ReplaceAll(p, "\\", "/")
	parts := strings.Split(p, "/")
	last := parts[len(parts)-1]
	if last == "" {
		return "***"
	}
	return "***/" + last
}
