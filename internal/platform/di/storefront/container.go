// internal/platform/di/storefront/container.go
package storefront

import (
	"context"
	"errors"
	"log"
	"strings"

	"storefront/internal/adapters/in/http/middleware"
	dbout "storefront/internal/adapters/out/db"
	fbout "storefront/internal/adapters/out/firebaseauth"
	outfs "storefront/internal/adapters/out/firestore"
	gcso "storefront/internal/adapters/out/gcs"
	guestadapter "storefront/internal/adapters/out/guest"
	mailout "storefront/internal/adapters/out/mail"
	usecase "storefront/internal/application/usecase"
	ticketdom "storefront/internal/domain/ticket"
	"storefront/internal/infra/metrics"
	shared "storefront/internal/platform/di/shared"
)

// Container is the storefront DI container.
// Pure DI: build deps only. Routing lives in register.go.
type Container struct {
	Infra   *shared.Infra
	Metrics *metrics.Metrics

	// nil when Firebase Auth is unavailable; bearer requests then get 503.
	Verifier middleware.TokenVerifier

	CartUC         *usecase.CartUsecase
	CheckoutUC     *usecase.CheckoutUsecase
	OrderUC        *usecase.OrderUsecase
	TicketUC       *usecase.TicketUsecase
	NotificationUC *usecase.NotificationUsecase
	CatalogUC      *usecase.CatalogUsecase
	WishlistUC     *usecase.WishlistUsecase
	PreferenceUC   *usecase.PreferenceUsecase
	AccountUC      *usecase.AccountUsecase
	AdminUC        *usecase.AdminDashboardUsecase
}

func NewContainer(ctx context.Context, infra *shared.Infra) (*Container, error) {
	if infra == nil || infra.Firestore == nil {
		return nil, errors.New("di.storefront: infra or firestore client is nil")
	}
	cfg := infra.Config
	m := metrics.New()

	// ------------------------------------------------------------
	// Outbound adapters
	// ------------------------------------------------------------
	productRepo := outfs.NewProductRepositoryFS(infra.Firestore)
	categoryRepo := outfs.NewCategoryRepositoryFS(infra.Firestore)
	cartRepo := outfs.NewCartRepositoryFS(infra.Firestore)
	orderRepo := outfs.NewOrderRepositoryFS(infra.Firestore)
	userRepo := outfs.NewUserRepositoryFS(infra.Firestore)
	notifRepo := outfs.NewNotificationRepositoryFS(infra.Firestore)
	wishRepo := outfs.NewWishlistRepositoryFS(infra.Firestore)

	var (
		ticketRepo    ticketdom.Repository
		ticketWatcher ticketdom.Watcher
	)
	if infra.Postgres != nil {
		pg := dbout.NewTicketRepositoryPG(infra.Postgres.Client, cfg.TicketPollInterval)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		ticketRepo, ticketWatcher = pg, pg
		log.Printf("[di.storefront] tickets: postgres (poll=%s)", cfg.TicketPollInterval)
	} else {
		fsTickets := outfs.NewTicketRepositoryFS(infra.Firestore)
		ticketRepo, ticketWatcher = fsTickets, fsTickets
		log.Printf("[di.storefront] tickets: firestore")
	}

	guestStore := guestadapter.NewStore(infra.GuestKV)

	objects := gcso.NewObjectStorageGCS(infra.GCS, infra.Settings.ImageBucket)
	if u := infra.Settings.PublicBaseURL; u != "" {
		objects.PublicBaseURL = u
	}

	var mailer *mailout.Mailer
	if strings.TrimSpace(infra.SendGridAPIKey) != "" {
		mailer = mailout.NewMailerWithSendGrid(infra.SendGridAPIKey, cfg.SendGridFrom, infra.Settings.AppBaseURL)
	} else {
		log.Printf("[di.storefront] WARN: mail disabled (no SendGrid API key)")
	}

	// ------------------------------------------------------------
	// Usecases
	// ------------------------------------------------------------
	notifUC := usecase.NewNotificationUsecase(notifRepo, guestStore)

	cartUC := usecase.NewCartUsecase(cartRepo, guestStore, productRepo).WithObserver(m)

	checkoutUC := usecase.NewCheckoutUsecase(cartRepo, orderRepo, cfg.DefaultShipping).
		WithNotifier(notifUC).
		WithObserver(m)

	orderUC := usecase.NewOrderUsecase(orderRepo).
		WithNotifier(notifUC).
		WithObserver(m)

	ticketUC := usecase.NewTicketUsecase(ticketRepo, ticketWatcher).
		WithNotifier(notifUC).
		WithObserver(m)

	var authProvider usecase.AuthProvider = unavailableAuth{}
	if infra.FirebaseAuth != nil {
		authProvider = fbout.NewProvider(infra.FirebaseAuth)
	} else {
		log.Printf("[di.storefront] WARN: Firebase Auth unavailable; sign-up and bearer tokens are disabled")
	}
	accountUC := usecase.NewAccountUsecase(authProvider, userRepo).
		WithAvatarStorage(objects, guestStore).
		WithObserver(m)

	if mailer != nil {
		checkoutUC.WithMailer(mailer)
		accountUC.WithMailer(mailer)
	}

	c := &Container{
		Infra:          infra,
		Metrics:        m,
		CartUC:         cartUC,
		CheckoutUC:     checkoutUC,
		OrderUC:        orderUC,
		TicketUC:       ticketUC,
		NotificationUC: notifUC,
		CatalogUC:      usecase.NewCatalogUsecase(productRepo, categoryRepo, objects),
		WishlistUC:     usecase.NewWishlistUsecase(wishRepo, productRepo, cartUC),
		PreferenceUC:   usecase.NewPreferenceUsecase(guestStore),
		AccountUC:      accountUC,
		AdminUC: usecase.NewAdminDashboardUsecase(userRepo, orderRepo, productRepo, ticketRepo, ticketWatcher).
			WithLowStockThreshold(cfg.LowStockThreshold),
	}

	if infra.FirebaseAuth != nil {
		c.Verifier = infra.FirebaseAuth
	}

	return c, nil
}

// Close releases container-owned resources. Infra is closed by its owner.
func (c *Container) Close() error {
	return nil
}
