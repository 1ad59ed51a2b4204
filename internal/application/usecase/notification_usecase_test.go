package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	notifdom "storefront/internal/domain/notification"
	prefdom "storefront/internal/domain/preference"
)

func TestNotifyRespectsPreferences(t *testing.T) {
	ctx := context.Background()
	repo := newMemNotifications()
	store := newMemGuest()
	uc := NewNotificationUsecase(repo, store).WithClock(fixedClock{t0})

	p := prefdom.Defaults()
	p.Notifications.TicketUpdates = false
	require.NoError(t, store.SavePreferences(ctx, UserPreferenceKey("u1"), p))

	require.NoError(t, uc.Notify(ctx, "u1", notifdom.TypeTicket, "muted", "", ""))
	require.NoError(t, uc.Notify(ctx, "u1", notifdom.TypeOrder, "shown", "", "O1"))
	require.NoError(t, uc.Notify(ctx, "u1", notifdom.TypeSystem, "always", "", ""))

	rows, err := uc.List(ctx, user)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "shown", rows[0].Title)
	assert.Equal(t, t0, rows[0].CreatedAt)
}

func TestNotificationMailbox(t *testing.T) {
	ctx := context.Background()
	uc := NewNotificationUsecase(newMemNotifications(), nil).WithClock(fixedClock{t0})
	require.NoError(t, uc.Notify(ctx, "u1", notifdom.TypeOrder, "a", "", ""))
	require.NoError(t, uc.Notify(ctx, "u1", notifdom.TypeOrder, "b", "", ""))

	n, err := uc.UnreadCount(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, _ := uc.List(ctx, user)
	require.NoError(t, uc.MarkRead(ctx, user, rows[0].ID))
	n, _ = uc.UnreadCount(ctx, user)
	assert.Equal(t, 1, n)

	require.NoError(t, uc.MarkAllRead(ctx, user))
	n, _ = uc.UnreadCount(ctx, user)
	assert.Zero(t, n)

	require.NoError(t, uc.Delete(ctx, user, rows[1].ID))
	rows, _ = uc.List(ctx, user)
	assert.Len(t, rows, 1)

	_, err = uc.List(ctx, guest)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestNotifyValidation(t *testing.T) {
	uc := NewNotificationUsecase(newMemNotifications(), nil)
	assert.ErrorIs(t, uc.Notify(context.Background(), "", notifdom.TypeOrder, "x", "", ""), ErrInvalidArgument)
	assert.ErrorIs(t, uc.Notify(context.Background(), "u1", "weird", "x", "", ""), notifdom.ErrInvalidType)
}
