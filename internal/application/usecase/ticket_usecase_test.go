package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/common"
	ticketdom "storefront/internal/domain/ticket"
)

func newTicketFixture() (*TicketUsecase, *memTickets, *memNotifications) {
	repo := newMemTickets()
	notifs := newMemNotifications()
	nuc := NewNotificationUsecase(notifs, newMemGuest()).WithClock(fixedClock{t0})
	uc := NewTicketUsecase(repo, repo).WithClock(fixedClock{t0}).WithNotifier(nuc)
	uc.newID = func() string { return "T1" }
	return uc, repo, notifs
}

func TestSubmitEmptyTicketWritesNothing(t *testing.T) {
	uc, repo, _ := newTicketFixture()

	_, err := uc.SubmitTicket(context.Background(), user, "", "")
	require.Error(t, err)
	assert.Equal(t, ticketdom.MsgEmptyMessage, err.Error())
	assert.Zero(t, repo.creates)

	_, err = uc.SubmitTicket(context.Background(), user, "", "   \n")
	assert.Equal(t, ticketdom.MsgEmptyMessage, err.Error())
	assert.Zero(t, repo.creates)
}

func TestSubmitTicketRequiresVerifiedEmail(t *testing.T) {
	uc, repo, _ := newTicketFixture()

	unverified := user
	unverified.EmailVerified = false
	_, err := uc.SubmitTicket(context.Background(), unverified, "", "help")
	require.Error(t, err)
	assert.True(t, common.IsValidation(err))
	assert.Equal(t, ticketdom.MsgNotVerified, err.Error())

	_, err = uc.SubmitTicket(context.Background(), guest, "", "help")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Zero(t, repo.creates)
}

func TestSubmitTicket(t *testing.T) {
	uc, _, _ := newTicketFixture()

	tk, err := uc.SubmitTicket(context.Background(), user, "Late parcel", "  where is it?  ")
	require.NoError(t, err)
	assert.Equal(t, "where is it?", tk.Message)
	assert.Equal(t, ticketdom.StatusOpen, tk.Status)
	assert.Equal(t, "u1@example.com", tk.Email)
	require.Len(t, tk.Timeline, 1)

	mine, err := uc.ListMyTickets(context.Background(), user)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestUpdateTicketStatusAppendsOneEntry(t *testing.T) {
	ctx := context.Background()
	uc, _, notifs := newTicketFixture()
	tk, err := uc.SubmitTicket(ctx, user, "", "help")
	require.NoError(t, err)
	before := tk.Timeline

	got, err := uc.UpdateTicketStatus(ctx, admin, "u1", tk.ID, "in-progress", "looking")
	require.NoError(t, err)
	require.Len(t, got.Timeline, 2)
	assert.Equal(t, before[0], got.Timeline[0])
	assert.Equal(t, "in-progress", got.Timeline[1].Status)
	assert.Equal(t, "looking", got.Timeline[1].Note)

	got, err = uc.UpdateTicketStatus(ctx, admin, "u1", tk.ID, "resolved", "")
	require.NoError(t, err)
	assert.Len(t, got.Timeline, 3)
	assert.Equal(t, 3, got.Version)

	notes, _ := notifs.List(ctx, "u1")
	assert.Len(t, notes, 2)
}

func TestUpdateTicketStatusRejectsUnknownStatus(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newTicketFixture()
	tk, _ := uc.SubmitTicket(ctx, user, "", "help")

	_, err := uc.UpdateTicketStatus(ctx, admin, "u1", tk.ID, "escalated", "")
	assert.ErrorIs(t, err, ticketdom.ErrInvalidStatus)

	_, err = uc.UpdateTicketStatus(ctx, user, "u1", tk.ID, "closed", "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestMarkViewedAndRespond(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newTicketFixture()
	tk, _ := uc.SubmitTicket(ctx, user, "", "help")

	got, err := uc.MarkTicketViewed(ctx, admin, "u1", tk.ID)
	require.NoError(t, err)
	assert.True(t, got.ViewedByAdmin)

	got, err = uc.RespondToTicket(ctx, admin, "u1", tk.ID, "on its way")
	require.NoError(t, err)
	assert.Equal(t, "on its way", got.AdminResponse)
	assert.Len(t, got.Timeline, 1)

	_, err = uc.RespondToTicket(ctx, admin, "u1", tk.ID, " ")
	assert.True(t, common.IsValidation(err))
}
