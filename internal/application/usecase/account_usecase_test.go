package usecase

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/common"
	userdom "storefront/internal/domain/user"
)

// 1x1 transparent PNG
const pngBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

type accountFixture struct {
	auth    *fakeAuth
	users   *memUsers
	mailer  *fakeMailer
	storage *memStorage
	cache   *memGuest
	obs     *countingObserver
	uc      *AccountUsecase
}

func newAccountFixture() accountFixture {
	f := accountFixture{
		auth:    &fakeAuth{},
		users:   newMemUsers(),
		mailer:  &fakeMailer{},
		storage: newMemStorage(),
		cache:   newMemGuest(),
		obs:     &countingObserver{},
	}
	f.uc = NewAccountUsecase(f.auth, f.users).
		WithMailer(f.mailer).
		WithAvatarStorage(f.storage, f.cache).
		WithObserver(f.obs).
		WithClock(fixedClock{t0})
	return f
}

func TestSignUpValidation(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()

	_, err := f.uc.SignUp(ctx, SignUpInput{Password: "secret1"})
	assert.Equal(t, "Email is required", err.Error())
	_, err = f.uc.SignUp(ctx, SignUpInput{Email: "a@b.c"})
	assert.Equal(t, "Password is required", err.Error())
	_, err = f.uc.SignUp(ctx, SignUpInput{Email: "a@b.c", Password: "123"})
	assert.True(t, common.IsValidation(err))
	assert.Empty(t, f.auth.created)
}

func TestSignUpCreatesProfile(t *testing.T) {
	f := newAccountFixture()

	p, err := f.uc.SignUp(context.Background(), SignUpInput{Email: "Ada@Example.com", Password: "secret1", DisplayName: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "uid-Ada@Example.com", p.UID)
	assert.Equal(t, "ada@example.com", p.Email)
	assert.Equal(t, userdom.RoleUser, p.Role)

	stored, err := f.users.GetByID(context.Background(), p.UID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", stored.DisplayName)
}

func TestSignUpRollsBackAuthUserWhenProfileWriteFails(t *testing.T) {
	f := newAccountFixture()
	f.users.failWrite = errBoom

	_, err := f.uc.SignUp(context.Background(), SignUpInput{Email: "a@b.c", Password: "secret1"})
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, f.auth.created, f.auth.deleted)
	assert.Equal(t, 1, f.obs.get(EventSignUpRollback))
}

func TestSignUpSurfacesProviderError(t *testing.T) {
	f := newAccountFixture()
	f.auth.createErr = &userdom.AuthError{Code: userdom.CodeEmailAlreadyInUse}

	_, err := f.uc.SignUp(context.Background(), SignUpInput{Email: "a@b.c", Password: "secret1"})
	assert.Equal(t, userdom.CodeEmailAlreadyInUse, userdom.AuthCode(err))
	assert.Empty(t, f.auth.deleted)
}

func TestVerificationAndReset(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()

	unverified := Actor{UID: "u1", Email: "u1@example.com"}
	require.NoError(t, f.uc.SendVerificationEmail(ctx, unverified))
	assert.Equal(t, []string{"u1@example.com"}, f.mailer.verify)

	require.NoError(t, f.uc.SendVerificationEmail(ctx, user))
	assert.Len(t, f.mailer.verify, 1)

	require.NoError(t, f.uc.SendPasswordReset(ctx, "u1@example.com"))
	assert.Equal(t, []string{"u1@example.com"}, f.mailer.reset)

	f.auth.resetErr = &userdom.AuthError{Code: userdom.CodeUserNotFound}
	require.NoError(t, f.uc.SendPasswordReset(ctx, "ghost@example.com"))
	assert.Len(t, f.mailer.reset, 1)
}

func TestProfileAndAdminClaim(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	p, err := f.uc.SignUp(ctx, SignUpInput{Email: "a@b.c", Password: "secret1"})
	require.NoError(t, err)
	me := Actor{UID: p.UID, Email: p.Email}

	got, err := f.uc.UpdateProfile(ctx, me, "  Grace ")
	require.NoError(t, err)
	assert.Equal(t, "Grace", got.DisplayName)

	assert.ErrorIs(t, f.uc.SetAdmin(ctx, me, p.UID, true), ErrForbidden)
	require.NoError(t, f.uc.SetAdmin(ctx, admin, p.UID, true))
	assert.True(t, f.auth.claims[p.UID])
	got, _ = f.uc.GetProfile(ctx, me)
	assert.True(t, got.IsAdmin())
}

func TestAvatarUploadAndCache(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	p, err := f.uc.SignUp(ctx, SignUpInput{Email: "a@b.c", Password: "secret1"})
	require.NoError(t, err)
	me := Actor{UID: p.UID}

	url, err := f.uc.UploadAvatar(ctx, me, "data:image/png;base64,"+pngBase64)
	require.NoError(t, err)
	assert.Equal(t, "https://storage.test/avatars/"+p.UID, url)
	assert.Equal(t, "image/png", f.storage.types["avatars/"+p.UID])

	prof, _ := f.uc.GetProfile(ctx, me)
	assert.Equal(t, url, prof.PhotoURL)

	got, err := f.uc.GetAvatar(ctx, me)
	require.NoError(t, err)
	assert.Equal(t, pngBase64, got)

	// cache miss falls back to storage and refills the cache
	delete(f.cache.avatars, p.UID)
	got, err = f.uc.GetAvatar(ctx, me)
	require.NoError(t, err)
	raw, _ := base64.StdEncoding.DecodeString(pngBase64)
	assert.Equal(t, base64.StdEncoding.EncodeToString(raw), got)
	assert.Contains(t, f.cache.avatars, p.UID)
}

func TestAvatarRejectsGarbage(t *testing.T) {
	f := newAccountFixture()
	me := Actor{UID: "u1"}

	_, err := f.uc.UploadAvatar(context.Background(), me, "%%%")
	assert.True(t, common.IsValidation(err))
	_, err = f.uc.UploadAvatar(context.Background(), me, base64.StdEncoding.EncodeToString([]byte("plain text")))
	assert.True(t, common.IsValidation(err))

	_, err = f.uc.GetAvatar(context.Background(), me)
	assert.ErrorIs(t, err, userdom.ErrNotFound)
}
