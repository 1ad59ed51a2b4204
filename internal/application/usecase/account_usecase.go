// internal/application/usecase/account_usecase.go
package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"storefront/internal/domain/common"
	userdom "storefront/internal/domain/user"
)

const (
	MinPasswordLength = 6
	MaxAvatarBytes    = 2 << 20
)

type AccountUsecase struct {
	auth    AuthProvider
	users   userdom.Repository
	mailer  AccountMailer
	storage ObjectStorage
	avatars AvatarCache
	obs     Observer
	clock   Clock
}

func NewAccountUsecase(auth AuthProvider, users userdom.Repository) *AccountUsecase {
	return &AccountUsecase{auth: auth, users: users, clock: systemClock{}}
}

func (u *AccountUsecase) WithMailer(m AccountMailer) *AccountUsecase {
	u.mailer = m
	return u
}

func (u *AccountUsecase) WithAvatarStorage(s ObjectStorage, c AvatarCache) *AccountUsecase {
	u.storage = s
	u.avatars = c
	return u
}

func (u *AccountUsecase) WithObserver(o Observer) *AccountUsecase {
	u.obs = o
	return u
}

func (u *AccountUsecase) WithClock(c Clock) *AccountUsecase {
	if c != nil {
		u.clock = c
	}
	return u
}

type SignUpInput struct {
	Email       string
	Password    string
	DisplayName string
}

// SignUp creates the auth user, then the users/{uid} profile.
// If the profile write fails the auth user is deleted so no orphan account remains.
func (u *AccountUsecase) SignUp(ctx context.Context, in SignUpInput) (userdom.Profile, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return userdom.Profile{}, common.Invalid("Email is required")
	}
	if in.Password == "" {
		return userdom.Profile{}, common.Invalid("Password is required")
	}
	if len(in.Password) < MinPasswordLength {
		return userdom.Profile{}, common.Invalid("Password must be at least %d characters", MinPasswordLength)
	}

	uid, err := u.auth.CreateUser(ctx, email, in.Password, strings.TrimSpace(in.DisplayName))
	if err != nil {
		return userdom.Profile{}, err
	}

	p, err := userdom.NewProfile(uid, email, in.DisplayName, u.clock.Now())
	if err == nil {
		err = u.users.Create(ctx, p)
	}
	if err != nil {
		observe(u.obs, EventSignUpRollback)
		if derr := u.auth.DeleteUser(ctx, uid); derr != nil {
			log.Printf("[account_usecase] rollback: delete auth user failed uid=%s err=%v", uid, derr)
			return userdom.Profile{}, errors.Join(err, derr)
		}
		log.Printf("[account_usecase] rollback: auth user deleted uid=%s (profile write failed: %v)", uid, err)
		return userdom.Profile{}, err
	}
	return p, nil
}

func (u *AccountUsecase) SendVerificationEmail(ctx context.Context, a Actor) error {
	if err := requireUser(a); err != nil {
		return err
	}
	if a.EmailVerified {
		return nil
	}
	email := strings.TrimSpace(a.Email)
	if email == "" {
		return common.Invalid("Email is required")
	}
	link, err := u.auth.EmailVerificationLink(ctx, email)
	if err != nil {
		return err
	}
	if u.mailer == nil {
		log.Printf("[account_usecase] mailer not configured; verification link generated for %s", maskEmail(email))
		return nil
	}
	return u.mailer.SendVerificationEmail(ctx, email, link)
}

// SendPasswordReset does not reveal whether the address is registered.
func (u *AccountUsecase) SendPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return common.Invalid("Email is required")
	}
	link, err := u.auth.PasswordResetLink(ctx, email)
	if err != nil {
		if userdom.AuthCode(err) == userdom.CodeUserNotFound {
			return nil
		}
		return err
	}
	if u.mailer == nil {
		log.Printf("[account_usecase] mailer not configured; reset link generated for %s", maskEmail(email))
		return nil
	}
	return u.mailer.SendPasswordResetEmail(ctx, email, link)
}

func (u *AccountUsecase) GetProfile(ctx context.Context, a Actor) (userdom.Profile, error) {
	if err := requireUser(a); err != nil {
		return userdom.Profile{}, err
	}
	return u.users.GetByID(ctx, a.UID)
}

func (u *AccountUsecase) UpdateProfile(ctx context.Context, a Actor, displayName string) (userdom.Profile, error) {
	if err := requireUser(a); err != nil {
		return userdom.Profile{}, err
	}
	name := strings.TrimSpace(displayName)
	if len([]rune(name)) > userdom.MaxDisplayNameLength {
		return userdom.Profile{}, common.Invalid("Display name must be at most %d characters", userdom.MaxDisplayNameLength)
	}
	if err := u.users.Update(ctx, a.UID, userdom.Patch{DisplayName: &name}, u.clock.Now()); err != nil {
		return userdom.Profile{}, err
	}
	return u.users.GetByID(ctx, a.UID)
}

// SetAdmin sets the admin custom claim and mirrors it into the profile role.
func (u *AccountUsecase) SetAdmin(ctx context.Context, a Actor, uid string, admin bool) error {
	if err := requireAdmin(a); err != nil {
		return err
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return userdom.ErrInvalidID
	}
	if err := u.auth.SetAdminClaim(ctx, uid, admin); err != nil {
		return err
	}
	role := userdom.RoleUser
	if admin {
		role = userdom.RoleAdmin
	}
	return u.users.Update(ctx, uid, userdom.Patch{Role: &role}, u.clock.Now())
}

// ------------------------------------------------------------
// Avatar
// ------------------------------------------------------------

// UploadAvatar accepts base64 (optionally a data: url), stores the image as avatars/{uid},
// points the profile photoURL at it and caches the base64 payload.
func (u *AccountUsecase) UploadAvatar(ctx context.Context, a Actor, encoded string) (string, error) {
	if err := requireUser(a); err != nil {
		return "", err
	}
	if u.storage == nil {
		return "", errors.New("account: avatar storage not configured")
	}

	payload := stripDataURL(encoded)
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return "", common.Invalid("Avatar must be base64 encoded image data")
	}
	if len(data) > MaxAvatarBytes {
		return "", common.Invalid("Avatar must be at most %d bytes", MaxAvatarBytes)
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", common.Invalid("Avatar must be an image")
	}

	url, err := u.storage.Put(ctx, "avatars/"+a.UID, contentType, data)
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	if err := u.users.Update(ctx, a.UID, userdom.Patch{PhotoURL: &url}, u.clock.Now()); err != nil {
		return "", err
	}
	if u.avatars != nil {
		if err := u.avatars.PutAvatar(ctx, a.UID, payload); err != nil {
			log.Printf("[account_usecase] avatar cache write failed uid=%s err=%v", a.UID, err)
		}
	}
	return url, nil
}

// GetAvatar returns the base64 avatar, cache first, then object storage.
func (u *AccountUsecase) GetAvatar(ctx context.Context, a Actor) (string, error) {
	if err := requireUser(a); err != nil {
		return "", err
	}
	if u.avatars != nil {
		if v, ok, err := u.avatars.GetAvatar(ctx, a.UID); err == nil && ok {
			return v, nil
		}
	}
	if u.storage == nil {
		return "", userdom.ErrNotFound
	}
	data, _, err := u.storage.Get(ctx, "avatars/"+a.UID)
	if errors.Is(err, ErrObjectNotFound) {
		return "", userdom.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	enc := base64.StdEncoding.EncodeToString(data)
	if u.avatars != nil {
		_ = u.avatars.PutAvatar(ctx, a.UID, enc)
	}
	return enc, nil
}

func stripDataURL(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			return s[i+1:]
		}
	}
	return s
}

func maskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 1 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
