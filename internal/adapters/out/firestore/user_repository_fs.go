// internal/adapters/out/firestore/user_repository_fs.go
package firestore

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	userdom "storefront/internal/domain/user"
)

// UserRepositoryFS: users/{uid}
type UserRepositoryFS struct {
	Client *firestore.Client
}

func NewUserRepositoryFS(client *firestore.Client) *UserRepositoryFS {
	return &UserRepositoryFS{Client: client}
}

func (r *UserRepositoryFS) Create(ctx context.Context, p userdom.Profile) error {
	if r == nil || r.Client == nil {
		return errNilClient
	}
	if strings.TrimSpace(p.UID) == "" {
		return userdom.ErrInvalidID
	}
	_, err := userDoc(r.Client, p.UID).Set(ctx, p)
	return err
}

func (r *UserRepositoryFS) GetByID(ctx context.Context, uid string) (userdom.Profile, error) {
	if r == nil || r.Client == nil {
		return userdom.Profile{}, errNilClient
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return userdom.Profile{}, userdom.ErrNotFound
	}
	snap, err := userDoc(r.Client, uid).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return userdom.Profile{}, userdom.ErrNotFound
		}
		return userdom.Profile{}, err
	}
	return decodeProfile(snap)
}

// Update writes only the patched fields.
func (r *UserRepositoryFS) Update(ctx context.Context, uid string, patch userdom.Patch, now time.Time) error {
	if r == nil || r.Client == nil {
		return errNilClient
	}
	updates := []firestore.Update{{Path: "updatedAt", Value: now.UTC()}}
	if patch.DisplayName != nil {
		updates = append(updates, firestore.Update{Path: "displayName", Value: strings.TrimSpace(*patch.DisplayName)})
	}
	if patch.PhotoURL != nil {
		updates = append(updates, firestore.Update{Path: "photoURL", Value: strings.TrimSpace(*patch.PhotoURL)})
	}
	if patch.Role != nil {
		updates = append(updates, firestore.Update{Path: "role", Value: string(*patch.Role)})
	}
	_, err := userDoc(r.Client, strings.TrimSpace(uid)).Update(ctx, updates)
	if isNotFound(err) {
		return userdom.ErrNotFound
	}
	return err
}

func (r *UserRepositoryFS) List(ctx context.Context) ([]userdom.Profile, error) {
	if r == nil || r.Client == nil {
		return nil, errNilClient
	}
	return readAll(ctx, r.Client.Collection(colUsers).Query, decodeProfile)
}

func (r *UserRepositoryFS) WatchAll(ctx context.Context, fn func([]userdom.Profile)) error {
	if r == nil || r.Client == nil {
		return errNilClient
	}
	return watchQuery(ctx, r.Client.Collection(colUsers).Query, decodeProfile, fn)
}

func decodeProfile(snap *firestore.DocumentSnapshot) (userdom.Profile, error) {
	var p userdom.Profile
	if err := snap.DataTo(&p); err != nil {
		return userdom.Profile{}, err
	}
	p.UID = snap.Ref.ID
	return p, nil
}
