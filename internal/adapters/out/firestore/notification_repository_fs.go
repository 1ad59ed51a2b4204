// internal/adapters/out/firestore/notification_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"

	notifdom "storefront/internal/domain/notification"
)

// NotificationRepositoryFS: users/{uid}/notifications/{id}
type NotificationRepositoryFS struct {
	Client *firestore.Client
}

func NewNotificationRepositoryFS(client *firestore.Client) *NotificationRepositoryFS {
	return &NotificationRepositoryFS{Client: client}
}

func (r *NotificationRepositoryFS) col(uid string) (*firestore.CollectionRef, error) {
	if r == nil || r.Client == nil {
		return nil, errNilClient
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, errors.New("notification_repository_fs: uid is empty")
	}
	return userDoc(r.Client, uid).Collection(colNotifications), nil
}

func (r *NotificationRepositoryFS) Create(ctx context.Context, uid string, n notifdom.Notification) (notifdom.Notification, error) {
	col, err := r.col(uid)
	if err != nil {
		return notifdom.Notification{}, err
	}
	ref := col.NewDoc()
	if _, err := ref.Create(ctx, n); err != nil {
		return notifdom.Notification{}, err
	}
	n.ID = ref.ID
	return n, nil
}

func (r *NotificationRepositoryFS) List(ctx context.Context, uid string) ([]notifdom.Notification, error) {
	col, err := r.col(uid)
	if err != nil {
		return nil, err
	}
	return readAll(ctx, col.OrderBy("createdAt", firestore.Desc), decodeNotification)
}

func (r *NotificationRepositoryFS) MarkRead(ctx context.Context, uid, id string) error {
	col, err := r.col(uid)
	if err != nil {
		return err
	}
	_, err = col.Doc(strings.TrimSpace(id)).Update(ctx, []firestore.Update{{Path: "read", Value: true}})
	if isNotFound(err) {
		return notifdom.ErrNotFound
	}
	return err
}

// MarkAllRead flips every unread entry in one batch.
func (r *NotificationRepositoryFS) MarkAllRead(ctx context.Context, uid string) error {
	col, err := r.col(uid)
	if err != nil {
		return err
	}
	snaps, err := col.Where("read", "==", false).Documents(ctx).GetAll()
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		return nil
	}
	b := r.Client.Batch()
	for _, s := range snaps {
		b.Update(s.Ref, []firestore.Update{{Path: "read", Value: true}})
	}
	_, err = b.Commit(ctx)
	return err
}

func (r *NotificationRepositoryFS) Delete(ctx context.Context, uid, id string) error {
	col, err := r.col(uid)
	if err != nil {
		return err
	}
	_, err = col.Doc(strings.TrimSpace(id)).Delete(ctx)
	return err
}

func (r *NotificationRepositoryFS) Watch(ctx context.Context, uid string, fn func([]notifdom.Notification)) error {
	col, err := r.col(uid)
	if err != nil {
		return err
	}
	return watchQuery(ctx, col.OrderBy("createdAt", firestore.Desc), decodeNotification, fn)
}

func decodeNotification(snap *firestore.DocumentSnapshot) (notifdom.Notification, error) {
	var n notifdom.Notification
	if err := snap.DataTo(&n); err != nil {
		return notifdom.Notification{}, err
	}
	n.ID = snap.Ref.ID
	return n, nil
}
