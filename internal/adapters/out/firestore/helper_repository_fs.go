// internal/adapters/out/firestore/helper_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var errNilClient = errors.New("firestore: client is nil")

const (
	colUsers         = "users"
	colProducts      = "products"
	colCategories    = "categories"
	colCart          = "cart"
	colOrders        = "orders"
	colTickets       = "tickets"
	colNotifications = "notifications"
	colWishlist      = "wishlist"
)

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// isConflict reports transaction contention / failed preconditions.
func isConflict(err error) bool {
	switch status.Code(err) {
	case codes.Aborted, codes.FailedPrecondition:
		return true
	}
	return false
}

func userDoc(client *firestore.Client, uid string) *firestore.DocumentRef {
	return client.Collection(colUsers).Doc(uid)
}

// readAll drains a query into decoded rows. Rows that fail to decode are logged and skipped.
func readAll[T any](ctx context.Context, q firestore.Query, decode func(*firestore.DocumentSnapshot) (T, error)) ([]T, error) {
	it := q.Documents(ctx)
	defer it.Stop()

	out := make([]T, 0)
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		v, err := decode(snap)
		if err != nil {
			log.Printf("[firestore] skip %s: %v", snap.Ref.Path, err)
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// watchQuery listens to q and re-delivers the full decoded row set on every change
// until ctx is done. It returns nil on cancellation.
func watchQuery[T any](ctx context.Context, q firestore.Query, decode func(*firestore.DocumentSnapshot) (T, error), fn func([]T)) error {
	it := q.Snapshots(ctx)
	defer it.Stop()

	for {
		qs, err := it.Next()
		if err != nil {
			if ctx.Err() != nil || status.Code(err) == codes.Canceled {
				return nil
			}
			return fmt.Errorf("watch: %w", err)
		}

		docs, err := qs.Documents.GetAll()
		if err != nil {
			return fmt.Errorf("watch: read snapshot: %w", err)
		}
		rows := make([]T, 0, qs.Size)
		for _, snap := range docs {
			v, err := decode(snap)
			if err != nil {
				log.Printf("[firestore] watch skip %s: %v", snap.Ref.Path, err)
				continue
			}
			rows = append(rows, v)
		}
		fn(rows)
	}
}

// countQuery runs a server-side COUNT aggregation.
func countQuery(ctx context.Context, q firestore.Query) (int, error) {
	res, err := q.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, err
	}
	v, ok := res["all"]
	if !ok {
		return 0, errors.New("firestore: count result missing")
	}
	pv, ok := v.(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("firestore: unexpected count type %T", v)
	}
	return int(pv.GetIntegerValue()), nil
}
