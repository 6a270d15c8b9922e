package indexes_test

import (
	"testing"

	"github.com/dalemusser/carrental/internal/app/system/indexes"
	"github.com/dalemusser/carrental/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("first EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesNamedIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	want := map[string][]string{
		"users":      {"uniq_users_email", "idx_users_role"},
		"cars":       {"idx_cars_owner_created", "idx_cars_available_until"},
		"businesses": {"uniq_businesses_user", "idx_businesses_name_ci"},
	}
	for coll, names := range want {
		cur, err := db.Collection(coll).Indexes().List(ctx)
		if err != nil {
			t.Fatalf("list %s indexes: %v", coll, err)
		}
		var got []bson.M
		if err := cur.All(ctx, &got); err != nil {
			t.Fatalf("decode %s indexes: %v", coll, err)
		}
		have := map[string]bool{}
		for _, idx := range got {
			if n, ok := idx["name"].(string); ok {
				have[n] = true
			}
		}
		for _, n := range names {
			if !have[n] {
				t.Errorf("%s: missing index %q", coll, n)
			}
		}
	}
}
