package userstore_test

import (
	"errors"
	"testing"
	"time"

	userstore "github.com/dalemusser/carrental/internal/app/store/users"
	"github.com/dalemusser/carrental/internal/app/system/indexes"
	"github.com/dalemusser/carrental/internal/domain/models"
	"github.com/dalemusser/carrental/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	userstore.BcryptCost = bcrypt.MinCost
}

func TestCreate_NormalizesAndHashes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := userstore.New(db)
	u, err := store.Create(ctx, userstore.NewUser{
		FullName: "  Ada Owner ",
		Email:    " Ada@Rent.TEST ",
		Role:     models.RoleCarOwner,
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if u.Email != "ada@rent.test" {
		t.Errorf("Email: got %q, want %q", u.Email, "ada@rent.test")
	}
	if u.FullName != "Ada Owner" {
		t.Errorf("FullName: got %q", u.FullName)
	}
	if u.PasswordHash == "" || u.PasswordHash == "correct-horse" {
		t.Error("expected a bcrypt hash to be stored")
	}

	got, err := store.GetByEmail(ctx, "ADA@rent.test")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("GetByEmail returned a different user")
	}
}

func TestCreate_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := userstore.New(db)
	cases := []userstore.NewUser{
		{Email: "", Role: models.RoleCarOwner, Password: "longenough"},
		{Email: "x@rent.test", Role: "renter", Password: "longenough"},
		{Email: "x@rent.test", Role: models.RoleBusiness, Password: "short"},
	}
	for _, in := range cases {
		if _, err := store.Create(ctx, in); err == nil {
			t.Errorf("expected error for %+v", in)
		}
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	store := userstore.New(db)
	in := userstore.NewUser{Email: "dup@rent.test", Role: models.RoleCarOwner, Password: "longenough"}
	if _, err := store.Create(ctx, in); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	in.Email = "DUP@rent.test"
	if _, err := store.Create(ctx, in); !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := userstore.New(db)
	if _, err := store.Create(ctx, userstore.NewUser{
		FullName: "Biz Owner", Email: "biz@rent.test", Role: models.RoleBusiness, Password: "open-sesame",
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := store.Authenticate(ctx, "biz@rent.test", "open-sesame"); err != nil {
		t.Errorf("expected success, got %v", err)
	}
	if _, err := store.Authenticate(ctx, "biz@rent.test", "wrong-pass"); !errors.Is(err, userstore.ErrBadCredentials) {
		t.Errorf("wrong password: expected ErrBadCredentials, got %v", err)
	}
	if _, err := store.Authenticate(ctx, "nobody@rent.test", "open-sesame"); !errors.Is(err, userstore.ErrBadCredentials) {
		t.Errorf("unknown email: expected ErrBadCredentials, got %v", err)
	}
}

func TestGetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := testutil.NewFixtures(t, db).CreateCarOwner(ctx, "Olga Owner", "olga@rent.test")
	store := userstore.New(db)

	got, err := store.GetByID(ctx, owner.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Email != "olga@rent.test" || got.Role != models.RoleCarOwner {
		t.Errorf("unexpected user: %+v", got)
	}
	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("missing user: expected ErrNoDocuments, got %v", err)
	}
}

func TestSetPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := userstore.New(db)
	u, err := store.Create(ctx, userstore.NewUser{
		FullName: "Olga Owner", Email: "olga@rent.test", Role: models.RoleCarOwner, Password: "open-sesame",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.SetPassword(ctx, u.ID, "short"); err == nil {
		t.Error("expected error for short password")
	}
	if err := store.SetPassword(ctx, u.ID, "new-sesame-42"); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	if _, err := store.Authenticate(ctx, "olga@rent.test", "open-sesame"); !errors.Is(err, userstore.ErrBadCredentials) {
		t.Errorf("old password: expected ErrBadCredentials, got %v", err)
	}
	if _, err := store.Authenticate(ctx, "olga@rent.test", "new-sesame-42"); err != nil {
		t.Errorf("new password: expected success, got %v", err)
	}
	if err := store.SetPassword(ctx, primitive.NewObjectID(), "new-sesame-42"); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("missing user: expected ErrNoDocuments, got %v", err)
	}
}

func TestGetWithCars(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	owner := fx.CreateCarOwner(ctx, "Ada Owner", "ada@rent.test")
	other := fx.CreateCarOwner(ctx, "Bo Other", "bo@rent.test")
	until := time.Now().AddDate(0, 1, 0)
	fx.CreateCar(ctx, owner.ID, "Audi", "A3", until)
	fx.CreateCar(ctx, owner.ID, "Skoda", "Octavia", until.AddDate(-1, 0, 0))
	fx.CreateCar(ctx, other.ID, "Fiat", "Panda", until)

	got, err := userstore.New(db).GetWithCars(ctx, owner.ID)
	if err != nil {
		t.Fatalf("GetWithCars failed: %v", err)
	}
	if got.FullName != "Ada Owner" {
		t.Errorf("FullName: got %q", got.FullName)
	}
	// Owners see all their cars, expired ones included.
	if len(got.Cars) != 2 {
		t.Fatalf("expected 2 cars, got %d", len(got.Cars))
	}
	for _, c := range got.Cars {
		if c.OwnerID != owner.ID {
			t.Errorf("car %s belongs to another owner", c.ID.Hex())
		}
	}
}

func TestGetWithCars_NoCars(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := testutil.NewFixtures(t, db).CreateCarOwner(ctx, "Ada Owner", "ada@rent.test")

	got, err := userstore.New(db).GetWithCars(ctx, owner.ID)
	if err != nil {
		t.Fatalf("GetWithCars failed: %v", err)
	}
	if got.Cars == nil || len(got.Cars) != 0 {
		t.Errorf("expected empty non-nil car list, got %#v", got.Cars)
	}
}

func TestGetWithCars_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := userstore.New(db).GetWithCars(ctx, primitive.NewObjectID())
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}

func TestFetcher_FetchUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := testutil.NewFixtures(t, db).CreateBusinessUser(ctx, "Biz Owner", "biz@rent.test")
	f := userstore.NewFetcher(db)

	su := f.FetchUser(ctx, u.ID.Hex())
	if su == nil {
		t.Fatal("expected session user")
	}
	if su.Role != models.RoleBusiness || su.Email != "biz@rent.test" || su.Name != "Biz Owner" {
		t.Errorf("unexpected session user: %+v", su)
	}

	if f.FetchUser(ctx, "not-an-id") != nil {
		t.Error("expected nil for malformed id")
	}
	if f.FetchUser(ctx, primitive.NewObjectID().Hex()) != nil {
		t.Error("expected nil for unknown id")
	}
}
