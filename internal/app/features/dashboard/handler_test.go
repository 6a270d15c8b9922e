package dashboard_test

import (
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/carrental/internal/app/features/dashboard"
	"github.com/dalemusser/carrental/internal/app/system/auth"
	"github.com/dalemusser/carrental/internal/app/system/authz"
	"github.com/dalemusser/carrental/internal/domain/models"
	"github.com/dalemusser/carrental/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type rendered struct {
	name string
	data any
}

func newTestHandler(t *testing.T) (*dashboard.Handler, *mongo.Database, *rendered) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	h := dashboard.NewHandler(db, authz.Policy{AdminEmail: testutil.AdminEmail}, zap.NewNop())

	got := &rendered{}
	h.Render = func(w http.ResponseWriter, r *http.Request, name string, data any) {
		got.name = name
		got.data = data
		w.WriteHeader(http.StatusOK)
	}
	return h, db, got
}

func TestServeDashboard_Unauthenticated(t *testing.T) {
	h, _, got := newTestHandler(t)

	rec := testutil.NewRecorder()
	req, _ := http.NewRequest("GET", "/dashboard", nil)
	h.ServeDashboard(rec, req)

	rec.AssertRedirect(t, "/")
	if got.name != "" {
		t.Errorf("rendered %q for anonymous request", got.name)
	}
}

func TestServeDashboard_UnknownRole(t *testing.T) {
	h, _, got := newTestHandler(t)

	u := &auth.SessionUser{ID: primitive.NewObjectID().Hex(), Name: "Guest", Email: "guest@rent.test", Role: "guest"}
	rec := testutil.NewRecorder()
	h.ServeDashboard(rec, testutil.NewAuthenticatedRequest("GET", "/dashboard", u))

	rec.AssertRedirect(t, "/")
	if got.name != "" {
		t.Errorf("rendered %q for unknown role", got.name)
	}
}

func TestServeDashboard_CarOwner(t *testing.T) {
	h, db, got := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	owner := fx.CreateCarOwner(ctx, "Olga Owner", "olga@rent.test")
	fx.CreateCar(ctx, owner.ID, "Honda", "Civic", time.Now().AddDate(0, 0, -3))
	fx.CreateCar(ctx, owner.ID, "Mazda", "3", time.Now().AddDate(0, 1, 0))

	rec := testutil.NewRecorder()
	h.ServeDashboard(rec, testutil.NewAuthenticatedRequest("GET", "/dashboard", testutil.SessionUserFor(owner)))

	rec.AssertStatus(t, http.StatusOK)
	if got.name != "owner_dashboard" {
		t.Fatalf("template: got %q, want owner_dashboard", got.name)
	}
	v := reflectField(t, got.data, "Cars")
	if n := lenOf(v); n != 2 {
		t.Errorf("owner sees %d cars, want 2 (expired included)", n)
	}
	if s := reflectField(t, got.data, "AddCarURL").(string); s != "/cars/new/"+owner.ID.Hex()+"/carOwner" {
		t.Errorf("AddCarURL: got %q", s)
	}
	if s := reflectField(t, got.data, "RoleLabel").(string); s != "Car owner" {
		t.Errorf("RoleLabel: got %q", s)
	}
}

func TestServeDashboard_CarOwnerWithAdminEmail(t *testing.T) {
	h, db, got := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	owner := fx.CreateCarOwner(ctx, "Ada Admin", testutil.AdminEmail)

	rec := testutil.NewRecorder()
	h.ServeDashboard(rec, testutil.NewAuthenticatedRequest("GET", "/dashboard", testutil.SessionUserFor(owner)))

	if got.name != "owner_dashboard" {
		t.Errorf("template: got %q, want owner_dashboard", got.name)
	}
}

func TestServeDashboard_Admin(t *testing.T) {
	h, db, got := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	admin := fx.CreateUser(ctx, "Ada Admin", strings.ToUpper(testutil.AdminEmail), "admin")
	owner := fx.CreateCarOwner(ctx, "Olga Owner", "olga@rent.test")
	fx.CreateCar(ctx, owner.ID, "Honda", "Civic", time.Now().AddDate(0, 0, -3))
	fx.CreateCar(ctx, owner.ID, "Mazda", "3", time.Now().AddDate(0, 1, 0))
	biz := fx.CreateBusinessUser(ctx, "Bo Biz", "bo@rent.test")
	fx.CreateBusiness(ctx, biz.ID, "Acme Rentals", models.BusinessPending, "")

	rec := testutil.NewRecorder()
	h.ServeDashboard(rec, testutil.NewAuthenticatedRequest("GET", "/dashboard", testutil.SessionUserFor(admin)))

	if got.name != "admin_dashboard" {
		t.Fatalf("template: got %q, want admin_dashboard", got.name)
	}
	if n := lenOf(reflectField(t, got.data, "Cars")); n != 1 {
		t.Errorf("admin sees %d cars, want 1 available", n)
	}
	if n := lenOf(reflectField(t, got.data, "Businesses")); n != 1 {
		t.Errorf("admin sees %d businesses, want 1", n)
	}
}

func TestServeDashboard_Business(t *testing.T) {
	h, db, got := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	u := fx.CreateBusinessUser(ctx, "Bo Biz", "bo@rent.test")
	fx.CreateBusiness(ctx, u.ID, "Acme Rentals", models.BusinessDeclined, "Missing insurance")

	rec := testutil.NewRecorder()
	h.ServeDashboard(rec, testutil.NewAuthenticatedRequest("GET", "/dashboard", testutil.SessionUserFor(u)))

	if got.name != "business_dashboard" {
		t.Fatalf("template: got %q, want business_dashboard", got.name)
	}
	if s := reflectField(t, got.data, "DisplayName").(string); s != "Acme Rentals" {
		t.Errorf("DisplayName: got %q, want business name", s)
	}
	if s := reflectField(t, got.data, "UserName").(string); s != "Bo Biz" {
		t.Errorf("UserName: got %q", s)
	}
	if s := reflectField(t, got.data, "DeclineReason").(string); s != "Missing insurance" {
		t.Errorf("DeclineReason: got %q", s)
	}
}

func TestServeDashboard_BusinessNotRegistered(t *testing.T) {
	h, db, got := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	u := fx.CreateBusinessUser(ctx, "Bo Biz", "bo@rent.test")

	rec := testutil.NewRecorder()
	h.ServeDashboard(rec, testutil.NewAuthenticatedRequest("GET", "/dashboard", testutil.SessionUserFor(u)))

	rec.AssertStatus(t, http.StatusOK)
	if got.name != "business_dashboard" {
		t.Fatalf("template: got %q", got.name)
	}
	if b := reflectField(t, got.data, "HasBusiness").(bool); b {
		t.Error("HasBusiness should be false")
	}
}

func TestHandleOwnerDeleteCar(t *testing.T) {
	h, db, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	owner := fx.CreateCarOwner(ctx, "Olga Owner", "olga@rent.test")
	other := fx.CreateCarOwner(ctx, "Oscar Other", "oscar@rent.test")
	car := fx.CreateCar(ctx, other.ID, "Honda", "Civic", time.Now().AddDate(0, 1, 0))

	// Another owner's car is reported missing and left alone.
	req := testutil.NewAuthenticatedRequest("POST", "/dashboard/cars/"+car.ID.Hex()+"/delete", testutil.SessionUserFor(owner))
	req = testutil.WithChiURLParam(req, "id", car.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleOwnerDeleteCar(rec, req)
	rec.AssertRedirect(t, "/dashboard?notice=car-missing")

	n, _ := db.Collection("cars").CountDocuments(ctx, bson.M{"_id": car.ID})
	if n != 1 {
		t.Fatal("car of another owner was deleted")
	}

	req = testutil.NewAuthenticatedRequest("POST", "/dashboard/cars/"+car.ID.Hex()+"/delete", testutil.SessionUserFor(other))
	req = testutil.WithChiURLParam(req, "id", car.ID.Hex())
	rec = testutil.NewRecorder()
	h.HandleOwnerDeleteCar(rec, req)
	rec.AssertRedirect(t, "/dashboard?notice=car-removed")

	n, _ = db.Collection("cars").CountDocuments(ctx, bson.M{"_id": car.ID})
	if n != 0 {
		t.Error("car was not deleted")
	}
}

func TestHandleOwnerDeleteCar_BadID(t *testing.T) {
	h, db, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	owner := testutil.NewFixtures(t, db).CreateCarOwner(ctx, "Olga Owner", "olga@rent.test")

	req := testutil.NewAuthenticatedRequest("POST", "/dashboard/cars/nope/delete", testutil.SessionUserFor(owner))
	req = testutil.WithChiURLParam(req, "id", "nope")
	rec := testutil.NewRecorder()
	h.HandleOwnerDeleteCar(rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestHandleAdminDecide(t *testing.T) {
	h, db, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	admin := fx.CreateUser(ctx, "Ada Admin", testutil.AdminEmail, "admin")
	u := fx.CreateBusinessUser(ctx, "Bo Biz", "bo@rent.test")
	b := fx.CreateBusiness(ctx, u.ID, "Acme Rentals", models.BusinessPending, "")

	post := func(form url.Values) *testutil.ResponseRecorder {
		req, _ := http.NewRequest("POST", "/dashboard/admin/businesses/"+b.ID.Hex()+"/decide", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req = auth.WithTestUser(req, testutil.SessionUserFor(admin))
		req = testutil.WithChiURLParam(req, "id", b.ID.Hex())
		rec := testutil.NewRecorder()
		h.HandleAdminDecide(rec, req)
		return rec
	}

	// Declining without a reason is rejected.
	post(url.Values{"status": {"declined"}}).AssertRedirect(t, "/dashboard?notice=decide-failed")

	post(url.Values{"status": {"declined"}, "reason": {"<b>No insurance</b>"}}).AssertRedirect(t, "/dashboard?notice=decided")

	var stored models.Business
	if err := db.Collection("businesses").FindOne(ctx, bson.M{"_id": b.ID}).Decode(&stored); err != nil {
		t.Fatalf("load business: %v", err)
	}
	if stored.Status != models.BusinessDeclined || stored.DeclineReason != "No insurance" {
		t.Errorf("stored: status=%q reason=%q", stored.Status, stored.DeclineReason)
	}
}

func TestHandleAdminDeleteCar(t *testing.T) {
	h, db, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	admin := fx.CreateUser(ctx, "Ada Admin", testutil.AdminEmail, "admin")
	owner := fx.CreateCarOwner(ctx, "Olga Owner", "olga@rent.test")
	car := fx.CreateCar(ctx, owner.ID, "Honda", "Civic", time.Now().AddDate(0, 1, 0))

	req := testutil.NewAuthenticatedRequest("POST", "/dashboard/admin/cars/"+car.ID.Hex()+"/delete", testutil.SessionUserFor(admin))
	req = testutil.WithChiURLParam(req, "id", car.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleAdminDeleteCar(rec, req)

	rec.AssertRedirect(t, "/dashboard?notice=car-removed")
}

// reflectField reads an exported field from one of the unexported view
// models the handler renders.
func reflectField(t *testing.T, data any, name string) any {
	t.Helper()
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	f := v.FieldByName(name)
	if !f.IsValid() {
		t.Fatalf("view model %T has no field %q", data, name)
	}
	return f.Interface()
}

func lenOf(v any) int {
	return reflect.ValueOf(v).Len()
}
