package user

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go-gamifier/internal/common/errs"
	"go-gamifier/internal/common/models"
	"go-gamifier/internal/storetest"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (*UserServiceImpl, *storetest.Store, *storetest.Publisher, string) {
	t.Helper()
	store := storetest.New()
	org := &models.Organization{ID: primitive.NewObjectID(), Name: "Starfleet", FederationID: "UFP-001", Active: true}
	store.Orgs.Put(org)
	pub := &storetest.Publisher{}
	svc := &UserServiceImpl{
		UserRepo:  store.Users,
		OrgRepo:   store.Orgs,
		Events:    store.Events,
		Publisher: pub,
		Tx:        store.Tx,
		Logger:    zap.NewNop(),
		Now:       func() time.Time { return time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC) },
	}
	return svc, store, pub, org.ID.Hex()
}

func TestCreateUser(t *testing.T) {
	svc, store, pub, orgID := newTestService(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, orgID, UserInput{EmployeeID: " E1 ", Name: "Jean-Luc", Surname: "Picard", Role: "admin"}, "actor")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.EmployeeID != "E1" || u.Role != models.RoleAdmin || u.TotalPoints != 0 || u.CurrentRankID != nil {
		t.Errorf("unexpected user: %+v", u)
	}

	events := store.Events.OfType(models.EventUserRegistered)
	if len(events) != 1 || events[0].Message != "User registered: Jean-Luc Picard" || events[0].UserID != u.ID.Hex() {
		t.Errorf("unexpected events: %+v", events)
	}
	if len(pub.Events()) != 1 {
		t.Errorf("registration not published")
	}

	_, err = svc.CreateUser(ctx, orgID, UserInput{EmployeeID: "E1", Name: "Other"}, "actor")
	if !errors.Is(err, errs.ErrConflict) || err.Error() != "Employee ID already exists: E1" {
		t.Errorf("duplicate: unexpected error %v", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	svc, store, _, orgID := newTestService(t)
	inactive := &models.Organization{ID: primitive.NewObjectID(), Name: "Closed", FederationID: "X", Active: false}
	store.Orgs.Put(inactive)

	tests := []struct {
		name  string
		orgID string
		in    UserInput
		want  error
	}{
		{"missing employee id", orgID, UserInput{Name: "A"}, errs.ErrValidation},
		{"missing name", orgID, UserInput{EmployeeID: "E9"}, errs.ErrValidation},
		{"unknown role", orgID, UserInput{EmployeeID: "E9", Name: "A", Role: "CAPTAIN"}, errs.ErrValidation},
		{"own manager", orgID, UserInput{EmployeeID: "E9", Name: "A", ManagerEmployeeID: "E9"}, errs.ErrValidation},
		{"inactive org", inactive.ID.Hex(), UserInput{EmployeeID: "E9", Name: "A"}, errs.ErrValidation},
		{"unknown org", primitive.NewObjectID().Hex(), UserInput{EmployeeID: "E9", Name: "A"}, errs.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateUser(context.Background(), tt.orgID, tt.in, "actor"); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestUpdateProfileRejectsManagerCycles(t *testing.T) {
	svc, _, _, orgID := newTestService(t)
	ctx := context.Background()

	// M1 <- E1 <- E2
	m1, _ := svc.CreateUser(ctx, orgID, UserInput{EmployeeID: "M1", Name: "M"}, "actor")
	e1, _ := svc.CreateUser(ctx, orgID, UserInput{EmployeeID: "E1", Name: "E", ManagerEmployeeID: "M1"}, "actor")
	if _, err := svc.CreateUser(ctx, orgID, UserInput{EmployeeID: "E2", Name: "F", ManagerEmployeeID: "E1"}, "actor"); err != nil {
		t.Fatalf("create E2: %v", err)
	}

	_, err := svc.UpdateProfile(ctx, m1.ID.Hex(), ProfileInput{Name: "M", ManagerEmployeeID: "E2"})
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected cycle rejection, got %v", err)
	}

	// A manager that is not registered yet is accepted.
	updated, err := svc.UpdateProfile(ctx, m1.ID.Hex(), ProfileInput{Name: "M", ManagerEmployeeID: "ADM", Department: "Bridge"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ManagerEmployeeID != "ADM" || updated.Department != "Bridge" || updated.Role != models.RoleUser {
		t.Errorf("unexpected profile: %+v", updated)
	}

	reports, err := svc.DirectReports(ctx, m1.ID.Hex())
	if err != nil || len(reports) != 1 || reports[0].ID != e1.ID {
		t.Errorf("unexpected reports: %+v (%v)", reports, err)
	}
}

func TestImportUsersFile(t *testing.T) {
	svc, store, _, orgID := newTestService(t)
	csv := strings.Join([]string{
		"Employee_ID,Name,Surname,Manager_Employee_ID,Role,Department",
		"M1,Kathryn,Janeway,,ADMIN,Command",
		"E1,Tuvok,,M1,,Security",
		"E1,Duplicate,,M1,,",
		"E2,,Nameless,M1,,",
		"E3,B'Elanna,Torres,M1,user,Engineering",
	}, "\n")

	result, err := svc.ImportUsersFile(context.Background(), orgID, "crew.csv", strings.NewReader(csv), "actor")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.TotalRecords != 5 || result.SuccessfulImports != 3 || result.FailedImports != 2 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	want := []string{"Line 3: Employee ID already exists: E1", "Line 4: Name is required"}
	for i, w := range want {
		if result.Errors[i] != w {
			t.Errorf("error %d: expected %q, got %q", i, w, result.Errors[i])
		}
	}

	page, err := svc.ListUsers(context.Background(), orgID, 1, 10)
	if err != nil || page.Total != 3 {
		t.Fatalf("unexpected page: %+v (%v)", page, err)
	}
	if n := len(store.Events.OfType(models.EventUserRegistered)); n != 3 {
		t.Errorf("expected 3 registrations, got %d", n)
	}
}

func TestImportUsersFileRequiresColumns(t *testing.T) {
	svc, _, _, orgID := newTestService(t)
	_, err := svc.ImportUsersFile(context.Background(), orgID, "crew.csv", strings.NewReader("employee_id,name\nE1,A\n"), "actor")
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = svc.ImportUsersFile(context.Background(), orgID, "crew.txt", strings.NewReader(""), "actor")
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error for unsupported format, got %v", err)
	}
}

func TestRosterChangesInvalidateStandings(t *testing.T) {
	svc, _, _, orgID := newTestService(t)
	cache := &storetest.Invalidations{}
	svc.Cache = cache
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, orgID, UserInput{EmployeeID: "E1", Name: "Geordi", Surname: "La Forge"}, "actor")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if cache.Count() != 1 {
		t.Errorf("expected one invalidation after create, got %d", cache.Count())
	}

	if _, err := svc.CreateUser(ctx, orgID, UserInput{EmployeeID: "E1", Name: "Again"}, "actor"); err == nil {
		t.Fatal("expected duplicate rejection")
	}
	if cache.Count() != 1 {
		t.Errorf("a rejected create should not invalidate, got %d", cache.Count())
	}

	if _, err := svc.UpdateProfile(ctx, u.ID.Hex(), ProfileInput{Name: "Geordi", Department: "Engineering"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if cache.Count() != 2 {
		t.Errorf("expected an invalidation after a department change, got %d", cache.Count())
	}
}
