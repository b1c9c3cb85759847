package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vidyank/vidyank-core/internal/validation"
)

func newTestService(t *testing.T) *AccountService {
	t.Helper()
	return NewAccountService(newTestRepo(t))
}

func TestAccountService_Create(t *testing.T) {
	svc := newTestService(t)
	institute := " ins-42 "

	account, err := svc.Create(context.Background(), NewAccountInput{
		Name:        "  Ravi Kumar ",
		Email:       "Ravi@Example.COM",
		Password:    "secret1",
		Role:        RoleTeacher,
		InstituteID: &institute,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if account.Name != "Ravi Kumar" || account.Email != "ravi@example.com" {
		t.Errorf("account = %+v", account)
	}
	if !account.IsActive {
		t.Error("new accounts should be active")
	}
	if account.InstituteID == nil || *account.InstituteID != "ins-42" {
		t.Errorf("InstituteID = %v, want ins-42", account.InstituteID)
	}
	if account.PasswordHash == "secret1" || !VerifyPassword("secret1", account.PasswordHash) {
		t.Error("password should be stored hashed")
	}
}

func TestAccountService_CreateValidation(t *testing.T) {
	valid := NewAccountInput{Name: "A", Email: "a@example.com", Password: "secret1", Role: RoleStudent}

	tests := []struct {
		name   string
		mutate func(*NewAccountInput)
		field  string
	}{
		{name: "blank name", mutate: func(in *NewAccountInput) { in.Name = "  " }, field: "name"},
		{name: "missing email", mutate: func(in *NewAccountInput) { in.Email = "" }, field: "email"},
		{name: "bad email", mutate: func(in *NewAccountInput) { in.Email = "not-an-email" }, field: "email"},
		{name: "short password", mutate: func(in *NewAccountInput) { in.Password = "12345" }, field: "password"},
		{name: "long password", mutate: func(in *NewAccountInput) { in.Password = strings.Repeat("x", 73) }, field: "password"},
		{name: "unknown role", mutate: func(in *NewAccountInput) { in.Role = "ADMIN" }, field: "role"},
		{name: "lower-case role", mutate: func(in *NewAccountInput) { in.Role = "teacher" }, field: "role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t)
			in := valid
			tt.mutate(&in)

			_, err := svc.Create(context.Background(), in)
			if !errors.Is(err, ErrInvalidAccount) {
				t.Fatalf("Create() error = %v, want ErrInvalidAccount", err)
			}
			var verrs validation.Errors
			if !errors.As(err, &verrs) {
				t.Fatalf("Create() error %v carries no field errors", err)
			}
			if verrs[0].Field != tt.field {
				t.Errorf("field = %q, want %q", verrs[0].Field, tt.field)
			}
		})
	}
}

func TestAccountService_CreateDuplicate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	in := NewAccountInput{Name: "A", Email: "a@example.com", Password: "secret1", Role: RoleStudent}

	if _, err := svc.Create(ctx, in); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	in.Email = "A@EXAMPLE.com"
	if _, err := svc.Create(ctx, in); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("second Create() error = %v, want ErrEmailExists", err)
	}
}

func TestAccountService_Update(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	account, err := svc.Create(ctx, NewAccountInput{Name: "Old", Email: "u@example.com", Password: "secret1", Role: RoleParent})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	name, password, institute := "New Name", "changed1", "ins-7"
	updated, err := svc.Update(ctx, account.ID, AccountUpdate{Name: &name, Password: &password, InstituteID: &institute})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != "New Name" || updated.Role != RoleParent {
		t.Errorf("updated = %+v", updated)
	}

	reloaded, err := svc.Get(ctx, account.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !VerifyPassword("changed1", reloaded.PasswordHash) {
		t.Error("password was not changed")
	}
	if reloaded.InstituteID == nil || *reloaded.InstituteID != "ins-7" {
		t.Errorf("InstituteID = %v", reloaded.InstituteID)
	}

	none := ""
	cleared, err := svc.Update(ctx, account.ID, AccountUpdate{InstituteID: &none})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if cleared.InstituteID != nil {
		t.Errorf("InstituteID = %v, want nil", *cleared.InstituteID)
	}
}

func TestAccountService_UpdateRejects(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	account, err := svc.Create(ctx, NewAccountInput{Name: "A", Email: "r@example.com", Password: "secret1", Role: RoleStudent})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	blank, short := " ", "123"
	if _, err := svc.Update(ctx, account.ID, AccountUpdate{Name: &blank}); !errors.Is(err, ErrInvalidAccount) {
		t.Errorf("blank name error = %v, want ErrInvalidAccount", err)
	}
	if _, err := svc.Update(ctx, account.ID, AccountUpdate{Password: &short}); !errors.Is(err, ErrInvalidAccount) {
		t.Errorf("short password error = %v, want ErrInvalidAccount", err)
	}
	long := strings.Repeat("é", 40)
	if _, err := svc.Update(ctx, account.ID, AccountUpdate{Password: &long}); !errors.Is(err, ErrInvalidAccount) {
		t.Errorf("80-byte password error = %v, want ErrInvalidAccount", err)
	}
	if _, err := svc.Update(ctx, "acc-missing", AccountUpdate{}); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("missing account error = %v, want ErrAccountNotFound", err)
	}
}

func TestAccountService_CreateRejectsPasswordOverByteLimit(t *testing.T) {
	svc := newTestService(t)

	// 40 runes, 80 bytes.
	_, err := svc.Create(context.Background(), NewAccountInput{
		Name: "A", Email: "mb@example.com", Password: strings.Repeat("é", 40), Role: RoleStudent,
	})
	if !errors.Is(err, ErrInvalidAccount) {
		t.Fatalf("Create() error = %v, want ErrInvalidAccount", err)
	}
	var verrs validation.Errors
	if !errors.As(err, &verrs) || len(verrs) != 1 || verrs[0].Field != "password" {
		t.Errorf("Create() error = %v, want a single password field error", err)
	}
}

func TestAccountService_UpdateKeepsDeactivation(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewAccountService(repo)
	ctx := context.Background()
	account := createTestAccount(t, repo, "k@example.com", "secret1", RoleTeacher)

	if _, err := svc.Deactivate(ctx, account.ID); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}
	name, password := "Still Inactive", "changed1"
	updated, err := svc.Update(ctx, account.ID, AccountUpdate{Name: &name, Password: &password})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.IsActive {
		t.Error("Update() reactivated a deactivated account")
	}
	if !VerifyPassword("changed1", updated.PasswordHash) {
		t.Error("password was not changed")
	}
}

func TestAccountService_Deactivate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	account, err := svc.Create(ctx, NewAccountInput{Name: "A", Email: "d@example.com", Password: "secret1", Role: RoleTeacher})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := svc.Deactivate(ctx, account.ID)
	if err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}
	if got.IsActive {
		t.Error("account should be inactive")
	}
}

func TestCanProvision(t *testing.T) {
	tests := []struct {
		creator Role
		target  Role
		want    bool
	}{
		{RoleSuperAdmin, RoleSuperAdmin, true},
		{RoleSuperAdmin, RoleInstituteAdmin, true},
		{RoleSuperAdmin, RoleParent, true},
		{RoleSuperAdmin, Role("ADMIN"), false},
		{RoleInstituteAdmin, RoleTeacher, true},
		{RoleInstituteAdmin, RoleStudent, true},
		{RoleInstituteAdmin, RoleParent, true},
		{RoleInstituteAdmin, RoleInstituteAdmin, false},
		{RoleInstituteAdmin, RoleSuperAdmin, false},
		{RoleTeacher, RoleStudent, false},
		{RoleStudent, RoleStudent, false},
		{RoleParent, RoleStudent, false},
	}

	for _, tt := range tests {
		if got := CanProvision(tt.creator, tt.target); got != tt.want {
			t.Errorf("CanProvision(%s, %s) = %v, want %v", tt.creator, tt.target, got, tt.want)
		}
	}
}
