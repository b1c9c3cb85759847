package institute

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vidyank/vidyank-core/internal/auth"
)

// DemoInstituteName names the institute given to the demo institute admin.
const DemoInstituteName = "Vidyank Demo Institute"

// SeedDemoInstitute attaches the demo institute admin to a demo institute,
// creating the institute on first run. An admin that already belongs to an
// institute is left alone. It returns the institute ID, or "" when the demo
// admin does not exist.
func SeedDemoInstitute(ctx context.Context, repo Repository, accounts *auth.AccountService, logger *slog.Logger) (string, error) {
	admins, err := accounts.List(ctx, auth.AccountFilter{Role: auth.RoleInstituteAdmin})
	if err != nil {
		return "", fmt.Errorf("listing institute admins: %w", err)
	}

	var admin *auth.Account
	for i := range admins {
		if admins[i].Email == auth.DemoInstituteAdminEmail {
			admin = &admins[i]
			break
		}
	}
	if admin == nil {
		return "", nil
	}
	if admin.InstituteID != nil {
		return *admin.InstituteID, nil
	}

	inst, err := repo.Create(ctx, NewInstituteInput{Name: DemoInstituteName})
	if err != nil {
		return "", fmt.Errorf("creating demo institute: %w", err)
	}
	if _, err := accounts.Update(ctx, admin.ID, auth.AccountUpdate{InstituteID: &inst.ID}); err != nil {
		return "", fmt.Errorf("assigning demo institute: %w", err)
	}

	logger.Warn("demo institute created",
		"institute_id", inst.ID,
		"admin_email", admin.Email,
	)
	return inst.ID, nil
}
