package service

import (
	"context"
	"errors"
	"strings"

	"github.com/recipic-shop/recipic/internal/auth/domain"
	"github.com/recipic-shop/recipic/internal/auth/store"
	"github.com/recipic-shop/recipic/pkg/cryptox"
	"github.com/recipic-shop/recipic/pkg/slogx"
)

// Authenticator verifies email/password credentials against the member
// store and produces the Principal that token issuance works from.
type Authenticator struct {
	Store store.Store
}

// Authenticate checks credentials. Unknown email and wrong password both
// come back as ErrInvalidCredentials, so a caller can't probe which emails
// exist. Members who haven't activated their account get ErrNotActivated.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (domain.Principal, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	member, err := a.Store.Members().GetMemberByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn comparable time so unknown emails aren't measurably
			// faster than wrong passwords.
			_ = cryptox.VerifyPassword(password, cryptox.DummyHash)
			return domain.Principal{}, ErrInvalidCredentials
		}
		return domain.Principal{}, err
	}

	if err := cryptox.VerifyPassword(password, member.PasswordHash); err != nil {
		slogx.FromContext(ctx).Info("login password mismatch", "member_id", member.ID)
		return domain.Principal{}, ErrInvalidCredentials
	}

	if !member.Activated {
		return domain.Principal{}, ErrNotActivated
	}

	return member.Principal(), nil
}
