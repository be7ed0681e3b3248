package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	admin := Principal{UserID: 1, Role: RoleAdmin}
	owner := Principal{UserID: 2, Role: RoleOwner}
	customer := Principal{UserID: 3, Role: RoleCustomer}

	tests := []struct {
		name    string
		p       Principal
		allowed []Role
		ownerID int64
		wantErr error
	}{
		{"admin bypasses role check", admin, []Role{RoleOwner}, 0, nil},
		{"admin bypasses ownership check", admin, []Role{RoleOwner}, 99, nil},
		{"allowed role passes", owner, []Role{RoleOwner}, 0, nil},
		{"wrong role is forbidden", customer, []Role{RoleOwner}, 0, ErrForbidden},
		{"empty allowed set means admin only", owner, nil, 0, ErrForbidden},
		{"owner of the resource passes", owner, []Role{RoleOwner}, 2, nil},
		{"non-owner reads as not found", owner, []Role{RoleOwner}, 5, ErrNotFound},
		{"role check runs before ownership check", customer, []Role{RoleOwner}, 5, ErrForbidden},
		{"zero owner id skips ownership check", customer, []Role{RoleCustomer}, 0, nil},
		{"all roles with ownership masks mismatch", customer, AllRoles, 4, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.p, tt.allowed, tt.ownerID)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
