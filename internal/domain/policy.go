package domain

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID int64
	Role   Role
}

// Authorize is the single access decision for every protected operation.
// Rules, in order:
//  1. Admins pass unconditionally.
//  2. A role outside the allowed set is denied with ErrForbidden. An empty
//     allowed set therefore means admin-only.
//  3. When ownerID is nonzero, a principal that is not the owner is denied
//     with ErrNotFound, masking whether the resource exists at all.
func Authorize(p Principal, allowed []Role, ownerID int64) error {
	if p.Role == RoleAdmin {
		return nil
	}
	roleAllowed := false
	for _, r := range allowed {
		if p.Role == r {
			roleAllowed = true
			break
		}
	}
	if !roleAllowed {
		return ErrForbidden
	}
	if ownerID != 0 && p.UserID != ownerID {
		return ErrNotFound
	}
	return nil
}
