package auth

// CheckOwnership allows the call only when identity owns the resource.
// It performs no I/O; callers resolve resource existence first.
func CheckOwnership(identity Identity, ownerID int64) error {
	if !identity.Valid() || identity.UserID != ownerID {
		return ErrForbidden
	}
	return nil
}
