package services

// Actor is the authenticated caller of a use case.
type Actor struct {
	UserID string
	Admin  bool
}

// CanAccess reports whether the actor may act on a resource owned by ownerID.
func (a Actor) CanAccess(ownerID string) bool {
	return a.Admin || (a.UserID != "" && a.UserID == ownerID)
}
