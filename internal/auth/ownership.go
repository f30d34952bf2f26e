package auth

import "errors"

// Ownership errors.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("not the owner of this resource")
)

// Owned is implemented by resources that record the identity that created them.
type Owned interface {
	OwnerID() string
}

// AssertOwner is the single ownership check applied before any update or
// delete. A nil resource means the lookup did not resolve.
func AssertOwner[R any, P interface {
	*R
	Owned
}](resource P, actingUserID string) error {
	if resource == nil {
		return ErrNotFound
	}
	if actingUserID == "" || resource.OwnerID() != actingUserID {
		return ErrForbidden
	}
	return nil
}
