package domain

// Identity is a caller verified by the identity provider.
type Identity struct {
	UID   string
	Email string
}
