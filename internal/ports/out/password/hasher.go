package password

// Hasher is the one-way, internally salted credential hashing capability.
// Callers never inspect the hash format.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}
