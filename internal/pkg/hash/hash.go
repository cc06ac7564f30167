package hash

// Hash hashes plaintext secrets and verifies them against stored hashes.
type Hash interface {
	// Hash returns the hash of plaintext.
	Hash(plaintext string) ([]byte, error)

	// Verify reports whether plaintext matches the stored hash.
	Verify(hashed, plaintext string) bool
}
