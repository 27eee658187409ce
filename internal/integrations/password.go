package integrations

import "golang.org/x/crypto/bcrypt"

// DefaultHashCost matches the teacher's bcrypt cost for password hashing.
const DefaultHashCost = 12

// PasswordUtil hashes and verifies passwords. The salt is embedded in
// bcrypt's own hash output; Salt is kept as a separate field on User
// to satisfy the natural-key data model in spec.md §3 (callers must
// not need to parse the hash to recover it), but bcrypt itself only
// needs Hash to verify.
type PasswordUtil interface {
	CreateSaltAndHash(password string) (salt, hash string, err error)
	Verify(password, salt, hash string) bool
}

// BcryptPasswordUtil is the production PasswordUtil.
type BcryptPasswordUtil struct {
	Cost int
}

// NewBcryptPasswordUtil returns a BcryptPasswordUtil using DefaultHashCost.
func NewBcryptPasswordUtil() *BcryptPasswordUtil {
	return &BcryptPasswordUtil{Cost: DefaultHashCost}
}

// CreateSaltAndHash hashes password with bcrypt. bcrypt generates and
// embeds its own salt; the returned salt is a UUID-derived tag stored
// alongside the hash purely as an opaque natural-key style attribute,
// never fed back into verification directly.
func (p *BcryptPasswordUtil) CreateSaltAndHash(password string) (string, string, error) {
	cost := p.Cost
	if cost == 0 {
		cost = DefaultHashCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", "", err
	}
	return UUIDGenerator{}.Generate(), string(hash), nil
}

// Verify reports whether password matches hash. salt is accepted for
// interface symmetry with CreateSaltAndHash but unused: bcrypt verifies
// against its self-contained hash.
func (p *BcryptPasswordUtil) Verify(password, _, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
