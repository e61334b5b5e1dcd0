package zkp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Commit returns (alpha^exp mod p, beta^exp mod p). Used to produce the
// public key pair at registration (exp = x) and the per-session
// commitment pair (exp = k).
func (pm Params) Commit(exp *big.Int) (a, b *big.Int) {
	a = new(big.Int).Exp(pm.Alpha, exp, pm.P)
	b = new(big.Int).Exp(pm.Beta, exp, pm.P)
	return a, b
}

// Challenge returns a uniformly random integer in [0, q) drawn from a
// cryptographically strong source.
func (pm Params) Challenge() (*big.Int, error) {
	c, err := rand.Int(rand.Reader, pm.Q)
	if err != nil {
		return nil, fmt.Errorf("zkp: draw challenge: %w", err)
	}
	return c, nil
}

// Respond computes s = k - c*x (mod q), normalized to [0, q).
//
// The working integers are non-negative, so the subtraction is emulated
// with two branches: if k >= c*x the difference is taken directly and
// reduced mod q; otherwise q minus the (reduced) positive difference is
// returned. Either branch is finally reduced mod q again, which is what
// keeps the result in [0, q) even in the boundary case c*x ≡ k (mod q)
// with c*x > k, where the naive second branch would otherwise yield q
// itself.
func (pm Params) Respond(k, c, x *big.Int) *big.Int {
	cx := new(big.Int).Mul(c, x)

	var s *big.Int
	if k.Cmp(cx) >= 0 {
		s = new(big.Int).Sub(k, cx)
		s.Mod(s, pm.Q)
	} else {
		diff := new(big.Int).Sub(cx, k)
		diff.Mod(diff, pm.Q)
		s = new(big.Int).Sub(pm.Q, diff)
	}

	return s.Mod(s, pm.Q)
}

// Verify evaluates r1 == alpha^s * y1^c (mod p) and r2 == beta^s * y2^c
// (mod p), returning true iff both hold.
func (pm Params) Verify(r1, r2, y1, y2, c, s *big.Int) bool {
	lhs1 := new(big.Int).Mul(
		new(big.Int).Exp(pm.Alpha, s, pm.P),
		new(big.Int).Exp(y1, c, pm.P),
	)
	lhs1.Mod(lhs1, pm.P)

	lhs2 := new(big.Int).Mul(
		new(big.Int).Exp(pm.Beta, s, pm.P),
		new(big.Int).Exp(y2, c, pm.P),
	)
	lhs2.Mod(lhs2, pm.P)

	return lhs1.Cmp(r1) == 0 && lhs2.Cmp(r2) == 0
}

// RandomExponent draws a uniformly random integer in [0, q), suitable for
// use as the prover's per-session nonce k.
func (pm Params) RandomExponent() (*big.Int, error) {
	return pm.Challenge()
}

// DeriveSecret maps a raw password byte string to the secret exponent x,
// via the trivial big-endian unsigned interpretation the spec mandates.
// No key-derivation function is applied; strengthening the password
// before calling this is the caller's responsibility.
func DeriveSecret(password []byte) *big.Int {
	return new(big.Int).SetBytes(password)
}
