package zkp

import (
	"math/big"
	"testing"
)

func TestTinyWorkedExample(t *testing.T) {
	pm := Tiny()

	x := big.NewInt(6)
	k := big.NewInt(7)
	c := big.NewInt(4)

	y1, y2 := pm.Commit(x)
	if y1.Cmp(big.NewInt(2)) != 0 || y2.Cmp(big.NewInt(3)) != 0 {
		t.Fatalf("commit(x)=(%s,%s), want (2,3)", y1, y2)
	}

	r1, r2 := pm.Commit(k)
	if r1.Cmp(big.NewInt(8)) != 0 || r2.Cmp(big.NewInt(4)) != 0 {
		t.Fatalf("commit(k)=(%s,%s), want (8,4)", r1, r2)
	}

	s := pm.Respond(k, c, x)
	if s.Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("respond=%s, want 5", s)
	}

	if !pm.Verify(r1, r2, y1, y2, c, s) {
		t.Fatal("expected verification to succeed")
	}
}

func TestTinyWorkedExampleWrongSecret(t *testing.T) {
	pm := Tiny()

	x := big.NewInt(6)
	xPrime := big.NewInt(7)
	k := big.NewInt(7)
	c := big.NewInt(4)

	y1, y2 := pm.Commit(x)
	r1, r2 := pm.Commit(k)

	s := pm.Respond(k, c, xPrime)
	if pm.Verify(r1, r2, y1, y2, c, s) {
		t.Fatal("expected verification to fail with mismatched secret")
	}
}

func TestRespondBoundaryCase(t *testing.T) {
	pm := Tiny()

	// k=0, c=1, x=q: c*x == q ≡ 0 (mod q), c*x > k, so the naive second
	// branch would return q itself. Respond must reduce that to 0.
	s := pm.Respond(big.NewInt(0), big.NewInt(1), pm.Q)
	if s.Sign() != 0 {
		t.Fatalf("respond at boundary = %s, want 0", s)
	}
	if s.Cmp(pm.Q) >= 0 {
		t.Fatalf("respond at boundary = %s, must be < q=%s", s, pm.Q)
	}
}

func TestRespondAlwaysInRange(t *testing.T) {
	pm := Tiny()
	for x := int64(0); x < 11; x++ {
		for k := int64(0); k < 11; k++ {
			for c := int64(0); c < 11; c++ {
				s := pm.Respond(big.NewInt(k), big.NewInt(c), big.NewInt(x))
				if s.Sign() < 0 || s.Cmp(pm.Q) >= 0 {
					t.Fatalf("respond(%d,%d,%d)=%s out of [0,q)", k, c, x, s)
				}
			}
		}
	}
}

func TestCommitLiesInSubgroup(t *testing.T) {
	pm := Tiny()
	one := big.NewInt(1)
	for exp := int64(0); exp < 11; exp++ {
		a, b := pm.Commit(big.NewInt(exp))
		if new(big.Int).Exp(a, pm.Q, pm.P).Cmp(one) != 0 {
			t.Fatalf("commit(%d).0 not in subgroup of order q", exp)
		}
		if new(big.Int).Exp(b, pm.Q, pm.P).Cmp(one) != 0 {
			t.Fatalf("commit(%d).1 not in subgroup of order q", exp)
		}
	}
}

func TestRoundTripProperty(t *testing.T) {
	pm := Tiny()
	for x := int64(0); x < 11; x++ {
		for k := int64(0); k < 11; k++ {
			for c := int64(0); c < 11; c++ {
				xi := big.NewInt(x)
				ki := big.NewInt(k)
				ci := big.NewInt(c)

				y1, y2 := pm.Commit(xi)
				r1, r2 := pm.Commit(ki)
				s := pm.Respond(ki, ci, xi)

				if !pm.Verify(r1, r2, y1, y2, ci, s) {
					t.Fatalf("verify failed for x=%d k=%d c=%d", x, k, c)
				}
			}
		}
	}
}

func TestParamsValid(t *testing.T) {
	for name, pm := range map[string]Params{"tiny": Tiny(), "test": Test(), "prod": Prod()} {
		if !pm.Valid() {
			t.Errorf("%s params failed subgroup check", name)
		}
	}
}

func TestDeriveSecret(t *testing.T) {
	got := DeriveSecret([]byte{0x01, 0x02})
	want := big.NewInt(0x0102)
	if got.Cmp(want) != 0 {
		t.Fatalf("DeriveSecret = %s, want %s", got, want)
	}
}

func TestChallengeInRange(t *testing.T) {
	pm := Tiny()
	for i := 0; i < 50; i++ {
		c, err := pm.Challenge()
		if err != nil {
			t.Fatalf("Challenge: %v", err)
		}
		if c.Sign() < 0 || c.Cmp(pm.Q) >= 0 {
			t.Fatalf("challenge %s out of [0,q)", c)
		}
	}
}
