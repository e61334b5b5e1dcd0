package rpcwire

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/user/go-edu/zkpauth/internal/authsvc"
	"github.com/user/go-edu/zkpauth/internal/store"
	"github.com/user/go-edu/zkpauth/internal/zkp"
)

func startTestServer(t *testing.T) (ctx context.Context, addr string, shutdown func()) {
	t.Helper()

	st := store.New()
	svc := authsvc.New(zkp.Tiny(), st, authsvc.WithChallengeRateLimit(1000, 1000))

	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer("127.0.0.1:0", svc, 16, 4, zerolog.Nop(),
		WithMiddleware(RequestID(), Recovery(zerolog.Nop())))

	ln, err := srv.Listen()
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr = ln.Addr().String()

	go srv.Serve(ctx, ln)

	return ctx, addr, cancel
}

// runs the full three-message exchange for one identifier/password pair
// and returns the resulting session_id.
func runProtocol(t *testing.T, addr, identifier string, x int64) string {
	t.Helper()
	params := zkp.Tiny()

	client, err := Dial(context.Background(), addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	secret := big.NewInt(x)
	y1, y2 := params.Commit(secret)
	if err := client.Register(identifier, y1, y2); err != nil {
		t.Fatalf("register: %v", err)
	}

	k, err := params.RandomExponent()
	if err != nil {
		t.Fatalf("random exponent: %v", err)
	}
	r1, r2 := params.Commit(k)

	authID, c, err := client.CreateAuthenticationChallenge(identifier, r1, r2)
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}

	s := params.Respond(k, c, secret)

	sessionID, err := client.VerifyAuthentication(authID, s)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if len(sessionID) == 0 {
		t.Fatal("expected a non-empty session_id")
	}
	return sessionID
}

func TestEndToEndAuthenticationSucceeds(t *testing.T) {
	_, addr, shutdown := startTestServer(t)
	defer shutdown()

	runProtocol(t, addr, "alice", 6)
}

func TestEndToEndWrongPasswordIsRejected(t *testing.T) {
	_, addr, shutdown := startTestServer(t)
	defer shutdown()

	params := zkp.Tiny()
	client, err := Dial(context.Background(), addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	secret := big.NewInt(6)
	y1, y2 := params.Commit(secret)
	if err := client.Register("bob", y1, y2); err != nil {
		t.Fatalf("register: %v", err)
	}

	k, _ := params.RandomExponent()
	r1, r2 := params.Commit(k)
	authID, c, err := client.CreateAuthenticationChallenge("bob", r1, r2)
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}

	wrongSecret := big.NewInt(7)
	s := params.Respond(k, c, wrongSecret)

	if _, err := client.VerifyAuthentication(authID, s); err == nil {
		t.Fatal("expected verification with the wrong secret to fail")
	}
}

func TestEndToEndUnregisteredIdentifierIsRejected(t *testing.T) {
	_, addr, shutdown := startTestServer(t)
	defer shutdown()

	params := zkp.Tiny()
	client, err := Dial(context.Background(), addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	k, _ := params.RandomExponent()
	r1, r2 := params.Commit(k)
	if _, _, err := client.CreateAuthenticationChallenge("nobody", r1, r2); err == nil {
		t.Fatal("expected a NotFound error for an unregistered identifier")
	}
}

func TestDialWithRetrySucceedsOnceServerIsUp(t *testing.T) {
	_, addr, shutdown := startTestServer(t)
	defer shutdown()

	client, err := DialWithRetry(context.Background(), addr, 3, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("DialWithRetry: %v", err)
	}
	defer client.Close()
}
