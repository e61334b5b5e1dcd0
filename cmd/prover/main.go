// Command prover is the reference client for the authentication
// protocol: it registers an identifier's public key pair, then carries
// out the three-message Chaum-Pedersen exchange to prove knowledge of
// the matching password without ever sending it over the wire.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/user/go-edu/zkpauth/internal/rpcwire"
	"github.com/user/go-edu/zkpauth/internal/zkp"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:50051", "verifier address")
	profile := flag.String("profile", "prod", "group parameter profile: prod, test, or tiny")
	flag.Parse()

	params, ok := zkp.Profile(*profile)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown group profile %q\n", *profile)
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Println("Connecting to the verifier...")
	ctx := context.Background()
	client, err := rpcwire.DialWithRetry(ctx, *addr, 5, 200*time.Millisecond)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not connect to the verifier: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	fmt.Println("Connected to the verifier")
	fmt.Println("Please provide your identifier:")
	identifier := readLine(reader)

	fmt.Println("Please provide the password:")
	password := readLine(reader)
	secret := zkp.DeriveSecret([]byte(password))

	y1, y2 := params.Commit(secret)
	if err := client.Register(identifier, y1, y2); err != nil {
		fmt.Fprintf(os.Stderr, "registration failed: %v\n", err)
		os.Exit(1)
	}

	k, err := params.RandomExponent()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not draw a random exponent: %v\n", err)
		os.Exit(1)
	}
	r1, r2 := params.Commit(k)

	authID, c, err := client.CreateAuthenticationChallenge(identifier, r1, r2)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not create an authentication challenge: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Please provide the password to log in:")
	loginPassword := readLine(reader)
	loginSecret := zkp.DeriveSecret([]byte(loginPassword))

	s := params.Respond(k, c, loginSecret)

	sessionID, err := client.VerifyAuthentication(authID, s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "authentication failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Authenticated with session_id: %s\n", sessionID)
}

func readLine(reader *bufio.Reader) string {
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintf(os.Stderr, "could not read input: %v\n", err)
		os.Exit(1)
	}
	return strings.TrimSpace(line)
}
