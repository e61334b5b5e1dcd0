// Package authsvc implements the Authentication Service: the stateless
// protocol dispatcher that drives the three-message Chaum-Pedersen
// exchange, connecting the zkp proof engine to the session store.
package authsvc

import (
	"math/big"

	"github.com/rs/zerolog"

	"github.com/user/go-edu/zkpauth/internal/store"
	"github.com/user/go-edu/zkpauth/internal/zkp"
)

// Service dispatches the three protocol operations: Register,
// CreateAuthenticationChallenge, VerifyAuthentication. It holds no
// per-request state of its own; all mutable state lives in the Store.
type Service struct {
	params  zkp.Params
	store   *store.Store
	limiter *identifierLimiter
	events  *eventBus
	logger  zerolog.Logger
}

// Option configures a Service at construction time.
type Option func(*Service)

// WithChallengeRateLimit bounds how often a single identifier may create
// a new authentication challenge.
func WithChallengeRateLimit(requestsPerSecond float64, burst int) Option {
	return func(s *Service) {
		s.limiter = newIdentifierLimiter(requestsPerSecond, burst)
	}
}

// WithLogger attaches a logger used for the internal event subscribers
// the Service wires up by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New builds a Service over params and st, applying opts.
func New(params zkp.Params, st *store.Store, opts ...Option) *Service {
	s := &Service{
		params:  params,
		store:   st,
		limiter: newIdentifierLimiter(5, 10),
		events:  newEventBus(),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.events.Subscribe(EventUserRegistered, func(payload interface{}) {
		identifier := payload.(string)
		s.logger.Info().Str("identifier", identifier).Msg("user registered")
	})
	s.events.Subscribe(EventChallengeIssued, func(payload interface{}) {
		ev := payload.(*ChallengeEvent)
		s.logger.Info().Str("identifier", ev.Identifier).Str("auth_id", ev.AuthID).Msg("challenge issued")
	})
	s.events.Subscribe(EventAuthSucceeded, func(payload interface{}) {
		ev := payload.(*OutcomeEvent)
		s.logger.Info().Str("identifier", ev.Identifier).Str("auth_id", ev.AuthID).Msg("authentication succeeded")
	})
	s.events.Subscribe(EventAuthFailed, func(payload interface{}) {
		ev := payload.(*OutcomeEvent)
		s.logger.Warn().Str("identifier", ev.Identifier).Str("auth_id", ev.AuthID).Msg("authentication failed")
	})

	return s
}

// Subscriber lets external packages (metrics, additional logging sinks)
// subscribe to the Service's internal lifecycle events without the
// Service needing to know about them.
type Subscriber interface {
	Subscribe(event string, handler EventHandler)
}

// Events exposes the Service's internal event bus.
func (s *Service) Events() Subscriber {
	return s.events
}

// Register stores the registration record for identifier. Always
// succeeds; re-registration overwrites the previous y1, y2.
func (s *Service) Register(identifier string, y1, y2 *big.Int) error {
	s.store.Register(identifier, y1, y2)
	s.events.Publish(EventUserRegistered, identifier)
	return nil
}

// CreateAuthenticationChallenge looks up identifier, draws a fresh
// challenge c, mints a fresh auth_id, records the pending state, and
// returns (auth_id, c). Returns a NotFound *Error if identifier has never
// registered.
func (s *Service) CreateAuthenticationChallenge(identifier string, r1, r2 *big.Int) (authID string, c *big.Int, err error) {
	if !s.store.Registered(identifier) {
		return "", nil, notFoundf("User: %s not found", identifier)
	}

	if !s.limiter.allow(identifier) {
		return "", nil, internalf("challenge rate limit exceeded for %s", identifier)
	}

	c, err = s.params.Challenge()
	if err != nil {
		return "", nil, internalf("draw challenge: %v", err)
	}

	authID, err = newUniqueToken(s.store.ChallengeExists)
	if err != nil {
		return "", nil, internalf("allocate auth_id: %v", err)
	}

	if err := s.store.BeginChallenge(identifier, r1, r2, c, authID); err != nil {
		return "", nil, notFoundf("User: %s not found", identifier)
	}

	s.events.Publish(EventChallengeIssued, &ChallengeEvent{Identifier: identifier, AuthID: authID})
	return authID, c, nil
}

// VerifyAuthentication resolves authID, checks the Chaum-Pedersen
// verification equation, and returns a fresh session_id on success.
// Returns a NotFound *Error if authID is unknown, or an Unauthenticated
// *Error if the proof does not verify.
func (s *Service) VerifyAuthentication(authID string, sResponse *big.Int) (sessionID string, err error) {
	res, err := s.store.Resolve(authID)
	if err != nil {
		return "", notFoundf("Auth ID not found")
	}

	ok := s.params.Verify(res.R1, res.R2, res.Y1, res.Y2, res.C, sResponse)
	if !ok {
		s.events.Publish(EventAuthFailed, &OutcomeEvent{Identifier: res.Identifier, AuthID: authID})
		return "", unauthenticated("Verification failed")
	}

	// Session identifiers aren't tracked by the core (the spec leaves
	// their presentation to downstream systems), so there's nothing to
	// check a fresh draw against; collision odds at 12 alphanumeric
	// characters are negligible regardless.
	sessionID, err = newToken()
	if err != nil {
		return "", internalf("allocate session_id: %v", err)
	}

	s.events.Publish(EventAuthSucceeded, &OutcomeEvent{Identifier: res.Identifier, AuthID: authID, SessionID: sessionID})
	return sessionID, nil
}
