package rpcwire

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/user/go-edu/zkpauth/internal/authsvc"
)

// Server accepts TCP connections, reads Envelopes off each one, and
// dispatches them through a Handler chain backed by a bounded worker
// pool. One goroutine per connection reads and writes; the handler chain
// itself runs on the pool so a burst of requests can't spawn unbounded
// concurrent work.
type Server struct {
	addr         string
	listener     net.Listener
	pool         *Pool
	handler      Handler
	logger       zerolog.Logger
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// ServerOption configures a Server at construction time.
type ServerOption func(*Server)

// WithMiddleware appends middlewares to the server's handler chain, in
// the order given.
func WithMiddleware(mw ...Middleware) ServerOption {
	return func(s *Server) {
		s.handler = Chain(s.handler, mw...)
	}
}

// WithTimeouts bounds how long a single read or write on a connection may
// take before it is abandoned. Zero disables the corresponding deadline.
func WithTimeouts(read, write time.Duration) ServerOption {
	return func(s *Server) {
		s.readTimeout = read
		s.writeTimeout = write
	}
}

// NewServer builds a Server dispatching into svc, with queueSize queued
// requests and numWorkers goroutines draining them.
func NewServer(addr string, svc *authsvc.Service, queueSize, numWorkers int, logger zerolog.Logger, opts ...ServerOption) *Server {
	s := &Server{
		addr:    addr,
		pool:    NewPool(queueSize, numWorkers),
		handler: dispatch(svc),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// dispatch builds the base Handler that turns a request Envelope into a
// response Envelope by calling the matching Service method. It is the
// innermost link in the middleware chain.
func dispatch(svc *authsvc.Service) Handler {
	return func(ctx context.Context, req Envelope) Envelope {
		switch req.Op {
		case OpRegister:
			var in RegisterRequest
			if err := decodePayload(req, &in); err != nil {
				return errEnvelope(ErrCodeInternal, err.Error())
			}
			if err := svc.Register(in.Identifier, bytesToBig(in.Y1), bytesToBig(in.Y2)); err != nil {
				return toErrEnvelope(err)
			}
			env, _ := newEnvelope(OpRegister, RegisterResponse{})
			return env

		case OpCreateChallenge:
			var in ChallengeRequest
			if err := decodePayload(req, &in); err != nil {
				return errEnvelope(ErrCodeInternal, err.Error())
			}
			authID, c, err := svc.CreateAuthenticationChallenge(in.Identifier, bytesToBig(in.R1), bytesToBig(in.R2))
			if err != nil {
				return toErrEnvelope(err)
			}
			env, _ := newEnvelope(OpCreateChallenge, ChallengeResponse{AuthID: authID, C: bigToBytes(c)})
			return env

		case OpVerifyAuthentication:
			var in VerifyRequest
			if err := decodePayload(req, &in); err != nil {
				return errEnvelope(ErrCodeInternal, err.Error())
			}
			sessionID, err := svc.VerifyAuthentication(in.AuthID, bytesToBig(in.S))
			if err != nil {
				return toErrEnvelope(err)
			}
			env, _ := newEnvelope(OpVerifyAuthentication, VerifyResponse{SessionID: sessionID})
			return env

		default:
			return errEnvelope(ErrCodeInternal, "unknown operation: "+string(req.Op))
		}
	}
}

// toErrEnvelope maps an authsvc.Error to its wire shape. A non-authsvc
// error (should not happen; every Service method only ever returns
// *authsvc.Error or nil) is reported as INTERNAL rather than leaking
// Go's error formatting to the wire.
func toErrEnvelope(err error) Envelope {
	var svcErr *authsvc.Error
	if errors.As(err, &svcErr) {
		return errEnvelope(ErrorCode(svcErr.Code), svcErr.Message)
	}
	return errEnvelope(ErrCodeInternal, err.Error())
}

// Listen opens the TCP listener without accepting any connections yet,
// so callers that need the bound address (tests using ":0") can read it
// before Serve starts blocking.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, err
	}
	s.listener = ln
	return ln, nil
}

// ListenAndServe opens the listener and accepts connections until ctx is
// cancelled or an unrecoverable accept error occurs.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled or an
// unrecoverable accept error occurs.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.pool.Start(ctx)

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				s.pool.Close()
				s.pool.Wait()
				return nil
			default:
				s.logger.Error().Err(err).Msg("accept failed")
				return err
			}
		}
		go s.serveConn(ctx, conn)
	}
}

// serveConn reads Envelopes from conn until it closes or the context is
// cancelled, submitting each one to the worker pool and writing back
// whatever response the pool produces.
func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	codec := NewCodec(conn)

	for {
		if s.readTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		}
		req, err := codec.ReadEnvelope()
		if err != nil {
			return
		}

		respCh := make(chan Envelope, 1)
		submitErr := s.pool.Submit(func() {
			respCh <- s.handler(ctx, req)
		})
		if submitErr != nil {
			codec.WriteEnvelope(errEnvelope(ErrCodeInternal, "server overloaded"))
			continue
		}

		select {
		case resp := <-respCh:
			if s.writeTimeout > 0 {
				conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			}
			if err := codec.WriteEnvelope(resp); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// Addr returns the listener's actual address, useful when addr was
// passed as "host:0" to obtain an ephemeral port in tests.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}
