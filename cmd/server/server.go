package main

import (
	"bufio"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/nickyhof/sqlfp"
	"github.com/nickyhof/sqlfp/catalog"
	"github.com/nickyhof/sqlfp/config"
	"github.com/nickyhof/sqlfp/core"
)

// Server answers fingerprint requests over TCP, one JSON line per request.
type Server struct {
	listener    net.Listener
	fp          *sqlfp.Fingerprinter
	catalog     *catalog.Catalog
	identity    core.Identity
	auth        *config.Auth
	logger      *zap.Logger
	tlsEnabled  bool
	done        chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
	mu          sync.Mutex
	connections map[net.Conn]struct{}
}

// NewServer creates a server that records to cat, which may be nil, as
// identity.
func NewServer(fp *sqlfp.Fingerprinter, cat *catalog.Catalog, identity core.Identity, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		fp:          fp,
		catalog:     cat,
		identity:    identity,
		logger:      logger,
		done:        make(chan struct{}),
		connections: make(map[net.Conn]struct{}),
	}
}

// NewServerWithAuth creates a server that requires AUTH when auth is enabled
// and records as the authenticated identity.
func NewServerWithAuth(fp *sqlfp.Fingerprinter, cat *catalog.Catalog, auth *config.Auth, logger *zap.Logger) *Server {
	s := NewServer(fp, cat, core.DefaultIdentity, logger)
	s.auth = auth
	return s
}

func (s *Server) authRequired() bool {
	return s.auth != nil && s.auth.Enabled
}

// Start begins listening for connections on the specified address.
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.serve(listener)
	return nil
}

// StartTLS is Start with TLS using the given PEM key pair.
func (s *Server) StartTLS(addr, certFile, keyFile string) error {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return fmt.Errorf("failed to load TLS key pair: %w", err)
	}

	listener, err := tls.Listen("tcp", addr, &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	})
	if err != nil {
		return fmt.Errorf("failed to start TLS server: %w", err)
	}
	s.tlsEnabled = true
	s.serve(listener)
	return nil
}

func (s *Server) serve(listener net.Listener) {
	s.listener = listener
	s.logger.Info("listening",
		zap.String("addr", listener.Addr().String()),
		zap.Bool("tls", s.tlsEnabled),
		zap.Bool("auth", s.authRequired()),
	)

	s.wg.Add(1)
	go s.acceptLoop()
}

// TLSEnabled reports whether the server was started with StartTLS.
func (s *Server) TLSEnabled() bool {
	return s.tlsEnabled
}

// Stop closes the listener and every open connection, then waits for the
// handlers to return. Calls after the first return nil.
func (s *Server) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			err = multierr.Append(err, s.listener.Close())
		}
		s.mu.Lock()
		for conn := range s.connections {
			err = multierr.Append(err, ignoreClosed(conn.Close()))
		}
		s.mu.Unlock()
		s.wg.Wait()
	})
	return err
}

func ignoreClosed(err error) error {
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// Addr returns the server's listening address.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				s.logger.Warn("accept failed", zap.Error(err))
				continue
			}
		}

		if !s.track(conn) {
			conn.Close()
			return
		}
		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// track registers conn unless the server is stopping.
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.done:
		return false
	default:
	}
	s.connections[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.connections, conn)
	s.mu.Unlock()
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer s.untrack(conn)
	defer conn.Close()

	remote := zap.String("remote", conn.RemoteAddr().String())
	s.logger.Debug("client connected", remote)

	reader := bufio.NewReader(conn)
	state := &ConnectionState{}

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			select {
			case <-s.done:
			default:
				if err != io.EOF {
					s.logger.Warn("read failed", remote, zap.Error(err))
				}
			}
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lower := strings.ToLower(line)
		if lower == "quit" || lower == "exit" {
			s.logger.Debug("client disconnected", remote)
			return
		}

		response := s.dispatch(line, state)

		data, err := EncodeResponse(response)
		if err != nil {
			s.logger.Error("failed to encode response", zap.Error(err))
			continue
		}

		if _, err := conn.Write(data); err != nil {
			s.logger.Warn("write failed", remote, zap.Error(err))
			return
		}
	}
}

func (s *Server) dispatch(line string, state *ConnectionState) Response {
	command, rest, _ := strings.Cut(line, " ")
	command = strings.ToUpper(command)

	if command == "AUTH" {
		return s.handleAuth(line, state)
	}

	if s.authRequired() {
		if !state.IsAuthenticated() {
			return failure(errAuthRequired)
		}
		if state.expired(time.Now()) {
			*state = ConnectionState{}
			return failure(errors.New("token expired: authenticate again"))
		}
	}

	switch command {
	case "GET":
		return s.handleGet(strings.TrimSpace(rest))
	case "LIST":
		return s.handleList(strings.TrimSpace(rest))
	case "HISTORY":
		return s.handleHistory(strings.TrimSpace(rest))
	}

	req, err := DecodeRequest(line)
	if err != nil {
		return failure(fmt.Errorf("invalid request: %w", err))
	}
	return s.handleFingerprint(req, s.identityFor(state))
}

func (s *Server) identityFor(state *ConnectionState) core.Identity {
	if id := state.Identity(); id != nil {
		return *id
	}
	return s.identity
}

func failure(err error) Response {
	resp := Response{Success: false, Error: err.Error()}
	switch {
	case errors.Is(err, sqlfp.ErrConfiguration):
		resp.Kind = "configuration"
	case errors.Is(err, sqlfp.ErrSyntax):
		resp.Kind = "syntax"
	case errors.Is(err, sqlfp.ErrEmptyInput):
		resp.Kind = "empty"
	}
	return resp
}

func success(kind string, v any) Response {
	data, err := json.Marshal(v)
	if err != nil {
		return failure(err)
	}
	return Response{Success: true, Type: kind, Result: data}
}

func (s *Server) fingerprinter(req Request) (*sqlfp.Fingerprinter, error) {
	if req.Dialect == "" && req.Placeholder == "" {
		return s.fp, nil
	}
	dialectName := req.Dialect
	if dialectName == "" {
		dialectName = s.fp.Dialect().Name
	}
	placeholder := req.Placeholder
	if placeholder == "" {
		placeholder = s.fp.Placeholder()
	}
	return sqlfp.New(sqlfp.WithDialect(dialectName), sqlfp.WithPlaceholder(placeholder))
}

func (s *Server) handleFingerprint(req Request, identity core.Identity) Response {
	start := time.Now()

	fp, err := s.fingerprinter(req)
	if err != nil {
		return failure(err)
	}

	res, err := fp.Normalize(req.SQL)
	if err != nil {
		return failure(err)
	}

	fr := FingerprintResponse{
		Original:   res.Original,
		Normalized: res.Normalized,
		Hash:       res.Hash,
		Params:     res.Params,
	}

	if req.Record {
		if s.catalog == nil {
			return failure(errors.New("catalog not configured"))
		}
		entry, err := s.catalog.Record(res, fp.Dialect().Name, identity)
		if err != nil {
			s.logger.Error("record failed", zap.String("hash", res.Hash), zap.Error(err))
			return failure(err)
		}
		fr.Entry = &entry
	}

	fr.TimeMs = float64(time.Since(start).Microseconds()) / 1000
	return success("fingerprint", fr)
}

func (s *Server) handleGet(hash string) Response {
	if s.catalog == nil {
		return failure(errors.New("catalog not configured"))
	}
	if hash == "" {
		return failure(errors.New("usage: GET <hash>"))
	}
	entry, err := s.catalog.Get(strings.ToLower(hash))
	if err != nil {
		return failure(err)
	}
	return success("entry", entry)
}

// parseLimit reads an optional positive count argument.
func parseLimit(arg string) (int, error) {
	if arg == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid limit: %s", arg)
	}
	return n, nil
}

func (s *Server) handleList(arg string) Response {
	if s.catalog == nil {
		return failure(errors.New("catalog not configured"))
	}
	limit, err := parseLimit(arg)
	if err != nil {
		return failure(err)
	}
	entries, err := s.catalog.List()
	if err != nil {
		return failure(err)
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return success("entries", entries)
}

func (s *Server) handleHistory(arg string) Response {
	if s.catalog == nil {
		return failure(errors.New("catalog not configured"))
	}
	limit, err := parseLimit(arg)
	if err != nil {
		return failure(err)
	}
	commits, err := s.catalog.History(limit)
	if err != nil {
		return failure(err)
	}
	return success("history", commits)
}
