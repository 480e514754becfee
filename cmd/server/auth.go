package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/nickyhof/sqlfp/config"
	"github.com/nickyhof/sqlfp/core"
)

var errAuthRequired = errors.New("authentication required: send AUTH JWT <token>")

// ConnectionState tracks per-connection authentication state.
type ConnectionState struct {
	identity      *core.Identity
	authenticated bool
	tokenExpiry   time.Time
}

// IsAuthenticated returns true if the connection has been authenticated.
func (cs *ConnectionState) IsAuthenticated() bool {
	return cs.authenticated
}

// Identity returns the connection's identity, or nil if not authenticated.
func (cs *ConnectionState) Identity() *core.Identity {
	return cs.identity
}

func (cs *ConnectionState) expired(now time.Time) bool {
	return !cs.tokenExpiry.IsZero() && now.After(cs.tokenExpiry)
}

type authResult struct {
	identity  core.Identity
	expiresAt time.Time
	err       error
}

func claimOrDefault(claim, fallback string) string {
	if claim == "" {
		return fallback
	}
	return claim
}

// validateJWT validates a JWT token and extracts identity claims.
func validateJWT(auth *config.Auth, tokenString string) authResult {
	if auth == nil || auth.JWTSecret == "" {
		return authResult{err: errors.New("authentication not configured")}
	}

	nameClaim := claimOrDefault(auth.NameClaim, "name")
	emailClaim := claimOrDefault(auth.EmailClaim, "email")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(auth.JWTSecret), nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil {
		return authResult{err: fmt.Errorf("invalid token: %w", err)}
	}

	if !token.Valid {
		return authResult{err: errors.New("invalid token")}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return authResult{err: errors.New("invalid token claims")}
	}

	if auth.Issuer != "" {
		issuer, _ := claims.GetIssuer()
		if issuer != auth.Issuer {
			return authResult{err: fmt.Errorf("invalid issuer: expected %s, got %s", auth.Issuer, issuer)}
		}
	}

	if auth.Audience != "" {
		audiences, _ := claims.GetAudience()
		if !slices.Contains(audiences, auth.Audience) {
			return authResult{err: fmt.Errorf("invalid audience: expected %s", auth.Audience)}
		}
	}

	name, _ := claims[nameClaim].(string)
	email, _ := claims[emailClaim].(string)

	if name == "" && email == "" {
		return authResult{err: fmt.Errorf("token missing identity claims (%s or %s)", nameClaim, emailClaim)}
	}

	var expiresAt time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt = exp.Time
	}

	return authResult{
		identity:  core.Identity{Name: name, Email: email},
		expiresAt: expiresAt,
	}
}

// parseAuthCommand parses an AUTH command and returns the auth type and token.
// Supported formats:
//   - AUTH JWT <token>
func parseAuthCommand(line string) (authType, token string, err error) {
	line = strings.TrimSpace(line)

	if !strings.HasPrefix(strings.ToUpper(line), "AUTH ") {
		return "", "", errors.New("not an AUTH command")
	}

	parts := strings.Fields(line)
	if len(parts) < 3 {
		return "", "", errors.New("invalid AUTH command: expected AUTH <type> <credentials>")
	}

	authType = strings.ToUpper(parts[1])
	token = parts[2]

	switch authType {
	case "JWT":
		return authType, token, nil
	default:
		return "", "", fmt.Errorf("unsupported auth type: %s", authType)
	}
}

func authFailure(err error) Response {
	return Response{
		Success: false,
		Type:    "auth",
		Error:   err.Error(),
	}
}

// handleAuth processes an AUTH command and returns the response.
func (s *Server) handleAuth(line string, state *ConnectionState) Response {
	_, token, err := parseAuthCommand(line)
	if err != nil {
		return authFailure(err)
	}

	result := validateJWT(s.auth, token)
	if result.err != nil {
		s.logger.Warn("authentication failed", zap.Error(result.err))
		return authFailure(result.err)
	}

	state.identity = &result.identity
	state.authenticated = true
	state.tokenExpiry = result.expiresAt

	ar := AuthResponse{
		Authenticated: true,
		Identity:      fmt.Sprintf("%s <%s>", result.identity.Name, result.identity.Email),
	}
	if !result.expiresAt.IsZero() {
		ar.ExpiresIn = int(time.Until(result.expiresAt).Seconds())
	}

	s.logger.Info("client authenticated", zap.String("identity", ar.Identity))

	data, _ := json.Marshal(ar)
	return Response{
		Success: true,
		Type:    "auth",
		Result:  data,
	}
}
