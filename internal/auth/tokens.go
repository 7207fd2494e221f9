// Package auth verifies bearer identities issued by the identity provider and
// signs the one-shot links owners use to answer booking requests.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"carpool/internal/domain"
	"carpool/internal/utils"
)

const (
	ActionConfirm = "confirm"
	ActionReject  = "reject"

	responseAudience = "booking-response"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenScope   = errors.New("token does not match this request")
)

// Claims is the identity carried by access tokens.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type responseClaims struct {
	BookingID string `json:"booking_id"`
	Action    string `json:"action"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 tokens with a shared secret.
type Tokens struct {
	secret      []byte
	responseTTL time.Duration
	now         func() time.Time
}

func NewTokens(secret string, responseTTL time.Duration) *Tokens {
	if responseTTL <= 0 {
		responseTTL = 48 * time.Hour
	}
	return &Tokens{secret: []byte(secret), responseTTL: responseTTL, now: time.Now}
}

func (t *Tokens) keyFunc(tok *jwt.Token) (any, error) {
	if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
	}
	return t.secret, nil
}

func (t *Tokens) parserOptions() []jwt.ParserOption {
	return []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	}
}

// ParseBearer validates an Authorization header value (with or without the
// "Bearer " prefix) and returns the caller.
func (t *Tokens) ParseBearer(header string) (domain.Actor, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(header), "Bearer "))
	if raw == "" {
		return domain.Actor{}, ErrInvalidToken
	}

	var claims Claims
	if _, err := jwt.ParseWithClaims(raw, &claims, t.keyFunc, t.parserOptions()...); err != nil {
		return domain.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	email := utils.NormalizeEmail(claims.Email)
	if email == "" {
		return domain.Actor{}, fmt.Errorf("%w: email claim missing", ErrInvalidToken)
	}
	role, ok := domain.ParseRole(claims.Role)
	if !ok {
		role = domain.RolePassenger
	}
	return domain.Actor{Email: email, Role: role}, nil
}

// IssueAccess mints an access token; used by tooling and tests.
func (t *Tokens) IssueAccess(actor domain.Actor, ttl time.Duration) (string, error) {
	now := t.now()
	claims := Claims{
		Email: actor.Email,
		Role:  string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// SignResponse binds a booking id and an action into a link token.
func (t *Tokens) SignResponse(bookingID, action string) (string, error) {
	now := t.now()
	claims := responseClaims{
		BookingID: bookingID,
		Action:    action,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{responseAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.responseTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// VerifyResponse checks that token was issued for exactly this booking and action.
func (t *Tokens) VerifyResponse(token, bookingID, action string) error {
	var claims responseClaims
	opts := append(t.parserOptions(), jwt.WithAudience(responseAudience))
	if _, err := jwt.ParseWithClaims(strings.TrimSpace(token), &claims, t.keyFunc, opts...); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.BookingID != bookingID || claims.Action != action {
		return ErrTokenScope
	}
	return nil
}
