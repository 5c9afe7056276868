// Package token signs and verifies the one-click quote acceptance links.
package token

import (
	"errors"
	"fmt"
	"time"

	apperrors "procomp-service/pkg/app_errors"

	"github.com/golang-jwt/jwt/v5"
)

// AcceptClaims ties an accept link to one specific quote.
type AcceptClaims struct {
	TicketID   int    `json:"tid"`
	CustomerID int    `json:"cid"`
	Identifier string `json:"qid"`
	jwt.RegisteredClaims
}

type AcceptSigner struct {
	secret []byte
	now    func() time.Time
}

func NewAcceptSigner(secret string) *AcceptSigner {
	return &AcceptSigner{secret: []byte(secret), now: time.Now}
}

// WithClock overrides the verification clock.
func (s *AcceptSigner) WithClock(now func() time.Time) *AcceptSigner {
	s.now = now
	return s
}

// Sign issues a token valid until expiresAt.
func (s *AcceptSigner) Sign(ticketID, customerID int, identifier string, issuedAt, expiresAt time.Time) (string, error) {
	claims := AcceptClaims{
		TicketID:   ticketID,
		CustomerID: customerID,
		Identifier: identifier,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identifier,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign accept token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, expiry and that the token belongs to the
// ticket/customer pair in the link.
func (s *AcceptSigner) Verify(raw string, ticketID, customerID int) (*AcceptClaims, error) {
	claims := &AcceptClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrQuoteExpired
		}
		return nil, apperrors.ErrInvalidAcceptToken
	}
	if claims.TicketID != ticketID || claims.CustomerID != customerID {
		return nil, apperrors.ErrInvalidAcceptToken
	}
	return claims, nil
}
