package attendance

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidReceipt is returned for receipts that fail verification.
var ErrInvalidReceipt = errors.New("invalid attendance receipt")

const receiptIssuer = "class-records"

// ReceiptClaims is the signed body of an attendance receipt.
type ReceiptClaims struct {
	Username  string `json:"username"`
	Timestamp string `json:"timestamp"`
	jwt.RegisteredClaims
}

// Signer issues and checks HS256 attendance receipts. A receipt proves a
// login was logged; it grants nothing.
type Signer struct {
	key []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{key: []byte(secret)}
}

// Sign returns a receipt for username logged at timestamp.
func (s *Signer) Sign(username, timestamp string, at time.Time) (string, error) {
	claims := ReceiptClaims{
		Username:  username,
		Timestamp: timestamp,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.New().String(),
			Issuer:   receiptIssuer,
			Subject:  username,
			IssuedAt: jwt.NewNumericDate(at),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign receipt: %w", err)
	}
	return token, nil
}

// Verify checks the signature and issuer and returns the claims.
func (s *Signer) Verify(receipt string) (*ReceiptClaims, error) {
	claims := &ReceiptClaims{}
	_, err := jwt.ParseWithClaims(receipt, claims, func(*jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(receiptIssuer),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReceipt, err)
	}
	return claims, nil
}
