package models

import (
	"time"
)

// Token kinds. Both kinds are signed the same way and differ by lifetime and 'typ' claim
const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair issued by TokenManager on login or refresh
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}

// Claims extracted from a verified token
type TokenClaims struct {
	ID        string
	Subject   string
	Kind      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
