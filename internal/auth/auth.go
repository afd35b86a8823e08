package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Actor is the authenticated identity a request acts as. It is resolved once
// by the auth middleware and passed explicitly into business operations.
type Actor struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// SystemActor is used when a mutation runs without an authenticated user
// (migrations, scheduled settlement runs).
func SystemActor() Actor {
	return Actor{ID: 0, Name: "System", Role: "system"}
}

type Claims struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	secret   []byte
	lifespan time.Duration
}

func NewTokenManager(secret string, lifespanHours int) *TokenManager {
	return &TokenManager{
		secret:   []byte(secret),
		lifespan: time.Duration(lifespanHours) * time.Hour,
	}
}

func (m *TokenManager) Generate(userID int64, name, role string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: userID,
		Name:   name,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.lifespan)),
		},
	})
	return token.SignedString(m.secret)
}

func (m *TokenManager) Verify(tokenString string) (Actor, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return Actor{}, ErrInvalidToken
	}
	return Actor{ID: claims.UserID, Name: claims.Name, Role: claims.Role}, nil
}

type contextKey struct{}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, contextKey{}, actor)
}

// ActorFrom returns the request actor, falling back to the System actor.
func ActorFrom(ctx context.Context) Actor {
	if actor, ok := ctx.Value(contextKey{}).(Actor); ok {
		return actor
	}
	return SystemActor()
}
