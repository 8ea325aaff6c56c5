// Package jwt verifies access tokens issued by the external identity
// service. The engine never issues tokens; it only needs the acting user
// for audit fields.
package jwt

import (
	"context"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

type Service interface {
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	tokenAuth *jwtauth.JWTAuth
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// ActorID extracts the acting user id from the verified token in ctx.
// Returns an empty string when the request carries no usable identity;
// callers treat that as an anonymous system actor rather than failing,
// since authorization decisions belong to the gateway in front of us.
func ActorID(ctx context.Context) string {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return ""
	}
	userID, _ := claims["user_id"].(string)
	return userID
}
