package jwt

import (
	"errors"
	"strconv"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

const issuer = "equiprent"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

type Service struct {
	secret []byte
	ttl    time.Duration
	parser *jwtlib.Parser
}

// Claims identify a back-office admin.
type Claims struct {
	AdminID int64  `json:"admin_id"`
	Role    string `json:"role"`
	jwtlib.RegisteredClaims
}

func New(secret string, ttl time.Duration) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		parser: jwtlib.NewParser(
			jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
			jwtlib.WithIssuer(issuer),
			jwtlib.WithLeeway(5*time.Second),
		),
	}
}

func (s *Service) TTL() time.Duration { return s.ttl }

func (s *Service) GenerateToken(adminID int64, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		AdminID: adminID,
		Role:    role,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(adminID, 10),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}

	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.secret)
}

// ValidateToken returns ErrTokenExpired for stale tokens and ErrInvalidToken for everything else.
func (s *Service) ValidateToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := s.parser.ParseWithClaims(tokenStr, claims, func(*jwtlib.Token) (any, error) {
		return s.secret, nil
	})
	switch {
	case errors.Is(err, jwtlib.ErrTokenExpired):
		return nil, ErrTokenExpired
	case err != nil || !token.Valid:
		return nil, ErrInvalidToken
	case claims.AdminID <= 0:
		return nil, ErrInvalidToken
	}
	return claims, nil
}
