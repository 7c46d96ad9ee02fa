package jwt

import (
	"errors"
	"fmt"
	"time"

	gojose "github.com/go-jose/go-jose/v4"
	gojwt "github.com/go-jose/go-jose/v4/jwt"

	"github.com/MoosaAfzal2/poetry-todo-api/internal/domain"
)

// ErrInvalidToken is returned by Verify for any token that fails signature,
// shape, or expiry checks. Callers get no partial claim data on failure.
var ErrInvalidToken = errors.New("invalid token")

// Codec signs and verifies access tokens with a process-wide symmetric key.
// Tokens are stateless; the only way to invalidate one early is to rotate
// the signing secret.
type Codec struct {
	secret     []byte
	algorithm  gojose.SignatureAlgorithm
	defaultTTL time.Duration
}

// NewCodec constructs a token codec. The algorithm identifier comes from
// configuration and must be an HMAC family algorithm.
func NewCodec(secret, algorithm string, defaultTTL time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("signing secret is required")
	}
	alg := gojose.SignatureAlgorithm(algorithm)
	switch alg {
	case gojose.HS256, gojose.HS384, gojose.HS512:
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	if defaultTTL <= 0 {
		return nil, errors.New("token lifetime must be positive")
	}
	return &Codec{secret: []byte(secret), algorithm: alg, defaultTTL: defaultTTL}, nil
}

// Claims is the identity payload carried inside an access token.
type Claims struct {
	Subject  string
	Username string
	Expiry   time.Time
}

type customClaims struct {
	Username string `json:"username"`
}

// Issue signs a token for the user. The subject is the canonical string form
// of the user id. A non-positive ttl falls back to the configured lifetime.
func (c *Codec) Issue(user domain.User, ttl time.Duration) (string, time.Time, error) {
	signer, err := gojose.NewSigner(
		gojose.SigningKey{Algorithm: c.algorithm, Key: c.secret},
		(&gojose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("new signer: %w", err)
	}

	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	now := time.Now().UTC()
	expiry := now.Add(ttl)
	std := gojwt.Claims{
		Subject:  user.ID.String(),
		IssuedAt: gojwt.NewNumericDate(now),
		Expiry:   gojwt.NewNumericDate(expiry),
	}
	custom := customClaims{Username: user.Username}

	token, err := gojwt.Signed(signer).Claims(std).Claims(custom).Serialize()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("serialize token: %w", err)
	}

	return token, expiry, nil
}

// Verify checks the token's signature and expiry and returns its claims.
// Expiry is evaluated against the verifier's clock with zero leeway.
func (c *Codec) Verify(token string) (Claims, error) {
	parsed, err := gojwt.ParseSigned(token, []gojose.SignatureAlgorithm{c.algorithm})
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	var std gojwt.Claims
	var custom customClaims
	if err := parsed.Claims(c.secret, &std, &custom); err != nil {
		return Claims{}, ErrInvalidToken
	}

	// A token without an expiry is malformed by contract.
	if std.Expiry == nil || std.Subject == "" {
		return Claims{}, ErrInvalidToken
	}

	now := time.Now().UTC()
	if err := std.ValidateWithLeeway(gojwt.Expected{Time: now}, 0); err != nil {
		return Claims{}, ErrInvalidToken
	}
	// now >= expiry is expired, no grace period.
	if !now.Before(std.Expiry.Time()) {
		return Claims{}, ErrInvalidToken
	}

	return Claims{
		Subject:  std.Subject,
		Username: custom.Username,
		Expiry:   std.Expiry.Time(),
	}, nil
}
