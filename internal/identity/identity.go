package identity

import (
	"encoding/json"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-gateway/internal/domain"
)

// Claims describes the identity payload issued by the upstream gateway.
type Claims struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"preferred_username"`
	jwt.RegisteredClaims
}

// ParseBlob decodes the serialized identity blob attached to a request by the
// upstream identity layer. A malformed blob is tolerated: the caller logs a
// warning and proceeds without identity.
func ParseBlob(raw string, logger *zap.Logger) *domain.Requester {
	if raw == "" {
		return nil
	}
	var requester domain.Requester
	if err := json.Unmarshal([]byte(raw), &requester); err != nil {
		logger.Warn("failed to parse requester identity blob", zap.Error(err))
		return nil
	}
	if requester.Name == "" && requester.Email == "" && requester.Username == "" {
		return nil
	}
	return &requester
}

// ParseToken extracts requester metadata from a gateway-issued JWT. The token
// is not verified here: the upstream identity layer is the trust boundary and
// this service never sees its signing key. A parse failure is tolerated the
// same way as a malformed blob.
func ParseToken(token string, logger *zap.Logger) *domain.Requester {
	if token == "" {
		return nil
	}
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		logger.Warn("failed to parse requester identity token", zap.Error(err))
		return nil
	}
	requester := &domain.Requester{
		Name:      claims.Name,
		Email:     claims.Email,
		Username:  claims.Username,
		SubjectID: claims.Subject,
	}
	if requester.Name == "" && requester.Email == "" && requester.Username == "" {
		return nil
	}
	return requester
}
