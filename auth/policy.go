package auth

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Policy describes what a route demands of the presented credential. A nil
// or empty field means "no constraint" for that dimension.
type Policy struct {
	// AllowedTokenClasses gates on the class tag the token was minted with
	AllowedTokenClasses []TokenClass
	// RequireVerified rejects identities that never confirmed their email
	RequireVerified bool
	// AllowedRoles gates on the identity's stored role, never on token claims
	AllowedRoles []Role
}

// DefaultContextKey is where the guard stores the resolved identity
const DefaultContextKey = "identity"

// identityLookupTimeout bounds the store round-trip so a stalled database
// fails the request instead of pinning a handler goroutine.
const identityLookupTimeout = 5 * time.Second

// Guard enforces a Policy in front of a route. It resolves the identity
// from storage on every request, so role changes and deletions take effect
// immediately rather than at token expiry.
type Guard struct {
	tokens TokenService
	auths  Auths
	logger Logger

	// ContextKey overrides where the identity lands in fiber Locals
	ContextKey string
	// ErrorHandler lets the composition root shape failures; the default
	// just bubbles the error up to the app-level handler.
	ErrorHandler fiber.ErrorHandler
}

// NewGuard wires a guard over a token codec and identity store
func NewGuard(tokens TokenService, auths Auths, logger Logger) *Guard {
	if logger == nil {
		logger = defLogger{}
	}
	return &Guard{
		tokens:     tokens,
		auths:      auths,
		logger:     logger,
		ContextKey: DefaultContextKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return err
		},
	}
}

// VerifyRequest builds the fiber handler enforcing the given policy. The
// checks run in a fixed order so a caller always gets the most specific
// failure: missing credential, then token validity, then class, then
// existence, then verification, then role.
func (g *Guard) VerifyRequest(policy Policy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := bearerFromHeader(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return g.ErrorHandler(c, err)
		}

		claims, err := g.tokens.Verify(raw)
		if err != nil {
			return g.ErrorHandler(c, err)
		}

		if !classAllowed(policy.AllowedTokenClasses, claims.TokenClass()) {
			g.logger.Warn("credential class %q rejected for %s %s", claims.TokenClass(), c.Method(), c.Path())
			return g.ErrorHandler(c, ErrForbidden)
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), identityLookupTimeout)
		defer cancel()

		identity, err := g.auths.GetByEmail(ctx, claims.Email())
		if err != nil {
			return g.ErrorHandler(c, err)
		}

		if policy.RequireVerified && !identity.IsVerified {
			return g.ErrorHandler(c, ErrNotVerified)
		}

		if len(policy.AllowedRoles) > 0 && !roleAllowed(policy.AllowedRoles, identity.Role) {
			g.logger.Warn("role %q rejected for %s %s", identity.Role, c.Method(), c.Path())
			return g.ErrorHandler(c, ErrForbidden)
		}

		c.Locals(g.contextKey(), identity.Sanitized())

		return c.Next()
	}
}

func (g *Guard) contextKey() string {
	if g.ContextKey == "" {
		return DefaultContextKey
	}
	return g.ContextKey
}

// IdentityFromCtx retrieves the identity a Guard stored for this request
func IdentityFromCtx(c *fiber.Ctx) (*Auth, error) {
	return IdentityFromCtxKey(c, DefaultContextKey)
}

// IdentityFromCtxKey is IdentityFromCtx for a guard with a custom key
func IdentityFromCtxKey(c *fiber.Ctx, key string) (*Auth, error) {
	identity, ok := c.Locals(key).(*Auth)
	if !ok || identity == nil {
		return nil, ErrMissingCredential
	}
	return identity, nil
}

func bearerFromHeader(header string) (string, error) {
	if header == "" {
		return "", ErrMissingCredential
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrMissingCredential
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", ErrMissingCredential
	}

	return token, nil
}

func classAllowed(allowed []TokenClass, class TokenClass) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == class {
			return true
		}
	}
	return false
}

func roleAllowed(allowed []Role, role Role) bool {
	for _, a := range allowed {
		if a == role {
			return true
		}
	}
	return false
}
