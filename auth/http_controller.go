package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"

	"github.com/ecobuilt/api/response"
)

// SignUpPayload is the registration request body
type SignUpPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the payload shape
func (p SignUpPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(8, 32)),
	)
}

// SignInPayload is the login request body
type SignInPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the payload shape
func (p SignInPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required),
	)
}

// ForgotPasswordPayload starts the reset flow
type ForgotPasswordPayload struct {
	Email string `json:"email"`
}

// Validate checks the payload shape
func (p ForgotPasswordPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
	)
}

// ResendOtpPayload names the flow a fresh code is wanted for; the identity
// comes from the presented credential.
type ResendOtpPayload struct {
	Type string `json:"type"`
}

// Validate checks the payload shape
func (p ResendOtpPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Type, validation.Required,
			validation.In(OtpPurposeVerifyEmail, OtpPurposeResetPassword)),
	)
}

// VerifyOtpPayload is the passcode confirmation body
type VerifyOtpPayload struct {
	Otp  string `json:"otp"`
	Type string `json:"type"`
}

// Validate checks the payload shape
func (p VerifyOtpPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Otp, validation.Required, validation.Length(6, 6)),
		validation.Field(&p.Type, validation.Required,
			validation.In(OtpPurposeVerifyEmail, OtpPurposeResetPassword)),
	)
}

// UpdatePasswordPayload is the password reset body; the identity comes from
// the reset-password credential, never from the body.
type UpdatePasswordPayload struct {
	Password string `json:"password"`
}

// Validate checks the payload shape
func (p UpdatePasswordPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Password, validation.Required, validation.Length(8, 32)),
	)
}

// Controller owns the account lifecycle endpoints
type Controller struct {
	Repo   RepositoryManager
	Tokens TokenService
	Otps   *OtpIssuer
	Logger Logger
}

// ControllerOption configures a Controller
type ControllerOption func(*Controller) *Controller

// WithLogger overrides the default logger
func WithLogger(logger Logger) ControllerOption {
	return func(c *Controller) *Controller {
		c.Logger = logger
		return c
	}
}

// WithRepositoryManager sets the storage layer
func WithRepositoryManager(repo RepositoryManager) ControllerOption {
	return func(c *Controller) *Controller {
		c.Repo = repo
		return c
	}
}

// WithTokenService sets the credential codec
func WithTokenService(tokens TokenService) ControllerOption {
	return func(c *Controller) *Controller {
		c.Tokens = tokens
		return c
	}
}

// WithOtpIssuer sets the passcode issuer
func WithOtpIssuer(otps *OtpIssuer) ControllerOption {
	return func(c *Controller) *Controller {
		c.Otps = otps
		return c
	}
}

// NewController builds a Controller, panicking on missing collaborators
// since there is no sane degraded mode.
func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		Logger: defLogger{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Tokens == nil {
		panic("Missing TokenService in auth controller...")
	}

	if c.Otps == nil {
		panic("Missing OtpIssuer in auth controller...")
	}

	return c
}

// RegisterRoutes mounts the account lifecycle endpoints. The guard comes
// from the caller since it is shared with every other protected router.
// Re-send and verify resolve their identity from the presented credential,
// so an OTP can never be requested or redeemed for someone else's account.
func (a *Controller) RegisterRoutes(app fiber.Router, guard *Guard) {
	app.Post("/sign-up", a.SignUp)
	app.Post("/sign-in", a.SignIn)
	app.Post("/forgot-password", a.ForgotPassword)

	otpPolicy := Policy{
		AllowedTokenClasses: []TokenClass{TokenClassVerifyEmail, TokenClassResetPassword},
	}
	app.Post("/resend-otp", guard.VerifyRequest(otpPolicy), a.ResendOtp)
	app.Post("/verify-otp", guard.VerifyRequest(otpPolicy), a.VerifyOtp)

	app.Post("/update-password", guard.VerifyRequest(Policy{
		AllowedTokenClasses: []TokenClass{TokenClassResetPassword, TokenClassAccess},
	}), a.UpdatePassword)

	app.Post("/refresh", guard.VerifyRequest(Policy{
		AllowedTokenClasses: []TokenClass{TokenClassAccess},
		RequireVerified:     true,
	}), a.Refresh)
}

// SignUp registers a fresh identity, sends a verification code, and hands
// back a verify-email credential for the follow-up confirmation call.
func (a *Controller) SignUp(c *fiber.Ctx) error {
	payload := SignUpPayload{}
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	ctx := c.UserContext()

	if _, err := a.Repo.Auths().GetByEmail(ctx, payload.Email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, ErrIdentityNotFound) {
		return err
	}

	hash, err := HashPassword(payload.Password)
	if err != nil {
		return err
	}

	identity, err := a.Repo.Auths().Register(ctx, &Auth{
		Email:        payload.Email,
		PasswordHash: hash,
	})
	if err != nil {
		return err
	}

	if _, err := a.Otps.Issue(ctx, identity, OtpPurposeVerifyEmail); err != nil {
		return err
	}

	token, err := a.Tokens.Issue(identity.Email, TokenClassVerifyEmail)
	if err != nil {
		return err
	}

	return response.Created(c, fiber.Map{
		"user":  identity.Sanitized(),
		"token": token,
	}, "Sign Up Successfull!")
}

// SignIn checks credentials. A verified identity gets an access credential;
// an unverified one gets a fresh verification code plus a verify-email
// credential so the client can finish the confirmation flow.
func (a *Controller) SignIn(c *fiber.Ctx) error {
	payload := SignInPayload{}
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	ctx := c.UserContext()

	identity, err := a.Repo.Auths().GetByEmail(ctx, payload.Email)
	if err != nil {
		return err
	}

	if err := ComparePasswordAndHash(payload.Password, identity.PasswordHash); err != nil {
		return ErrInvalidPassword
	}

	if !identity.IsVerified {
		if _, err := a.Otps.Issue(ctx, identity, OtpPurposeVerifyEmail); err != nil {
			return err
		}

		token, err := a.Tokens.Issue(identity.Email, TokenClassVerifyEmail)
		if err != nil {
			return err
		}

		return response.Success(c, fiber.Map{
			"user":  identity.Sanitized(),
			"token": token,
		}, "OTP Sent Successfully!")
	}

	token, err := a.Tokens.Issue(identity.Email, TokenClassAccess)
	if err != nil {
		return err
	}

	return response.Success(c, fiber.Map{
		"user":  identity.Sanitized(),
		"token": token,
	}, "Sign In Successfull!")
}

// ForgotPassword starts the reset flow: a reset code goes out over email
// and the response carries a reset-password credential for the verify call.
func (a *Controller) ForgotPassword(c *fiber.Ctx) error {
	payload := ForgotPasswordPayload{}
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	ctx := c.UserContext()

	identity, err := a.Repo.Auths().GetByEmail(ctx, payload.Email)
	if err != nil {
		return err
	}

	if _, err := a.Otps.Issue(ctx, identity, OtpPurposeResetPassword); err != nil {
		return err
	}

	token, err := a.Tokens.Issue(identity.Email, TokenClassResetPassword)
	if err != nil {
		return err
	}

	return response.Success(c, fiber.Map{
		"token": token,
	}, "OTP Sent Successfully!")
}

// ResendOtp replaces any live code for the requested flow with a fresh one
func (a *Controller) ResendOtp(c *fiber.Ctx) error {
	payload := ResendOtpPayload{}
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	identity, err := IdentityFromCtx(c)
	if err != nil {
		return err
	}

	if _, err := a.Otps.Issue(c.UserContext(), identity, payload.Type); err != nil {
		return err
	}

	return response.Success(c, nil, "OTP Sent Successfully!")
}

// VerifyOtp consumes a passcode for the authenticated identity. A
// verify-email match marks the identity verified; either flavor yields a
// fresh access credential for the next step.
func (a *Controller) VerifyOtp(c *fiber.Ctx) error {
	payload := VerifyOtpPayload{}
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	identity, err := IdentityFromCtx(c)
	if err != nil {
		return err
	}

	if err := a.Otps.Verify(c.UserContext(), identity, payload.Type, payload.Otp); err != nil {
		return err
	}

	if payload.Type == OtpPurposeVerifyEmail {
		identity.IsVerified = true
	}

	token, err := a.Tokens.Issue(identity.Email, TokenClassAccess)
	if err != nil {
		return err
	}

	return response.Success(c, fiber.Map{
		"user":  identity,
		"token": token,
	}, "OTP Verified Successfully!")
}

// UpdatePassword finishes the reset flow. The route is guarded with a
// reset-password policy, so the identity in Locals already proved code
// ownership through VerifyOtp.
func (a *Controller) UpdatePassword(c *fiber.Ctx) error {
	payload := UpdatePasswordPayload{}
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	identity, err := IdentityFromCtx(c)
	if err != nil {
		return err
	}

	hash, err := HashPassword(payload.Password)
	if err != nil {
		return err
	}

	if err := a.Repo.Auths().ResetPassword(c.UserContext(), identity.ID, hash); err != nil {
		return err
	}

	return response.Success(c, nil, "Password Updated Successfully!")
}

// Refresh re-mints an access credential for a still-valid one
func (a *Controller) Refresh(c *fiber.Ctx) error {
	identity, err := IdentityFromCtx(c)
	if err != nil {
		return err
	}

	token, err := a.Tokens.Issue(identity.Email, TokenClassAccess)
	if err != nil {
		return err
	}

	return response.Success(c, fiber.Map{
		"user":  identity,
		"token": token,
	}, "Token Refreshed Successfully!")
}

// parseBody decodes and validates a request body in one step
func parseBody(c *fiber.Ctx, payload interface{ Validate() error }) error {
	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "Invalid Request Body!")
	}

	if err := payload.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "Validation Failed!")
	}

	return nil
}
