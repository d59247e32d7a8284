package profile

import (
	"context"
	"io"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"

	"github.com/ecobuilt/api/auth"
	"github.com/ecobuilt/api/response"
)

// FileStore is the slice of the upload store the controller needs
type FileStore interface {
	Put(ctx context.Context, filename string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// CreatePayload carries the role choice plus the union of the role-scoped
// attribute sets; validation only enforces the shared fields, the role
// switch decides which extras land in storage.
type CreatePayload struct {
	Role            string `json:"role"`
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	Description     string `json:"description"`
	PostalCode      string `json:"postal_code"`
	City            string `json:"city"`
	PickupAddress   string `json:"pickup_address"`
	DeliveryAddress string `json:"delivery_address"`
}

// Validate checks the payload shape
func (p CreatePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Role, validation.Required,
			validation.In(auth.RoleUser, auth.RoleVendor, auth.RoleAdmin)),
		validation.Field(&p.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&p.Phone, validation.Required),
	)
}

// UpdatePayload is CreatePayload without the role: a profile never changes
// its role after creation.
type UpdatePayload struct {
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	Description     string `json:"description"`
	PostalCode      string `json:"postal_code"`
	City            string `json:"city"`
	PickupAddress   string `json:"pickup_address"`
	DeliveryAddress string `json:"delivery_address"`
}

// Validate checks the payload shape
func (p UpdatePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&p.Phone, validation.Required),
	)
}

// Controller serves the role-scoped profile endpoints
type Controller struct {
	Repo     auth.RepositoryManager
	Profiles Profiles
	Files    FileStore
	Logger   auth.Logger
}

// NewController builds a profile Controller
func NewController(repo auth.RepositoryManager, profiles Profiles, files FileStore, logger auth.Logger) *Controller {
	if repo == nil {
		panic("Missing RepositoryManager in profile controller...")
	}
	if profiles == nil {
		panic("Missing Profiles repository in profile controller...")
	}
	return &Controller{
		Repo:     repo,
		Profiles: profiles,
		Files:    files,
		Logger:   logger,
	}
}

// RegisterRoutes mounts the profile endpoints behind a verified access guard
func (p *Controller) RegisterRoutes(app fiber.Router, guard *auth.Guard) {
	protect := guard.VerifyRequest(auth.Policy{
		AllowedTokenClasses: []auth.TokenClass{auth.TokenClassAccess},
		RequireVerified:     true,
	})

	app.Get("/", protect, p.Get)
	app.Post("/", protect, p.Create)
	app.Put("/", protect, p.Update)
	app.Put("/picture", protect, p.UpdatePicture)
}

// Get returns the profile matching the identity's resolved role
func (p *Controller) Get(c *fiber.Ctx) error {
	identity, err := auth.IdentityFromCtx(c)
	if err != nil {
		return err
	}

	record, err := p.load(c.UserContext(), identity)
	if err != nil {
		return err
	}

	return response.Success(c, record, "")
}

// Create stores the first profile for an identity and pins its role in the
// same transaction, so a half-created profile never leaves a dangling role.
func (p *Controller) Create(c *fiber.Ctx) error {
	identity, err := auth.IdentityFromCtx(c)
	if err != nil {
		return err
	}

	if identity.Role != auth.RoleUnspecified {
		return ErrProfileExists
	}

	payload := CreatePayload{}
	if err := c.BodyParser(&payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "Invalid Request Body!")
	}
	if err := payload.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "Validation Failed!")
	}

	phone, err := NormalizePhone(payload.Phone)
	if err != nil {
		return err
	}
	payload.Phone = phone

	var record any

	err = p.Repo.RunInTx(c.UserContext(), nil, func(ctx context.Context, tx bun.Tx) error {
		if err := p.Repo.Auths().SetRoleTx(ctx, tx, identity.ID, payload.Role); err != nil {
			return err
		}

		switch payload.Role {
		case auth.RoleAdmin:
			admin := &AdminProfile{
				AuthID: identity.ID,
				Name:   payload.Name,
				Phone:  payload.Phone,
			}
			record = admin
			return p.Profiles.CreateAdminTx(ctx, tx, admin)
		case auth.RoleVendor:
			vendor := &VendorProfile{
				AuthID:        identity.ID,
				Name:          payload.Name,
				Phone:         payload.Phone,
				Description:   payload.Description,
				PostalCode:    payload.PostalCode,
				City:          payload.City,
				PickupAddress: payload.PickupAddress,
			}
			record = vendor
			return p.Profiles.CreateVendorTx(ctx, tx, vendor)
		default:
			user := &UserProfile{
				AuthID:          identity.ID,
				Name:            payload.Name,
				Phone:           payload.Phone,
				PostalCode:      payload.PostalCode,
				City:            payload.City,
				DeliveryAddress: payload.DeliveryAddress,
			}
			record = user
			return p.Profiles.CreateUserTx(ctx, tx, user)
		}
	})
	if err != nil {
		return err
	}

	return response.Created(c, record, "Profile Created Successfully!")
}

// Update rewrites the role-scoped attributes, keeping the stored picture
func (p *Controller) Update(c *fiber.Ctx) error {
	identity, err := auth.IdentityFromCtx(c)
	if err != nil {
		return err
	}

	payload := UpdatePayload{}
	if err := c.BodyParser(&payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "Invalid Request Body!")
	}
	if err := payload.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "Validation Failed!")
	}

	phone, err := NormalizePhone(payload.Phone)
	if err != nil {
		return err
	}
	payload.Phone = phone

	ctx := c.UserContext()

	var record any

	switch identity.Role {
	case auth.RoleAdmin, auth.RoleSuperAdmin:
		admin, err := p.Profiles.GetAdmin(ctx, identity.ID)
		if err != nil {
			return err
		}
		admin.Name = payload.Name
		admin.Phone = payload.Phone
		record = admin
		err = p.Profiles.UpdateAdmin(ctx, admin)
		if err != nil {
			return err
		}
	case auth.RoleVendor:
		vendor, err := p.Profiles.GetVendor(ctx, identity.ID)
		if err != nil {
			return err
		}
		vendor.Name = payload.Name
		vendor.Phone = payload.Phone
		vendor.Description = payload.Description
		vendor.PostalCode = payload.PostalCode
		vendor.City = payload.City
		vendor.PickupAddress = payload.PickupAddress
		record = vendor
		err = p.Profiles.UpdateVendor(ctx, vendor)
		if err != nil {
			return err
		}
	case auth.RoleUser:
		user, err := p.Profiles.GetUser(ctx, identity.ID)
		if err != nil {
			return err
		}
		user.Name = payload.Name
		user.Phone = payload.Phone
		user.PostalCode = payload.PostalCode
		user.City = payload.City
		user.DeliveryAddress = payload.DeliveryAddress
		record = user
		err = p.Profiles.UpdateUser(ctx, user)
		if err != nil {
			return err
		}
	default:
		return ErrInvalidRole
	}

	return response.Success(c, record, "Profile Updated Successfully!")
}

// UpdatePicture stores a new profile picture and swaps the stored key,
// removing the previous object best-effort.
func (p *Controller) UpdatePicture(c *fiber.Ctx) error {
	identity, err := auth.IdentityFromCtx(c)
	if err != nil {
		return err
	}

	if p.Files == nil {
		return errors.New("file storage is not configured", errors.CategoryInternal)
	}

	header, err := c.FormFile("picture")
	if err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "Picture File Required!")
	}

	file, err := header.Open()
	if err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "Picture File Required!")
	}
	defer file.Close()

	ctx := c.UserContext()

	key, err := p.Files.Put(ctx, header.Filename, file, header.Header.Get(fiber.HeaderContentType))
	if err != nil {
		return err
	}

	oldKey, err := p.setPicture(ctx, identity, key)
	if err != nil {
		return err
	}

	if oldKey != "" {
		if err := p.Files.Delete(ctx, oldKey); err != nil && p.Logger != nil {
			p.Logger.Warn("could not delete replaced picture %s: %v", oldKey, err)
		}
	}

	return response.Success(c, fiber.Map{
		"picture_key": key,
		"picture_url": p.Files.URL(key),
	}, "Profile Picture Updated Successfully!")
}

func (p *Controller) setPicture(ctx context.Context, identity *auth.Auth, key string) (string, error) {
	switch identity.Role {
	case auth.RoleAdmin, auth.RoleSuperAdmin:
		admin, err := p.Profiles.GetAdmin(ctx, identity.ID)
		if err != nil {
			return "", err
		}
		old := admin.PictureKey
		admin.PictureKey = key
		return old, p.Profiles.UpdateAdmin(ctx, admin)
	case auth.RoleVendor:
		vendor, err := p.Profiles.GetVendor(ctx, identity.ID)
		if err != nil {
			return "", err
		}
		old := vendor.PictureKey
		vendor.PictureKey = key
		return old, p.Profiles.UpdateVendor(ctx, vendor)
	case auth.RoleUser:
		user, err := p.Profiles.GetUser(ctx, identity.ID)
		if err != nil {
			return "", err
		}
		old := user.PictureKey
		user.PictureKey = key
		return old, p.Profiles.UpdateUser(ctx, user)
	default:
		return "", ErrInvalidRole
	}
}

func (p *Controller) load(ctx context.Context, identity *auth.Auth) (any, error) {
	switch identity.Role {
	case auth.RoleAdmin, auth.RoleSuperAdmin:
		return p.Profiles.GetAdmin(ctx, identity.ID)
	case auth.RoleVendor:
		return p.Profiles.GetVendor(ctx, identity.ID)
	case auth.RoleUser:
		return p.Profiles.GetUser(ctx, identity.ID)
	default:
		return nil, ErrInvalidRole
	}
}
