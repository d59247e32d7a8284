package catalog

import (
	"context"
	"io"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/ecobuilt/api/auth"
	"github.com/ecobuilt/api/response"
)

// FileStore is the slice of the upload store product pictures need
type FileStore interface {
	Put(ctx context.Context, filename string, body io.Reader, contentType string) (string, error)
	URL(key string) string
}

// NamePayload covers category and vendor create/update bodies
type NamePayload struct {
	Name string `json:"name"`
}

// Validate checks the payload shape
func (p NamePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 120)),
	)
}

// ProductPayload is the product create/update body
type ProductPayload struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Sku         string  `json:"sku"`
	Stock       int     `json:"stock"`
	Price       float64 `json:"price"`
	SalePrice   float64 `json:"sale_price"`
	CategoryID  string  `json:"category_id"`
	VendorID    string  `json:"vendor_id"`
}

// Validate checks the payload shape
func (p ProductPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Sku, validation.Required, validation.Length(1, 64)),
		validation.Field(&p.Stock, validation.Min(0)),
		validation.Field(&p.Price, validation.Required, validation.Min(0.0)),
		validation.Field(&p.SalePrice, validation.Min(0.0)),
	)
}

// Controller serves the catalog endpoints
type Controller struct {
	Categories Categories
	Vendors    Vendors
	Products   Products
	Files      FileStore
	Logger     auth.Logger
}

// NewController builds a catalog Controller
func NewController(categories Categories, vendors Vendors, products Products, files FileStore, logger auth.Logger) *Controller {
	if categories == nil || vendors == nil || products == nil {
		panic("Missing repositories in catalog controller...")
	}
	return &Controller{
		Categories: categories,
		Vendors:    vendors,
		Products:   products,
		Files:      files,
		Logger:     logger,
	}
}

// RegisterRoutes mounts the catalog endpoints. Category and vendor writes
// are operator-only; product writes belong to sellers, with operators able
// to amend any product.
func (ct *Controller) RegisterRoutes(app fiber.Router, guard *auth.Guard) {
	operator := guard.VerifyRequest(auth.Policy{
		AllowedTokenClasses: []auth.TokenClass{auth.TokenClassAccess},
		RequireVerified:     true,
		AllowedRoles:        []auth.Role{auth.RoleAdmin, auth.RoleSuperAdmin},
	})
	seller := guard.VerifyRequest(auth.Policy{
		AllowedTokenClasses: []auth.TokenClass{auth.TokenClassAccess},
		RequireVerified:     true,
		AllowedRoles:        []auth.Role{auth.RoleVendor},
	})
	sellerOrOperator := guard.VerifyRequest(auth.Policy{
		AllowedTokenClasses: []auth.TokenClass{auth.TokenClassAccess},
		RequireVerified:     true,
		AllowedRoles:        []auth.Role{auth.RoleVendor, auth.RoleAdmin, auth.RoleSuperAdmin},
	})
	signedIn := guard.VerifyRequest(auth.Policy{
		AllowedTokenClasses: []auth.TokenClass{auth.TokenClassAccess},
		RequireVerified:     true,
	})

	app.Get("/categories", ct.ListCategories)
	app.Post("/categories", operator, ct.CreateCategory)
	app.Put("/categories/:id", operator, ct.UpdateCategory)
	app.Delete("/categories/:id", operator, ct.DeleteCategory)

	app.Get("/vendors", ct.ListVendors)
	app.Post("/vendors", operator, ct.CreateVendor)
	app.Put("/vendors/:id", operator, ct.UpdateVendor)
	app.Delete("/vendors/:id", operator, ct.DeleteVendor)

	app.Get("/products", signedIn, ct.ListProducts)
	app.Get("/products/:id", signedIn, ct.GetProduct)
	app.Post("/products", seller, ct.CreateProduct)
	app.Put("/products/:id", sellerOrOperator, ct.UpdateProduct)
	app.Post("/products/:id/pictures", sellerOrOperator, ct.AddProductPictures)
}

// ListCategories returns the live categories
func (ct *Controller) ListCategories(c *fiber.Ctx) error {
	records, err := ct.Categories.List(c.UserContext(), false)
	if err != nil {
		return err
	}
	return response.Success(c, records, "")
}

// CreateCategory adds a category
func (ct *Controller) CreateCategory(c *fiber.Ctx) error {
	payload := NamePayload{}
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	record, err := ct.Categories.Create(c.UserContext(), &Category{Name: payload.Name})
	if err != nil {
		return err
	}

	return response.Created(c, record, "Category Created Successfully!")
}

// UpdateCategory renames a category
func (ct *Controller) UpdateCategory(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	payload := NamePayload{}
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	ctx := c.UserContext()

	record, err := ct.Categories.GetByID(ctx, id)
	if err != nil {
		return err
	}
	record.Name = payload.Name

	record, err = ct.Categories.Update(ctx, record)
	if err != nil {
		return err
	}

	return response.Success(c, record, "Category Updated Successfully!")
}

// DeleteCategory soft-deletes a category
func (ct *Controller) DeleteCategory(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := ct.Categories.SoftDelete(c.UserContext(), id); err != nil {
		return err
	}

	return response.Success(c, nil, "Category Deleted Successfully!")
}

// ListVendors returns the live vendor directory
func (ct *Controller) ListVendors(c *fiber.Ctx) error {
	records, err := ct.Vendors.List(c.UserContext(), false)
	if err != nil {
		return err
	}
	return response.Success(c, records, "")
}

// CreateVendor adds a vendor directory entry
func (ct *Controller) CreateVendor(c *fiber.Ctx) error {
	payload := NamePayload{}
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	record, err := ct.Vendors.Create(c.UserContext(), &Vendor{Name: payload.Name})
	if err != nil {
		return err
	}

	return response.Created(c, record, "Vendor Created Successfully!")
}

// UpdateVendor renames a vendor directory entry
func (ct *Controller) UpdateVendor(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	payload := NamePayload{}
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	ctx := c.UserContext()

	record, err := ct.Vendors.GetByID(ctx, id)
	if err != nil {
		return err
	}
	record.Name = payload.Name

	record, err = ct.Vendors.Update(ctx, record)
	if err != nil {
		return err
	}

	return response.Success(c, record, "Vendor Updated Successfully!")
}

// DeleteVendor soft-deletes a vendor directory entry
func (ct *Controller) DeleteVendor(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := ct.Vendors.SoftDelete(c.UserContext(), id); err != nil {
		return err
	}

	return response.Success(c, nil, "Vendor Deleted Successfully!")
}

// ListProducts returns a filtered page of products plus the unpaged total
func (ct *Controller) ListProducts(c *fiber.Ctx) error {
	filter, err := filterFromQuery(c)
	if err != nil {
		return err
	}

	records, total, err := ct.Products.List(c.UserContext(), filter)
	if err != nil {
		return err
	}

	return response.Success(c, fiber.Map{
		"products": records,
		"total":    total,
		"page":     filter.Page,
		"limit":    filter.Limit,
	}, "")
}

// GetProduct returns one product by id
func (ct *Controller) GetProduct(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	record, err := ct.Products.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}

	return response.Success(c, record, "")
}

// CreateProduct adds a product to the catalog
func (ct *Controller) CreateProduct(c *fiber.Ctx) error {
	payload := ProductPayload{}
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	record, err := payload.toProduct()
	if err != nil {
		return err
	}

	record, err = ct.Products.Create(c.UserContext(), record)
	if err != nil {
		return err
	}

	return response.Created(c, record, "Product Created Successfully!")
}

// UpdateProduct rewrites a product's attributes, keeping its pictures
func (ct *Controller) UpdateProduct(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	payload := ProductPayload{}
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	ctx := c.UserContext()

	record, err := ct.Products.GetByID(ctx, id)
	if err != nil {
		return err
	}

	next, err := payload.toProduct()
	if err != nil {
		return err
	}
	next.ID = record.ID
	next.PictureKeys = record.PictureKeys
	next.IsDeleted = record.IsDeleted
	next.CreatedAt = record.CreatedAt

	record, err = ct.Products.Update(ctx, next)
	if err != nil {
		return err
	}

	return response.Success(c, record, "Product Updated Successfully!")
}

// AddProductPictures uploads one or more pictures and appends their keys
func (ct *Controller) AddProductPictures(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if ct.Files == nil {
		return errors.New("file storage is not configured", errors.CategoryInternal)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "Picture Files Required!")
	}

	headers := form.File["pictures"]
	if len(headers) == 0 {
		return errors.New("Picture Files Required!", errors.CategoryBadInput)
	}

	ctx := c.UserContext()

	keys := make([]string, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			return errors.Wrap(err, errors.CategoryBadInput, "Picture Files Required!")
		}

		key, err := ct.Files.Put(ctx, header.Filename, file, header.Header.Get(fiber.HeaderContentType))
		file.Close()
		if err != nil {
			return err
		}

		keys = append(keys, key)
	}

	record, err := ct.Products.AddPictures(ctx, id, keys)
	if err != nil {
		return err
	}

	return response.Success(c, record, "Product Pictures Uploaded Successfully!")
}

func (p ProductPayload) toProduct() (*Product, error) {
	record := &Product{
		Name:        p.Name,
		Description: p.Description,
		Sku:         p.Sku,
		Stock:       p.Stock,
		Price:       p.Price,
		SalePrice:   p.SalePrice,
	}

	if p.CategoryID != "" {
		id, err := uuid.Parse(p.CategoryID)
		if err != nil {
			return nil, errors.New("Invalid Category Id!", errors.CategoryBadInput)
		}
		record.CategoryID = id
	}

	if p.VendorID != "" {
		id, err := uuid.Parse(p.VendorID)
		if err != nil {
			return nil, errors.New("Invalid Vendor Id!", errors.CategoryBadInput)
		}
		record.VendorID = id
	}

	return record, nil
}

func filterFromQuery(c *fiber.Ctx) (ProductFilter, error) {
	filter := ProductFilter{
		Name:  c.Query("name"),
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", defaultPageSize),
	}

	if raw := c.Query("min_stock"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return filter, errors.New("Invalid Stock Filter!", errors.CategoryBadInput)
		}
		filter.MinStock = &v
	}

	if raw := c.Query("min_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter, errors.New("Invalid Price Filter!", errors.CategoryBadInput)
		}
		filter.MinPrice = &v
	}

	if raw := c.Query("max_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter, errors.New("Invalid Price Filter!", errors.CategoryBadInput)
		}
		filter.MaxPrice = &v
	}

	if raw := c.Query("is_deleted"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, errors.New("Invalid Deleted Filter!", errors.CategoryBadInput)
		}
		filter.IsDeleted = &v
	}

	if raw := c.Query("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, errors.New("Invalid Category Id!", errors.CategoryBadInput)
		}
		filter.CategoryID = id
	}

	if raw := c.Query("vendor_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, errors.New("Invalid Vendor Id!", errors.CategoryBadInput)
		}
		filter.VendorID = id
	}

	return filter, nil
}

func pathID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, errors.New("Invalid Id!", errors.CategoryBadInput)
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, payload interface{ Validate() error }) error {
	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "Invalid Request Body!")
	}

	if err := payload.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "Validation Failed!")
	}

	return nil
}
