package catalog

import "github.com/goliatone/go-errors"

// ErrCategoryNotFound means no category matches the id
var ErrCategoryNotFound = errors.New("Category Not Found!", errors.CategoryNotFound).
	WithTextCode("CATEGORY_NOT_FOUND")

// ErrVendorNotFound means no vendor matches the id
var ErrVendorNotFound = errors.New("Vendor Not Found!", errors.CategoryNotFound).
	WithTextCode("VENDOR_NOT_FOUND")

// ErrProductNotFound means no product matches the id
var ErrProductNotFound = errors.New("Product Not Found!", errors.CategoryNotFound).
	WithTextCode("PRODUCT_NOT_FOUND")

// ErrNameTaken rejects a duplicate category or vendor name
var ErrNameTaken = errors.New("Name Already Exists!", errors.CategoryConflict).
	WithTextCode("NAME_TAKEN")
