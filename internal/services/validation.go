package services

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"

	"pawmart/api/internal/models"
	"pawmart/api/internal/utils"
)

// Fields is a decoded JSON request body. Values keep their loose JSON types
// (string, float64, bool, nil, maps, slices) until the pipeline coerces them.
type Fields map[string]interface{}

// Listing validation messages, in pipeline order.
const (
	MsgListingNameRequired  = "Product/Pet name is required"
	MsgCategoryRequired     = "Valid category is required"
	MsgPriceRequired        = "Valid price is required"
	MsgPetsMustBeFree       = "Pets must be free for adoption (price: 0)"
	MsgLocationRequired     = "Location is required"
	MsgDescriptionRequired  = "Description is required"
	MsgImageRequired        = "Image URL is required"
	MsgEmailRequired        = "Email is required"
	MsgPickupDateRequired   = "Pickup date is required"
	MsgPickupDateInvalid    = "Invalid pickup date"
	MsgProductIDRequired    = "Product ID is required"
	MsgProductIDInvalid     = "Invalid product ID"
	MsgProductNameRequired  = "Product name is required"
	MsgBuyerNameRequired    = "Buyer name is required"
	MsgQuantityRequired     = "Valid quantity is required"
	MsgPetQuantityMustBeOne = "Pet adoption quantity must be 1"
	MsgAddressRequired      = "Address is required"
	MsgPhoneRequired        = "Phone number is required"
)

// dateLayouts are tried in order when a pickup date arrives as a string.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// textValue returns v as a string. Numbers are accepted and formatted; other types are not text.
func textValue(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64, json.Number, int, int64:
		s, err := cast.ToStringE(t)
		return s, err == nil
	default:
		return "", false
	}
}

// numberValue coerces a JSON number or numeric string. NaN and infinities are rejected.
func numberValue(v interface{}) (float64, bool) {
	var f float64
	var err error
	switch t := v.(type) {
	case float64, int, int64:
		f, err = cast.ToFloat64E(t)
	case json.Number:
		f, err = t.Float64()
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err = cast.ToFloat64E(s)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// dateValue parses a pickup date given as a date/time string or as epoch milliseconds.
func dateValue(v interface{}) (time.Time, bool) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC().Truncate(time.Millisecond), true
			}
		}
		return time.Time{}, false
	}
	if ms, ok := numberValue(v); ok {
		return time.UnixMilli(int64(ms)).UTC(), true
	}
	return time.Time{}, false
}

// requiredText fails unless fields[key] is non-empty text. When trim is set the value is
// trimmed first, so whitespace-only input is rejected and the trimmed form is returned.
func requiredText(fields Fields, key, message string, trim bool) (string, error) {
	s, ok := textValue(fields[key])
	if trim {
		s = strings.TrimSpace(s)
	}
	if !ok || s == "" {
		return "", invalid(key, message)
	}
	return s, nil
}

// requiredDate distinguishes a missing pickup date from one that does not parse.
func requiredDate(fields Fields, key string) (time.Time, error) {
	raw, exists := fields[key]
	if !exists || raw == nil || raw == "" {
		return time.Time{}, invalid(key, MsgPickupDateRequired)
	}
	t, ok := dateValue(raw)
	if !ok {
		return time.Time{}, invalid(key, MsgPickupDateInvalid)
	}
	return t, nil
}

// nonNegativeNumber fails unless fields[key] coerces to a number >= 0.
func nonNegativeNumber(fields Fields, key, message string) (float64, error) {
	raw, exists := fields[key]
	if !exists || raw == nil {
		return 0, invalid(key, message)
	}
	f, ok := numberValue(raw)
	if !ok || f < 0 {
		return 0, invalid(key, message)
	}
	return f, nil
}

// buildListing runs the listing create pipeline. The first failing check is returned;
// nothing is aggregated.
func buildListing(fields Fields, now time.Time) (*models.Listing, error) {
	name, err := requiredText(fields, "name", MsgListingNameRequired, true)
	if err != nil {
		return nil, err
	}

	categoryText, _ := fields["category"].(string)
	category := models.Category(categoryText)
	if !category.IsValid() {
		return nil, invalid("category", MsgCategoryRequired)
	}

	price, err := nonNegativeNumber(fields, "price", MsgPriceRequired)
	if err != nil {
		return nil, err
	}
	if category == models.CategoryPets && price != 0 {
		return nil, invalid("price", MsgPetsMustBeFree)
	}

	location, err := requiredText(fields, "location", MsgLocationRequired, true)
	if err != nil {
		return nil, err
	}
	description, err := requiredText(fields, "description", MsgDescriptionRequired, false)
	if err != nil {
		return nil, err
	}
	image, err := requiredText(fields, "image", MsgImageRequired, false)
	if err != nil {
		return nil, err
	}
	email, err := requiredText(fields, "email", MsgEmailRequired, false)
	if err != nil {
		return nil, err
	}
	date, err := requiredDate(fields, "date")
	if err != nil {
		return nil, err
	}

	return &models.Listing{
		Name:        name,
		Category:    category,
		Price:       price,
		Location:    location,
		Description: description,
		Image:       image,
		Email:       email,
		Date:        date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// listingTextFields maps each string-typed listing key to the message reported when a patch
// value cannot be stored as text.
var listingTextFields = map[string]string{
	"name":        MsgListingNameRequired,
	"category":    MsgCategoryRequired,
	"location":    MsgLocationRequired,
	"description": MsgDescriptionRequired,
	"image":       MsgImageRequired,
	"email":       MsgEmailRequired,
}

// buildListingPatch converts the typed keys of an update patch to the types a Listing is stored
// with, so every patched record still decodes. Business rules (category values, free pets,
// required fields) are not applied. Unknown keys pass through unchanged; immutable and
// server-managed keys are dropped.
func buildListingPatch(patch Fields) (Fields, error) {
	set := Fields{}
	for key, value := range patch {
		switch key {
		case "_id", "id", "createdAt", "updatedAt":
			continue
		case "price":
			f, ok := numberValue(value)
			if !ok {
				return nil, invalid(key, MsgPriceRequired)
			}
			set[key] = f
		case "date":
			t, ok := dateValue(value)
			if !ok {
				return nil, invalid(key, MsgPickupDateInvalid)
			}
			set[key] = t
		default:
			if message, typed := listingTextFields[key]; typed {
				text, ok := textValue(value)
				if !ok {
					return nil, invalid(key, message)
				}
				set[key] = text
				continue
			}
			set[key] = value
		}
	}
	return set, nil
}

// buildOrder runs the order create pipeline, first failure wins.
func buildOrder(fields Fields, now time.Time) (*models.Order, error) {
	productIDText, err := requiredText(fields, "productId", MsgProductIDRequired, false)
	if err != nil {
		return nil, err
	}
	productID, err := utils.ParseObjectID(productIDText)
	if err != nil {
		return nil, invalid("productId", MsgProductIDInvalid)
	}

	productName, err := requiredText(fields, "productName", MsgProductNameRequired, true)
	if err != nil {
		return nil, err
	}
	buyerName, err := requiredText(fields, "buyerName", MsgBuyerNameRequired, true)
	if err != nil {
		return nil, err
	}
	email, err := requiredText(fields, "email", MsgEmailRequired, false)
	if err != nil {
		return nil, err
	}

	quantity, ok := numberValue(fields["quantity"])
	if !ok || quantity < 1 || quantity != math.Trunc(quantity) || quantity > math.MaxInt32 {
		return nil, invalid("quantity", MsgQuantityRequired)
	}

	// Category is optional on orders and stored as supplied; only the pets rule reads it.
	categoryText, _ := fields["category"].(string)
	category := models.Category(categoryText)
	if category == models.CategoryPets && quantity != 1 {
		return nil, invalid("quantity", MsgPetQuantityMustBeOne)
	}

	price, err := nonNegativeNumber(fields, "price", MsgPriceRequired)
	if err != nil {
		return nil, err
	}

	address, err := requiredText(fields, "address", MsgAddressRequired, true)
	if err != nil {
		return nil, err
	}
	phone, err := requiredText(fields, "phone", MsgPhoneRequired, false)
	if err != nil {
		return nil, err
	}
	date, err := requiredDate(fields, "date")
	if err != nil {
		return nil, err
	}

	notes, _ := textValue(fields["additionalNotes"])

	return &models.Order{
		ProductID:       productID,
		ProductName:     productName,
		Category:        category,
		BuyerName:       buyerName,
		Email:           email,
		Quantity:        int(quantity),
		Price:           price,
		Address:         address,
		Phone:           phone,
		Date:            date,
		AdditionalNotes: notes,
		CreatedAt:       now,
	}, nil
}
