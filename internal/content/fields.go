package content

import (
	"errors"
	"fmt"
)

// ErrUnknownType is returned when a field or info lookup is made for
// a variant tag outside the closed set. Callers must not fall back
// silently.
var ErrUnknownType = errors.New("unknown content type")

// Field names one editable block attribute.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldURL         Field = "url"
	FieldImage       Field = "image"
	FieldIcon        Field = "icon"
	FieldPrice       Field = "price"
	FieldCurrency    Field = "currency"
)

// allFields is the fixed field order used to derive the secondary
// tier: everything not already required or primary, in this order.
var allFields = []Field{
	FieldTitle, FieldURL, FieldImage, FieldDescription, FieldIcon, FieldPrice, FieldCurrency,
}

// FieldSpec classifies a variant's fields into the three
// progressive-disclosure tiers: required fields are always shown,
// primary optional fields are shown by default, secondary optional
// fields hide behind a "more options" toggle.
type FieldSpec struct {
	Required  []Field `json:"required"`
	Primary   []Field `json:"primary"`
	Secondary []Field `json:"secondary"`
}

// FieldsFor returns the field classification for a variant. The
// switch is exhaustive over the closed type set; an unknown tag is an
// ErrUnknownType error, never a silent default.
func FieldsFor(t Type) (FieldSpec, error) {
	var required, primary []Field
	switch t {
	case TypeLink:
		required = []Field{FieldURL}
		primary = []Field{FieldTitle}
	case TypeImage:
		required = []Field{FieldImage}
		primary = []Field{FieldDescription}
	case TypeCategory:
		required = []Field{FieldTitle}
		primary = []Field{FieldDescription}
	case TypeProduct:
		required = []Field{FieldTitle}
		primary = []Field{FieldPrice, FieldCurrency, FieldDescription, FieldImage}
	case TypeSocial:
		required = []Field{FieldURL}
		primary = []Field{FieldIcon}
	case TypePageTitle:
		required = []Field{FieldTitle}
	case TypePageAvatar:
		required = []Field{FieldImage}
	case TypePageBio:
		required = []Field{FieldDescription}
	case TypeSocialLinks, TypeCategoriesList:
		// Content is derived (the page's social set, anchor blocks);
		// only an optional heading is editable.
		primary = []Field{FieldTitle}
	case TypeBlank:
		primary = []Field{FieldTitle, FieldDescription, FieldImage}
	default:
		return FieldSpec{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}

	used := make(map[Field]bool, len(required)+len(primary))
	for _, f := range required {
		used[f] = true
	}
	for _, f := range primary {
		used[f] = true
	}
	var secondary []Field
	for _, f := range allFields {
		if !used[f] {
			secondary = append(secondary, f)
		}
	}
	return FieldSpec{Required: required, Primary: primary, Secondary: secondary}, nil
}

// TypeInfo describes a variant for the add-block selector.
type TypeInfo struct {
	Type        Type   `json:"type"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

var typeInfos = map[Type]TypeInfo{
	TypeLink:           {TypeLink, "Link", "Add a direct link to any URL.", "Link"},
	TypeImage:          {TypeImage, "Image", "Add a link with a custom preview image.", "Image"},
	TypeCategory:       {TypeCategory, "Section", "Create a heading to group related links.", "Heading"},
	TypeProduct:        {TypeProduct, "Product", "Showcase a product with an image and price.", "ShoppingCart"},
	TypeSocial:         {TypeSocial, "Social Link", "Add a link to a social media profile.", "Users"},
	TypePageTitle:      {TypePageTitle, "Page Title", "The large heading at the top of the page.", "Layers"},
	TypePageAvatar:     {TypePageAvatar, "Avatar", "The profile image at the top of the page.", "User"},
	TypePageBio:        {TypePageBio, "Bio", "A short text about the page owner.", "User"},
	TypeSocialLinks:    {TypeSocialLinks, "Social Links", "A row of icons for the page's social profiles.", "Link"},
	TypeCategoriesList: {TypeCategoriesList, "Sections Strip", "A horizontal strip of section shortcuts.", "Layers"},
	TypeBlank:          {TypeBlank, "Blank", "Start with an empty component.", "BookOpen"},
}

// InfoFor returns the selector metadata for a variant.
func InfoFor(t Type) (TypeInfo, error) {
	info, ok := typeInfos[t]
	if !ok {
		return TypeInfo{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	return info, nil
}

// DefaultIcon returns the fallback icon name for a variant, or an
// empty string for unknown tags (New validates the tag separately).
func DefaultIcon(t Type) string {
	if info, ok := typeInfos[t]; ok {
		return info.Icon
	}
	return ""
}
