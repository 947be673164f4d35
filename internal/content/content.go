package content

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Type identifies a block variant. The set is closed: storage,
// forms and rendering all dispatch on it exhaustively.
type Type string

const (
	TypeLink           Type = "LINK"
	TypeImage          Type = "IMAGE"
	TypeCategory       Type = "CATEGORY"
	TypeProduct        Type = "PRODUCT"
	TypeSocial         Type = "SOCIAL"
	TypePageTitle      Type = "PAGE_TITLE"
	TypePageAvatar     Type = "PAGE_AVATAR"
	TypePageBio        Type = "PAGE_BIO"
	TypeSocialLinks    Type = "SOCIAL_LINKS"
	TypeCategoriesList Type = "CATEGORIES_LIST"
	TypeBlank          Type = "BLANK"
)

// Types lists every block variant in selector order.
var Types = []Type{
	TypeLink,
	TypeImage,
	TypeCategory,
	TypeProduct,
	TypeSocial,
	TypePageTitle,
	TypePageAvatar,
	TypePageBio,
	TypeSocialLinks,
	TypeCategoriesList,
	TypeBlank,
}

// Valid reports whether t is one of the known variants.
func (t Type) Valid() bool {
	switch t {
	case TypeLink, TypeImage, TypeCategory, TypeProduct, TypeSocial,
		TypePageTitle, TypePageAvatar, TypePageBio,
		TypeSocialLinks, TypeCategoriesList, TypeBlank:
		return true
	}
	return false
}

// Platform is a social network identifier for a SocialLink.
type Platform string

const (
	PlatformTwitter   Platform = "twitter"
	PlatformGithub    Platform = "github"
	PlatformLinkedin  Platform = "linkedin"
	PlatformInstagram Platform = "instagram"
	PlatformYoutube   Platform = "youtube"
)

// Platforms lists the supported social platforms.
var Platforms = []Platform{
	PlatformTwitter, PlatformGithub, PlatformLinkedin, PlatformInstagram, PlatformYoutube,
}

// Valid reports whether p is a supported platform.
func (p Platform) Valid() bool {
	switch p {
	case PlatformTwitter, PlatformGithub, PlatformLinkedin, PlatformInstagram, PlatformYoutube:
		return true
	}
	return false
}

// SocialLink is one platform/URL pair owned by a page.
type SocialLink struct {
	Platform Platform `json:"platform"`
	URL      string   `json:"url"`
}

// ImageRef is an opaque reference to a stored image. The content
// model never inspects pixels, it only carries references around.
type ImageRef struct {
	ID  string `json:"id,omitempty"`
	Src string `json:"src"`
}

// Block is one typed content unit on a page. All variants share this
// shape; which fields are meaningful depends on Type (see FieldsFor).
// Unset optional fields marshal as omitted, never as placeholders.
type Block struct {
	ID          string            `json:"id"`
	Type        Type              `json:"type"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	URL         string            `json:"url,omitempty"`
	Icon        string            `json:"icon,omitempty"`
	Images      []ImageRef        `json:"images,omitempty"`
	Price       float64           `json:"price,omitempty"`
	Currency    string            `json:"currency,omitempty"`
	Languages   map[string]string `json:"languages,omitempty"`
	ParentID    string            `json:"parent_id,omitempty"`
	Anchor      bool              `json:"anchor,omitempty"`
	Visible     bool              `json:"visible"`
	Order       int               `json:"order"`
}

// New constructs a block of the given variant with defaults applied:
// fresh id, visible, default icon, order unset (the list assigns it
// on insert).
func New(t Type) *Block {
	return &Block{
		ID:      uuid.NewString(),
		Type:    t,
		Icon:    DefaultIcon(t),
		Visible: true,
	}
}

// Clone returns a deep copy of the block.
func (b *Block) Clone() *Block {
	c := *b
	if b.Images != nil {
		c.Images = make([]ImageRef, len(b.Images))
		copy(c.Images, b.Images)
	}
	if b.Languages != nil {
		c.Languages = make(map[string]string, len(b.Languages))
		for k, v := range b.Languages {
			c.Languages[k] = v
		}
	}
	return &c
}

// ValidationError reports a rejected block field. A rejected mutation
// leaves the draft untouched; the message is safe to show the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the block against its variant's field contract:
// required fields present, URL well-formed, price not negative.
// Parent-cycle validation lives on List, which can see siblings.
func (b *Block) Validate() error {
	spec, err := FieldsFor(b.Type)
	if err != nil {
		return err
	}
	for _, f := range spec.Required {
		if !b.fieldSet(f) {
			return &ValidationError{Field: string(f), Message: "required for " + string(b.Type)}
		}
	}
	if b.URL != "" {
		if err := validateURL(b.URL); err != nil {
			return &ValidationError{Field: "url", Message: err.Error()}
		}
	}
	if b.Price < 0 {
		return &ValidationError{Field: "price", Message: "must not be negative"}
	}
	return nil
}

func (b *Block) fieldSet(f Field) bool {
	switch f {
	case FieldTitle:
		return b.Title != ""
	case FieldDescription:
		return b.Description != ""
	case FieldURL:
		return b.URL != ""
	case FieldIcon:
		return b.Icon != ""
	case FieldImage:
		return len(b.Images) > 0
	case FieldPrice:
		return b.Price != 0
	case FieldCurrency:
		return b.Currency != ""
	}
	return false
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("malformed url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("url is missing a host")
	}
	return nil
}

// Alignment is the page-level text/layout alignment.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// Valid reports whether a is a known alignment.
func (a Alignment) Valid() bool {
	return a == AlignLeft || a == AlignCenter || a == AlignRight
}

// Page holds the header fields of a user's page. Exactly one page
// exists per user.
type Page struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	DisplayName     string     `json:"display_name,omitempty"`
	Bio             string     `json:"bio,omitempty"`
	AvatarImages    []ImageRef `json:"avatar_images,omitempty"`
	Alignment       Alignment  `json:"alignment"`
	BrandColor      string     `json:"brand_color"`
	BackgroundColor string     `json:"background_color"`
	Theme           string     `json:"theme"`
	Language        string     `json:"language"`
	FooterText      string     `json:"footer_text,omitempty"`
	MultiLanguage   bool       `json:"multi_language"`
	Live            bool       `json:"live"`
}

// NewPage returns a page with the standard defaults for a fresh user.
func NewPage(userID string) *Page {
	return &Page{
		ID:              uuid.NewString(),
		UserID:          userID,
		Alignment:       AlignCenter,
		BrandColor:      "#000000",
		BackgroundColor: "#FFFFFF",
		Theme:           "DEFAULT",
		Language:        "en",
		Live:            true,
	}
}

// Clone returns a deep copy of the page header.
func (p *Page) Clone() *Page {
	c := *p
	if p.AvatarImages != nil {
		c.AvatarImages = make([]ImageRef, len(p.AvatarImages))
		copy(c.AvatarImages, p.AvatarImages)
	}
	return &c
}

// Validate checks header fields that have closed value sets.
func (p *Page) Validate() error {
	if !p.Alignment.Valid() {
		return &ValidationError{Field: "alignment", Message: "must be left, center or right"}
	}
	if p.BrandColor != "" && !validHexColor(p.BrandColor) {
		return &ValidationError{Field: "brand_color", Message: "must be a #RRGGBB color"}
	}
	if p.BackgroundColor != "" && !validHexColor(p.BackgroundColor) {
		return &ValidationError{Field: "background_color", Message: "must be a #RRGGBB color"}
	}
	return nil
}

func validHexColor(s string) bool {
	if len(s) != 7 || !strings.HasPrefix(s, "#") {
		return false
	}
	for _, ch := range s[1:] {
		switch {
		case ch >= '0' && ch <= '9', ch >= 'a' && ch <= 'f', ch >= 'A' && ch <= 'F':
		default:
			return false
		}
	}
	return true
}
