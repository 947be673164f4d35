// Package theme maps (block variant, slot, theme, alignment, brand
// color) to a structured style decision. The mapping is pure data:
// rendering applies decisions, it never computes style on its own.
package theme

import (
	"biolink/internal/content"
)

// ID names a visual theme. Unknown ids resolve as DEFAULT.
type ID string

const (
	Default    ID = "DEFAULT"
	Modern     ID = "MODERN"
	Retro      ID = "RETRO"
	Elegant    ID = "ELEGANT"
	Classic    ID = "CLASSIC"
	Minimal    ID = "MINIMAL"
	Playful    ID = "PLAYFUL"
	Futuristic ID = "FUTURISTIC"
	Brutalist  ID = "BRUTALIST"
)

// IDs lists every theme.
var IDs = []ID{Default, Modern, Retro, Elegant, Classic, Minimal, Playful, Futuristic, Brutalist}

// Valid reports whether id is a known theme.
func (id ID) Valid() bool {
	switch id {
	case Default, Modern, Retro, Elegant, Classic, Minimal, Playful, Futuristic, Brutalist:
		return true
	}
	return false
}

// Slot names a sub-part of a block's visual structure that themes
// style independently.
type Slot string

const (
	SlotContainer       Slot = "container"
	SlotCard            Slot = "card"
	SlotCardContent     Slot = "cardContent"
	SlotCardHeader      Slot = "cardHeader"
	SlotTitle           Slot = "title"
	SlotDescription     Slot = "description"
	SlotImage           Slot = "image"
	SlotImageContainer  Slot = "imageContainer"
	SlotIcon            Slot = "icon"
	SlotIconContainer   Slot = "iconContainer"
	SlotBadge           Slot = "badge"
	SlotButton          Slot = "button"
	SlotLink            Slot = "link"
	SlotCategoryChip    Slot = "categoryChip"
	SlotCategoriesStrip Slot = "categoriesStrip"
	SlotSocialItem      Slot = "socialItem"
	SlotSocialList      Slot = "socialList"
)

// Slots lists every slot the renderer can ask about.
var Slots = []Slot{
	SlotContainer, SlotCard, SlotCardContent, SlotCardHeader,
	SlotTitle, SlotDescription, SlotImage, SlotImageContainer,
	SlotIcon, SlotIconContainer, SlotBadge, SlotButton, SlotLink,
	SlotCategoryChip, SlotCategoriesStrip, SlotSocialItem, SlotSocialList,
}

// StyleDecision is the opaque record a renderer applies to one slot.
// Classes carry layout and chrome, TextAlign is set only on layout
// slots, TintColor only on slots the theme marks tintable.
type StyleDecision struct {
	Classes   string `json:"classes"`
	Radius    string `json:"radius,omitempty"`
	Border    string `json:"border,omitempty"`
	Shadow    string `json:"shadow,omitempty"`
	Padding   string `json:"padding,omitempty"`
	Weight    string `json:"weight,omitempty"`
	TextAlign string `json:"text_align,omitempty"`
	TintColor string `json:"tint_color,omitempty"`
}

// def is the chrome one theme applies uniformly, plus its per-slot
// overrides. A theme without an override for a slot degrades to the
// DEFAULT theme's decision for that slot.
type def struct {
	radius        string
	border        string
	shadow        string
	padding       string
	textWeight    string
	headingWeight string
	overrides     map[Slot]string
}

var themes = map[ID]def{
	Default: {
		radius: "rounded-lg", border: "border border-primary", shadow: "shadow-md",
		padding: "p-4", textWeight: "font-normal", headingWeight: "font-semibold",
		overrides: map[Slot]string{
			SlotCard:   "rounded-lg border bg-card shadow-sm",
			SlotButton: "bg-primary hover:opacity-90",
			SlotImage:  "object-cover w-full max-h-60 rounded-md",
		},
	},
	Modern: {
		radius: "rounded-xl", border: "border border-transparent", shadow: "shadow-lg",
		padding: "p-6", textWeight: "font-medium", headingWeight: "font-bold",
		overrides: map[Slot]string{
			SlotCard:   "rounded-xl border-transparent bg-card shadow-lg backdrop-blur",
			SlotButton: "bg-primary hover:opacity-80",
			SlotImage:  "object-cover w-full max-h-60 rounded-md",
		},
	},
	Retro: {
		radius: "rounded-md", border: "border border-primary", shadow: "shadow-none",
		padding: "p-5", textWeight: "font-bold", headingWeight: "font-extrabold",
		overrides: map[Slot]string{
			SlotCard:      "rounded-md border-2 border-dashed bg-card",
			SlotButton:    "bg-primary hover:opacity-85",
			SlotImage:     "object-cover w-full max-h-60 rounded-none border-2",
			SlotContainer: "border-l-4",
		},
	},
	Elegant: {
		radius: "rounded-lg", border: "border border-primary", shadow: "shadow-sm",
		padding: "p-6", textWeight: "font-light", headingWeight: "font-medium",
		overrides: map[Slot]string{
			SlotCard:  "rounded-xl border bg-card shadow-md",
			SlotImage: "object-cover w-full max-h-60 rounded-md shadow-md",
		},
	},
	Classic: {
		radius: "rounded-md", border: "border border-primary", shadow: "shadow-md",
		padding: "p-4", textWeight: "font-semibold", headingWeight: "font-bold",
		overrides: map[Slot]string{
			SlotCard:  "rounded-md border border-solid bg-card shadow-md",
			SlotImage: "object-cover w-full max-h-60 rounded-md border",
		},
	},
	Minimal: {
		radius: "rounded-md", border: "border border-transparent", shadow: "shadow-none",
		padding: "p-4", textWeight: "font-light", headingWeight: "font-thin",
		overrides: map[Slot]string{
			SlotCard: "rounded-md bg-card",
		},
	},
	Playful: {
		radius: "rounded-xl", border: "border border-primary", shadow: "shadow-lg",
		padding: "p-6", textWeight: "font-bold", headingWeight: "font-black",
		overrides: map[Slot]string{
			SlotCard:   "rounded-xl border-2 bg-card shadow-lg",
			SlotButton: "bg-primary hover:opacity-80",
		},
	},
	Futuristic: {
		radius: "rounded-md", border: "border border-primary", shadow: "shadow-lg",
		padding: "p-5", textWeight: "font-medium", headingWeight: "font-bold",
		overrides: map[Slot]string{
			SlotCard: "rounded-md border border-glow bg-card/80 shadow-lg",
		},
	},
	Brutalist: {
		radius: "rounded-none", border: "border-2 border-primary", shadow: "shadow-none",
		padding: "p-4", textWeight: "font-extrabold", headingWeight: "font-black",
		overrides: map[Slot]string{
			SlotCard:  "rounded-none border-2 bg-card",
			SlotImage: "object-cover w-full max-h-60 rounded-none",
		},
	},
}

// Resolve returns the style decision for one slot of one block
// variant. It is total: unknown themes resolve as DEFAULT, and a
// theme missing a slot override falls back to DEFAULT's override for
// that slot instead of erroring.
func Resolve(variant content.Type, slot Slot, id ID, alignment content.Alignment, brandColor string) StyleDecision {
	if !id.Valid() {
		id = Default
	}
	t := themes[id]

	classes := baseClass(slot, variant)
	if override, ok := t.overrides[slot]; ok {
		classes = join(classes, override)
	} else if fallback, ok := themes[Default].overrides[slot]; ok {
		classes = join(classes, fallback)
	}

	d := StyleDecision{
		Classes: classes,
		Radius:  t.radius,
		Border:  t.border,
		Shadow:  t.shadow,
		Padding: t.padding,
		Weight:  t.textWeight,
	}
	if slot == SlotTitle || slot == SlotCardHeader {
		d.Weight = t.headingWeight
	}
	if layoutSlot(slot) {
		d.TextAlign = alignClass(alignment)
	}
	if brandColor != "" && tintable(id, slot, variant) {
		d.TintColor = brandColor
	}
	return d
}

// layoutSlot reports whether alignment applies. Alignment never
// touches color.
func layoutSlot(slot Slot) bool {
	return slot == SlotContainer || slot == SlotTitle || slot == SlotDescription
}

func alignClass(a content.Alignment) string {
	switch a {
	case content.AlignCenter:
		return "text-center mx-auto"
	case content.AlignRight:
		return "text-right ml-auto"
	default:
		return "text-left"
	}
}

// tintable reports whether the brand color is applied to this slot.
// Which slots tint is part of each theme's identity: most themes only
// tint links, RETRO additionally tints category card borders, ELEGANT
// tints titles and icons, CLASSIC tints titles.
func tintable(id ID, slot Slot, variant content.Type) bool {
	switch id {
	case Elegant:
		return slot == SlotLink || slot == SlotTitle || slot == SlotIcon
	case Classic:
		return slot == SlotLink || slot == SlotTitle
	case Retro:
		return slot == SlotLink || (slot == SlotCard && variant == content.TypeCategory)
	default:
		return slot == SlotLink
	}
}

// baseClass is the theme-independent layout skeleton per slot, with
// variant-specific entries where one variant lays the slot out
// differently.
func baseClass(slot Slot, variant content.Type) string {
	if m, ok := baseClasses[slot]; ok {
		if c, ok := m[variant]; ok {
			return c
		}
		return m[anyVariant]
	}
	return "w-full"
}

// anyVariant keys the per-slot default row.
const anyVariant = content.Type("*")

var baseClasses = map[Slot]map[content.Type]string{
	SlotContainer: {
		anyVariant:                 "w-full",
		content.TypeLink:           "block w-full",
		content.TypeImage:          "overflow-hidden",
		content.TypePageTitle:      "mb-8",
		content.TypePageAvatar:     "mb-6 flex flex-col items-center justify-center",
		content.TypePageBio:        "mb-8",
		content.TypeSocialLinks:    "mb-6",
		content.TypeCategoriesList: "mb-8",
	},
	SlotCard: {
		anyVariant:        "w-full",
		content.TypeLink:  "overflow-hidden transition-all hover:shadow-md",
		content.TypeImage: "overflow-hidden",
	},
	SlotCardContent: {
		anyVariant:          "p-4",
		content.TypeLink:    "flex items-center justify-between p-4",
		content.TypeProduct: "pb-2 pt-0",
	},
	SlotCardHeader: {
		anyVariant:          "pb-2",
		content.TypeProduct: "pb-2 pt-3",
	},
	SlotTitle: {
		anyVariant:             "font-medium",
		content.TypeCategory:   "text-xl font-bold",
		content.TypeProduct:    "text-lg",
		content.TypePageTitle:  "text-4xl font-bold tracking-tight md:text-5xl",
		content.TypePageAvatar: "mt-4 text-2xl font-bold",
	},
	SlotDescription: {
		anyVariant:            "text-sm text-muted-foreground",
		content.TypeCategory:  "text-base",
		content.TypePageTitle: "mt-2 text-lg text-muted-foreground",
	},
	SlotImage: {
		anyVariant:             "w-full object-cover",
		content.TypePageAvatar: "h-full w-full rounded-full object-cover",
	},
	SlotImageContainer: {
		anyVariant:             "overflow-hidden",
		content.TypeImage:      "relative w-full overflow-hidden",
		content.TypeProduct:    "relative h-48 w-full overflow-hidden bg-muted",
		content.TypePageAvatar: "h-32 w-32 overflow-hidden rounded-full border-4 border-primary/20 p-1",
		content.TypeSocial:     "h-12 w-12 overflow-hidden rounded-full",
	},
	SlotIcon: {
		anyVariant:             "h-4 w-4",
		content.TypeCategory:   "h-5 w-5",
		content.TypeSocial:     "h-6 w-6",
		content.TypePageTitle:  "h-8 w-8",
		content.TypePageAvatar: "h-16 w-16",
		content.TypeSocialLinks: "h-6 w-6",
	},
	SlotIconContainer: {
		anyVariant:          "flex items-center justify-center rounded-full bg-primary/10",
		content.TypeLink:    "flex h-8 w-8 items-center justify-center rounded-full bg-primary/10",
		content.TypeSocial:  "flex h-12 w-12 items-center justify-center rounded-full bg-primary/10",
		content.TypeProduct: "flex h-5 w-5 items-center justify-center rounded-full bg-primary/10",
	},
	SlotBadge: {
		anyVariant: "inline-flex items-center rounded-md px-2.5 py-0.5 text-xs font-semibold",
	},
	SlotButton: {
		anyVariant: "inline-flex items-center justify-center rounded-md font-medium transition-colors",
	},
	SlotLink: {
		anyVariant: "text-sm font-medium text-primary hover:underline",
	},
	SlotCategoryChip: {
		anyVariant: "flex min-w-fit items-center gap-2 rounded-full border px-4 py-2 text-sm font-medium",
	},
	SlotCategoriesStrip: {
		anyVariant: "no-scrollbar flex items-center gap-2 overflow-x-auto pb-2",
	},
	SlotSocialItem: {
		anyVariant: "flex h-12 w-12 items-center justify-center rounded-full bg-primary/10",
	},
	SlotSocialList: {
		anyVariant: "flex flex-wrap items-center justify-center gap-4",
	},
}

func join(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + " " + b
}
