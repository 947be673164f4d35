// Package render turns blocks into a display-technology-neutral node
// tree. It is pure: it never mutates blocks, never touches storage,
// and degrades to omitting elements when optional fields are absent.
package render

import (
	"fmt"

	"biolink/internal/content"
	"biolink/internal/theme"
)

// Mode selects the rendering surface. Public renders only visible
// blocks; edit renders every block and overlays editing controls,
// dimming hidden ones.
type Mode int

const (
	ModePublic Mode = iota
	ModeEdit
)

// Kind tags a node in the render tree.
type Kind string

const (
	KindContainer Kind = "container"
	KindCard      Kind = "card"
	KindRow       Kind = "row"
	KindTitle     Kind = "title"
	KindText      Kind = "text"
	KindImage     Kind = "image"
	KindCarousel  Kind = "carousel"
	KindIcon      Kind = "icon"
	KindBadge     Kind = "badge"
	KindButton    Kind = "button"
	KindLink      Kind = "link"
	KindChip      Kind = "chip"
	KindStrip     Kind = "strip"
	KindControls  Kind = "controls"
)

// Node is one element of the rendered page. Style carries the
// resolved theme decision for the node's slot.
type Node struct {
	Kind     Kind                `json:"kind"`
	Slot     theme.Slot          `json:"slot,omitempty"`
	Text     string              `json:"text,omitempty"`
	URL      string              `json:"url,omitempty"`
	Icon     string              `json:"icon,omitempty"`
	Images   []content.ImageRef  `json:"images,omitempty"`
	Style    theme.StyleDecision `json:"style,omitempty"`
	BlockID  string              `json:"block_id,omitempty"`
	Hidden   bool                `json:"hidden,omitempty"`
	Children []*Node             `json:"children,omitempty"`
}

// Context carries everything block rendering needs besides the block
// itself. SocialLinks and Anchors feed the two aggregate variants.
type Context struct {
	Theme       theme.ID
	Alignment   content.Alignment
	BrandColor  string
	Mode        Mode
	SocialLinks []content.SocialLink
	Anchors     []*content.Block
}

func (c Context) style(t content.Type, slot theme.Slot) theme.StyleDecision {
	return theme.Resolve(t, slot, c.Theme, c.Alignment, c.BrandColor)
}

// Block renders one block. A nil result means the block is suppressed
// (its required content is absent); suppression is a pure presence
// check and behaves identically in edit and public mode.
func Block(b *content.Block, ctx Context) *Node {
	var n *Node
	switch b.Type {
	case content.TypeLink:
		n = renderLink(b, ctx)
	case content.TypeImage:
		n = renderImage(b, ctx)
	case content.TypeCategory:
		n = renderCategory(b, ctx)
	case content.TypeProduct:
		n = renderProduct(b, ctx)
	case content.TypeSocial:
		n = renderSocial(b, ctx)
	case content.TypePageTitle:
		n = renderPageTitle(b, ctx)
	case content.TypePageAvatar:
		n = renderPageAvatar(b, ctx)
	case content.TypePageBio:
		n = renderPageBio(b, ctx)
	case content.TypeSocialLinks:
		n = renderSocialLinks(b, ctx)
	case content.TypeCategoriesList:
		n = renderCategoriesList(b, ctx)
	case content.TypeBlank:
		n = renderGeneric(b, ctx)
	default:
		// Unknown tags come only from corrupted storage; render them
		// with the generic card rather than crashing the page.
		n = renderGeneric(b, ctx)
	}
	if n == nil {
		return nil
	}
	n.BlockID = b.ID
	if ctx.Mode == ModeEdit {
		n.Hidden = !b.Visible
		n.Children = append(n.Children, &Node{Kind: KindControls, BlockID: b.ID, Hidden: !b.Visible})
	}
	return n
}

func renderLink(b *content.Block, ctx Context) *Node {
	if b.URL == "" {
		return nil
	}
	row := &Node{Kind: KindRow, Slot: theme.SlotCardContent, Style: ctx.style(b.Type, theme.SlotCardContent)}
	row.Children = append(row.Children, iconNode(b, ctx))
	if b.Title != "" {
		row.Children = append(row.Children, titleNode(b, ctx))
	}
	if b.Description != "" {
		row.Children = append(row.Children, descriptionNode(b, ctx))
	}
	// External-link affordance.
	row.Children = append(row.Children, &Node{Kind: KindIcon, Icon: "ExternalLink", Slot: theme.SlotIcon, Style: ctx.style(b.Type, theme.SlotIcon)})

	return &Node{
		Kind:     KindCard,
		Slot:     theme.SlotCard,
		URL:      b.URL,
		Style:    ctx.style(b.Type, theme.SlotCard),
		Children: []*Node{row},
	}
}

func renderImage(b *content.Block, ctx Context) *Node {
	if len(b.Images) == 0 {
		return nil
	}
	img := imagesNode(b.Type, b.Images, ctx)
	// An image with nothing else renders bare, no card chrome.
	if b.Title == "" && b.Description == "" && b.URL == "" {
		return img
	}
	card := &Node{Kind: KindCard, Slot: theme.SlotCard, Style: ctx.style(b.Type, theme.SlotCard), Children: []*Node{img}}
	if b.Title != "" {
		card.Children = append(card.Children, titleNode(b, ctx))
	}
	if b.Description != "" {
		card.Children = append(card.Children, descriptionNode(b, ctx))
	}
	if b.URL != "" {
		card.Children = append(card.Children, &Node{Kind: KindLink, Slot: theme.SlotLink, URL: b.URL, Text: "View More", Style: ctx.style(b.Type, theme.SlotLink)})
	}
	return card
}

func renderCategory(b *content.Block, ctx Context) *Node {
	card := &Node{Kind: KindCard, Slot: theme.SlotCard, Style: ctx.style(b.Type, theme.SlotCard)}
	if b.Title != "" {
		header := &Node{Kind: KindRow, Slot: theme.SlotCardHeader, Style: ctx.style(b.Type, theme.SlotCardHeader)}
		header.Children = append(header.Children, iconNode(b, ctx), titleNode(b, ctx))
		card.Children = append(card.Children, header)
	}
	if len(b.Images) > 0 {
		card.Children = append(card.Children, imagesNode(b.Type, b.Images, ctx))
	}
	if b.Description != "" {
		card.Children = append(card.Children, descriptionNode(b, ctx))
	}
	if b.URL != "" {
		card.Children = append(card.Children, &Node{Kind: KindLink, Slot: theme.SlotLink, URL: b.URL, Text: b.URL, Style: ctx.style(b.Type, theme.SlotLink)})
	}
	if len(card.Children) == 0 {
		return nil
	}
	return card
}

func renderProduct(b *content.Block, ctx Context) *Node {
	card := &Node{Kind: KindCard, Slot: theme.SlotCard, Style: ctx.style(b.Type, theme.SlotCard)}
	badge := priceBadge(b, ctx)

	if len(b.Images) > 0 {
		img := imagesNode(b.Type, b.Images, ctx)
		if badge != nil {
			img.Children = append(img.Children, badge)
		}
		card.Children = append(card.Children, img)
	}
	if b.Title != "" {
		header := &Node{Kind: KindRow, Slot: theme.SlotCardHeader, Style: ctx.style(b.Type, theme.SlotCardHeader)}
		header.Children = append(header.Children, iconNode(b, ctx), titleNode(b, ctx))
		// Without an image the badge moves up into the header.
		if len(b.Images) == 0 && badge != nil {
			header.Children = append(header.Children, badge)
		}
		card.Children = append(card.Children, header)
	}
	if b.Description != "" {
		card.Children = append(card.Children, descriptionNode(b, ctx))
	}
	if b.URL != "" {
		card.Children = append(card.Children, &Node{Kind: KindButton, Slot: theme.SlotButton, URL: b.URL, Text: "View Product", Style: ctx.style(b.Type, theme.SlotButton)})
	}
	if len(card.Children) == 0 {
		return nil
	}
	return card
}

func renderSocial(b *content.Block, ctx Context) *Node {
	row := &Node{Kind: KindRow, Slot: theme.SlotCardContent, Style: ctx.style(b.Type, theme.SlotCardContent)}
	if len(b.Images) > 0 {
		row.Children = append(row.Children, &Node{Kind: KindImage, Slot: theme.SlotImage, Images: b.Images[:1], Style: ctx.style(b.Type, theme.SlotImage)})
	} else {
		row.Children = append(row.Children, iconNode(b, ctx))
	}
	if b.Title != "" {
		row.Children = append(row.Children, titleNode(b, ctx))
	}
	if b.Description != "" {
		row.Children = append(row.Children, descriptionNode(b, ctx))
	}
	card := &Node{Kind: KindCard, Slot: theme.SlotCard, Style: ctx.style(b.Type, theme.SlotCard), Children: []*Node{row}}
	if b.URL != "" {
		card.Children = append(card.Children, &Node{Kind: KindButton, Slot: theme.SlotButton, URL: b.URL, Text: "Follow", Icon: "User", Style: ctx.style(b.Type, theme.SlotButton)})
	}
	return card
}

func renderPageTitle(b *content.Block, ctx Context) *Node {
	if b.Title == "" {
		return nil
	}
	return &Node{
		Kind:     KindContainer,
		Slot:     theme.SlotContainer,
		Style:    ctx.style(b.Type, theme.SlotContainer),
		Children: []*Node{titleNode(b, ctx)},
	}
}

func renderPageAvatar(b *content.Block, ctx Context) *Node {
	if len(b.Images) == 0 {
		return nil
	}
	return &Node{
		Kind:  KindContainer,
		Slot:  theme.SlotContainer,
		Style: ctx.style(b.Type, theme.SlotContainer),
		Children: []*Node{
			{Kind: KindImage, Slot: theme.SlotImage, Images: b.Images[:1], Style: ctx.style(b.Type, theme.SlotImage)},
		},
	}
}

func renderPageBio(b *content.Block, ctx Context) *Node {
	if b.Description == "" {
		return nil
	}
	return &Node{
		Kind:     KindContainer,
		Slot:     theme.SlotContainer,
		Style:    ctx.style(b.Type, theme.SlotContainer),
		Children: []*Node{descriptionNode(b, ctx)},
	}
}

func renderSocialLinks(b *content.Block, ctx Context) *Node {
	if len(ctx.SocialLinks) == 0 {
		return nil
	}
	list := &Node{Kind: KindRow, Slot: theme.SlotSocialList, Style: ctx.style(b.Type, theme.SlotSocialList)}
	for _, sl := range ctx.SocialLinks {
		list.Children = append(list.Children, &Node{
			Kind:  KindLink,
			Slot:  theme.SlotSocialItem,
			URL:   sl.URL,
			Icon:  platformIcon(sl.Platform),
			Style: ctx.style(b.Type, theme.SlotSocialItem),
		})
	}
	card := &Node{Kind: KindCard, Slot: theme.SlotCard, Style: ctx.style(b.Type, theme.SlotCard)}
	if b.Title != "" {
		card.Children = append(card.Children, titleNode(b, ctx))
	}
	card.Children = append(card.Children, list)
	return card
}

func renderCategoriesList(b *content.Block, ctx Context) *Node {
	var chips []*Node
	for _, cat := range ctx.Anchors {
		if cat.Title == "" {
			continue
		}
		chip := &Node{
			Kind:    KindChip,
			Slot:    theme.SlotCategoryChip,
			Text:    cat.Title,
			Icon:    cat.Icon,
			URL:     "#" + cat.ID,
			BlockID: cat.ID,
			Style:   ctx.style(content.TypeCategory, theme.SlotCategoryChip),
		}
		if len(cat.Images) > 0 {
			chip.Images = cat.Images[:1]
		}
		chips = append(chips, chip)
	}
	if len(chips) == 0 {
		return nil
	}
	strip := &Node{Kind: KindStrip, Slot: theme.SlotCategoriesStrip, Style: ctx.style(b.Type, theme.SlotCategoriesStrip), Children: chips}
	container := &Node{Kind: KindContainer, Slot: theme.SlotContainer, Style: ctx.style(b.Type, theme.SlotContainer)}
	if b.Title != "" {
		container.Children = append(container.Children, titleNode(b, ctx))
	}
	container.Children = append(container.Children, strip)
	return container
}

// renderGeneric is the BLANK/default card: whichever optional fields
// are present, in the fixed order title+icon, image, description,
// url, price+currency.
func renderGeneric(b *content.Block, ctx Context) *Node {
	card := &Node{Kind: KindCard, Slot: theme.SlotCard, Style: ctx.style(b.Type, theme.SlotCard)}
	if b.Title != "" {
		header := &Node{Kind: KindRow, Slot: theme.SlotCardHeader, Style: ctx.style(b.Type, theme.SlotCardHeader)}
		header.Children = append(header.Children, iconNode(b, ctx), titleNode(b, ctx))
		card.Children = append(card.Children, header)
	}
	if len(b.Images) > 0 {
		card.Children = append(card.Children, imagesNode(b.Type, b.Images, ctx))
	}
	if b.Description != "" {
		card.Children = append(card.Children, descriptionNode(b, ctx))
	}
	if b.URL != "" {
		card.Children = append(card.Children, &Node{Kind: KindLink, Slot: theme.SlotLink, URL: b.URL, Text: b.URL, Style: ctx.style(b.Type, theme.SlotLink)})
	}
	if badge := priceBadge(b, ctx); badge != nil {
		card.Children = append(card.Children, badge)
	}
	if len(card.Children) == 0 {
		return nil
	}
	return card
}

func titleNode(b *content.Block, ctx Context) *Node {
	return &Node{Kind: KindTitle, Slot: theme.SlotTitle, Text: b.Title, Style: ctx.style(b.Type, theme.SlotTitle)}
}

func descriptionNode(b *content.Block, ctx Context) *Node {
	return &Node{Kind: KindText, Slot: theme.SlotDescription, Text: b.Description, Style: ctx.style(b.Type, theme.SlotDescription)}
}

func iconNode(b *content.Block, ctx Context) *Node {
	icon := b.Icon
	if icon == "" {
		icon = content.DefaultIcon(b.Type)
	}
	return &Node{Kind: KindIcon, Slot: theme.SlotIconContainer, Icon: icon, Style: ctx.style(b.Type, theme.SlotIconContainer)}
}

// imagesNode renders one image directly and several as a swipeable
// carousel; both open a fullscreen preview on click.
func imagesNode(t content.Type, images []content.ImageRef, ctx Context) *Node {
	kind := KindImage
	if len(images) > 1 {
		kind = KindCarousel
	}
	return &Node{Kind: kind, Slot: theme.SlotImageContainer, Images: images, Style: ctx.style(t, theme.SlotImageContainer)}
}

func priceBadge(b *content.Block, ctx Context) *Node {
	if b.Price == 0 || b.Currency == "" {
		return nil
	}
	return &Node{
		Kind:  KindBadge,
		Slot:  theme.SlotBadge,
		Text:  fmt.Sprintf("%v %s", b.Price, b.Currency),
		Style: ctx.style(b.Type, theme.SlotBadge),
	}
}

func platformIcon(p content.Platform) string {
	switch p {
	case content.PlatformTwitter:
		return "Twitter"
	case content.PlatformGithub:
		return "Github"
	case content.PlatformLinkedin:
		return "Linkedin"
	case content.PlatformInstagram:
		return "Instagram"
	case content.PlatformYoutube:
		return "Youtube"
	}
	return "Link"
}
