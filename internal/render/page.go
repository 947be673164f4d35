package render

import (
	"biolink/internal/content"
	"biolink/internal/theme"
)

// Document is a fully rendered page: header data plus the node tree
// for the block sequence. It serializes to JSON for any client.
type Document struct {
	PageID          string             `json:"page_id"`
	DisplayName     string             `json:"display_name,omitempty"`
	Bio             string             `json:"bio,omitempty"`
	Avatar          []content.ImageRef `json:"avatar,omitempty"`
	Theme           theme.ID           `json:"theme"`
	Alignment       content.Alignment  `json:"alignment"`
	BrandColor      string             `json:"brand_color,omitempty"`
	BackgroundColor string             `json:"background_color,omitempty"`
	FooterText      string             `json:"footer_text,omitempty"`
	Nodes           []*Node            `json:"nodes"`
}

// Page renders a page and its block list into a document. Public mode
// walks only visible blocks; edit mode walks all of them so hidden
// blocks stay on the canvas, dimmed.
func Page(p *content.Page, list *content.List, socials []content.SocialLink, mode Mode) *Document {
	ctx := Context{
		Theme:       theme.ID(p.Theme),
		Alignment:   p.Alignment,
		BrandColor:  p.BrandColor,
		Mode:        mode,
		SocialLinks: socials,
		Anchors:     list.Anchors(),
	}

	blocks := list.Blocks()
	if mode == ModePublic {
		blocks = list.Visible()
	}

	doc := &Document{
		PageID:          p.ID,
		DisplayName:     p.DisplayName,
		Bio:             p.Bio,
		Avatar:          p.AvatarImages,
		Theme:           ctx.Theme,
		Alignment:       p.Alignment,
		BrandColor:      p.BrandColor,
		BackgroundColor: p.BackgroundColor,
		FooterText:      p.FooterText,
		Nodes:           make([]*Node, 0, len(blocks)),
	}
	for _, b := range blocks {
		if n := Block(b, ctx); n != nil {
			doc.Nodes = append(doc.Nodes, n)
		}
	}
	return doc
}
