package domain

import (
	"encoding/json"
	"fmt"
)

// Resource is an article in the public resource library (fly patterns, river reports, gear guides).
// Body is the legacy plain-text content; newer resources use ordered Blocks.
type Resource struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Blocks     Blocks    `json:"blocks"`
	CategoryID string    `json:"categoryId"`
	IsVisible  bool      `json:"isVisible"`
	CreatedAt  Timestamp `json:"createdAt"`
	UpdatedAt  Timestamp `json:"updatedAt"`
}

// Category groups resources on the public library page.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	SortOrder int       `json:"sortOrder"`
	CreatedAt Timestamp `json:"createdAt"`
}

// BlockType is the JSON discriminator of a ContentBlock.
type BlockType string

const (
	BlockHeading   BlockType = "heading"
	BlockParagraph BlockType = "paragraph"
	BlockList      BlockType = "list"
	BlockImage     BlockType = "image"
)

// ContentBlock is one variant of resource content. The set of variants is closed:
// HeadingBlock, ParagraphBlock, ListBlock and ImageBlock.
type ContentBlock interface {
	Type() BlockType
	sealed()
}

// HeadingBlock is a section heading; Level is 1..6.
type HeadingBlock struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// ParagraphBlock is a run of text that may carry a small set of inline tags.
type ParagraphBlock struct {
	Text string `json:"text"`
}

// ListBlock is a bulleted or numbered list.
type ListBlock struct {
	Ordered bool     `json:"ordered"`
	Items   []string `json:"items"`
}

// ImageBlock is an inline image.
type ImageBlock struct {
	URL     string `json:"url"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
}

func (HeadingBlock) Type() BlockType   { return BlockHeading }
func (ParagraphBlock) Type() BlockType { return BlockParagraph }
func (ListBlock) Type() BlockType      { return BlockList }
func (ImageBlock) Type() BlockType     { return BlockImage }

func (HeadingBlock) sealed()   {}
func (ParagraphBlock) sealed() {}
func (ListBlock) sealed()      {}
func (ImageBlock) sealed()     {}

// Blocks is an ordered list of content blocks that (de)serializes with a "type" discriminator.
type Blocks []ContentBlock

// MarshalJSON writes each block as its fields plus a "type" key.
func (bs Blocks) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(bs))
	for i, b := range bs {
		raw, err := marshalBlock(b)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		out = append(out, raw)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes each element by its "type" discriminator.
// Unknown block types are rejected.
func (bs *Blocks) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	if raws == nil {
		*bs = nil
		return nil
	}
	out := make(Blocks, 0, len(raws))
	for i, raw := range raws {
		b, err := unmarshalBlock(raw)
		if err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
		out = append(out, b)
	}
	*bs = out
	return nil
}

func marshalBlock(b ContentBlock) ([]byte, error) {
	switch v := b.(type) {
	case HeadingBlock:
		return json.Marshal(struct {
			Type BlockType `json:"type"`
			HeadingBlock
		}{BlockHeading, v})
	case ParagraphBlock:
		return json.Marshal(struct {
			Type BlockType `json:"type"`
			ParagraphBlock
		}{BlockParagraph, v})
	case ListBlock:
		return json.Marshal(struct {
			Type BlockType `json:"type"`
			ListBlock
		}{BlockList, v})
	case ImageBlock:
		return json.Marshal(struct {
			Type BlockType `json:"type"`
			ImageBlock
		}{BlockImage, v})
	default:
		return nil, fmt.Errorf("unsupported block %T", b)
	}
}

func unmarshalBlock(raw json.RawMessage) (ContentBlock, error) {
	var head struct {
		Type BlockType `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}
	switch head.Type {
	case BlockHeading:
		var b HeadingBlock
		err := json.Unmarshal(raw, &b)
		return b, err
	case BlockParagraph:
		var b ParagraphBlock
		err := json.Unmarshal(raw, &b)
		return b, err
	case BlockList:
		var b ListBlock
		err := json.Unmarshal(raw, &b)
		return b, err
	case BlockImage:
		var b ImageBlock
		err := json.Unmarshal(raw, &b)
		return b, err
	default:
		return nil, fmt.Errorf("unknown block type %q", head.Type)
	}
}
