package editor

import (
	"encoding/json"
	"fmt"
)

// blockEnvelope is the tagged JSON form of a block, used when a document is
// persisted as a draft.
type blockEnvelope struct {
	Type    string    `json:"type"`
	Align   Alignment `json:"align,omitempty"`
	Spans   []Span    `json:"spans,omitempty"`
	Ordered bool      `json:"ordered,omitempty"`
	Items   [][]Span  `json:"items,omitempty"`
	Rows    int       `json:"rows,omitempty"`
	Cols    int       `json:"cols,omitempty"`
	URL     string    `json:"url,omitempty"`
	Alt     string    `json:"alt,omitempty"`
}

// MarshalJSON encodes the document as a list of type-tagged blocks.
func (d *Document) MarshalJSON() ([]byte, error) {
	envs := make([]blockEnvelope, 0, len(d.Blocks))
	for _, blk := range d.Blocks {
		switch t := blk.(type) {
		case *Paragraph:
			envs = append(envs, blockEnvelope{Type: "paragraph", Align: t.Align, Spans: t.Spans})
		case *List:
			envs = append(envs, blockEnvelope{Type: "list", Ordered: t.Ordered, Items: t.Items})
		case *Table:
			envs = append(envs, blockEnvelope{Type: "table", Rows: t.Rows, Cols: t.Cols})
		case *Rule:
			envs = append(envs, blockEnvelope{Type: "rule"})
		case *Image:
			envs = append(envs, blockEnvelope{Type: "image", URL: t.URL, Alt: t.Alt})
		default:
			return nil, fmt.Errorf("unknown block type %T", blk)
		}
	}
	return json.Marshal(struct {
		Blocks []blockEnvelope `json:"blocks"`
	}{Blocks: envs})
}

// UnmarshalJSON decodes a document from its type-tagged block form.
func (d *Document) UnmarshalJSON(data []byte) error {
	var wrapper struct {
		Blocks []blockEnvelope `json:"blocks"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return err
	}
	blocks := make([]Block, 0, len(wrapper.Blocks))
	for _, env := range wrapper.Blocks {
		switch env.Type {
		case "paragraph":
			blocks = append(blocks, &Paragraph{Align: env.Align, Spans: env.Spans})
		case "list":
			blocks = append(blocks, &List{Ordered: env.Ordered, Items: env.Items})
		case "table":
			blocks = append(blocks, &Table{Rows: env.Rows, Cols: env.Cols})
		case "rule":
			blocks = append(blocks, &Rule{})
		case "image":
			blocks = append(blocks, &Image{URL: env.URL, Alt: env.Alt})
		default:
			return fmt.Errorf("unknown block type %q", env.Type)
		}
	}
	if len(blocks) == 0 {
		blocks = []Block{&Paragraph{}}
	}
	d.Blocks = blocks
	return nil
}
