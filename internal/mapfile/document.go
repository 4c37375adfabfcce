package mapfile

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/autotile/internal/autotile"
)

// Document is a resolved tile map ready to be written out
type Document struct {
	Seed         int64            `yaml:"seed"`
	Width        int              `yaml:"width"`
	Height       int              `yaml:"height"`
	Rules        string           `yaml:"rules,omitempty"`
	Stats        Stats            `yaml:"stats"`
	Unresolvable []autotile.Point `yaml:"-"`
	Rows         [][]int          `yaml:"-"`
}

// Stats mirrors the solver counters worth keeping with a map
type Stats struct {
	Passes          int   `yaml:"passes"`
	Stalls          int   `yaml:"stalls"`
	Commits         int   `yaml:"commits"`
	Verified        int   `yaml:"verified"`
	ForcedCollapses int   `yaml:"forced_collapses"`
	DurationMS      int64 `yaml:"duration_ms"`
}

// NewDocument captures a finished run over g
func NewDocument(g *autotile.MapGrid, result *autotile.Result, rules string) *Document {
	return &Document{
		Seed:   result.Seed,
		Width:  g.Width(),
		Height: g.Height(),
		Rules:  rules,
		Stats: Stats{
			Passes:          result.Passes,
			Stalls:          result.Stalls,
			Commits:         result.Commits,
			Verified:        result.Verified,
			ForcedCollapses: result.ForcedCollapses,
			DurationMS:      result.Duration.Milliseconds(),
		},
		Unresolvable: result.Unresolvable,
		Rows:         g.Rows(),
	}
}

// orderedDocument is used for serialization with one flow sequence per row
type orderedDocument struct {
	Seed         int64     `yaml:"seed"`
	Width        int       `yaml:"width"`
	Height       int       `yaml:"height"`
	Rules        string    `yaml:"rules,omitempty"`
	Stats        Stats     `yaml:"stats"`
	Unresolvable yaml.Node `yaml:"unresolvable,omitempty"`
	Rows         yaml.Node `yaml:"rows"`
}

// WriteYAML writes doc to w with a short header comment
func WriteYAML(w io.Writer, doc *Document) error {
	fmt.Fprintf(w, "# Resolved tile map %dx%d\n", doc.Width, doc.Height)
	fmt.Fprintf(w, "# Generated with seed: %d\n", doc.Seed)
	fmt.Fprintf(w, "# Unresolvable cells: %d\n\n", len(doc.Unresolvable))

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)

	ordered := &orderedDocument{
		Seed:         doc.Seed,
		Width:        doc.Width,
		Height:       doc.Height,
		Rules:        doc.Rules,
		Stats:        doc.Stats,
		Unresolvable: pointsNode(doc.Unresolvable),
		Rows:         rowsNode(doc.Rows),
	}
	if err := encoder.Encode(ordered); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

// WriteYAMLFile writes doc to path
func WriteYAMLFile(doc *Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := WriteYAML(f, doc); err != nil {
		return err
	}
	return f.Close()
}

// ReadYAML decodes a document written by WriteYAML
func ReadYAML(r io.Reader) (*Document, error) {
	var raw struct {
		Document     `yaml:",inline"`
		Unresolvable [][]int `yaml:"unresolvable"`
		Rows         [][]int `yaml:"rows"`
	}
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode YAML: %w", err)
	}

	doc := raw.Document
	doc.Rows = raw.Rows
	for _, p := range raw.Unresolvable {
		if len(p) != 2 {
			return nil, fmt.Errorf("unresolvable entry %v is not an [x, y] pair", p)
		}
		doc.Unresolvable = append(doc.Unresolvable, autotile.Point{X: p[0], Y: p[1]})
	}
	return &doc, nil
}

func intNode(v int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(v)}
}

// rowsNode renders each row as a flow sequence so the map stays readable
func rowsNode(rows [][]int) yaml.Node {
	node := yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range rows {
		rowNode := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, id := range row {
			rowNode.Content = append(rowNode.Content, intNode(id))
		}
		node.Content = append(node.Content, rowNode)
	}
	return node
}

// pointsNode renders points as [x, y] pairs. An empty list yields a zero node,
// which omitempty drops.
func pointsNode(points []autotile.Point) yaml.Node {
	if len(points) == 0 {
		return yaml.Node{}
	}
	node := yaml.Node{Kind: yaml.SequenceNode}
	for _, p := range points {
		node.Content = append(node.Content, &yaml.Node{
			Kind:    yaml.SequenceNode,
			Style:   yaml.FlowStyle,
			Content: []*yaml.Node{intNode(p.X), intNode(p.Y)},
		})
	}
	return node
}
