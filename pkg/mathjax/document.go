package mathjax

import (
	"github.com/beevik/etree"

	"github.com/matzehuels/tex2svg/pkg/errors"
)

// Document is the structured result of a render: MathJax's output container
// (usually an <mjx-container> element) holding the typeset <svg>.
type Document struct {
	tree *etree.Document
}

// ParseDocument parses renderer markup into a Document.
// The markup must have a single root element; it is read permissively since
// MathJax serializes HTML rather than strict XML.
func ParseDocument(markup string) (*Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	if err := doc.ReadFromString(markup); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "parse renderer output")
	}
	if doc.Root() == nil {
		return nil, errors.New(errors.ErrCodeRender, "renderer output has no root element")
	}
	return &Document{tree: doc}, nil
}

// Root returns the document's root element.
func (d *Document) Root() *etree.Element {
	return d.tree.Root()
}

// SVG returns the typeset <svg> element, or nil if there is none.
func (d *Document) SVG() *etree.Element {
	root := d.tree.Root()
	if root.Tag == "svg" {
		return root
	}
	return root.FindElement(".//svg")
}

// Display reports whether the container was typeset in display mode.
func (d *Document) Display() bool {
	return d.tree.Root().SelectAttrValue("display", "") == "true"
}

// Serialize returns the <svg> element as markup.
// Output is deterministic for a given document: attribute order and content
// are written exactly as parsed.
func (d *Document) Serialize() (string, error) {
	svg := d.SVG()
	if svg == nil {
		return "", errors.New(errors.ErrCodeRender, "renderer output contains no <svg> element")
	}
	out := etree.NewDocument()
	out.SetRoot(svg.Copy())
	s, err := out.WriteToString()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "serialize svg")
	}
	return s, nil
}
