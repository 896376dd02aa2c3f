// Package head manages structured-data script nodes in a shared document head.
package head

import (
	"html"
	"io"
	"strings"
	"sync"
)

// TypeLDJSON is the script type for JSON-LD blocks.
const TypeLDJSON = "application/ld+json"

// MarkerAttr is set on every script node a Head implementation creates, so
// a browser client can adopt nodes the server rendered.
const MarkerAttr = "data-guidepress"

// NodeID identifies a node appended to a Head.
type NodeID uint64

// Head is a document head shared by every mounted page. Implementations
// must only remove the node they are asked to remove.
type Head interface {
	Append(typ, text string) (NodeID, error)
	Remove(id NodeID)
}

// Node is a script node held by a Document.
type Node struct {
	ID   NodeID
	Type string
	Text string
}

// Document is an in-memory Head. Server-side page views render it into
// the <head> template; tests use it to count nodes.
type Document struct {
	mu    sync.Mutex
	next  NodeID
	nodes []Node
}

// NewDocument returns an empty Document.
func NewDocument() *Document {
	return &Document{}
}

// Append adds a script node at the end of the head.
func (d *Document) Append(typ, text string) (NodeID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.next++
	d.nodes = append(d.nodes, Node{ID: d.next, Type: typ, Text: text})
	return d.next, nil
}

// Remove deletes the node with the given id. Unknown ids are ignored.
func (d *Document) Remove(id NodeID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, n := range d.nodes {
		if n.ID == id {
			d.nodes = append(d.nodes[:i], d.nodes[i+1:]...)
			return
		}
	}
}

// Len returns the number of nodes currently in the head.
func (d *Document) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.nodes)
}

// Nodes returns a snapshot of the head in insertion order.
func (d *Document) Nodes() []Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Node, len(d.nodes))
	copy(out, d.nodes)
	return out
}

// Render writes every node as a <script> element.
func (d *Document) Render(w io.Writer) error {
	for _, n := range d.Nodes() {
		var b strings.Builder
		b.WriteString(`<script type="`)
		b.WriteString(html.EscapeString(n.Type))
		b.WriteString(`" `)
		b.WriteString(MarkerAttr)
		b.WriteString(`>`)
		b.WriteString(scriptSafe(n.Text))
		b.WriteString("</script>\n")
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

// scriptSafe keeps a payload from closing its <script> element early.
// encoding/json already escapes '<', so this only matters for text that
// did not come through it.
func scriptSafe(s string) string {
	return strings.ReplaceAll(s, "</", `<\/`)
}
