package dom

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// taskQueueSize bounds the number of page-side tasks waiting for the owner goroutine.
const taskQueueSize = 64

// Task is a page-side change run on the goroutine that owns the document.
type Task func(d *Document)

// Document is a parsed page plus its pending mutation records.
//
// Design decision: We keep the records on the document rather than on a
// separate observer object because a page has exactly one observer here
// (the scan engine) and the records must be produced by the same calls that
// change the tree.
type Document struct {
	// root is the document node returned by html.Parse.
	root *html.Node

	// location is the page URL; attribute values are resolved against it.
	location *url.URL

	// pending holds records not yet taken by TakeRecords.
	pending []Record

	// seq numbers the batches returned by TakeRecords.
	seq uint64

	// tasks carries page-side tasks to the owner goroutine.
	tasks chan Task

	// mu guards closed against concurrent Post and Close.
	mu     sync.RWMutex
	closed bool
}

// Parse reads a full HTML page. pageURL is the location the page was
// rendered at; it selects the provider strategy and anchors relative links.
func Parse(r io.Reader, pageURL string) (*Document, error) {
	location, err := parseLocation(pageURL)
	if err != nil {
		return nil, err
	}

	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	return NewDocument(root, location), nil
}

// ParseString is Parse for an in-memory page.
func ParseString(page, pageURL string) (*Document, error) {
	return Parse(strings.NewReader(page), pageURL)
}

// NewDocument wraps an already parsed tree.
func NewDocument(root *html.Node, location *url.URL) *Document {
	return &Document{
		root:     root,
		location: location,
		pending:  make([]Record, 0),
		tasks:    make(chan Task, taskQueueSize),
	}
}

// parseLocation accepts only absolute URLs.
func parseLocation(pageURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPageURL, pageURL)
	}
	return u, nil
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Location returns the page URL.
func (d *Document) Location() *url.URL {
	return d.location
}

// Hostname returns the page host without port.
func (d *Document) Hostname() string {
	return d.location.Hostname()
}

// BaseURL returns the document base URL: the first <base href> resolved
// against the location, or the location itself.
func (d *Document) BaseURL() *url.URL {
	base := d.Find("base[href]").First()
	if base.Length() == 0 {
		return d.location
	}
	href, _ := base.Attr("href")
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return d.location
	}
	return d.location.ResolveReference(ref)
}

// Body returns the <body> element, or the document node when there is none.
func (d *Document) Body() *html.Node {
	if body := findElement(d.root, atom.Body); body != nil {
		return body
	}
	return d.root
}

// Head returns the <head> element, or nil.
func (d *Document) Head() *html.Node {
	return findElement(d.root, atom.Head)
}

// Find runs a CSS selector over the whole document.
func (d *Document) Find(selector string) *goquery.Selection {
	return goquery.NewDocumentFromNode(d.root).Find(selector)
}

// Count returns the number of elements in the document matching selector.
func (d *Document) Count(selector string) int {
	return d.Find(selector).Length()
}

// AppendChild appends child to parent and records the insertion.
func (d *Document) AppendChild(parent, child *html.Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	parent.AppendChild(child)
	d.record(Record{Target: parent, Added: []*html.Node{child}})
}

// AppendHTML parses fragment in the context of parent, appends the
// resulting nodes, and records them as one insertion.
func (d *Document) AppendHTML(parent *html.Node, fragment string) ([]*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), fragmentContext(parent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse fragment: %w", err)
	}
	for _, n := range nodes {
		parent.AppendChild(n)
	}
	if len(nodes) > 0 {
		d.record(Record{Target: parent, Added: nodes})
	}
	return nodes, nil
}

// Remove detaches n from its parent and records the removal.
func (d *Document) Remove(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	parent.RemoveChild(n)
	d.record(Record{Target: parent, Removed: []*html.Node{n}})
}

// Post queues a page-side task. It blocks while the queue is full and
// returns ctx.Err() if ctx ends first. After Close it returns
// ErrDocumentClosed.
//
// Post is for goroutines other than the owner. A task that queues
// follow-up work must use TryPost: the owner is the only reader of the
// queue, so a blocked Post inside a task never returns, and Close waits
// for it.
func (d *Document) Post(ctx context.Context, task Task) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDocumentClosed
	}
	select {
	case d.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryPost queues a page-side task without blocking. It returns
// ErrQueueFull when the queue has no room and ErrDocumentClosed after
// Close. Unlike Post it is safe to call from inside a task.
func (d *Document) TryPost(task Task) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDocumentClosed
	}
	select {
	case d.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Tasks is the receive side of the task queue, for the owner goroutine.
// The channel is closed by Close once queued tasks have been posted.
func (d *Document) Tasks() <-chan Task {
	return d.tasks
}

// Close ends the page's task stream: the page will post no more changes.
// Tasks already queued stay readable from Tasks. Close waits for Post
// calls in flight and is safe to call more than once.
func (d *Document) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true
	close(d.tasks)
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document to a string. Render errors yield "".
func (d *Document) String() string {
	var sb strings.Builder
	if err := d.Render(&sb); err != nil {
		return ""
	}
	return sb.String()
}

// fragmentContext returns a context element suitable for html.ParseFragment.
// The document node itself cannot serve as context.
func fragmentContext(parent *html.Node) *html.Node {
	if parent.Type == html.ElementNode {
		return parent
	}
	return &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
}

// findElement returns the first element with the given atom in document order.
func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
