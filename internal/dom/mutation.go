package dom

import "golang.org/x/net/html"

// Record is one child-list change: nodes added to or removed from Target.
type Record struct {
	// Target is the node whose children changed.
	Target *html.Node

	// Added lists the inserted nodes in insertion order.
	Added []*html.Node

	// Removed lists the detached nodes.
	Removed []*html.Node
}

// Batch is the set of records delivered to the observer in one callback.
type Batch struct {
	// Seq increases by one for every non-empty batch taken from a document.
	Seq uint64

	// Records are in the order the changes were made.
	Records []Record
}

// Empty reports whether the batch has no records.
func (b Batch) Empty() bool {
	return len(b.Records) == 0
}

// AddedNodes returns every added node across all records, in order.
func (b Batch) AddedNodes() []*html.Node {
	nodes := make([]*html.Node, 0, len(b.Records))
	for _, r := range b.Records {
		nodes = append(nodes, r.Added...)
	}
	return nodes
}

// record queues a change for the next TakeRecords call.
func (d *Document) record(r Record) {
	d.pending = append(d.pending, r)
}

// TakeRecords returns the pending records as a batch and clears the queue.
// An empty batch (Seq 0) is returned when nothing changed.
func (d *Document) TakeRecords() Batch {
	if len(d.pending) == 0 {
		return Batch{}
	}
	d.seq++
	b := Batch{Seq: d.seq, Records: d.pending}
	d.pending = make([]Record, 0)
	return b
}

// PendingRecords returns the number of records waiting to be taken.
func (d *Document) PendingRecords() int {
	return len(d.pending)
}
