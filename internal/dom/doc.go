// Package dom models a rendered search page as a mutable HTML tree with a
// mutation-record queue.
//
// A browser delivers DOM changes to observers in batches after each task.
// This package reproduces that contract on top of golang.org/x/net/html:
//   - Document owns the tree, the page location, and the pending records
//   - Every child insertion made through Document appends a Record
//   - TakeRecords hands the pending records over as one Batch
//   - Post queues page-side tasks for the goroutine that owns the tree
//
// Design decision: Only the goroutine that receives from Tasks touches the
// tree. Other goroutines never mutate it directly; they Post a task. This
// keeps the single-execution-context model of a page without locks.
//
// Selector queries go through goquery, so CSS selectors written for the
// browser (including comma groups and attribute selectors) work unchanged.
package dom
