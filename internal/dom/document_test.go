package dom

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

const testPage = `<html><head><title>results</title></head><body>
<div id="search">
  <div class="g" id="r1"><a href="https://example.com/a">A</a></div>
  <div class="g" id="r2"><a href="/local">B</a></div>
</div>
</body></html>`

// TestParse tests page parsing and location handling.
func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("parses page with absolute location", func(t *testing.T) {
		t.Parallel()

		doc, err := ParseString(testPage, "https://www.google.com/search?q=x")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc.Hostname() != "www.google.com" {
			t.Errorf("expected host www.google.com, got %q", doc.Hostname())
		}
		if doc.Count("div.g") != 2 {
			t.Errorf("expected 2 results, got %d", doc.Count("div.g"))
		}
		if doc.Body() == nil || doc.Body().Data != "body" {
			t.Error("expected body element")
		}
		if doc.Head() == nil || doc.Head().Data != "head" {
			t.Error("expected head element")
		}
	})

	t.Run("rejects relative location", func(t *testing.T) {
		t.Parallel()

		_, err := ParseString(testPage, "/search?q=x")
		if !errors.Is(err, ErrInvalidPageURL) {
			t.Errorf("expected ErrInvalidPageURL, got %v", err)
		}
	})

	t.Run("rejects empty location", func(t *testing.T) {
		t.Parallel()

		_, err := ParseString(testPage, "")
		if !errors.Is(err, ErrInvalidPageURL) {
			t.Errorf("expected ErrInvalidPageURL, got %v", err)
		}
	})
}

// TestBaseURL tests that <base href> changes the document base URL only.
func TestBaseURL(t *testing.T) {
	t.Parallel()

	t.Run("defaults to location", func(t *testing.T) {
		t.Parallel()

		doc, err := ParseString(testPage, "https://www.bing.com/search?q=x")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc.BaseURL().String() != "https://www.bing.com/search?q=x" {
			t.Errorf("unexpected base URL %q", doc.BaseURL())
		}
	})

	t.Run("honours base element", func(t *testing.T) {
		t.Parallel()

		page := `<html><head><base href="https://cdn.example.net/r/"></head><body></body></html>`
		doc, err := ParseString(page, "https://www.bing.com/search?q=x")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc.BaseURL().String() != "https://cdn.example.net/r/" {
			t.Errorf("unexpected base URL %q", doc.BaseURL())
		}
		if doc.Location().Host != "www.bing.com" {
			t.Errorf("location must not change, got %q", doc.Location())
		}
	})
}

// TestMutationRecords tests that insertions are queued and taken as batches.
func TestMutationRecords(t *testing.T) {
	t.Parallel()

	doc, err := ParseString(testPage, "https://www.google.com/search")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if b := doc.TakeRecords(); !b.Empty() || b.Seq != 0 {
		t.Fatalf("expected no records after parse, got %+v", b)
	}

	search := doc.Find("#search").Get(0)
	nodes, err := doc.AppendHTML(search, `<div class="g" id="r3"><a href="https://x.test/">C</a></div><p>tail</p>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 parsed nodes, got %d", len(nodes))
	}

	span := NewElement("span", "class", "note")
	doc.AppendChild(search, span)

	if doc.PendingRecords() != 2 {
		t.Errorf("expected 2 pending records, got %d", doc.PendingRecords())
	}

	b := doc.TakeRecords()
	if b.Seq != 1 {
		t.Errorf("expected seq 1, got %d", b.Seq)
	}
	if len(b.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(b.Records))
	}
	if b.Records[0].Target != search {
		t.Error("expected record target to be the parent")
	}
	if got := len(b.AddedNodes()); got != 3 {
		t.Errorf("expected 3 added nodes, got %d", got)
	}

	doc.Remove(span)
	b = doc.TakeRecords()
	if b.Seq != 2 || len(b.Records) != 1 || len(b.Records[0].Removed) != 1 {
		t.Errorf("unexpected removal batch %+v", b)
	}
	if len(b.AddedNodes()) != 0 {
		t.Error("removal must not report added nodes")
	}
	if doc.Count("span.note") != 0 {
		t.Error("expected span to be detached")
	}
}

// TestPost tests the page-side task queue.
func TestPost(t *testing.T) {
	t.Parallel()

	doc, err := ParseString(testPage, "https://www.google.com/search")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ran := false
	if err := doc.Post(context.Background(), func(*Document) { ran = true }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case task := <-doc.Tasks():
		task(doc)
	case <-time.After(time.Second):
		t.Fatal("expected queued task")
	}
	if !ran {
		t.Error("expected task to run")
	}

	t.Run("respects cancelled context when queue is full", func(t *testing.T) {
		t.Parallel()

		full, err := ParseString(testPage, "https://www.google.com/search")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i := 0; i < taskQueueSize; i++ {
			if err := full.Post(context.Background(), func(*Document) {}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := full.Post(ctx, func(*Document) {}); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if err := full.TryPost(func(*Document) {}); !errors.Is(err, ErrQueueFull) {
			t.Errorf("expected ErrQueueFull, got %v", err)
		}
		<-full.Tasks()
		if err := full.TryPost(func(*Document) {}); err != nil {
			t.Errorf("expected room after one task was taken, got %v", err)
		}
		full.Close()
		if err := full.TryPost(func(*Document) {}); !errors.Is(err, ErrDocumentClosed) {
			t.Errorf("expected ErrDocumentClosed, got %v", err)
		}
	})

	t.Run("close keeps queued tasks and rejects new ones", func(t *testing.T) {
		t.Parallel()

		closing, err := ParseString(testPage, "https://www.google.com/search")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := closing.Post(context.Background(), func(*Document) {}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		closing.Close()
		closing.Close()

		if err := closing.Post(context.Background(), func(*Document) {}); !errors.Is(err, ErrDocumentClosed) {
			t.Errorf("expected ErrDocumentClosed, got %v", err)
		}

		count := 0
		for range closing.Tasks() {
			count++
		}
		if count != 1 {
			t.Errorf("expected 1 queued task, got %d", count)
		}
	})
}

// TestRender tests that rendering reflects mutations.
func TestRender(t *testing.T) {
	t.Parallel()

	doc, err := ParseString(testPage, "https://www.google.com/search")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r1 := doc.Find("#r1").Get(0)
	AddClass(r1, "flagged")

	out := doc.String()
	if !strings.Contains(out, `class="g flagged"`) {
		t.Errorf("expected rendered class change, got %s", out)
	}
}
