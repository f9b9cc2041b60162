package workflow

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// SearchFailureNotice replaces raw transport errors in the IRS query view.
const SearchFailureNotice = "Sorry, there was an error processing your query. Please try again."

// QuerySession is the stateless IRS lookup view: each call fully replaces
// the previously displayed result and no history is kept.
type QuerySession struct {
	mu        sync.Mutex
	transport Transport
	result    string
}

func NewQuerySession(t Transport) *QuerySession {
	return &QuerySession{transport: t}
}

// Search runs a free-form query.
func (q *QuerySession) Search(ctx context.Context, question string) string {
	return q.replace(q.transport.SearchIRS(ctx, question))
}

// Quick runs one of the fixed quick-query topics.
func (q *QuerySession) Quick(ctx context.Context, topic string) string {
	return q.replace(q.transport.QuickIRS(ctx, topic))
}

// Result returns the currently displayed result, or "".
func (q *QuerySession) Result() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.result
}

func (q *QuerySession) replace(answer string, err error) string {
	if err != nil {
		answer = SearchFailureNotice
	}
	q.mu.Lock()
	q.result = answer
	q.mu.Unlock()
	return answer
}

// PlainText strips HTML markup from a search result. Some search models
// return fragments with anchors and formatting tags; terminal rendering
// wants the text content only.
func PlainText(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(doc)
	return strings.TrimSpace(buf.String())
}
