// internal/models/search.go
package models

import "strings"

// SearchQuery is one hunt's input. It is not modified after construction.
type SearchQuery struct {
	Term        string `json:"term"`
	Location    string `json:"location"`
	RequestedBy string `json:"requested_by"`
}

func NewSearchQuery(term, location, requestedBy string) SearchQuery {
	return SearchQuery{
		Term:        strings.TrimSpace(term),
		Location:    strings.TrimSpace(location),
		RequestedBy: strings.TrimSpace(requestedBy),
	}
}

// Phrase renders the provider query: term and location as two quoted phrases.
func (q SearchQuery) Phrase() string {
	return `"` + q.Term + `" "` + q.Location + `"`
}

// LeadSource is the source tag stored on every lead found by this query.
func (q SearchQuery) LeadSource() string {
	return "hunter:" + q.Term
}

// RawResultItem is one organic result as the provider returned it.
type RawResultItem struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// Content is the text the classifier sees for this item.
func (r RawResultItem) Content() string {
	return r.Title + " " + r.Snippet
}

// Verdict is the classifier's buyer-vs-seller judgment.
type Verdict string

const (
	VerdictGood    Verdict = "good"
	VerdictBad     Verdict = "bad"
	VerdictNeutral Verdict = "neutral"
)

// ContentAnalysis is derived from text alone.
type ContentAnalysis struct {
	SellerScore int      `json:"seller_score"`
	BuyerScore  int      `json:"buyer_score"`
	NetScore    int      `json:"net_score"`
	Verdict     Verdict  `json:"verdict"`
	Phones      []string `json:"phones"`
	HasPhone    bool     `json:"has_phone"`
}

// Accepted reports whether the text should produce leads.
func (a ContentAnalysis) Accepted() bool {
	return a.Verdict == VerdictGood && a.HasPhone
}
