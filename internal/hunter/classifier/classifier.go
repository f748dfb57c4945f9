// Package classifier scores snippet text for buyer intent and pulls out
// Egyptian mobile numbers.
package classifier

import (
	"regexp"
	"strings"

	"lead-hunter/internal/models"
)

var (
	// SellerTerms mark listings posted by sellers, brokers and companies.
	SellerTerms = []string{"للبيع", "for sale", "سمسار", "وسيط", "شركة", "مؤسسة"}

	// BuyerTerms mark posts from people looking to buy.
	BuyerTerms = []string{"مطلوب", "محتاج", "عايز", "أبحث", "شراء", "buying", "wanted"}
)

// mobilePattern matches 11-digit local mobiles on the 010, 011, 012 and 015
// prefixes, written without separators.
var mobilePattern = regexp.MustCompile(`01[0125][0-9]{8}`)

// Classifier holds lowercased lexicons. It has no mutable state and is safe
// for concurrent use.
type Classifier struct {
	seller []string
	buyer  []string
}

// New builds a classifier over custom lexicons.
func New(seller, buyer []string) *Classifier {
	return &Classifier{seller: lower(seller), buyer: lower(buyer)}
}

// Default uses SellerTerms and BuyerTerms.
func Default() *Classifier {
	return New(SellerTerms, BuyerTerms)
}

// Analyze scores text. Each lexicon term counts once when present; keyword
// matching ignores case, phone extraction runs on the raw text.
func (c *Classifier) Analyze(text string) models.ContentAnalysis {
	lowered := strings.ToLower(text)

	seller := hits(lowered, c.seller)
	buyer := hits(lowered, c.buyer)
	net := buyer - seller

	phones := ExtractPhones(text)

	return models.ContentAnalysis{
		SellerScore: seller,
		BuyerScore:  buyer,
		NetScore:    net,
		Verdict:     verdict(net),
		Phones:      phones,
		HasPhone:    len(phones) > 0,
	}
}

// ExtractPhones returns the distinct mobile numbers in text in order of
// first appearance.
func ExtractPhones(text string) []string {
	matches := mobilePattern.FindAllString(text, -1)
	phones := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		phones = append(phones, m)
	}
	return phones
}

func hits(text string, terms []string) int {
	n := 0
	for _, term := range terms {
		if strings.Contains(text, term) {
			n++
		}
	}
	return n
}

func verdict(net int) models.Verdict {
	switch {
	case net > 0:
		return models.VerdictGood
	case net < 0:
		return models.VerdictBad
	default:
		return models.VerdictNeutral
	}
}

func lower(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}
