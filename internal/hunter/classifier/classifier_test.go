package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lead-hunter/internal/models"
)

func TestClassifier_Analyze(t *testing.T) {
	c := Default()

	tests := []struct {
		name       string
		text       string
		wantBuyer  int
		wantSeller int
		wantNet    int
		verdict    models.Verdict
		phones     []string
		accepted   bool
	}{
		{
			name:       "buyer and seller cancel out",
			text:       "مطلوب شقة للبيع فرصة 01012345678",
			wantBuyer:  1,
			wantSeller: 1,
			wantNet:    0,
			verdict:    models.VerdictNeutral,
			phones:     []string{"01012345678"},
			accepted:   false,
		},
		{
			name:      "buyer post with phone is accepted",
			text:      "مطلوب شقة بسعر مناسب 01098765432",
			wantBuyer: 1,
			wantNet:   1,
			verdict:   models.VerdictGood,
			phones:    []string{"01098765432"},
			accepted:  true,
		},
		{
			name:       "broker listing is bad",
			text:       "شركة سمسار شقق للبيع 01211112222",
			wantSeller: 3,
			wantNet:    -3,
			verdict:    models.VerdictBad,
			phones:     []string{"01211112222"},
		},
		{
			name:      "english terms ignore case",
			text:      "WANTED: flat, Buying now",
			wantBuyer: 2,
			wantNet:   2,
			verdict:   models.VerdictGood,
			phones:    []string{},
		},
		{
			name:      "repeated term counts once",
			text:      "مطلوب مطلوب مطلوب",
			wantBuyer: 1,
			wantNet:   1,
			verdict:   models.VerdictGood,
			phones:    []string{},
		},
		{
			name:    "empty text",
			text:    "",
			verdict: models.VerdictNeutral,
			phones:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Analyze(tt.text)
			assert.Equal(t, tt.wantBuyer, got.BuyerScore)
			assert.Equal(t, tt.wantSeller, got.SellerScore)
			assert.Equal(t, tt.wantNet, got.NetScore)
			assert.Equal(t, tt.verdict, got.Verdict)
			assert.Equal(t, tt.phones, got.Phones)
			assert.Equal(t, len(tt.phones) > 0, got.HasPhone)
			assert.Equal(t, tt.accepted, got.Accepted())
		})
	}
}

func TestClassifier_Deterministic(t *testing.T) {
	c := Default()
	text := "محتاج شقة 01512345678 او 01012345678"
	assert.Equal(t, c.Analyze(text), c.Analyze(text))
}

func TestExtractPhones(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "ten digit number is rejected",
			text: "call 01512345678 or 0111111111",
			want: []string{"01512345678"},
		},
		{
			name: "duplicates collapse",
			text: "01012345678 / 01012345678 / 01112345678",
			want: []string{"01012345678", "01112345678"},
		},
		{
			name: "unsupported prefix",
			text: "01312345678 01412345678",
			want: []string{},
		},
		{
			name: "separators break the number",
			text: "010-1234-5678",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPhones(tt.text))
		})
	}
}

func TestNew_CustomLexicon(t *testing.T) {
	c := New([]string{"Agency"}, []string{"Looking For"})

	got := c.Analyze("looking for a flat, no AGENCY please 01099998888")
	assert.Equal(t, 1, got.BuyerScore)
	assert.Equal(t, 1, got.SellerScore)
	assert.Equal(t, models.VerdictNeutral, got.Verdict)
}
