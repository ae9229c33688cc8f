package validation

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name           string
		maxQueryLength int
		want           int
	}{
		{
			name:           "explicit limit",
			maxQueryLength: 50,
			want:           50,
		},
		{
			name:           "zero falls back to default",
			maxQueryLength: 0,
			want:           DefaultMaxQueryLength,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New(tt.maxQueryLength)
			if v == nil {
				t.Fatal("New() returned nil")
			}
			if v.maxQueryLength != tt.want {
				t.Errorf("maxQueryLength = %d, want %d", v.maxQueryLength, tt.want)
			}
		})
	}
}

func TestValidator_ValidateChannelID(t *testing.T) {
	v := New(0)

	if err := v.ValidateChannelID("UCuAXFkgsw1L7xaCfnd5JJOw"); err != nil {
		t.Errorf("ValidateChannelID() unexpected error: %v", err)
	}
	for _, id := range []string{"", "UCshort", "XXuAXFkgsw1L7xaCfnd5JJOw", "UCuAXFkgsw1L7xaCfnd5JJO!"} {
		if err := v.ValidateChannelID(id); err == nil {
			t.Errorf("ValidateChannelID(%q) expected error", id)
		}
	}
}

func TestValidator_ValidateVideoID(t *testing.T) {
	v := New(0)

	if err := v.ValidateVideoID("dQw4w9WgXcQ"); err != nil {
		t.Errorf("ValidateVideoID() unexpected error: %v", err)
	}
	for _, id := range []string{"", "short", "dQw4w9WgXcQExtra"} {
		if err := v.ValidateVideoID(id); err == nil {
			t.Errorf("ValidateVideoID(%q) expected error", id)
		}
	}
}

func TestValidator_ValidateSearchQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    string
		wantErr bool
	}{
		{name: "simple query", query: "golang", want: "golang"},
		{name: "trimmed", query: "  go tips  ", want: "go tips"},
		{name: "exactly at limit", query: strings.Repeat("a", 100), want: strings.Repeat("a", 100)},
		{name: "multibyte counted as characters", query: strings.Repeat("é", 100), want: strings.Repeat("é", 100)},
		{name: "empty", query: "", wantErr: true},
		{name: "only whitespace", query: "   ", wantErr: true},
		{name: "too long", query: strings.Repeat("a", 101), wantErr: true},
	}

	v := New(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidateSearchQuery(tt.query)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateSearchQuery() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidateSearchQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidator_ValidateCommentOrder(t *testing.T) {
	tests := []struct {
		order   string
		want    string
		wantErr bool
	}{
		{order: "", want: OrderRelevance},
		{order: "relevance", want: OrderRelevance},
		{order: "time", want: OrderTime},
		{order: "TIME", want: OrderTime},
		{order: "likes", wantErr: true},
	}

	v := New(0)
	for _, tt := range tests {
		t.Run(tt.order, func(t *testing.T) {
			got, err := v.ValidateCommentOrder(tt.order)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateCommentOrder() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidateCommentOrder() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClampMaxResults(t *testing.T) {
	tests := []struct {
		name          string
		n, def, limit int64
		want          int64
	}{
		{name: "default when zero", n: 0, def: 100, limit: 100, want: 100},
		{name: "default when negative", n: -5, def: 20, limit: 100, want: 20},
		{name: "within range", n: 25, def: 100, limit: 100, want: 25},
		{name: "capped", n: 500, def: 100, limit: 100, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampMaxResults(tt.n, tt.def, tt.limit); got != tt.want {
				t.Errorf("ClampMaxResults() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidator_IsValidIDs(t *testing.T) {
	v := New(0)

	videos := map[string]bool{
		"dQw4w9WgXcQ":      true,
		"dQw4w9Wg_cQ":      true,
		"dQw4w9Wg-cQ":      true,
		"dQw4w9Wg@cQ":      false,
		"dQw4w9WgXcQExtra": false,
		"":                 false,
	}
	for id, want := range videos {
		if got := v.IsValidVideoID(id); got != want {
			t.Errorf("IsValidVideoID(%q) = %v, want %v", id, got, want)
		}
	}

	channels := map[string]bool{
		"UCuAXFkgsw1L7xaCfnd5JJOw":      true,
		"UC_AXFkgsw1L7xaCfnd5JJOw":      true,
		"UC-AXFkgsw1L7xaCfnd5JJOw":      true,
		"ABuAXFkgsw1L7xaCfnd5JJOw":      false,
		"UCuAXFkgsw1L7xaCfnd5JJ@w":      false,
		"UCuAXFkgsw1L7xaCfnd5JJOwExtra": false,
		"":                              false,
	}
	for id, want := range channels {
		if got := v.IsValidChannelID(id); got != want {
			t.Errorf("IsValidChannelID(%q) = %v, want %v", id, got, want)
		}
	}
}
