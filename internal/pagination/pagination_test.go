package pagination

import "testing"

func TestNew(t *testing.T) {
	tests := []struct {
		name           string
		total          int64
		limit          int
		wantTotalPages int
		wantLimit      int
	}{
		{"empty result still has one page", 0, 10, 1, 10},
		{"exact multiple", 30, 10, 3, 10},
		{"partial last page", 25, 10, 3, 10},
		{"single row", 1, 10, 1, 10},
		{"invalid limit falls back to default", 25, 0, 3, DefaultLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(nil, tt.total, tt.limit)
			if got.TotalPages != tt.wantTotalPages {
				t.Fatalf("TotalPages = %d, want %d", got.TotalPages, tt.wantTotalPages)
			}
			if got.Limit != tt.wantLimit {
				t.Fatalf("Limit = %d, want %d", got.Limit, tt.wantLimit)
			}
			if got.Total != tt.total {
				t.Fatalf("Total = %d, want %d", got.Total, tt.total)
			}
		})
	}
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 1},
		{"abc", 1},
		{"0", 1},
		{"-3", 1},
		{"1", 1},
		{"7", 7},
	}
	for _, tt := range tests {
		if got := ParsePage(tt.in); got != tt.want {
			t.Fatalf("ParsePage(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
