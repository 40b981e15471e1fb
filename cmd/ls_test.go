package cmd

import (
	"testing"

	"github.com/illarion/cloak/internal/core"
)

func TestShortIDs(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want []string
	}{
		{
			name: "distinct at minimum length",
			ids:  []string{"aaaaaaaa-1111", "bbbbbbbb-2222"},
			want: []string{"aaaaaaaa", "bbbbbbbb"},
		},
		{
			name: "shared timestamp prefix",
			ids:  []string{"0199f3a2-7b1c-7000", "0199f3a2-7b1d-7000", "0199f3a2-8000-7000"},
			want: []string{"0199f3a2-7b1c", "0199f3a2-7b1d", "0199f3a2-8"},
		},
		{
			name: "shorter than minimum",
			ids:  []string{"abc"},
			want: []string{"abc"},
		},
		{
			name: "empty",
			ids:  nil,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := make([]core.Entry, len(tt.ids))
			for i, id := range tt.ids {
				entries[i] = core.Entry{ID: id}
			}
			got := shortIDs(entries)
			if len(got) != len(tt.want) {
				t.Fatalf("shortIDs() returned %d ids, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("shortIDs()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}

	for _, tt := range tests {
		if got := formatSize(tt.size); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}
