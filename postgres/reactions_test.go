package postgres

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestApplyReaction(t *testing.T) {
	tests := []struct {
		name   string
		counts map[string]int
		prev   string
		next   string
		want   map[string]int
	}{
		{
			name:   "FirstReaction",
			counts: map[string]int{},
			prev:   "",
			next:   "👍",
			want:   map[string]int{"👍": 1},
		},
		{
			name:   "NilCounts",
			counts: nil,
			prev:   "",
			next:   "👍",
			want:   map[string]int{"👍": 1},
		},
		{
			name:   "JoinExisting",
			counts: map[string]int{"👍": 2},
			prev:   "",
			next:   "👍",
			want:   map[string]int{"👍": 3},
		},
		{
			name:   "SwitchEmoji",
			counts: map[string]int{"👍": 1},
			prev:   "👍",
			next:   "❤️",
			want:   map[string]int{"👍": 0, "❤️": 1},
		},
		{
			name:   "SwitchKeepsOtherCounts",
			counts: map[string]int{"👍": 2, "❤️": 1},
			prev:   "👍",
			next:   "❤️",
			want:   map[string]int{"👍": 1, "❤️": 2},
		},
		{
			// A stale edge pointing at a zero counter must not go
			// negative.
			name:   "DecrementFloorsAtZero",
			counts: map[string]int{"👍": 0},
			prev:   "👍",
			next:   "❤️",
			want:   map[string]int{"👍": 0, "❤️": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := applyReaction(tt.counts, tt.prev, tt.next)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("applyReaction() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApplyReaction_DoesNotMutateInput(t *testing.T) {
	counts := map[string]int{"👍": 1}
	_ = applyReaction(counts, "👍", "❤️")
	if counts["👍"] != 1 {
		t.Error("applyReaction mutated its input map")
	}
}

func TestApplyReaction_CountsBalance(t *testing.T) {
	// A sequence of switches by one account always sums to exactly one
	// live edge.
	counts := map[string]int{}
	prev := ""
	for _, emoji := range []string{"👍", "❤️", "😂", "❤️"} {
		counts = applyReaction(counts, prev, emoji)
		prev = emoji

		sum := 0
		for _, n := range counts {
			sum += n
		}
		if sum != 1 {
			t.Fatalf("Counts sum to %d after reacting %q, want 1", sum, emoji)
		}
	}
}
