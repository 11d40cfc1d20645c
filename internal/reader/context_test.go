package reader

import "testing"

func TestComposeContext(t *testing.T) {
	toks := []string{"a", "bb", "ccc", "dddd", "e", "ff", "ggg"}

	w := ComposeContext(toks, 3, 10)

	// After: tokens following "dddd" fill lines of at most 10 runes.
	if len(w.After) != 1 {
		t.Fatalf("After = %v, want one line", w.After)
	}
	if w.After[0].Text != "e ff ggg" || w.After[0].Distance != 1 {
		t.Errorf("After[0] = %+v", w.After[0])
	}

	// Before: nearest line sits last so the slice reads top to bottom.
	if len(w.Before) != 1 {
		t.Fatalf("Before = %v, want one line", w.Before)
	}
	if w.Before[0].Text != "a bb ccc" || w.Before[0].Distance != 1 {
		t.Errorf("Before[0] = %+v", w.Before[0])
	}
}

func TestComposeContextWraps(t *testing.T) {
	toks := []string{"one", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten", "x"}

	w := ComposeContext(toks, 0, 9)
	if len(w.After) != 3 {
		t.Fatalf("After has %d lines, want 3", len(w.After))
	}
	for i, line := range w.After {
		if line.Distance != i+1 {
			t.Errorf("After[%d].Distance = %d", i, line.Distance)
		}
		if n := len([]rune(line.Text)); n > 9 {
			t.Errorf("After[%d] = %q exceeds 9 runes", i, line.Text)
		}
	}
	// Greedy fill: "two three" (9), then "four five" (9), then "six seven".
	if w.After[0].Text != "two three" || w.After[1].Text != "four five" || w.After[2].Text != "six seven" {
		t.Errorf("After = %v", w.After)
	}
}

func TestComposeContextBeforeOrder(t *testing.T) {
	toks := []string{"one", "two", "three", "four", "five", "six", "seven", "current"}

	w := ComposeContext(toks, 7, 9)
	if len(w.Before) != 3 {
		t.Fatalf("Before has %d lines, want 3", len(w.Before))
	}
	// Chronological order: farthest line first, nearest last.
	if w.Before[0].Distance != 3 || w.Before[2].Distance != 1 {
		t.Errorf("Before distances = %d,%d,%d", w.Before[0].Distance, w.Before[1].Distance, w.Before[2].Distance)
	}
	if w.Before[2].Text != "six seven" {
		t.Errorf("nearest line = %q, want \"six seven\"", w.Before[2].Text)
	}
}

func TestComposeContextOversizedToken(t *testing.T) {
	toks := []string{"short", "extraordinarily-long-token", "end"}
	w := ComposeContext(toks, 0, 5)
	// An empty line accepts any token, however wide.
	if len(w.After) == 0 || w.After[0].Text != "extraordinarily-long-token" {
		t.Errorf("After = %v", w.After)
	}
}

func TestComposeContextEdges(t *testing.T) {
	toks := []string{"a", "b", "c"}

	w := ComposeContext(toks, 0, 20)
	if len(w.Before) != 0 {
		t.Errorf("Before at stream start = %v", w.Before)
	}
	if len(w.After) != 1 || w.After[0].Text != "b c" {
		t.Errorf("After at stream start = %v", w.After)
	}

	w = ComposeContext(toks, 2, 20)
	if len(w.After) != 0 {
		t.Errorf("After at stream end = %v", w.After)
	}
	if len(w.Before) != 1 || w.Before[0].Text != "a b" {
		t.Errorf("Before at stream end = %v", w.Before)
	}

	w = ComposeContext(nil, 0, 20)
	if len(w.Before) != 0 || len(w.After) != 0 {
		t.Errorf("empty stream produced %v", w)
	}

	w = ComposeContext(toks, 10, 20)
	if len(w.Before) != 0 || len(w.After) != 0 {
		t.Errorf("out-of-range index produced %v", w)
	}
}
