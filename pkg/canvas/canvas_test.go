package canvas

import (
	"strings"
	"testing"
)

func mustNew(t *testing.T, w, h int) *Canvas {
	t.Helper()
	c, err := New(w, h)
	if err != nil {
		t.Fatalf("New(%d, %d) error = %v", w, h, err)
	}
	return c
}

func TestNewClampsAndLimits(t *testing.T) {
	c := mustNew(t, 0, -5)
	if c.Width() != 1 || c.Height() != 1 {
		t.Errorf("size = %dx%d, want 1x1", c.Width(), c.Height())
	}

	if _, err := New(MaxCells, 2); err == nil {
		t.Error("New(MaxCells, 2) error = nil, want ErrTooLarge")
	}
}

func TestSetAndGet(t *testing.T) {
	c := mustNew(t, 10, 5)
	c.Set(3, 2, '─', Line)
	if got := c.Get(3, 2); got != '─' {
		t.Errorf("Get(3, 2) = %q, want %q", got, '─')
	}
	if got := c.CategoryAt(3, 2); got != Line {
		t.Errorf("CategoryAt(3, 2) = %v, want Line", got)
	}

	// Out-of-bounds writes are dropped, reads return a space.
	c.Set(-1, 0, 'X', BoxText)
	c.Set(10, 0, 'X', BoxText)
	if got := c.Get(99, 99); got != ' ' {
		t.Errorf("Get(99, 99) = %q, want space", got)
	}
}

func TestMergeCommutative(t *testing.T) {
	glyphs := []rune{'─', '│', '┌', '┐', '└', '┘', '├', '┤', '┬', '┴', '┼', '╭', '╮', '╰', '╯'}
	for _, a := range glyphs {
		for _, b := range glyphs {
			ab := Merge(a, b)
			ba := Merge(b, a)
			if ab != ba {
				t.Errorf("Merge(%q, %q) = %q but Merge(%q, %q) = %q", a, b, ab, b, a, ba)
			}
		}
	}
}

func TestMergeIdempotent(t *testing.T) {
	glyphs := []rune{'─', '│', '┌', '┐', '└', '┘', '├', '┤', '┬', '┴', '┼'}
	for _, g := range glyphs {
		if got := Merge(g, g); got != g {
			t.Errorf("Merge(%q, %q) = %q, want %q", g, g, got, g)
		}
	}
}

func TestMergeJunctions(t *testing.T) {
	tests := []struct {
		a, b, want rune
	}{
		{'─', '│', '┼'},
		{'│', '┌', '├'},
		{'│', '┐', '┤'},
		{'─', '┌', '┬'},
		{'─', '└', '┴'},
		{'┬', '│', '┼'},
		{'├', '┤', '┼'},
		{'╭', '│', '├'}, // rounded corner resolves to square junction
		{'─', '╰', '┴'},
	}
	for _, tt := range tests {
		if got := Merge(tt.a, tt.b); got != tt.want {
			t.Errorf("Merge(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestMergeNonLineUnchanged(t *testing.T) {
	if got := Merge('X', '─'); got != 'X' {
		t.Errorf("Merge('X', '─') = %q, want 'X'", got)
	}
	if got := Merge('─', 'X'); got != '─' {
		t.Errorf("Merge('─', 'X') = %q, want '─'", got)
	}
}

func TestSetLineOrderIndependent(t *testing.T) {
	first := mustNew(t, 5, 5)
	first.Set(2, 2, '─', Line)
	first.Set(2, 2, '│', Line)

	second := mustNew(t, 5, 5)
	second.Set(2, 2, '│', Line)
	second.Set(2, 2, '─', Line)

	if a, b := first.Get(2, 2), second.Get(2, 2); a != b || a != '┼' {
		t.Errorf("order-dependent merge: %q vs %q, want both %q", a, b, '┼')
	}
}

func TestSetCategoryRules(t *testing.T) {
	t.Run("shadow only lands on blank", func(t *testing.T) {
		c := mustNew(t, 5, 5)
		c.Set(1, 1, '░', Shadow)
		if got := c.Get(1, 1); got != '░' {
			t.Errorf("shadow on blank: got %q, want %q", got, '░')
		}
		c.Set(2, 2, '─', Line)
		c.Set(2, 2, '░', Shadow)
		if got := c.Get(2, 2); got != '─' {
			t.Errorf("shadow over line: got %q, want %q", got, '─')
		}
	})

	t.Run("line lands on shadow", func(t *testing.T) {
		c := mustNew(t, 5, 5)
		c.Set(1, 1, '░', Shadow)
		c.Set(1, 1, '│', Line)
		if got := c.Get(1, 1); got != '│' {
			t.Errorf("line over shadow: got %q, want %q", got, '│')
		}
	})

	t.Run("line yields to arrow", func(t *testing.T) {
		c := mustNew(t, 5, 5)
		c.Set(1, 1, '▼', Arrow)
		c.Set(1, 1, '│', Line)
		if got := c.Get(1, 1); got != '▼' {
			t.Errorf("line over arrow: got %q, want %q", got, '▼')
		}
	})

	t.Run("line tees into box border", func(t *testing.T) {
		c := mustNew(t, 5, 5)
		c.Set(1, 1, '─', BoxBorder)
		c.Set(1, 1, '│', Line)
		if got := c.Get(1, 1); got != '┼' {
			t.Errorf("line into border: got %q, want %q", got, '┼')
		}
		if got := c.CategoryAt(1, 1); got != BoxBorder {
			t.Errorf("category after tee = %v, want BoxBorder", got)
		}
	})

	t.Run("arrow does not clobber box text", func(t *testing.T) {
		c := mustNew(t, 5, 5)
		c.Set(1, 1, 'A', BoxText)
		c.Set(1, 1, '►', Arrow)
		if got := c.Get(1, 1); got != 'A' {
			t.Errorf("arrow over text: got %q, want %q", got, 'A')
		}
	})

	t.Run("box border overwrites line", func(t *testing.T) {
		c := mustNew(t, 5, 5)
		c.Set(1, 1, '│', Line)
		c.Set(1, 1, '─', BoxBorder)
		if got := c.Get(1, 1); got != '─' {
			t.Errorf("border over line: got %q, want %q", got, '─')
		}
	})
}

func TestObserverFiresOnChange(t *testing.T) {
	c := mustNew(t, 5, 5)
	var calls int
	c.SetObserver(func(x, y int, prev, next rune, cat Category) {
		calls++
		if x != 2 || y != 3 {
			t.Errorf("observer coords = (%d, %d), want (2, 3)", x, y)
		}
	})

	c.Set(2, 3, '│', Line)
	c.Set(2, 3, '│', Line) // no change, no callback
	c.Set(2, 3, '─', Line) // merges to ┼, fires
	if calls != 2 {
		t.Errorf("observer calls = %d, want 2", calls)
	}
}

func TestStringTrimsTrailingBlank(t *testing.T) {
	c := mustNew(t, 8, 4)
	c.Set(0, 0, 'A', BoxText)
	c.Set(2, 1, 'B', BoxText)

	got := c.String()
	want := "A\n  B"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	for _, row := range strings.Split(got, "\n") {
		if strings.TrimRight(row, " ") != row {
			t.Errorf("row %q has trailing spaces", row)
		}
	}
}

func TestRowsFixedWidth(t *testing.T) {
	c := mustNew(t, 6, 3)
	c.Set(5, 2, 'Z', BoxText)
	rows := c.Rows()
	if len(rows) != 3 {
		t.Fatalf("len(Rows()) = %d, want 3", len(rows))
	}
	for i, row := range rows {
		if n := len([]rune(row)); n != 6 {
			t.Errorf("row %d width = %d, want 6", i, n)
		}
	}
}
