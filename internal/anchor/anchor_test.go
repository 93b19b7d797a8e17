package anchor

import (
	"errors"
	"testing"
)

func TestNormalizeCollapsesWhitespaceRuns(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"the  cat\tsat", "the cat sat"},
		{"  leading and trailing \n", "leading and trailing"},
		{"line\nbreaks\n\nbecome spaces", "line breaks become spaces"},
		{"already normal", "already normal"},
		{"", ""},
		{"   \t\n ", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolveParagraphFirstMatchWins(t *testing.T) {
	container := "the cat sat. the cat ran."
	addr, err := ResolveParagraph(0, 2, container, "the cat")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if addr.Start != 0 || addr.End != 7 {
		t.Fatalf("repeated phrase should anchor to the earliest span, got [%d, %d)", addr.Start, addr.End)
	}
	if addr.Kind != KindParagraph || addr.Chapter != 0 || addr.Paragraph != 2 {
		t.Fatalf("structural fields wrong: %+v", addr)
	}
}

func TestResolveParagraphIsIdempotent(t *testing.T) {
	container := "Gravity  bends\nlight around massive bodies."
	first, err := ResolveParagraph(1, 0, container, "bends light")
	if err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}
	second, err := ResolveParagraph(1, 0, container, "bends light")
	if err != nil {
		t.Fatalf("second resolve failed: %v", err)
	}
	if first != second {
		t.Fatalf("same selection against unchanged text diverged: %+v vs %+v", first, second)
	}
}

func TestResolveParagraphRoundTrip(t *testing.T) {
	container := "It was   the best\nof times, it was the worst of times."
	selection := "best of times"
	addr, err := ResolveParagraph(0, 0, container, selection)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	got, err := Slice(container, addr.Start, addr.End)
	if err != nil {
		t.Fatalf("slice failed: %v", err)
	}
	if got != Normalize(selection) {
		t.Fatalf("round trip mismatch: slice %q, normalized selection %q", got, Normalize(selection))
	}
}

func TestResolveParagraphNormalizesSelectionWhitespace(t *testing.T) {
	container := "one two three four"
	addr, err := ResolveParagraph(0, 0, container, "two\n\t three")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if addr.Start != 4 || addr.End != 13 {
		t.Fatalf("got [%d, %d), want [4, 13)", addr.Start, addr.End)
	}
}

func TestResolveParagraphRejectsMissingText(t *testing.T) {
	_, err := ResolveParagraph(0, 0, "nothing to see here", "absent phrase")
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestResolveParagraphRejectsEmptySelection(t *testing.T) {
	for _, selection := range []string{"", "   ", "\n\t"} {
		_, err := ResolveParagraph(0, 0, "some container text", selection)
		if !errors.Is(err, ErrEmptySelection) {
			t.Fatalf("selection %q: expected ErrEmptySelection, got %v", selection, err)
		}
	}
}

func TestResolvePage(t *testing.T) {
	pageText := "Run one text  run two text run three"
	addr, err := ResolvePage(4, pageText, "run two")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if addr.Kind != KindPage || addr.Page != 4 {
		t.Fatalf("structural fields wrong: %+v", addr)
	}
	got, err := Slice(pageText, addr.Start, addr.End)
	if err != nil {
		t.Fatalf("slice failed: %v", err)
	}
	if got != "run two" {
		t.Fatalf("sliced %q, want %q", got, "run two")
	}
}

func TestResolveReflow(t *testing.T) {
	addr, err := ResolveReflow("bp:2:140:162")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if addr.Kind != KindReflow || addr.RangeID != "bp:2:140:162" {
		t.Fatalf("range id not captured verbatim: %+v", addr)
	}
	if _, err := ResolveReflow("  "); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("blank range id should be rejected, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		addr Address
		ok   bool
	}{
		{"paragraph ok", Address{Kind: KindParagraph, Chapter: 0, Paragraph: 3, Start: 5, End: 9}, true},
		{"inverted bounds", Address{Kind: KindParagraph, Start: 9, End: 9}, false},
		{"end before start", Address{Kind: KindPage, Page: 1, Start: 7, End: 3}, false},
		{"negative start", Address{Kind: KindPage, Page: 1, Start: -1, End: 3}, false},
		{"page zero", Address{Kind: KindPage, Page: 0, Start: 0, End: 4}, false},
		{"reflow ok", Address{Kind: KindReflow, RangeID: "opaque"}, true},
		{"reflow blank", Address{Kind: KindReflow, RangeID: " "}, false},
		{"unknown kind", Address{Kind: Kind("verse"), Start: 0, End: 1}, false},
	}
	for _, tc := range cases {
		err := tc.addr.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidAddress) {
			t.Fatalf("%s: expected ErrInvalidAddress, got %v", tc.name, err)
		}
	}
}

func TestSliceBoundsChecked(t *testing.T) {
	if _, err := Slice("short", 0, 99); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("out-of-range slice should fail, got %v", err)
	}
	if _, err := Slice("short", -1, 2); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("negative start should fail, got %v", err)
	}
}
