package compare

import (
	"testing"

	"github.com/benedoc-inc/pdfdiff/types"
)

func wordsAt(texts ...string) []types.Word {
	words := make([]types.Word, len(texts))
	for i, text := range texts {
		x := float64(i * 50)
		words[i] = types.Word{Text: text, BBox: types.BBox{X0: x, Y0: 10, X1: x + 40, Y1: 20}}
	}
	return words
}

func TestEmitHighlights(t *testing.T) {
	words := wordsAt("The", "dog", "sat", "down")
	opcodes := []Opcode{
		{Tag: OpEqual, I1: 0, I2: 1, J1: 0, J2: 1},
		{Tag: OpReplace, I1: 1, I2: 2, J1: 1, J2: 2},
		{Tag: OpEqual, I1: 2, I2: 3, J1: 2, J2: 3},
		{Tag: OpInsert, I1: 3, I2: 3, J1: 3, J2: 4},
	}

	rects := EmitHighlights(2, words, opcodes, DefaultHighlightStyle())
	if len(rects) != 2 {
		t.Fatalf("Expected 2 highlights, got %d", len(rects))
	}
	if rects[0].BBox != words[1].BBox || rects[1].BBox != words[3].BBox {
		t.Errorf("Highlights cover wrong words: %v", rects)
	}
	for _, r := range rects {
		if r.PageIndex != 2 {
			t.Errorf("Expected page index 2, got %d", r.PageIndex)
		}
		if r.Color != types.Red || r.StrokeWidth != 0.7 {
			t.Errorf("Expected red 0.7 stroke, got %v %v", r.Color, r.StrokeWidth)
		}
	}
}

func TestEmitHighlights_DeleteHasNoTargetWords(t *testing.T) {
	words := wordsAt("a", "c")
	opcodes := []Opcode{
		{Tag: OpEqual, I1: 0, I2: 1, J1: 0, J2: 1},
		{Tag: OpDelete, I1: 1, I2: 2, J1: 1, J2: 1},
		{Tag: OpEqual, I1: 2, I2: 3, J1: 1, J2: 2},
	}
	if rects := EmitHighlights(0, words, opcodes, DefaultHighlightStyle()); len(rects) != 0 {
		t.Errorf("Expected no highlights for a pure deletion, got %v", rects)
	}
}

func TestEmitHighlights_SkipsOutOfRangeIndices(t *testing.T) {
	// Tokenization found more words than the provider reported boxes for
	words := wordsAt("only", "two")
	opcodes := []Opcode{{Tag: OpInsert, I1: 0, I2: 0, J1: 0, J2: 5}}

	rects := EmitHighlights(0, words, opcodes, DefaultHighlightStyle())
	if len(rects) != 2 {
		t.Fatalf("Expected 2 highlights for the 2 available boxes, got %d", len(rects))
	}

	if rects := EmitHighlights(0, nil, opcodes, DefaultHighlightStyle()); len(rects) != 0 {
		t.Errorf("Expected no highlights without word boxes, got %v", rects)
	}
}

func TestEmitHighlights_CustomStyle(t *testing.T) {
	style := HighlightStyle{Color: types.Color{B: 1}, StrokeWidth: 2}
	rects := EmitHighlights(0, wordsAt("x"), []Opcode{{Tag: OpInsert, J1: 0, J2: 1}}, style)
	if len(rects) != 1 || rects[0].Color != style.Color || rects[0].StrokeWidth != 2 {
		t.Errorf("Custom style not applied: %v", rects)
	}
}

func TestEmitImageMarker(t *testing.T) {
	if m := EmitImageMarker(0, false, DefaultMarkerStyle()); m != nil {
		t.Errorf("Expected no marker when images match, got %v", m)
	}

	m := EmitImageMarker(3, true, DefaultMarkerStyle())
	if m == nil {
		t.Fatal("Expected a marker when images differ")
	}
	want := TextMarker{
		PageIndex: 3,
		Position:  types.Point{X: 50, Y: 50},
		Text:      "Images differ!",
		FontSize:  12,
		Color:     types.Red,
	}
	if *m != want {
		t.Errorf("Expected %+v, got %+v", want, *m)
	}
}
