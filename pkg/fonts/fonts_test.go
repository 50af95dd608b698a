package fonts

import (
	"testing"

	"golang.org/x/image/font"
)

func TestFace(t *testing.T) {
	for _, w := range []Weight{Regular, Bold} {
		face, err := Face(w, 14)
		if err != nil {
			t.Fatalf("Face(%d): %v", w, err)
		}
		adv := font.MeasureString(face, "Placebo product")
		if adv <= 0 {
			t.Errorf("weight %d: zero advance", w)
		}
		if m := face.Metrics(); m.Height <= 0 {
			t.Errorf("weight %d: zero line height", w)
		}
	}
}

func TestBoldIsWider(t *testing.T) {
	r, _ := Face(Regular, 20)
	b, _ := Face(Bold, 20)
	if font.MeasureString(b, "Decaffeinated") <= font.MeasureString(r, "Decaffeinated") {
		t.Error("bold text should be wider than regular")
	}
}
