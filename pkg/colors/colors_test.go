package colors

import (
	"regexp"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"#c80000", "#c80000", false},
		{"#C80000", "#c80000", false},
		{"#f00", "#ff0000", false},
		{"rgb(200, 0, 0)", "#c80000", false},
		{"rgb(240,190,0)", "#f0be00", false},
		{" rgb(0, 180, 0) ", "#00b400", false},
		{"rgb(256, 0, 0)", "", true},
		{"rgb(1, 2)", "", true},
		{"red", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := Normalize(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Normalize(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefault(t *testing.T) {
	if Default(0) != Palette[0] {
		t.Errorf("Default(0) = %q, want %q", Default(0), Palette[0])
	}
	if Default(len(Palette)) != Palette[0] {
		t.Error("Default should wrap around the palette")
	}
	hex := regexp.MustCompile(`^#[0-9a-f]{6}$`)
	for i := range Palette {
		if !hex.MatchString(Default(i)) {
			t.Errorf("palette entry %d = %q is not #rrggbb", i, Default(i))
		}
	}
}

func TestTextOn(t *testing.T) {
	if got := TextOn("#000000"); got != "#ffffff" {
		t.Errorf("TextOn(black) = %q, want white", got)
	}
	if got := TextOn("#ffffff"); got == "#ffffff" {
		t.Errorf("TextOn(white) should not be white")
	}
	if got := TextOn("not-a-colour"); got != "#ffffff" {
		t.Errorf("TextOn(invalid) = %q, want white fallback", got)
	}
}

func TestRGBA(t *testing.T) {
	c := RGBA("rgb(200, 0, 0)")
	if c.R != 200 || c.G != 0 || c.B != 0 || c.A != 255 {
		t.Errorf("RGBA = %+v, want {200 0 0 255}", c)
	}
	grey := RGBA("nope")
	if grey.R != 0x80 || grey.A != 0xff {
		t.Errorf("RGBA(invalid) = %+v, want grey fallback", grey)
	}
}

func TestDarken(t *testing.T) {
	d := Darken("#ffffff", 0.5)
	if d == "#ffffff" {
		t.Error("Darken should change the colour")
	}
	if Darken("bogus", 0.5) != "bogus" {
		t.Error("Darken should return invalid input unchanged")
	}
}
