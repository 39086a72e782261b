package raster

import (
	"bytes"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/nprs/pkg/errors"
)

func TestNewAndResolution(t *testing.T) {
	m := New(4, 3, color.NRGBA{R: 255, A: 255})
	w, h := m.Resolution()
	if w != 4 || h != 3 {
		t.Fatalf("Resolution() = (%d, %d), want (4, 3)", w, h)
	}
	if got := m.At(2, 1); got != (Pixel{R: 1, A: 1}) {
		t.Errorf("At(2, 1) = %+v, want red", got)
	}

	tr := Transparent(2, 2)
	if got := tr.At(1, 1); got != (Pixel{}) {
		t.Errorf("Transparent At = %+v, want zero", got)
	}
}

func TestSetClamps(t *testing.T) {
	m := Transparent(1, 1)
	m.Set(0, 0, Pixel{R: 2, G: -1, B: 0.5, A: 1})
	c := m.NRGBA().NRGBAAt(0, 0)
	if c.R != 255 || c.G != 0 || c.B != 128 || c.A != 255 {
		t.Errorf("pixel = %+v, want {255 0 128 255}", c)
	}
}

func TestMap(t *testing.T) {
	m := New(2, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	m.Map(func(p Pixel) Pixel {
		return Pixel{R: 1 - p.R, G: 1 - p.G, B: 1 - p.B, A: p.A}
	})
	c := m.NRGBA().NRGBAAt(1, 1)
	if c.R != 245 || c.G != 235 || c.B != 225 {
		t.Errorf("mapped pixel = %+v, want {245 235 225 255}", c)
	}
}

func TestSample(t *testing.T) {
	m := Transparent(2, 1)
	m.Set(0, 0, Pixel{R: 1, A: 1})
	m.Set(1, 0, Pixel{B: 1, A: 1})

	red := Pixel{R: 1, A: 1}
	blue := Pixel{B: 1, A: 1}
	tests := []struct {
		name string
		x, y float64
		want Pixel
	}{
		{"Center", 0, 0, red},
		{"Second", 1, 0, blue},
		{"WrapRight", 2, 0, red},
		{"WrapLeft", -1, 0, blue},
		{"WrapRows", 1, 3, blue},
		{"Halfway", 0.5, 0, Pixel{R: 0.5, B: 0.5, A: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Sample(tt.x, tt.y); got != tt.want {
				t.Errorf("Sample(%v, %v) = %+v, want %+v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := New(2, 2, color.White)
	c := m.Clone()
	c.Set(0, 0, Pixel{A: 1})
	if m.At(0, 0) != (Pixel{R: 1, G: 1, B: 1, A: 1}) {
		t.Error("writing to clone changed the original")
	}
}

func TestReplaceResizes(t *testing.T) {
	m := Transparent(4, 4)
	m.Replace(imaging.New(2, 2, color.White))
	if got := m.At(3, 3); got.A != 1 {
		t.Errorf("At(3, 3) = %+v, want opaque", got)
	}
	w, h := m.Resolution()
	if w != 4 || h != 4 {
		t.Errorf("Resolution() = (%d, %d), want (4, 4)", w, h)
	}
}

func TestEncodeDecode(t *testing.T) {
	m := New(3, 2, color.NRGBA{R: 1, G: 2, B: 3, A: 255})

	var buf bytes.Buffer
	if err := Encode(&buf, m, imaging.PNG); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(got.NRGBA().Pix, m.NRGBA().Pix) {
		t.Error("decoded pixels differ from the encoded image")
	}

	if _, err := Decode(bytes.NewReader([]byte("not an image"))); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Decode(garbage) error = %v, want INVALID_FORMAT", err)
	}
}

func TestFormatFromName(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"out.png", imaging.PNG, false},
		{"OUT.JPG", imaging.JPEG, false},
		{"jpeg", imaging.JPEG, false},
		{".gif", imaging.GIF, false},
		{"out.webp", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatFromName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FormatFromName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("FormatFromName(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestOpenSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "img.png")

	m := New(2, 2, color.NRGBA{R: 200, A: 255})
	if err := Save(m, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got.At(1, 1) != m.At(1, 1) {
		t.Errorf("round trip pixel = %+v, want %+v", got.At(1, 1), m.At(1, 1))
	}

	if _, err := Open(filepath.Join(dir, "missing.png")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Open(missing) error = %v, want FILE_NOT_FOUND", err)
	}
	if err := Save(m, filepath.Join(dir, "img.xyz")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Save(.xyz) error = %v, want INVALID_FORMAT", err)
	}
}
