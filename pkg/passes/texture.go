package passes

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/matzehuels/nprs/pkg/bind"
	"github.com/matzehuels/nprs/pkg/raster"
	"github.com/matzehuels/nprs/pkg/value"
)

// Texture replaces its target with an image file, resized to the target's
// resolution. The file is read once, when the pass is bound, so a missing
// or undecodable file fails compilation rather than rendering.
type Texture struct {
	Path string

	image  *raster.Image
	digest string
}

// LoadTexture reads the image at path.
func LoadTexture(path string) (Texture, error) {
	img, err := raster.Open(path)
	if err != nil {
		return Texture{}, err
	}
	sum := sha256.Sum256(img.NRGBA().Pix)
	return Texture{Path: path, image: img, digest: hex.EncodeToString(sum[:8])}, nil
}

func (Texture) Name() string           { return NameTexture }
func (Texture) Dependencies() []string { return []string{} }

func (p Texture) Apply(target *raster.Image, _ []*raster.Image) {
	if p.image != nil {
		target.Replace(p.image.NRGBA())
	}
}

// Resolution returns the size of the loaded file.
func (p Texture) Resolution() (width, height int) {
	if p.image == nil {
		return 0, 0
	}
	return p.image.Resolution()
}

// String identifies the texture by path and pixel content, so graphs that
// load a changed file hash differently.
func (p Texture) String() string {
	return fmt.Sprintf("{Path:%s Digest:%s}", p.Path, p.digest)
}

var decodeTexturePath = bind.Struct([]bind.Field{
	bind.Required("path", bind.Path).AtIndex(0),
}, func(f bind.Fields) string {
	return bind.Get[string](f, "path")
})

var decodeTexture bind.Decoder[Texture] = func(v value.Value) (Texture, error) {
	path, err := decodeTexturePath(v)
	if err != nil {
		return Texture{}, err
	}
	return LoadTexture(path)
}
