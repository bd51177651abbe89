package impostor

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/impostor-maker/internal/config"
	imgutil "github.com/ironsheep/impostor-maker/internal/imaging"
)

// Sheet is an assembled impostor texture.
type Sheet struct {
	// Image holds the faces stacked vertically from the top-left corner.
	Image *image.NRGBA `json:"-"`

	// Tiles are the processed faces in sheet order.
	Tiles []*Tile `json:"tiles"`

	// Placements gives the region of Image occupied by each tile.
	Placements []image.Rectangle `json:"placements"`

	// Skipped lists images left out because SkipFailed was set.
	Skipped []*ImageError `json:"skipped,omitempty"`

	// TileSize is the side-face size in pixels.
	TileSize image.Point `json:"tile_size"`
}

// Save writes the sheet as PNG.
func (s *Sheet) Save(path string) error {
	if s.Image == nil {
		return fmt.Errorf("sheet has no image")
	}
	return imgutil.Save(path, s.Image)
}

// assemble normalizes the processed tiles, scales them to face size and
// stacks them into sheet.Image.
func (b *Builder) assemble(sheet *Sheet, tiles []*Tile) error {
	sideSize := image.Pt(b.cfg.Rez, b.cfg.TileHeight())
	capSize := image.Pt(b.cfg.Rez, b.cfg.Rez)

	var sides, caps []*Tile
	firstCap := b.cfg.Faces
	if b.cfg.Form == config.FormTStar {
		firstCap = b.cfg.Faces - 2
	}
	for _, t := range tiles {
		if t.Index >= firstCap {
			caps = append(caps, t)
		} else {
			sides = append(sides, t)
		}
	}

	faces := make(map[*Tile]*image.NRGBA, len(tiles))
	for _, group := range []struct {
		tiles []*Tile
		size  image.Point
	}{
		{sides, sideSize},
		{caps, capSize},
	} {
		scaled, err := normalizeGroup(group.tiles, group.size, b.cfg.SizeTolerance)
		if err != nil {
			return err
		}
		for i, t := range group.tiles {
			faces[t] = scaled[i]
		}
	}

	height := 0
	for _, t := range tiles {
		height += faces[t].Bounds().Dy()
	}
	width := b.cfg.Rez
	canvasW, canvasH := width, height
	if b.cfg.PowerOfTwo {
		canvasW, canvasH = nextPowerOfTwo(width), nextPowerOfTwo(height)
	}

	canvas := imaging.New(canvasW, canvasH, color.NRGBA{})
	y := 0
	for _, t := range tiles {
		face := faces[t]
		canvas = imaging.Paste(canvas, face, image.Pt(0, y))
		sheet.Placements = append(sheet.Placements, image.Rect(0, y, face.Bounds().Dx(), y+face.Bounds().Dy()))
		y += face.Bounds().Dy()
	}

	sheet.Image = canvas
	sheet.Tiles = tiles
	sheet.TileSize = sideSize
	return nil
}

// normalizeGroup brings a group of tiles to a common framing and scales each
// to size.
//
// Tiles whose interior size differs from the first tile's by at most tol
// pixels per dimension are resized to match it; larger differences are an
// ErrSizeMismatch. All tiles are then cropped to the union of their content
// bounds so the subject keeps the same placement across faces.
func normalizeGroup(tiles []*Tile, size image.Point, tol int) ([]*image.NRGBA, error) {
	if len(tiles) == 0 {
		return nil, nil
	}

	ref := tiles[0].Image.Bounds().Size()
	imgs := make([]*image.NRGBA, len(tiles))
	var union image.Rectangle

	for i, t := range tiles {
		img := t.Image
		bounds := t.Bounds
		got := img.Bounds().Size()
		if abs(got.X-ref.X) > tol || abs(got.Y-ref.Y) > tol {
			return nil, fmt.Errorf("%w: %s is %dx%d, %s is %dx%d (tolerance %d px)",
				ErrSizeMismatch, tileName(t), got.X, got.Y, tileName(tiles[0]), ref.X, ref.Y, tol)
		}
		if got != ref {
			resized, err := imgutil.Resize(img, ref.X, ref.Y)
			if err != nil {
				return nil, err
			}
			img = resized
			if b, ok := imgutil.OpaqueBounds(img); ok {
				bounds = b
			}
		}
		imgs[i] = img
		union = union.Union(bounds)
	}

	crop, err := imgutil.RectFromImage(union)
	if err != nil {
		return nil, fmt.Errorf("%w: tiles have no common content", ErrEmptyTile)
	}

	for i, img := range imgs {
		cropped, err := imgutil.Crop(img, crop)
		if err != nil {
			return nil, err
		}
		scaled, err := imgutil.Resize(cropped, size.X, size.Y)
		if err != nil {
			return nil, err
		}
		imgs[i] = scaled
	}
	return imgs, nil
}

func tileName(t *Tile) string {
	if t.Source != "" {
		return t.Source
	}
	return fmt.Sprintf("image %d", t.Index)
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
