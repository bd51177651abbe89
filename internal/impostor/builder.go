package impostor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/impostor-maker/internal/chromakey"
	"github.com/ironsheep/impostor-maker/internal/config"
	"github.com/ironsheep/impostor-maker/internal/detection"
	imgutil "github.com/ironsheep/impostor-maker/internal/imaging"
	"github.com/ironsheep/impostor-maker/internal/logging"
)

// Tile is one processed face.
type Tile struct {
	// Source is the input path, empty for in-memory images.
	Source string `json:"source,omitempty"`

	// Index is the position of the input in the build.
	Index int `json:"index"`

	Frame  *detection.FrameResult `json:"frame"`
	Chroma *chromakey.Estimate    `json:"chroma"`

	// MaskRange is the HSV range used to classify background pixels.
	MaskRange imgutil.ColorRange `json:"mask_range"`

	// Image is the frame interior with the background removed.
	Image *image.NRGBA `json:"-"`

	// Bounds is the bounding box of the non-transparent pixels of Image.
	Bounds image.Rectangle `json:"bounds"`

	// Corrected is the number of outline pixels whose tinge was corrected.
	Corrected int `json:"corrected"`
}

// Builder runs the per-image pipeline and assembles sheets.
type Builder struct {
	cfg   config.Config
	log   logrus.FieldLogger
	cache *imgutil.ImageCache

	// Debug overlay colors.
	outerOutline color.NRGBA
	innerOutline color.NRGBA
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log logrus.FieldLogger) Option {
	return func(b *Builder) {
		b.log = log
	}
}

// WithCache makes the builder load images through cache.
func WithCache(cache *imgutil.ImageCache) Option {
	return func(b *Builder) {
		b.cache = cache
	}
}

// New validates cfg and returns a Builder.
func New(cfg config.Config, opts ...Option) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	outer, err := imgutil.ParseHexColor(cfg.DebugOuterColor)
	if err != nil {
		return nil, fmt.Errorf("debug outer color: %w", err)
	}
	inner, err := imgutil.ParseHexColor(cfg.DebugInnerColor)
	if err != nil {
		return nil, fmt.Errorf("debug inner color: %w", err)
	}

	b := &Builder{cfg: cfg, outerOutline: outer, innerOutline: inner}
	for _, opt := range opts {
		opt(b)
	}
	if b.log == nil {
		b.log = logging.Discard()
	}
	return b, nil
}

// Config returns the builder's configuration.
func (b *Builder) Config() config.Config {
	return b.cfg
}

// ProcessImage locates the frame of img, measures the background color and
// returns the frame interior with the background removed. img is not
// modified.
//
// Failures are returned as *ImageError with Stage set. After the frame
// stage succeeds, a failing call also returns the partial Tile so callers
// can render diagnostics; it must not be used as a result.
func (b *Builder) ProcessImage(img image.Image) (*Tile, error) {
	frame, err := detection.LocateFrame(img, b.cfg.FrameParams())
	if err != nil {
		return nil, &ImageError{Stage: StageFrame, Err: err}
	}

	est, err := chromakey.EstimateChroma(img, frame.Inner, b.cfg.EstimateParams())
	if err != nil {
		return &Tile{Frame: frame}, &ImageError{Stage: StageChroma, Err: err}
	}

	maskRange := b.cfg.ChromaRange
	if b.cfg.AdaptiveChroma() {
		maskRange = est.Band(b.cfg.ChromaTolerance)
	}

	interior, err := imgutil.Crop(img, frame.Inner)
	if err != nil {
		return &Tile{Frame: frame, Chroma: est}, &ImageError{Stage: StageSegment, Err: err}
	}

	res, err := chromakey.RemoveBackground(interior, b.cfg.RemoveParams(maskRange))
	if err != nil {
		return &Tile{Frame: frame, Chroma: est}, &ImageError{Stage: StageSegment, Err: err}
	}

	tile := &Tile{
		Frame:     frame,
		Chroma:    est,
		MaskRange: maskRange,
		Image:     res.Image,
		Bounds:    res.Bounds,
		Corrected: res.Corrected,
	}
	if res.Bounds.Empty() {
		return tile, &ImageError{Stage: StageSegment, Err: ErrEmptyTile}
	}
	return tile, nil
}

// ProcessFile loads path and runs ProcessImage on it.
//
// When DebugDir is set, the frame outlines and the segmented tile are
// written there as PNG files named after the input, even if a later stage
// fails. Debug output problems are logged, not returned.
func (b *Builder) ProcessFile(path string) (*Tile, error) {
	log := b.log.WithField("image", path)

	img, err := b.load(path)
	if err != nil {
		return nil, &ImageError{Path: path, Stage: StageLoad, Err: err}
	}

	tile, err := b.ProcessImage(img)
	if tile != nil {
		tile.Source = path
		b.writeDebug(log, path, img, tile)
	}
	if err != nil {
		var ie *ImageError
		if errors.As(err, &ie) {
			ie.Path = path
		}
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"outer":     tile.Frame.Outer.String(),
		"inner":     tile.Frame.Inner.String(),
		"chroma":    tile.Chroma.RGB.String(),
		"inset":     tile.Chroma.Inset,
		"corrected": tile.Corrected,
	}).Debug("image processed")
	return tile, nil
}

func (b *Builder) load(path string) (*image.NRGBA, error) {
	if b.cache != nil {
		return b.cache.Load(path)
	}
	return imgutil.Load(path)
}

func (b *Builder) writeDebug(log logrus.FieldLogger, path string, img image.Image, tile *Tile) {
	if b.cfg.DebugDir == "" {
		return
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	if tile.Frame != nil {
		overlay := imgutil.DrawOutlines(img,
			imgutil.Outline{Rect: tile.Frame.Outer, Color: b.outerOutline},
			imgutil.Outline{Rect: tile.Frame.Inner, Color: b.innerOutline},
		)
		if err := imgutil.Save(filepath.Join(b.cfg.DebugDir, base+".frame.png"), overlay); err != nil {
			log.WithError(err).Warn("debug overlay not written")
		}
	}
	if tile.Image != nil {
		if err := imgutil.Save(filepath.Join(b.cfg.DebugDir, base+".tile.png"), tile.Image); err != nil {
			log.WithError(err).Warn("debug tile not written")
		}
	}
}

// Build processes every path and stacks the faces into one sheet.
//
// The number of paths must equal the configured face count. Without
// SkipFailed the first failing image aborts the build and its *ImageError
// is returned; with it, failed images are left out and listed in
// Sheet.Skipped. Cancelling ctx stops images that have not started yet.
func (b *Builder) Build(ctx context.Context, paths []string) (*Sheet, error) {
	if len(paths) == 0 {
		return nil, ErrNoImages
	}
	if len(paths) != b.cfg.Faces {
		return nil, fmt.Errorf("%w: got %d images, configured for %d", ErrFaceCount, len(paths), b.cfg.Faces)
	}
	if b.cfg.Form == config.FormTStar && len(paths) < 3 {
		return nil, fmt.Errorf("%w: %s needs at least one side plus top and bottom, got %d",
			ErrFaceCount, config.FormTStar, len(paths))
	}

	log := logging.WithRunID(b.log).WithFields(logrus.Fields{
		"faces": len(paths),
		"form":  b.cfg.Form,
	})
	log.Info("building impostor sheet")

	tiles := make([]*Tile, len(paths))
	failures := make([]*ImageError, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tile, err := b.ProcessFile(path)
			if err != nil {
				ie := asImageError(err, path, i)
				if b.cfg.SkipFailed {
					log.WithField("image", path).WithError(ie.Err).Warnf("skipping image after %s failure", ie.Stage)
					failures[i] = ie
					return nil
				}
				return ie
			}
			tile.Index = i
			tiles[i] = tile
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.WithError(err).Error("build aborted")
		return nil, err
	}

	sheet := &Sheet{}
	var processed []*Tile
	for i := range paths {
		if failures[i] != nil {
			sheet.Skipped = append(sheet.Skipped, failures[i])
		}
		if tiles[i] != nil {
			processed = append(processed, tiles[i])
		}
	}
	if len(processed) == 0 {
		return nil, fmt.Errorf("%w: all %d images failed", ErrNoImages, len(paths))
	}

	if err := b.assemble(sheet, processed); err != nil {
		log.WithError(err).Error("sheet assembly failed")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"width":   sheet.Image.Bounds().Dx(),
		"height":  sheet.Image.Bounds().Dy(),
		"skipped": len(sheet.Skipped),
	}).Info("impostor sheet built")
	return sheet, nil
}

func asImageError(err error, path string, index int) *ImageError {
	var ie *ImageError
	if !errors.As(err, &ie) {
		ie = &ImageError{Path: path, Stage: StageLoad, Err: err}
	}
	ie.Index = index
	if ie.Path == "" {
		ie.Path = path
	}
	return ie
}
