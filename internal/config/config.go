// Package config holds the settings that drive frame location, background
// removal and sheet assembly.
//
// A Config is a plain value. It is built once from defaults, an optional
// .env file, IMPOSTOR_* environment variables and command-line flags, then
// validated and passed by value into every component. Nothing in the
// processing packages reads global state.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/ironsheep/impostor-maker/internal/chromakey"
	"github.com/ironsheep/impostor-maker/internal/detection"
	"github.com/ironsheep/impostor-maker/internal/imaging"
)

// Sheet layout forms.
const (
	FormStar  = "STAR"
	FormTStar = "TSTAR"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "IMPOSTOR_"

// Config is the complete set of tunables.
type Config struct {
	// Frame location, RGB.
	FrameRange        imaging.ColorRange `json:"frame_range"`
	Thickness         int                `json:"thickness" validate:"gt=0"`
	FrameMaxDeviation float64            `json:"frame_max_deviation" validate:"gte=0"`

	// Chroma estimation and masking, HSV.
	ChromaRange        imaging.ColorRange  `json:"chroma_range"`
	ChromaMaxDeviation float64             `json:"chroma_max_deviation" validate:"gte=0"`
	ChromaMaxInset     int                 `json:"chroma_max_inset" validate:"gte=0"`
	ChromaTolerance    imaging.ColorTriple `json:"chroma_tolerance"`

	// Edge tinge correction, HSV.
	TingeRange imaging.ColorRange `json:"tinge_range"`

	MaxCleanDist   int     `json:"max_clean_dist" validate:"gte=0"`
	EdgeBlurRadius float64 `json:"edge_blur_radius" validate:"gte=0"`

	// Sheet assembly.
	FrameWidth    float64 `json:"frame_width" validate:"gt=0"`
	FrameHeight   float64 `json:"frame_height" validate:"gt=0"`
	Rez           int     `json:"rez" validate:"gt=0,lte=8192"`
	Faces         int     `json:"faces" validate:"gt=0"`
	Form          string  `json:"form" validate:"oneof=STAR TSTAR"`
	SizeTolerance int     `json:"size_tolerance" validate:"gte=0"`
	SkipFailed    bool    `json:"skip_failed"`
	PowerOfTwo    bool    `json:"power_of_two"`
	DebugDir      string  `json:"debug_dir,omitempty"`
	Verbose       bool    `json:"verbose"`

	// Debug overlay outline colors, "#RRGGBB" or "#RRGGBBAA".
	DebugOuterColor string `json:"debug_outer_color" validate:"hexcolor"`
	DebugInnerColor string `json:"debug_inner_color" validate:"hexcolor"`

	// Logging.
	LogLevel  string `json:"log_level" validate:"oneof=trace debug info warn warning error"`
	LogFormat string `json:"log_format" validate:"oneof=text json"`
	LogFile   string `json:"log_file,omitempty"`
}

// Default returns the stock configuration: a 10 px red frame around a
// green screen, a 6 m x 3 m billboard and eight 64 px faces.
func Default() Config {
	return Config{
		FrameRange:        imaging.MustColorRange(imaging.ColorTriple{128, 0, 0}, imaging.ColorTriple{255, 63, 63}),
		Thickness:         10,
		FrameMaxDeviation: 6.0,

		ChromaRange:        imaging.MustColorRange(imaging.ColorTriple{100, 80, 70}, imaging.ColorTriple{185, 255, 255}),
		ChromaMaxDeviation: 6.0,
		ChromaMaxInset:     20,
		ChromaTolerance:    imaging.ColorTriple{35, 110, 110},

		TingeRange: imaging.MustColorRange(imaging.ColorTriple{60, 0, 0}, imaging.ColorTriple{130, 255, 255}),

		MaxCleanDist:   4,
		EdgeBlurRadius: 1.5,

		FrameWidth:    6.0,
		FrameHeight:   3.0,
		Rez:           64,
		Faces:         8,
		Form:          FormStar,
		SizeTolerance: 2,
		PowerOfTwo:    true,

		DebugOuterColor: "#FFFF00",
		DebugInnerColor: "#00FFFF",

		LogLevel:  "info",
		LogFormat: "text",
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and the ordering of every color range.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	ranges := []struct {
		name string
		r    imaging.ColorRange
	}{
		{"frame range", c.FrameRange},
		{"chroma range", c.ChromaRange},
		{"tinge range", c.TingeRange},
	}
	for _, nr := range ranges {
		if err := nr.r.Validate(); err != nil {
			return fmt.Errorf("invalid config: %s: %w", nr.name, err)
		}
	}
	for i, v := range c.ChromaTolerance {
		if v < 0 {
			return fmt.Errorf("invalid config: chroma tolerance channel %d is negative", i)
		}
	}
	return nil
}

// AdaptiveChroma reports whether the mask range is derived from the
// measured background color rather than taken from ChromaRange.
func (c Config) AdaptiveChroma() bool {
	return c.ChromaTolerance != imaging.ColorTriple{}
}

// TileHeight returns the per-face pixel height implied by Rez and the
// billboard aspect ratio.
func (c Config) TileHeight() int {
	h := int(float64(c.Rez)*c.FrameHeight/c.FrameWidth + 0.5)
	if h < 1 {
		h = 1
	}
	return h
}

// FrameParams returns the frame locator settings.
func (c Config) FrameParams() detection.FrameParams {
	return detection.FrameParams{
		Range:        c.FrameRange,
		Thickness:    c.Thickness,
		MaxDeviation: c.FrameMaxDeviation,
	}
}

// EstimateParams returns the chroma estimator settings.
func (c Config) EstimateParams() chromakey.EstimateParams {
	return chromakey.EstimateParams{
		Expected:     c.ChromaRange,
		MaxDeviation: c.ChromaMaxDeviation,
		MaxInset:     c.ChromaMaxInset,
	}
}

// RemoveParams returns the background removal settings for a mask range.
func (c Config) RemoveParams(chroma imaging.ColorRange) chromakey.Params {
	return chromakey.Params{
		Chroma:         chroma,
		Tinge:          c.TingeRange,
		MaxCleanDist:   c.MaxCleanDist,
		EdgeBlurRadius: c.EdgeBlurRadius,
	}
}

// FromEnv returns Default overlaid with environment overrides.
//
// The named .env files (or ".env" when none are given) are loaded first if
// they exist; variables already set in the process environment win. A
// missing file is not an error.
func FromEnv(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := Default()
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overlays IMPOSTOR_* variables returned by lookup onto c.
//
// Scalars use their usual textual form. Color triples are three
// comma-separated numbers and color ranges are two triples separated by a
// colon, e.g. IMPOSTOR_CHROMA_RANGE=100,80,70:185,255,255.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	ints := map[string]*int{
		"THICKNESS":        &c.Thickness,
		"CHROMA_MAX_INSET": &c.ChromaMaxInset,
		"MAX_CLEAN_DIST":   &c.MaxCleanDist,
		"REZ":              &c.Rez,
		"FACES":            &c.Faces,
		"SIZE_TOLERANCE":   &c.SizeTolerance,
	}
	floats := map[string]*float64{
		"FRAME_MAX_DEVIATION":  &c.FrameMaxDeviation,
		"CHROMA_MAX_DEVIATION": &c.ChromaMaxDeviation,
		"EDGE_BLUR_RADIUS":     &c.EdgeBlurRadius,
		"FRAME_WIDTH":          &c.FrameWidth,
		"FRAME_HEIGHT":         &c.FrameHeight,
	}
	bools := map[string]*bool{
		"SKIP_FAILED":  &c.SkipFailed,
		"POWER_OF_TWO": &c.PowerOfTwo,
		"VERBOSE":      &c.Verbose,
	}
	strs := map[string]*string{
		"FORM":              &c.Form,
		"DEBUG_DIR":         &c.DebugDir,
		"DEBUG_OUTER_COLOR": &c.DebugOuterColor,
		"DEBUG_INNER_COLOR": &c.DebugInnerColor,
		"LOG_LEVEL":         &c.LogLevel,
		"LOG_FORMAT":        &c.LogFormat,
		"LOG_FILE":          &c.LogFile,
	}
	ranges := map[string]*imaging.ColorRange{
		"FRAME_RANGE":  &c.FrameRange,
		"CHROMA_RANGE": &c.ChromaRange,
		"TINGE_RANGE":  &c.TingeRange,
	}
	triples := map[string]*imaging.ColorTriple{
		"CHROMA_TOLERANCE": &c.ChromaTolerance,
	}

	for name, dst := range ints {
		if v, ok := lookup(EnvPrefix + name); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = n
		}
	}
	for name, dst := range floats {
		if v, ok := lookup(EnvPrefix + name); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = f
		}
	}
	for name, dst := range bools {
		if v, ok := lookup(EnvPrefix + name); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = b
		}
	}
	for name, dst := range strs {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	for name, dst := range ranges {
		if v, ok := lookup(EnvPrefix + name); ok {
			r, err := ParseColorRange(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = r
		}
	}
	for name, dst := range triples {
		if v, ok := lookup(EnvPrefix + name); ok {
			t, err := ParseColorTriple(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = t
		}
	}

	if c.Form != "" {
		c.Form = strings.ToUpper(c.Form)
	}
	return nil
}

// ParseColorTriple parses "a,b,c".
func ParseColorTriple(s string) (imaging.ColorTriple, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return imaging.ColorTriple{}, fmt.Errorf("color %q: want 3 comma-separated values", s)
	}
	var t imaging.ColorTriple
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return imaging.ColorTriple{}, fmt.Errorf("color %q: %w", s, err)
		}
		t[i] = v
	}
	return t, nil
}

// ParseColorRange parses "a,b,c:d,e,f" into an inclusive range.
func ParseColorRange(s string) (imaging.ColorRange, error) {
	lo, hi, ok := strings.Cut(s, ":")
	if !ok {
		return imaging.ColorRange{}, fmt.Errorf("color range %q: want low:high", s)
	}
	low, err := ParseColorTriple(lo)
	if err != nil {
		return imaging.ColorRange{}, err
	}
	high, err := ParseColorTriple(hi)
	if err != nil {
		return imaging.ColorRange{}, err
	}
	return imaging.NewColorRange(low, high)
}
