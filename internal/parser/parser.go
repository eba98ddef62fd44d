package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/courtplan/courtplan/internal/geo"
	"github.com/courtplan/courtplan/internal/interaction"
	"github.com/courtplan/courtplan/internal/util"
	"github.com/courtplan/courtplan/pkg/core"
)

var (
	// ErrInvalidCoordinates is returned for coordinates that are not finite numbers.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrArgCount is returned when a command carries too few or too many args.
	ErrArgCount = errors.New("wrong number of arguments")
)

// parseIntFromFloat parses a string that may be an integer ("3") or float ("3.0") into int64.
// Script generators often serialize every number as a float.
func parseIntFromFloat(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("parseIntFromFloat: %q is not a valid int64", s)
	}
	return int64(f), nil
}

// parseFinite parses a coordinate, rejecting NaN and infinities.
func parseFinite(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCoordinates, s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCoordinates, s)
	}
	return f, nil
}

func argCount(args []string, lo, hi int) error {
	if len(args) < lo || len(args) > hi {
		return fmt.Errorf("%w: got %d, want %d..%d", ErrArgCount, len(args), lo, hi)
	}
	return nil
}

// Parser provides pure []string -> typed event conversion.
// It has zero external dependencies beyond a logger.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new parser with only a logger dependency
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: logger}
}

// Clean trims quotes from every arg and unescapes doubled quotes, in place.
func (p *Parser) Clean(args []string) []string {
	for i, v := range args {
		args[i] = util.Unquote(v)
	}
	return args
}

// ParseViewport parses `width height`.
func (p *Parser) ParseViewport(args []string) (geo.Viewport, error) {
	if err := argCount(args, 2, 2); err != nil {
		return geo.Viewport{}, err
	}
	w, err := parseFinite(args[0])
	if err != nil {
		return geo.Viewport{}, fmt.Errorf("error parsing width: %w", err)
	}
	h, err := parseFinite(args[1])
	if err != nil {
		return geo.Viewport{}, fmt.Errorf("error parsing height: %w", err)
	}
	vp := geo.Viewport{Width: w, Height: h}
	if err := vp.Validate(); err != nil {
		return geo.Viewport{}, err
	}
	return vp, nil
}

// ParseKey parses `rotation phase mode`, or a single joined storage key.
func (p *Parser) ParseKey(args []string) (core.Key, error) {
	if len(args) == 1 {
		return core.ParseKey(args[0])
	}
	if err := argCount(args, 3, 3); err != nil {
		return core.Key{}, err
	}
	rot, err := parseIntFromFloat(args[0])
	if err != nil {
		return core.Key{}, fmt.Errorf("%w: rotation %q", core.ErrInvalidKey, args[0])
	}
	k := core.Key{
		Rotation: int(rot),
		Phase:    args[1],
		Mode:     core.Mode(strings.ToLower(args[2])),
	}
	if err := k.Validate(); err != nil {
		return core.Key{}, err
	}
	return k, nil
}

// ParsePointer parses `x y [playerId] [bench]`.
func (p *Parser) ParsePointer(args []string) (interaction.Pointer, error) {
	var ptr interaction.Pointer
	if err := argCount(args, 2, 4); err != nil {
		return ptr, err
	}

	x, err := parseFinite(args[0])
	if err != nil {
		return ptr, fmt.Errorf("error parsing x: %w", err)
	}
	y, err := parseFinite(args[1])
	if err != nil {
		return ptr, fmt.Errorf("error parsing y: %w", err)
	}
	ptr.X, ptr.Y = x, y

	if len(args) > 2 {
		ptr.PlayerID = args[2]
	}
	if len(args) > 3 {
		if !strings.EqualFold(args[3], "bench") {
			return ptr, fmt.Errorf("unexpected pointer flag %q", args[3])
		}
		ptr.Bench = true
	}
	return ptr, nil
}

// ParseKeyEvent parses `key [ctrl] [shift] [meta] [input]`. Unknown modifiers
// are logged and ignored.
func (p *Parser) ParseKeyEvent(args []string) (interaction.KeyEvent, error) {
	var e interaction.KeyEvent
	if len(args) == 0 {
		return e, fmt.Errorf("%w: missing key", ErrArgCount)
	}
	e.Key = args[0]
	for _, mod := range args[1:] {
		switch strings.ToLower(mod) {
		case "ctrl":
			e.Ctrl = true
		case "shift":
			e.Shift = true
		case "meta", "cmd":
			e.Meta = true
		case "input":
			e.InInput = true
		default:
			p.logger.Warn("Ignoring unknown key modifier", "modifier", mod, "key", e.Key)
		}
	}
	return e, nil
}

// ParseSubstitution parses `benchId courtId`.
func (p *Parser) ParseSubstitution(args []string) (benchID, courtID string, err error) {
	if err := argCount(args, 2, 2); err != nil {
		return "", "", err
	}
	if args[0] == "" || args[1] == "" {
		return "", "", errors.New("player ids must not be empty")
	}
	return args[0], args[1], nil
}

// ParseLog parses `level text...`, joining the remaining args.
func (p *Parser) ParseLog(args []string) (level, text string, err error) {
	if len(args) < 2 {
		return "", "", fmt.Errorf("%w: log needs a level and a message", ErrArgCount)
	}
	return args[0], strings.Join(args[1:], " "), nil
}
