package parser

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/courtplan/courtplan/internal/geo"
	"github.com/courtplan/courtplan/internal/interaction"
	"github.com/courtplan/courtplan/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser() *Parser {
	return NewParser(slog.Default())
}

func TestParseIntFromFloat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"integer", "3", 3, false},
		{"float", "3.0", 3, false},
		{"negative", "-2", -2, false},
		{"fractional rejects", "2.5", 0, true},
		{"empty", "", 0, true},
		{"text", "three", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIntFromFloat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClean(t *testing.T) {
	p := newTestParser()
	args := p.Clean([]string{`"serve ""short"""`, "mb1"})
	assert.Equal(t, []string{`serve "short"`, "mb1"}, args)
}

func TestParseViewport(t *testing.T) {
	p := newTestParser()

	vp, err := p.ParseViewport([]string{"640", "480.5"})
	require.NoError(t, err)
	assert.Equal(t, geo.Viewport{Width: 640, Height: 480.5}, vp)

	_, err = p.ParseViewport([]string{"0", "480"})
	assert.ErrorIs(t, err, geo.ErrInvalidViewport)

	_, err = p.ParseViewport([]string{"NaN", "480"})
	assert.ErrorIs(t, err, ErrInvalidCoordinates)

	_, err = p.ParseViewport([]string{"640"})
	assert.ErrorIs(t, err, ErrArgCount)
}

func TestParseKey(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		name    string
		args    []string
		want    core.Key
		wantErr bool
	}{
		{"three parts", []string{"3", "receive1", "offense"}, core.Key{Rotation: 3, Phase: "receive1", Mode: core.ModeOffense}, false},
		{"float rotation", []string{"6.0", "base", "defense"}, core.Key{Rotation: 6, Phase: "base", Mode: core.ModeDefense}, false},
		{"upper mode", []string{"1", "serve", "DEFENSE"}, core.Key{Rotation: 1, Phase: "serve", Mode: core.ModeDefense}, false},
		{"joined key", []string{"2_attack_offense"}, core.Key{Rotation: 2, Phase: "attack", Mode: core.ModeOffense}, false},
		{"rotation out of range", []string{"7", "base", "defense"}, core.Key{}, true},
		{"phase of other mode", []string{"1", "base", "offense"}, core.Key{}, true},
		{"bad rotation", []string{"x", "base", "defense"}, core.Key{}, true},
		{"two args", []string{"1", "base"}, core.Key{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ParseKey(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseKey_InvalidKeySentinel(t *testing.T) {
	_, err := newTestParser().ParseKey([]string{"x", "base", "defense"})
	assert.ErrorIs(t, err, core.ErrInvalidKey)
}

func TestParsePointer(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		name    string
		args    []string
		want    interaction.Pointer
		wantErr error
	}{
		{"coordinates", []string{"100", "250.5"}, interaction.Pointer{X: 100, Y: 250.5}, nil},
		{"player", []string{"10", "20", "mb1"}, interaction.Pointer{X: 10, Y: 20, PlayerID: "mb1"}, nil},
		{"bench", []string{"10", "20", "lib", "bench"}, interaction.Pointer{X: 10, Y: 20, PlayerID: "lib", Bench: true}, nil},
		{"bench upper", []string{"10", "20", "lib", "BENCH"}, interaction.Pointer{X: 10, Y: 20, PlayerID: "lib", Bench: true}, nil},
		{"negative allowed", []string{"-5", "-5"}, interaction.Pointer{X: -5, Y: -5}, nil},
		{"nan", []string{"NaN", "1"}, interaction.Pointer{}, ErrInvalidCoordinates},
		{"inf", []string{"1", "+Inf"}, interaction.Pointer{}, ErrInvalidCoordinates},
		{"garbage", []string{"1", "y"}, interaction.Pointer{}, ErrInvalidCoordinates},
		{"too few", []string{"1"}, interaction.Pointer{}, ErrArgCount},
		{"too many", []string{"1", "2", "a", "bench", "x"}, interaction.Pointer{}, ErrArgCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ParsePointer(tt.args)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePointer_UnknownFlag(t *testing.T) {
	_, err := newTestParser().ParsePointer([]string{"1", "2", "mb1", "court"})
	assert.Error(t, err)
}

func TestParseKeyEvent(t *testing.T) {
	var buf bytes.Buffer
	p := NewParser(slog.New(slog.NewTextHandler(&buf, nil)))

	e, err := p.ParseKeyEvent([]string{"z", "ctrl", "shift"})
	require.NoError(t, err)
	assert.Equal(t, interaction.KeyEvent{Key: "z", Ctrl: true, Shift: true}, e)

	e, err = p.ParseKeyEvent([]string{"Delete", "input"})
	require.NoError(t, err)
	assert.Equal(t, interaction.KeyEvent{Key: "Delete", InInput: true}, e)

	e, err = p.ParseKeyEvent([]string{"y", "cmd", "hyper"})
	require.NoError(t, err)
	assert.Equal(t, interaction.KeyEvent{Key: "y", Meta: true}, e)
	assert.Contains(t, buf.String(), "hyper")

	_, err = p.ParseKeyEvent(nil)
	assert.ErrorIs(t, err, ErrArgCount)
}

func TestParseSubstitution(t *testing.T) {
	p := newTestParser()

	bench, court, err := p.ParseSubstitution([]string{"lib", "mb2"})
	require.NoError(t, err)
	assert.Equal(t, "lib", bench)
	assert.Equal(t, "mb2", court)

	_, _, err = p.ParseSubstitution([]string{"lib"})
	assert.ErrorIs(t, err, ErrArgCount)

	_, _, err = p.ParseSubstitution([]string{"", "mb2"})
	assert.Error(t, err)
}

func TestParseLog(t *testing.T) {
	p := newTestParser()

	level, text, err := p.ParseLog([]string{"warn", "rotation", "three", "drill"})
	require.NoError(t, err)
	assert.Equal(t, "warn", level)
	assert.Equal(t, "rotation three drill", text)

	_, _, err = p.ParseLog([]string{"info"})
	assert.ErrorIs(t, err, ErrArgCount)
}
