// Package consensus rebuilds contigs from laid-out fragments: a column
// pileup voted to a majority base, alternative-splicing branch detection,
// and the merge of roots that describe the same region.
package consensus

import (
	"fmt"
	"strings"
)

// Mode selects the alternative-splicing check.
type Mode int

const (
	// None disables branch detection.
	None Mode = iota
	// TypeI flags windows with many non-overlapping fragment pairs.
	TypeI
	// TypeII flags windows much denser than average.
	TypeII
)

func (m Mode) String() string {
	switch m {
	case None:
		return "none"
	case TypeI:
		return "type-i"
	case TypeII:
		return "type-ii"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode reads a mode name as written in configuration.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "0":
		return None, nil
	case "type-i", "typei", "type1", "1":
		return TypeI, nil
	case "type-ii", "typeii", "type2", "2":
		return TypeII, nil
	}
	return None, fmt.Errorf("unknown alternative splicing mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Params tunes reconstruction.
type Params struct {
	Mode Mode `json:"mode"`
	// Window is the coordinate width of an alternative-splicing window.
	Window int `json:"window"`
	// TypeIFactor scales the squared fragment count of a window into the
	// number of non-overlapping pairs that marks a branch.
	TypeIFactor float64 `json:"type_i_factor"`
	// TypeIIFactor scales the mean window population into the density that
	// marks a branch.
	TypeIIFactor float64 `json:"type_ii_factor"`
	// Consecutive requires two qualifying windows in a row for TypeII.
	Consecutive bool `json:"consecutive"`
	// Slack widens the consensus region a fragment is aligned against.
	Slack int `json:"slack"`
	// Parallel reconstructs roots concurrently.
	Parallel bool `json:"parallel"`
}

// DefaultParams returns the standard reconstruction settings.
func DefaultParams() Params {
	return Params{
		Mode:         None,
		Window:       150,
		TypeIFactor:  3.0 / 16.0,
		TypeIIFactor: 1.5,
		Consecutive:  true,
		Slack:        50,
		Parallel:     true,
	}
}

// Validate checks the parameters.
func (p Params) Validate() error {
	if p.Mode < None || p.Mode > TypeII {
		return fmt.Errorf("invalid alternative splicing mode %d", int(p.Mode))
	}
	if p.Mode != None && p.Window <= 0 {
		return fmt.Errorf("alternative splicing window must be positive, got %d", p.Window)
	}
	if p.TypeIFactor < 0 || p.TypeIIFactor < 0 {
		return fmt.Errorf("alternative splicing factors must not be negative")
	}
	if p.Slack < 0 {
		return fmt.Errorf("alignment slack must not be negative, got %d", p.Slack)
	}
	return nil
}
