package pathfinding

// Settings describes the character being routed.
type Settings struct {
	MaxJumpHeight int `json:"max_jump_height" yaml:"max_jump_height"`

	// AirStride is the amount of vertical motion in the air before the
	// character can drift horizontally again.
	AirStride int `json:"air_stride" yaml:"air_stride"`

	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`

	LedgeHang bool `json:"ledge_hang" yaml:"ledge_hang"`
}

// DefaultSettings is used when a request carries no character parameters:
// a 1x1 character that cannot jump.
func DefaultSettings() Settings {
	return Settings{
		MaxJumpHeight: 0,
		AirStride:     1,
		Width:         1,
		Height:        1,
	}
}

// Normalize takes absolute values and clamps AirStride, Width and Height to
// at least 1. Every search entry point expects normalized settings.
func (s Settings) Normalize() Settings {
	s.MaxJumpHeight = abs(s.MaxJumpHeight)
	s.AirStride = max(abs(s.AirStride), 1)
	s.Width = max(abs(s.Width), 1)
	s.Height = max(abs(s.Height), 1)
	return s
}

// JumpLimit returns the largest jump counter an airborne state can reach
// while still ascending, including the detours needed for air strides.
// Zero when the character cannot jump.
func (s Settings) JumpLimit() int {
	if s.MaxJumpHeight == 0 {
		return 0
	}

	detours := 0
	if s.MaxJumpHeight > s.AirStride && s.AirStride > 1 {
		detours = 1 + (s.MaxJumpHeight-s.AirStride)/(s.AirStride-1)
	}

	return s.MaxJumpHeight + detours + 1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
