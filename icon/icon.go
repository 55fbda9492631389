// Package icon renders status symbols in the variant chosen by the user.
//
// Icons can be displayed as emoji, nerd-font glyphs, plain ASCII
// or Unicode squares.
package icon

import (
	"github.com/clipshuffle/clipshuffle/key"
	"github.com/spf13/viper"
)

const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	squares = "squares"
)

// AvailableVariants returns all registered icon style identifiers.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain, squares}
}

// Icon identifies a symbol in the registry.
type Icon int

const (
	Success Icon = iota
	Fail
	Warn
	Progress
	Video
	Clock
	Pause
	Play
	Skip
)

type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	squares string
}

var icons = map[Icon]*iconDef{
	Success:  {emoji: "✅", nerd: "\uf00c", plain: "+", squares: "🟩"},
	Fail:     {emoji: "❌", nerd: "\uf00d", plain: "x", squares: "🟥"},
	Warn:     {emoji: "⚠️", nerd: "\uf071", plain: "!", squares: "🟨"},
	Progress: {emoji: "⏳", nerd: "\uf110", plain: "...", squares: "🟦"},
	Video:    {emoji: "🎞️", nerd: "\uf03d", plain: "*", squares: "🟪"},
	Clock:    {emoji: "⏱️", nerd: "\uf017", plain: "@", squares: "🟫"},
	Pause:    {emoji: "⏸️", nerd: "\uf04c", plain: "||", squares: "⬜"},
	Play:     {emoji: "▶️", nerd: "\uf04b", plain: ">", squares: "🟩"},
	Skip:     {emoji: "⏭️", nerd: "\uf051", plain: ">>", squares: "🟧"},
}

func (d *iconDef) get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	case squares:
		return d.squares
	default:
		return ""
	}
}

// Get returns the rendered string for an icon, or "" for an unknown variant.
func Get(i Icon) string {
	def, ok := icons[i]
	if !ok {
		return ""
	}
	return def.get()
}
