// Package icon renders UI symbols in the variant selected by icons.variant.
//
// Icons can be displayed as emoji, nerd-font glyphs, plain ASCII
// or Unicode squares depending on user preference.
package icon

import (
	"github.com/spf13/viper"
	"github.com/tacet-cli/tacet/key"
)

const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	squares = "squares"
)

// AvailableVariants returns a slice of all registered icon style identifiers.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain, squares}
}

// Icon identifies a symbol in the registry.
type Icon int

const (
	Success Icon = iota + 1
	Fail
	Warn
	Progress
	Device
	Pause
	Play
	Video
)

type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	squares string
}

func (d iconDef) get(variant string) string {
	switch variant {
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

var icons = map[Icon]iconDef{
	Success:  {emoji: "🎉", nerd: "\uf00c", plain: "✓", squares: "🟩"},
	Fail:     {emoji: "💀", nerd: "\uf00d", plain: "✗", squares: "🟥"},
	Warn:     {emoji: "⚠️", nerd: "\uf071", plain: "!", squares: "🟨"},
	Progress: {emoji: "⏳", nerd: "\uf254", plain: "…", squares: "🟦"},
	Device:   {emoji: "🔈", nerd: "\uf028", plain: "-", squares: "▪"},
	Pause:    {emoji: "⏸️", nerd: "\uf04c", plain: "||", squares: "⏸"},
	Play:     {emoji: "▶️", nerd: "\uf04b", plain: ">", squares: "▶"},
	Video:    {emoji: "🎬", nerd: "\uf03d", plain: "#", squares: "🎞"},
}

// Get returns the rendered string for i in the configured variant.
func Get(i Icon) string {
	return icons[i].get(viper.GetString(key.IconsVariant))
}
