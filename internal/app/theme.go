package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// BrickScoutTheme provides a custom theme for the application.
type BrickScoutTheme struct{}

var _ fyne.Theme = (*BrickScoutTheme)(nil)

func (t *BrickScoutTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return color.NRGBA{R: 0xB4, G: 0x00, B: 0x00, A: 0xFF} // Brick red
	case theme.ColorNameSelection:
		return color.NRGBA{R: 0xFA, G: 0xC8, B: 0x0A, A: 0x80} // Brick yellow
	case theme.ColorNameSuccess:
		return color.NRGBA{R: 0x00, G: 0x85, B: 0x2B, A: 0xFF} // Brick green for detected rows
	case theme.ColorNameScrollBar:
		return color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF} // Visible gray scrollbar
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *BrickScoutTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *BrickScoutTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *BrickScoutTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameScrollBar:
		return 16 // Wider scrollbar for easier grabbing
	case theme.SizeNameScrollBarSmall:
		return 12
	default:
		return theme.DefaultTheme().Size(name)
	}
}
