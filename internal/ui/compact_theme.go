package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// Ren Flow accent colours
var (
	accentColor  = color.NRGBA{R: 0x60, G: 0x7D, B: 0xE0, A: 0xFF}
	successColor = color.NRGBA{R: 0x3B, G: 0xA5, B: 0x5D, A: 0xFF}
	errorColor   = color.NRGBA{R: 0xD9, G: 0x48, B: 0x48, A: 0xFF}
)

// CompactTheme tightens spacing for the small status window and applies the accent colour
type CompactTheme struct {
	base fyne.Theme
}

// NewCompactTheme creates a new compact theme on top of the default one
func NewCompactTheme() fyne.Theme {
	return &CompactTheme{base: theme.DefaultTheme()}
}

func (t *CompactTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary, theme.ColorNameFocus:
		return accentColor
	case theme.ColorNameSuccess:
		return successColor
	case theme.ColorNameError:
		return errorColor
	}
	return t.base.Color(name, variant)
}

func (t *CompactTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

func (t *CompactTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

func (t *CompactTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 3
	case theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameLineSpacing:
		return 2
	case theme.SizeNameText:
		return 13
	case theme.SizeNameHeadingText:
		return 16
	case theme.SizeNameInputRadius:
		return 3
	}
	return t.base.Size(name)
}
