package styles

import (
	"github.com/alecthomas/chroma/v2"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
)

func init() {
	// Register the vigil syntax themes used for metadata payloads
	chromastyles.Register(VigilTheme)
	chromastyles.Register(VigilLightTheme)
}

// ChromaStyle maps a config theme name to a registered chroma style.
func ChromaStyle(theme string) string {
	if theme == "light" {
		return "vigil-light"
	}
	return "vigil"
}

// VigilTheme is a dark theme tuned for JSON metadata readability
var VigilTheme = chroma.MustNewStyle("vigil", chroma.StyleEntries{
	chroma.Background: "#eaeaea",
	chroma.Error:      "#ff5555 bold",

	// Keys: "driverId", "speed_kmph" - Green
	chroma.NameTag:       "#50fa7b",
	chroma.NameAttribute: "#50fa7b",

	// String values: "DRV-001" - Yellow/Gold
	chroma.String:       "#f1fa8c",
	chroma.StringEscape: "#ffb86c",
	chroma.StringDouble: "#f1fa8c",

	// Numbers: 95, 3.14 - Purple
	chroma.Number:        "#bd93f9",
	chroma.NumberFloat:   "#bd93f9",
	chroma.NumberInteger: "#bd93f9",

	// true, false, null - Cyan
	chroma.KeywordConstant: "#8be9fd",
	chroma.NameConstant:    "#8be9fd",

	// Punctuation: {}, [], :, , - Subtle
	chroma.Punctuation: "#f8f8f2",
	chroma.Operator:    "#f8f8f2",
})

// VigilLightTheme is a light theme variant
var VigilLightTheme = chroma.MustNewStyle("vigil-light", chroma.StyleEntries{
	chroma.Text:  "#383a42",
	chroma.Error: "#e45649 bold",

	chroma.NameTag:       "#a626a4",
	chroma.NameAttribute: "#a626a4",

	chroma.String:       "#50a14f",
	chroma.StringEscape: "#986801",
	chroma.StringDouble: "#50a14f",

	chroma.Number:        "#986801",
	chroma.NumberFloat:   "#986801",
	chroma.NumberInteger: "#986801",

	chroma.KeywordConstant: "#0184bc",
	chroma.NameConstant:    "#0184bc",

	chroma.Punctuation: "#383a42",
	chroma.Operator:    "#383a42",
})
