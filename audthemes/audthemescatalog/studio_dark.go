package audthemescatalog

import "oss.audgraph.dev/aud/audthemes"

var StudioDark = audthemes.Theme{
	ID:   1,
	Name: "Studio Dark",
	Colors: audthemes.ColorPalette{
		Neutrals: StudioDarkNeutral,

		Source:      "#F9E2AF",
		Processing:  "#89B4FA",
		Destination: "#F38BA8",
		Analysis:    "#94E2D5",

		Param: "#CBA6F7",
		Wire:  "#6C7086",
	},
}

// Dark themes invert the neutral ramp: N1 stays the ink color, so here it is
// light, and N7 stays the canvas color, so here it is near-black.
var StudioDarkNeutral = audthemes.Neutral{
	N1: "#F4F6FA",
	N2: "#B8BCCA",
	N3: "#9499AB",
	N4: "#585B70",
	N5: "#45475A",
	N6: "#313244",
	N7: "#1E1E2E",
}
