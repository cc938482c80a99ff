package audthemescatalog

import "oss.audgraph.dev/aud/audthemes"

var StudioLight = audthemes.Theme{
	ID:   0,
	Name: "Studio Light",
	Colors: audthemes.ColorPalette{
		Neutrals: audthemes.CoolNeutral,

		Source:      "#FBD144",
		Processing:  "#87BFF3",
		Destination: "#F78DA7",
		Analysis:    "#45BBA5",

		Param: "#7639C5",
		Wire:  "#676C7E",
	},
}
