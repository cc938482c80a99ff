package audthemescatalog

import "oss.audgraph.dev/aud/audthemes"

var NeutralGrey = audthemes.Theme{
	ID:   2,
	Name: "Neutral Grey",
	Colors: audthemes.ColorPalette{
		Neutrals: audthemes.WarmNeutral,

		Source:      "#DFDCDC",
		Processing:  "#ECEBEB",
		Destination: "#CCCACA",
		Analysis:    "#DFDCDC",

		Param: "#535152",
		Wire:  "#787777",
	},
}
