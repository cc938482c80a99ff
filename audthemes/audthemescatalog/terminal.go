package audthemescatalog

import "oss.audgraph.dev/aud/audthemes"

var Terminal = audthemes.Theme{
	ID:   3,
	Name: "Terminal",
	Colors: audthemes.ColorPalette{
		Neutrals: TerminalNeutral,

		Source:      "#7ACCBD",
		Processing:  "#5AA4DC",
		Destination: "#F1C759",
		Analysis:    "#45BBA5",

		Param: "#008566",
		Wire:  "#000410",
	},
	SpecialRules: audthemes.SpecialRules{
		Mono:           true,
		NoCornerRadius: true,
	},
}

var TerminalNeutral = audthemes.Neutral{
	N1: "#000410",
	N2: "#0000B8",
	N3: "#9499AB",
	N4: "#CFD2DD",
	N5: "#C3DEF3",
	N6: "#EEF1F8",
	N7: "#FFFFFF",
}
