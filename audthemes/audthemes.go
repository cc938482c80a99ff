// audthemes defines themes to make aud diagrams pretty
// Color codes: darkest (N1) -> lightest (N7)
package audthemes

type Theme struct {
	ID     int64        `json:"id"`
	Name   string       `json:"name"`
	Colors ColorPalette `json:"colors"`

	SpecialRules SpecialRules `json:"specialRules,omitempty"`
}

type Neutral struct {
	N1 string `json:"n1"`
	N2 string `json:"n2"`
	N3 string `json:"n3"`
	N4 string `json:"n4"`
	N5 string `json:"n5"`
	N6 string `json:"n6"`
	N7 string `json:"n7"`
}

type ColorPalette struct {
	Neutrals Neutral `json:"neutrals"`

	// Category fills, one per node category
	Source      string `json:"source"`
	Processing  string `json:"processing"`
	Destination string `json:"destination"`
	Analysis    string `json:"analysis"`

	// Accents
	Param string `json:"param"`
	Wire  string `json:"wire"`
}

type SpecialRules struct {
	Mono           bool `json:"mono"`
	NoCornerRadius bool `json:"noCornerRadius"`
}

var CoolNeutral = Neutral{
	N1: "#0A0F25",
	N2: "#676C7E",
	N3: "#9499AB",
	N4: "#CFD2DD",
	N5: "#F0F3F9",
	N6: "#EEF1F8",
	N7: "#FFFFFF",
}

var WarmNeutral = Neutral{
	N1: "#170206",
	N2: "#535152",
	N3: "#787777",
	N4: "#CCCACA",
	N5: "#DFDCDC",
	N6: "#ECEBEB",
	N7: "#FFFFFF",
}
