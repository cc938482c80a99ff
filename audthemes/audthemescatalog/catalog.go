package audthemescatalog

import (
	"fmt"
	"strings"

	"oss.audgraph.dev/aud/audthemes"
)

var Catalog = []audthemes.Theme{
	StudioLight,
	StudioDark,
	NeutralGrey,
	Terminal,
}

func Find(id int64) audthemes.Theme {
	for _, theme := range Catalog {
		if theme.ID == id {
			return theme
		}
	}

	return audthemes.Theme{}
}

func CLIString() string {
	var s strings.Builder
	for _, t := range Catalog {
		s.WriteString(fmt.Sprintf("- %s: %d\n", t.Name, t.ID))
	}
	return s.String()
}
