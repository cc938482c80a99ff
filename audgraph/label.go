package audgraph

import (
	"fmt"
	"strings"
)

// Audio node types conventionally end in "Node" ("GainNode",
// "OscillatorNode"); display labels drop the suffix.
const nodeTypeSuffix = "Node"

// labelGenerator numbers node labels within one graph. The counter is shared
// across all node types and never reused or reset, so labels are unique for
// the graph's lifetime even after nodes are removed.
type labelGenerator struct {
	counter int
}

// generate strips a trailing "Node" from nodeType when present
// (case-sensitive, at most once) and appends the next counter value:
// "GainNode" becomes "Gain 1", then "Gain 2". A type that is exactly "Node"
// yields " 1"; the empty prefix keeps the format uniform and the label
// unique.
func (lg *labelGenerator) generate(nodeType string) string {
	lg.counter++
	return fmt.Sprintf("%s %d", strings.TrimSuffix(nodeType, nodeTypeSuffix), lg.counter)
}
