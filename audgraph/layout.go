package audgraph

import (
	"oss.audgraph.dev/aud/audtarget"
	"oss.audgraph.dev/aud/lib/go2"
)

// Pure port-geometry functions. No shared state: each is deterministic in
// its arguments, and audtarget owns the pitch and padding constants.

// InputSectionHeight is the height of the band input ports occupy at the top
// of the node. Zero inputs still reserve one row so the section never
// collapses under the label.
func InputSectionHeight(numInputs int) float64 {
	return audtarget.InputPortPitch*float64(go2.Max(1, numInputs)) +
		audtarget.PortSectionTopPadding
}

// OutputSectionHeight is the minimum height the output ports need.
func OutputSectionHeight(numOutputs int) float64 {
	return audtarget.OutputPortPitch * float64(numOutputs)
}

// InputPortPosition stacks input ports down the node's left edge at a fixed
// pitch, below the top padding.
func InputPortPosition(index int) (x, y float64) {
	return 0, audtarget.PortSectionTopPadding + float64(index)*audtarget.InputPortPitch
}

// OutputPortPosition spaces numOutputs ports evenly down the node's right
// edge: port i sits at height*(i+1)/(numOutputs+1), which keeps every port
// strictly inside (0, height).
func OutputPortPosition(index int, width, height float64, numOutputs int) (x, y float64) {
	return width, height * float64(index+1) / float64(numOutputs+1)
}

// ParamPortPosition places the next param port on the left edge directly
// below the input section, after numExistingParams earlier params.
func ParamPortPosition(numExistingParams int, inputSectionHeight float64) (x, y float64) {
	return 0, inputSectionHeight + float64(numExistingParams)*audtarget.ParamPortPitch
}
