package audgraph

import "fmt"

// Port ids are a wire contract: trace events and rendering code outside this
// module reconstruct them textually, so the formats must never change.

func InputPortID(nodeID string, index int) string {
	return fmt.Sprintf("%s-input-%d", nodeID, index)
}

func OutputPortID(nodeID string, index int) string {
	return fmt.Sprintf("%s-output-%d", nodeID, index)
}

func ParamPortID(nodeID, paramID string) string {
	return fmt.Sprintf("%s-param-%s", nodeID, paramID)
}

// WireID identifies the connection from one port to another.
func WireID(srcPortID, dstPortID string) string {
	return fmt.Sprintf("%s->%s", srcPortID, dstPortID)
}
