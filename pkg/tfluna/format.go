package tfluna

import (
	"fmt"
	"strings"
)

// FormatFrame renders a status and the raw data registers for diagnostics,
// e.g. "Status: READY Data: 2C 01 F4 01 C4 09"
func FormatFrame(status Status, raw RawFrame) string {
	var sb strings.Builder
	sb.WriteString("Status: ")
	sb.WriteString(status.String())
	sb.WriteString(" Data:")
	for _, b := range raw {
		fmt.Fprintf(&sb, " %02X", b)
	}
	return sb.String()
}
