//go:build darwin

package platform

import (
	"context"
	"os/exec"
	"strings"
)

func osRelease(ctx context.Context) string {
	output, err := exec.CommandContext(ctx, "sw_vers", "-productVersion").Output()
	if err != nil {
		return ""
	}
	return "macOS " + strings.TrimSpace(string(output))
}
