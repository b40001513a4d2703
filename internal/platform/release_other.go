//go:build !windows && !darwin

package platform

import "context"

func osRelease(ctx context.Context) string {
	return ""
}
