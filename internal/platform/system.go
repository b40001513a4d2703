package platform

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Operating system constants
const (
	OSDarwin  = "darwin"
	OSWindows = "windows"
	OSLinux   = "linux"
)

// Platform names reported to the web UI
const (
	PlatformWin32  = "win32"
	PlatformDarwin = "darwin"
	PlatformLinux  = "linux"
)

// Command constants
const (
	OpenCommand    = "open"
	XDGOpenCommand = "xdg-open"
	CmdCommand     = "cmd"
	StartCommand   = "start"
	WindowsCmdFlag = "/c"
)

// ReleaseInfo describes the running operating system
type ReleaseInfo struct {
	Release string `json:"release"`
	Arch    string `json:"arch"`
}

// CommandResult is the outcome of RunCommand
type CommandResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Platform returns win32, darwin or linux; every other OS counts as linux
func Platform() string {
	return platformName(runtime.GOOS)
}

func platformName(goos string) string {
	switch goos {
	case OSWindows:
		return PlatformWin32
	case OSDarwin:
		return PlatformDarwin
	default:
		return PlatformLinux
	}
}

// Release returns a readable OS release and the CPU architecture.
// Release is empty where no version can be determined.
func Release(ctx context.Context) ReleaseInfo {
	return ReleaseInfo{
		Release: osRelease(ctx),
		Arch:    Arch(),
	}
}

// Arch returns the CPU architecture using the names common outside Go
func Arch() string {
	return archName(runtime.GOARCH)
}

func archName(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "386":
		return "x86"
	default:
		return goarch
	}
}

// RunCommand runs name without arguments and captures its standard output.
// A program that starts and exits with a non-zero status still counts as run.
func RunCommand(ctx context.Context, name string) CommandResult {
	output, err := exec.CommandContext(ctx, name).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return CommandResult{Success: false, Message: err.Error()}
		}
	}
	return CommandResult{Success: true, Message: string(output)}
}

// OpenInBrowser opens target with the system handler for its scheme or type
func OpenInBrowser(target string) error {
	if strings.TrimSpace(target) == "" {
		return errors.New("nothing to open")
	}

	name, args := openerCommand(runtime.GOOS, target)
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", target, err)
	}
	go cmd.Wait()
	return nil
}

func openerCommand(goos, target string) (string, []string) {
	switch goos {
	case OSDarwin:
		return OpenCommand, []string{target}
	case OSWindows:
		return CmdCommand, []string{WindowsCmdFlag, StartCommand, "", target}
	default:
		return XDGOpenCommand, []string{target}
	}
}
