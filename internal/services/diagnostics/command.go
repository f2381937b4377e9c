package diagnostics

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/fgeck/netdiag-api/internal/models"
)

// Platform selects the command syntax of the host's diagnostic tools.
type Platform int

const (
	PlatformUnix Platform = iota
	PlatformWindows
)

func (p Platform) String() string {
	if p == PlatformWindows {
		return "windows"
	}
	return "unix"
}

// DetectPlatform maps a GOOS value to a Platform.
func DetectPlatform(goos string) Platform {
	if goos == "windows" {
		return PlatformWindows
	}
	return PlatformUnix
}

// CurrentPlatform is the platform of the running binary.
func CurrentPlatform() Platform {
	return DetectPlatform(runtime.GOOS)
}

// commandTemplate is a program and the arguments that precede the target.
type commandTemplate struct {
	name string
	args func(count int) []string
}

var commandTable = map[models.Operation]map[Platform]commandTemplate{
	models.OperationPing: {
		PlatformUnix: {
			name: "ping",
			args: func(count int) []string { return []string{"-c", strconv.Itoa(count)} },
		},
		PlatformWindows: {
			name: "ping",
			args: func(count int) []string { return []string{"-n", strconv.Itoa(count)} },
		},
	},
	models.OperationTraceroute: {
		PlatformUnix:    {name: "traceroute", args: func(int) []string { return nil }},
		PlatformWindows: {name: "tracert", args: func(int) []string { return nil }},
	},
}

// BuildCommand returns the program and argument vector for op against target.
// The target is passed as its own argument and never goes through a shell.
func BuildCommand(platform Platform, op models.Operation, target string, pingCount int) (string, []string, error) {
	templates, ok := commandTable[op]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
	tmpl, ok := templates[platform]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q on %s", ErrUnknownOperation, op, platform)
	}

	args := append(tmpl.args(pingCount), target)
	return tmpl.name, args, nil
}
