package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dir returns the per-user runtime directory. Priority:
// 1) XDG_RUNTIME_DIR (if set)
// 2) /run/user/<uid> (if present)
// 3) /tmp/system-mcp-runtime-<uid> (created)
func Dir() (string, error) {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, nil
	}

	uid := os.Getuid()
	runUserDir := fmt.Sprintf("/run/user/%d", uid)
	if info, err := os.Stat(runUserDir); err == nil && info.IsDir() {
		return runUserDir, nil
	}

	tmpDir := fmt.Sprintf("/tmp/system-mcp-runtime-%d", uid)
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return tmpDir, nil
}

// SessionBusAddress returns the D-Bus session bus address. It honours
// DBUS_SESSION_BUS_ADDRESS and otherwise points at the systemd user bus
// socket inside the runtime directory.
func SessionBusAddress() (string, error) {
	if addr := strings.TrimSpace(os.Getenv("DBUS_SESSION_BUS_ADDRESS")); addr != "" {
		return addr, nil
	}
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	socket := filepath.Join(runtimeDir, "bus")
	if _, err := os.Stat(socket); err != nil {
		return "", fmt.Errorf("no session bus: DBUS_SESSION_BUS_ADDRESS is unset and %s is missing", socket)
	}
	return "unix:path=" + socket, nil
}
