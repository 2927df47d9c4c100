package x11

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// Hooks swapped by tests.
var (
	lookupEnv     = os.Getenv
	commandOutput = runCommand
	readFile      = os.ReadFile
	readDir       = os.ReadDir
	sessionEnv    = loginSessionEnv
	socketDisplay = newestSocketDisplay
)

func runCommand(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).Output()
	return string(out), err
}

const x11SocketDir = "/tmp/.X11-unix"

// DisplayEnv is the resolved X11 connection environment.
type DisplayEnv struct {
	Display    string
	XAuthority string
}

// fill copies any value env is still missing from other.
func (env *DisplayEnv) fill(other DisplayEnv) {
	if env.Display == "" {
		env.Display = strings.TrimSpace(other.Display)
	}
	if env.XAuthority == "" {
		env.XAuthority = strings.TrimSpace(other.XAuthority)
	}
}

func (env DisplayEnv) complete() bool {
	return env.Display != "" && env.XAuthority != ""
}

// ResolveDisplayEnv works out DISPLAY and XAUTHORITY for a server that may
// have been started outside the graphical session, e.g. by an MCP client
// launched from a service manager. Each value comes from the first source
// that has it: the configured value, the process environment, the logind
// session leader's environment, then the highest-numbered X socket
// (DISPLAY) or ~/.Xauthority (XAUTHORITY).
func ResolveDisplayEnv(cfgDisplay, cfgXAuthority string) (DisplayEnv, error) {
	var env DisplayEnv
	sources := []func() DisplayEnv{
		func() DisplayEnv { return DisplayEnv{Display: cfgDisplay, XAuthority: cfgXAuthority} },
		func() DisplayEnv { return DisplayEnv{Display: lookupEnv("DISPLAY"), XAuthority: lookupEnv("XAUTHORITY")} },
		sessionEnv,
		func() DisplayEnv { return DisplayEnv{Display: socketDisplay(x11SocketDir)} },
	}
	for _, source := range sources {
		if env.complete() {
			break
		}
		env.fill(source())
	}

	if env.Display == "" {
		return DisplayEnv{}, fmt.Errorf("no X11 display found; set display in config (e.g. display: \":0\") or export DISPLAY for the server")
	}
	if env.XAuthority == "" {
		env.XAuthority = homeXAuthority()
	}
	return env, nil
}

func homeXAuthority() string {
	home := strings.TrimSpace(lookupEnv("HOME"))
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	if home == "" {
		return ""
	}
	candidate := filepath.Join(home, ".Xauthority")
	if _, err := os.Stat(candidate); err != nil {
		return ""
	}
	return candidate
}

// loginSessionEnv asks logind for the current user's graphical session and
// reads DISPLAY/XAUTHORITY from its leader process.
func loginSessionEnv() DisplayEnv {
	out, err := commandOutput("loginctl", "list-sessions", "--no-legend")
	if err != nil {
		return DisplayEnv{}
	}
	for _, id := range sessionsForUID(out, strconv.Itoa(os.Getuid())) {
		display := sessionProperty(id, "Display")
		if display == "" || strings.EqualFold(display, "n/a") {
			continue
		}
		env := DisplayEnv{Display: display}
		if leader := sessionProperty(id, "Leader"); leader != "" && leader != "0" {
			if vars, err := processEnviron(leader); err == nil {
				if d := strings.TrimSpace(vars["DISPLAY"]); d != "" {
					env.Display = d
				}
				env.XAuthority = strings.TrimSpace(vars["XAUTHORITY"])
			}
		}
		return env
	}
	return DisplayEnv{}
}

// sessionsForUID picks the session ids owned by uid from
// "loginctl list-sessions --no-legend" output.
func sessionsForUID(listing, uid string) []string {
	var ids []string
	sc := bufio.NewScanner(strings.NewReader(listing))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) >= 2 && fields[1] == uid {
			ids = append(ids, fields[0])
		}
	}
	return ids
}

func sessionProperty(id, prop string) string {
	out, err := commandOutput("loginctl", "show-session", id, "-p", prop, "--value")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

func processEnviron(pid string) (map[string]string, error) {
	data, err := readFile(filepath.Join("/proc", pid, "environ"))
	if err != nil {
		return nil, err
	}
	vars := make(map[string]string)
	for _, entry := range strings.Split(string(data), "\x00") {
		if k, v, ok := strings.Cut(entry, "="); ok && k != "" {
			vars[k] = v
		}
	}
	return vars, nil
}

// newestSocketDisplay returns ":<n>" for the highest X<n> socket in dir.
func newestSocketDisplay(dir string) string {
	entries, err := readDir(dir)
	if err != nil {
		return ""
	}
	var numbers []int
	for _, entry := range entries {
		rest, ok := strings.CutPrefix(entry.Name(), "X")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(rest); err == nil {
			numbers = append(numbers, n)
		}
	}
	if len(numbers) == 0 {
		return ""
	}
	return ":" + strconv.Itoa(slices.Max(numbers))
}
