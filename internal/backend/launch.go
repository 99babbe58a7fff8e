package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const commandTimeout = 30 * time.Second

// allowedCommands are the programs run_command may execute. Arguments are
// passed as argv, never through a shell.
var allowedCommands = map[string]bool{
	"arp":        true,
	"df":         true,
	"getmac":     true,
	"hostname":   true,
	"ifconfig":   true,
	"ip":         true,
	"ipconfig":   true,
	"netsh":      true,
	"netstat":    true,
	"nmcli":      true,
	"nslookup":   true,
	"ping":       true,
	"route":      true,
	"ss":         true,
	"systeminfo": true,
	"tasklist":   true,
	"traceroute": true,
	"tracert":    true,
	"uname":      true,
	"uptime":     true,
	"whoami":     true,
}

// AllowedCommands returns the run_command whitelist, sorted.
func AllowedCommands() []string {
	out := make([]string, 0, len(allowedCommands))
	for c := range allowedCommands {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// translation rewrites a Windows diagnostic into the local equivalent.
type translation func(args []string) (string, []string, bool)

func fixed(name string, args ...string) translation {
	return func([]string) (string, []string, bool) { return name, args, true }
}

var translations = map[string]map[string]translation{
	"linux": {
		"ipconfig":   fixed("ip", "addr"),
		"systeminfo": fixed("uname", "-a"),
		"route":      fixed("ip", "route"),
		"tracert":    func(a []string) (string, []string, bool) { return "traceroute", a, true },
		"netsh": func(a []string) (string, []string, bool) {
			if strings.EqualFold(strings.Join(a, " "), "wlan show profiles") {
				return "nmcli", []string{"connection", "show"}, true
			}
			return "", nil, false
		},
	},
	"darwin": {
		"ipconfig":   fixed("ifconfig", "-a"),
		"systeminfo": fixed("uname", "-a"),
		"route":      fixed("netstat", "-rn"),
		"tracert":    func(a []string) (string, []string, bool) { return "traceroute", a, true },
	},
}

// unsafeArg matches characters that only make sense to a shell.
const unsafeArg = ";&|<>$`\n\r\"'%^"

// resolveCommand checks command against the whitelist and applies the
// platform translation, if any.
func resolveCommand(goos, command string, args []string) (string, []string, error) {
	command = strings.TrimSpace(command)
	if !allowedCommands[strings.ToLower(command)] {
		return "", nil, rejected(fmt.Sprintf("command %q is not allowed", command),
			"Allowed commands: "+strings.Join(AllowedCommands(), ", "))
	}
	for _, a := range args {
		if strings.ContainsAny(a, unsafeArg) {
			return "", nil, rejected(fmt.Sprintf("argument %q contains shell metacharacters", a), "")
		}
	}
	name := strings.ToLower(command)
	if t, ok := translations[goos][name]; ok {
		tn, targs, ok := t(args)
		if !ok {
			return "", nil, rejected(fmt.Sprintf("%s %s isn't available on %s", command, strings.Join(args, " "), goos), "")
		}
		return tn, targs, nil
	}
	return name, args, nil
}

func (b *Backend) runCommand(ctx context.Context, command string, args []string) (string, error) {
	name, argv, err := resolveCommand(b.goos, command, args)
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	b.log.Debug("run %s %v", name, argv)
	out, err := b.run.Output(ctx, name, argv...)
	if err != nil {
		return "", rejected(fmt.Sprintf("%s failed: %v", command, err), "")
	}
	return string(out), nil
}

// terminals maps the run_command_in_new_window names to launchers per OS.
var terminals = map[string]map[string][]string{
	"powershell": {
		"windows": {"cmd", "/c", "start", "", "powershell"},
		"darwin":  {"open", "-a", "Terminal"},
		"linux":   {"x-terminal-emulator"},
	},
	"cmd": {
		"windows": {"cmd", "/c", "start", "", "cmd"},
	},
	"terminal": {
		"windows": {"cmd", "/c", "start", "", "powershell"},
		"darwin":  {"open", "-a", "Terminal"},
		"linux":   {"x-terminal-emulator"},
	},
}

func (b *Backend) runInNewWindow(ctx context.Context, command string) error {
	byOS, ok := terminals[strings.ToLower(strings.TrimSpace(command))]
	if !ok {
		return rejected(fmt.Sprintf("%q can't be opened in a new window", command),
			"Use powershell, cmd, or terminal.")
	}
	argv, ok := byOS[b.goos]
	if !ok {
		return unsupported(command, b.goos)
	}
	return b.start(ctx, argv)
}

// guiApps is the open_gui_app allowlist. Windows launches every entry by
// name through `start`; other platforms only have the listed equivalents.
var guiApps = map[string]map[string][]string{
	"taskmgr": {
		"darwin": {"open", "-a", "Activity Monitor"},
		"linux":  {"gnome-system-monitor"},
	},
	"devmgmt.msc":  nil,
	"services.msc": nil,
	"eventvwr.msc": {
		"darwin": {"open", "-a", "Console"},
	},
	"msinfo32": {
		"darwin": {"open", "-a", "System Information"},
	},
	"compmgmt.msc": nil,
	"lusrmgr.msc":  nil,
	"gpedit.msc":   nil,
	"control": {
		"darwin": {"open", "x-apple.systempreferences:"},
		"linux":  {"gnome-control-center"},
	},
	"powercfg.cpl": {
		"linux": {"gnome-control-center", "power"},
	},
	"diskmgmt.msc": {
		"darwin": {"open", "-a", "Disk Utility"},
		"linux":  {"gnome-disks"},
	},
	"ms-settings:storagesense": nil,
	"cleanmgr":                 nil,
	"dfrgui":                   nil,
	"ncpa.cpl": {
		"linux": {"nm-connection-editor"},
	},
	"firewall.cpl": nil,
	"regedit":      nil,
	"resmon": {
		"darwin": {"open", "-a", "Activity Monitor"},
	},
	"perfmon": nil,
	"ms-settings:": {
		"darwin": {"open", "x-apple.systempreferences:"},
		"linux":  {"gnome-control-center"},
	},
	"ms-settings:network": {
		"darwin": {"open", "x-apple.systempreferences:com.apple.preference.network"},
		"linux":  {"gnome-control-center", "network"},
	},
	"ms-settings:windowsdefender": nil,
}

// Applet names behind the dedicated open_* commands.
const (
	appSystemSettings  = "ms-settings:"
	appNetworkSettings = "ms-settings:network"
	appTaskManager     = "taskmgr"
	appDeviceManager   = "devmgmt.msc"
	appSystemInfo      = "msinfo32"
	appSecurity        = "ms-settings:windowsdefender"
)

func (b *Backend) openApp(ctx context.Context, app string) error {
	key := strings.ToLower(strings.TrimSpace(app))
	byOS, ok := guiApps[key]
	if !ok {
		return rejected(fmt.Sprintf("application %q is not allowed", app), "")
	}
	if b.goos == "windows" {
		return b.start(ctx, []string{"cmd", "/c", "start", "", key})
	}
	argv, ok := byOS[b.goos]
	if !ok {
		return unsupported(app, b.goos)
	}
	return b.start(ctx, argv)
}

// openPath shows path in the file manager (reveal) or opens it with the
// associated application.
func (b *Backend) openPath(ctx context.Context, path string, reveal bool) error {
	if !filepath.IsAbs(path) {
		return rejected(fmt.Sprintf("path %q must be absolute", path), "")
	}
	if strings.ContainsAny(path, "\n\r\"") {
		return rejected(fmt.Sprintf("path %q contains invalid characters", path), "")
	}
	info, err := os.Stat(path)
	if err != nil {
		return rejected(fmt.Sprintf("Can't open %s: %v", path, err), "")
	}

	var argv []string
	switch b.goos {
	case "windows":
		if reveal {
			argv = []string{"explorer", path}
		} else {
			argv = []string{"rundll32", "url.dll,FileProtocolHandler", path}
		}
	case "darwin":
		if reveal && !info.IsDir() {
			argv = []string{"open", "-R", path}
		} else {
			argv = []string{"open", path}
		}
	case "linux", "freebsd", "openbsd", "netbsd":
		if reveal && !info.IsDir() {
			path = filepath.Dir(path)
		}
		argv = []string{"xdg-open", path}
	default:
		return unsupported("open", b.goos)
	}
	return b.start(ctx, argv)
}

// restartExplorer kills the Windows shell and starts a fresh one.
func (b *Backend) restartExplorer(ctx context.Context) error {
	if b.goos != "windows" {
		return rejected("Restarting Explorer is only available on Windows", "")
	}
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	if _, err := b.run.Output(ctx, "taskkill", "/f", "/im", "explorer.exe"); err != nil {
		return rejected(fmt.Sprintf("Can't stop Explorer: %v", err),
			"Try again from an elevated terminal.")
	}
	return b.start(ctx, []string{"cmd", "/c", "start", "explorer"})
}

func (b *Backend) start(ctx context.Context, argv []string) error {
	b.log.Debug("launch %v", argv)
	if err := b.run.Start(ctx, argv[0], argv[1:]...); err != nil {
		return rejected(fmt.Sprintf("Failed to launch %s: %v", argv[0], err), "")
	}
	return nil
}

func unsupported(what, goos string) error {
	return rejected(fmt.Sprintf("%s is not available on %s", what, goos), "")
}
