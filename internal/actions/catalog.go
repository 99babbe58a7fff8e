package actions

import (
	"slices"

	"github.com/rileyhilliard/sysdeck/internal/errors"
	"github.com/rileyhilliard/sysdeck/internal/gateway"
)

// Catalog is an ordered, keyed set of actions.
type Catalog struct {
	actions []Action
	byKey   map[string]int
}

// Group is the actions of one category, in catalog order.
type Group struct {
	Category Category
	Actions  []Action
}

// NewCatalog builds a catalog. Keys must be unique and every action needs
// a Run.
func NewCatalog(list ...Action) (*Catalog, error) {
	c := &Catalog{byKey: make(map[string]int, len(list))}
	for _, a := range list {
		if a.Key == "" || a.Run == nil {
			return nil, errors.New(errors.ErrAction,
				"Action "+a.Label+" has no key or no operation",
				"Every catalog entry needs a key and a Run function.")
		}
		if _, dup := c.byKey[a.Key]; dup {
			return nil, errors.New(errors.ErrAction,
				"Duplicate action key: "+a.Key,
				"Action keys must be unique.")
		}
		c.byKey[a.Key] = len(c.actions)
		c.actions = append(c.actions, a)
	}
	return c, nil
}

// Get looks up an action by key.
func (c *Catalog) Get(key string) (Action, bool) {
	i, ok := c.byKey[key]
	if !ok {
		return Action{}, false
	}
	return c.actions[i], true
}

// All returns every action in catalog order.
func (c *Catalog) All() []Action {
	return slices.Clone(c.actions)
}

// Keys returns every key in catalog order.
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.actions))
	for i, a := range c.actions {
		keys[i] = a.Key
	}
	return keys
}

// Groups returns the actions grouped by category, categories in the order
// they first appear.
func (c *Catalog) Groups() []Group {
	var groups []Group
	index := map[Category]int{}
	for _, a := range c.actions {
		i, ok := index[a.Category]
		if !ok {
			i = len(groups)
			index[a.Category] = i
			groups = append(groups, Group{Category: a.Category})
		}
		groups[i].Actions = append(groups[i].Actions, a)
	}
	return groups
}

// Len returns the number of actions.
func (c *Catalog) Len() int {
	return len(c.actions)
}

// DefaultActions is the built-in catalog contents.
func DefaultActions() []Action {
	open := func(key, label, command string, cat Category) Action {
		return Action{Key: key, Label: label, Description: "Open " + label, Category: cat, Kind: KindFire,
			Run: Invoke(command, nil)}
	}

	regedit := OpenApp("registry-editor", "Registry Editor", "regedit", CategoryDeveloper)
	regedit.Dangerous = true

	// Kills explorer.exe, so the taskbar and open folder windows go away
	// until it comes back.
	explorer := open("restart-explorer", "Restart Explorer", gateway.CmdRestartExplorer, CategorySystem)
	explorer.Description = "Restart the Windows shell"
	explorer.Dangerous = true

	tempFiles := open("temp-files", "Temporary Files", gateway.CmdCleanTempFiles, CategoryStorage)
	tempFiles.Description = "Open the temp folder to clean it up"

	return []Action{
		open("task-manager", "Task Manager", gateway.CmdOpenTaskManager, CategorySystem),
		open("device-manager", "Device Manager", gateway.CmdOpenDeviceManager, CategorySystem),
		OpenApp("services", "Services", "services.msc", CategorySystem),
		OpenApp("event-viewer", "Event Viewer", "eventvwr.msc", CategorySystem),
		open("system-info", "System Information", gateway.CmdOpenSystemInfo, CategorySystem),
		OpenApp("computer-management", "Computer Management", "compmgmt.msc", CategorySystem),
		OpenApp("local-users", "Local Users and Groups", "lusrmgr.msc", CategorySystem),
		OpenApp("group-policy", "Group Policy Editor", "gpedit.msc", CategorySystem),
		explorer,

		open("system-settings", "System Settings", gateway.CmdOpenSystemSettings, CategorySettings),
		OpenApp("control-panel", "Control Panel", "control", CategorySettings),
		OpenApp("power-options", "Power Options", "powercfg.cpl", CategorySettings),

		OpenApp("disk-management", "Disk Management", "diskmgmt.msc", CategoryStorage),
		OpenApp("storage-sense", "Storage Sense", "ms-settings:storagesense", CategoryStorage),
		OpenApp("disk-cleanup", "Disk Cleanup", "cleanmgr", CategoryStorage),
		OpenApp("defragment", "Defragment and Optimize", "dfrgui", CategoryStorage),
		tempFiles,

		open("network-settings", "Network Settings", gateway.CmdOpenNetworkSettings, CategoryNetwork),
		OpenApp("network-connections", "Network Connections", "ncpa.cpl", CategoryNetwork),
		OpenApp("firewall", "Firewall", "firewall.cpl", CategoryNetwork),
		open("windows-security", "Windows Security", gateway.CmdOpenSecurity, CategoryNetwork),

		{
			Key:         "terminal",
			Label:       "Terminal",
			Description: "Open a shell in a new window",
			Category:    CategoryDeveloper,
			Kind:        KindFire,
			Run:         Invoke(gateway.CmdRunInNewWindow, gateway.Args{"command": "powershell"}),
		},
		regedit,
		OpenApp("resource-monitor", "Resource Monitor", "resmon", CategoryDeveloper),
		OpenApp("performance-monitor", "Performance Monitor", "perfmon", CategoryDeveloper),

		Command("ipconfig", "IP configuration", CategoryCommands, "ipconfig", "/all"),
		Command("netstat", "Network connections", CategoryCommands, "netstat", "-an"),
		Command("systeminfo", "System summary", CategoryCommands, "systeminfo"),

		Command("wlan-profiles", "Wi-Fi profiles", CategoryDiagnostics, "netsh", "wlan", "show", "profiles"),
		Command("routes", "Routing table", CategoryDiagnostics, "route", "print"),
	}
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultActions()...)
	if err != nil {
		panic(err)
	}
	return c
}
