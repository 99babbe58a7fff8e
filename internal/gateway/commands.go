package gateway

// Command names understood by the backend.
const (
	CmdSystemInfo       = "get_system_info_detailed"
	CmdPorts            = "get_all_ports"
	CmdProcesses        = "get_all_processes"
	CmdKillProcess      = "kill_process"
	CmdContainers       = "get_docker_containers"
	CmdDockerAvailable  = "is_docker_available"
	CmdStopContainer    = "stop_container"
	CmdRestartContainer = "restart_container"
	CmdContainerLogs    = "get_container_logs"

	CmdRunCommand          = "run_command"
	CmdRunInNewWindow      = "run_command_in_new_window"
	CmdOpenGUIApp          = "open_gui_app"
	CmdOpenSystemSettings  = "open_system_settings"
	CmdOpenNetworkSettings = "open_network_settings"
	CmdOpenTaskManager     = "open_task_manager"
	CmdOpenDeviceManager   = "open_device_manager"
	CmdOpenSystemInfo      = "open_system_info"
	CmdOpenSecurity        = "open_windows_security"
	CmdOpenInExplorer      = "open_in_explorer"
	CmdOpenWithDefault     = "open_with_default_app"
	CmdRestartExplorer     = "restart_explorer"
	CmdCleanTempFiles      = "clean_temp_files"
)
