// Package cli implements the sysdeck command-line interface.
//
// Every command is a Cobra command that builds an app.App from the loaded
// config, does one thing through it, and closes it again. The dashboard is
// just another command; running sysdeck with no arguments on a terminal
// opens it, and prints the status summary otherwise.
//
// # Command Structure
//
//	sysdeck dashboard            - Full-screen dashboard
//	sysdeck status               - System snapshot
//	sysdeck ports                - Open ports and their projects
//	sysdeck ps / kill <pid>      - Processes
//	sysdeck containers           - Docker containers (stop, restart, logs)
//	sysdeck actions [list|run]   - Quick action catalog
//	sysdeck settings             - Persisted preferences
//	sysdeck rules                - Classification rule table
//	sysdeck doctor               - Diagnose config, gateway, and Docker
//	sysdeck completion <shell>   - Shell completion scripts
//	sysdeck backend <command>    - Backend side of the process and ssh transports
//
// # Output
//
// Global flags (--config, --json, --no-color, --yes) are defined on the
// root command. With --json every command writes a single JSONEnvelope to
// stdout, errors included, and never prompts; dangerous actions then need
// --yes or confirmDangerousActions turned off.
//
// Human output goes to the command's out writer. Spinners go to stderr and
// only when stdout is a terminal.
package cli
