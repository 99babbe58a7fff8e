// Package ui provides the styled output pieces the sysdeck commands print
// outside the dashboard: colors, symbols, usage bars, tables, a spinner
// for slow backend calls, and the terminal prompt for dangerous actions.
//
// Colors follow the dashboard's neon palette. Use DisableColors() for
// --no-color and NO_COLOR.
package ui
