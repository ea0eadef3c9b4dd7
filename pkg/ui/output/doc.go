// Package output renders command results for the terminal.
//
// Commands return plain result structs from pkg/types; a Renderer turns
// them into text on an io.Writer. Styling comes from the styles
// subpackage (lipgloss, adaptive colors) and is skipped entirely when the
// Renderer is created without color, so redirected output stays plain.
// Tables (list, backups) are drawn with pterm; sizes and ages are
// humanized.
package output
