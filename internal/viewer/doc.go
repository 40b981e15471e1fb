// Package viewer hands a staged file to the operating system's default
// application.
//
// Commands used:
//   - Linux and BSDs: xdg-open
//   - macOS: open
//   - Windows: cmd /c start
//
// The launched application is not waited for; the process is reaped in the
// background.
package viewer
