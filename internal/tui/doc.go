// Package tui implements the interactive watch dashboard.
//
// Watch keeps a control connection open and renders the most recent frame of
// each packet kind as it arrives: kind, sequence counter, frame count, and
// the decoded payload. Built on bubbletea with lipgloss styling; a spinner
// covers the connect and first-frame wait.
package tui
