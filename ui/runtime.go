package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Start runs the interactive picker. convert is called with the path of
// the file chosen by the user.
func Start(convert func(path string) error) {
	filePicker := CreateFilePicker(convert)
	if err := tea.NewProgram(&filePicker).Start(); err != nil {
		panic(err)
	}
}
