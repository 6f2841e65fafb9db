package ui

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

type FilePicker struct {
	cwd     string
	files   []string
	cursor  int
	status  string
	convert func(path string) error
}

func CreateFilePicker(convert func(path string) error) FilePicker {
	cwd, err := os.Getwd()
	if err != nil {
		err := errors.Wrap(err, "CreateFilePicker get current working directory error")
		log.Panic(err)
	}
	return FilePicker{
		cwd:     cwd,
		files:   ReadISFFileNames(cwd),
		convert: convert,
	}
}

func ReadISFFileNames(path string) []string {
	entries, err := os.ReadDir(path)
	if err != nil {
		log.Fatal(err)
	}

	fileNames := lo.FilterMap(
		entries,
		func(entry os.DirEntry, _ int) (string, bool) {
			isISF := !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".isf")
			return entry.Name(), isISF
		},
	)
	return fileNames
}

func (s FilePicker) View() string {
	output := "ISF CONVERTER\n\n"
	output += "Current directory: " + s.cwd + "\n\n"

	if len(s.files) == 0 {
		output += "No .isf files here. Press q to quit.\n"
		return output
	}
	for i, file := range s.files {
		marker := "  "
		if i == s.cursor {
			marker = "> "
		}
		output += marker + file + "\n"
	}
	output += "\n" + s.status + "\n"
	output += "up/down to move, enter to convert, q to quit\n"
	return output
}

func (s FilePicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch keyMsg.String() {
	case "ctrl+c", "q":
		return s, tea.Quit
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.files)-1 {
			s.cursor++
		}
	case "enter":
		if len(s.files) == 0 {
			break
		}
		file := s.files[s.cursor]
		if err := s.convert(filepath.Join(s.cwd, file)); err != nil {
			s.status = "Error converting " + file + ": " + err.Error()
		} else {
			s.status = "Converted " + file
		}
	}
	return s, nil
}

func (s FilePicker) Init() tea.Cmd {
	return nil
}
