package ui

import (
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/noborus/ov/oviewer"
)

// ovFinishedMsg reports that the external ov viewer exited
type ovFinishedMsg struct {
	what string
	err  error
}

// ovCommand runs the ov viewer through tea.Exec, which releases the
// terminal while ov owns it.
type ovCommand struct {
	open func() (io.ReadCloser, error)
}

func (c *ovCommand) Run() error {
	r, err := c.open()
	if err != nil {
		return err
	}
	defer r.Close()

	root, err := oviewer.NewRoot(r)
	if err != nil {
		return err
	}

	// Configure ov to not write on exit (to avoid messing with our screen)
	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}

// ov talks to the tty directly
func (c *ovCommand) SetStdin(io.Reader)  {}
func (c *ovCommand) SetStdout(io.Writer) {}
func (c *ovCommand) SetStderr(io.Writer) {}

// openInOv shows the file at path in ov
func openInOv(path string) tea.Cmd {
	cmd := &ovCommand{open: func() (io.ReadCloser, error) { return os.Open(path) }}
	return tea.Exec(cmd, func(err error) tea.Msg {
		return ovFinishedMsg{what: path, err: err}
	})
}

// showHelpInOv shows the help text in ov
func showHelpInOv(content string) tea.Cmd {
	cmd := &ovCommand{open: func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(content)), nil
	}}
	return tea.Exec(cmd, func(err error) tea.Msg {
		return ovFinishedMsg{what: "help", err: err}
	})
}
