package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/voxdrop/voxdrop/internal/audio"
	"github.com/voxdrop/voxdrop/internal/janitor"
	"github.com/voxdrop/voxdrop/internal/speech"
	"github.com/voxdrop/voxdrop/internal/studio"
)

type (
	renderedMsg             struct{ res *studio.Result }
	renderErrMsg            struct{ err error }
	playbackDoneMsg         struct{ err error }
	filesMsg                []janitor.File
	filesChangedMsg         struct{}
	statusMessageTimeoutMsg struct{}
)

func (e renderErrMsg) Error() string { return e.err.Error() }

func renderCmd(ctx context.Context, s *studio.Studio, req speech.Request) tea.Cmd {
	return func() tea.Msg {
		res, err := s.Render(ctx, req)
		if err != nil {
			return renderErrMsg{err}
		}
		return renderedMsg{res}
	}
}

func playCmd(ctx context.Context, mp3 []byte) tea.Cmd {
	return func() tea.Msg {
		return playbackDoneMsg{audio.Play(ctx, mp3)}
	}
}

func listFilesCmd(j *janitor.Janitor) tea.Cmd {
	return func() tea.Msg {
		files, err := j.List()
		if err != nil {
			return nil
		}
		return filesMsg(files)
	}
}

func statusTimeoutCmd() tea.Cmd {
	return tea.Tick(statusMessageTimeout, func(time.Time) tea.Msg {
		return statusMessageTimeoutMsg{}
	})
}
