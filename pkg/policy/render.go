package policy

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("111"))
	detailStyle  = lipgloss.NewStyle().Faint(true)
)

// RenderNotices writes notices as indented text blocks. Styling is applied
// only when styled is set, so piped output stays plain.
func RenderNotices(w io.Writer, notices []Notice, styled bool) error {
	for _, n := range notices {
		headline := n.Headline
		if styled {
			if n.Level == LevelWarning {
				headline = warningStyle.Render(headline)
			} else {
				headline = infoStyle.Render(headline)
			}
		}
		if _, err := fmt.Fprintln(w, headline); err != nil {
			return err
		}
		for _, d := range n.Details {
			line := "   " + d
			if styled {
				line = "   " + detailStyle.Render(d)
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
