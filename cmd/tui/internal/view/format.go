package view

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/legalprop/propostas/internal/proposal"
)

// FormatDate renders t as a Brazilian calendar date in Brasília time.
func FormatDate(t time.Time) string {
	return t.In(proposal.Location).Format("02/01/2006")
}

func receiverLabel(r proposal.ReceiverType) string {
	switch r {
	case proposal.ReceiverLawyer:
		return "Advogado"
	case proposal.ReceiverPlaintiff:
		return "Autor"
	case proposal.ReceiverPrecatorio:
		return "Precatório"
	}

	return "-"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n-1]) + "…"
}

// View is implemented by every screen.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}
