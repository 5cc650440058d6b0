package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/legalprop/propostas/internal/money"
	"github.com/legalprop/propostas/internal/proposal"
)

var csvHeader = []string{
	"ID", "Cliente", "Email", "Telefone", "Processo", "Órgão", "Valor Cedível",
	"Valor da Proposta", "Tipo", "Status", "Responsável", "Criada em", "Válida até",
}

// WriteCSV writes one row per proposal, semicolon separated, which is what
// pt-BR spreadsheets expect. Contact columns are empty for redacted proposals.
func WriteCSV(w io.Writer, proposals []*proposal.Proposal) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	const layout = "02/01/2006 15:04"

	for _, p := range proposals {
		err := cw.Write([]string{
			p.ID.String(),
			p.ClientName,
			p.ClientEmail,
			p.ClientPhone,
			p.ProcessNumber,
			p.OrganizationName,
			money.Format(p.CedibleValue),
			money.Format(p.ProposalValue),
			string(p.ReceiverType),
			string(p.Status),
			p.Assignee,
			p.CreatedAt.In(proposal.Location).Format(layout),
			p.ValidUntil.In(proposal.Location).Format(layout),
		})
		if err != nil {
			return fmt.Errorf("writing proposal %s: %w", p.ID, err)
		}
	}

	cw.Flush()

	return cw.Error()
}
