package notify_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/legalprop/propostas/internal/client"
	"github.com/legalprop/propostas/internal/notify"
	"github.com/legalprop/propostas/internal/proposal"
)

var proposalID = uuid.MustParse("0b6d3f1e-7a2c-4c1e-9f00-5d2e8a7b9c10")

func sampleProposal() *proposal.Proposal {
	return &proposal.Proposal{
		ID:            proposalID,
		ClientName:    "Ana Souza",
		ClientEmail:   "ana@example.com",
		ClientPhone:   "+55 (11) 98765-4321",
		CedibleValue:  1234567,
		ProposalValue: 1000000,
	}
}

func TestShareURL(t *testing.T) {
	want := "https://app.legalprop.com.br/proposta/" + proposalID.String()

	assert.Equal(t, want, notify.ShareURL("https://app.legalprop.com.br", proposalID))
	assert.Equal(t, want, notify.ShareURL("https://app.legalprop.com.br/", proposalID))
}

func TestCompose(t *testing.T) {
	msg := notify.Compose(sampleProposal(), "https://app.legalprop.com.br")
	link := "https://app.legalprop.com.br/proposta/" + proposalID.String()

	assert.Equal(t, "Proposta Jurídica - Ana Souza", msg.Subject)
	assert.Equal(t, link, msg.ShareURL)

	assert.True(t, strings.HasPrefix(msg.Body, "Prezado(a) Ana Souza,\n\n"))
	assert.Contains(t, msg.Body, "• Processo: N/A\n")
	assert.Contains(t, msg.Body, "• Valor Cedível: R$ 12.345,67\n")
	assert.Contains(t, msg.Body, "• Valor da Proposta: R$ 10.000,00\n")
	assert.Contains(t, msg.Body, link)
	assert.True(t, strings.HasSuffix(msg.Body, "Atenciosamente,\nEquipe LegalProp"))

	assert.Contains(t, msg.WhatsAppText, "*R$ 10.000,00*")
	assert.True(t, strings.HasSuffix(msg.WhatsAppText, "Equipe LegalProp 📋⚖️"))

	assert.True(t, strings.HasPrefix(msg.MailtoURL,
		"mailto:ana@example.com?subject=Proposta%20Jur%C3%ADdica%20-%20Ana%20Souza&body=Prezado%28a%29%20Ana%20Souza%2C%0A%0A"))
	assert.NotContains(t, msg.MailtoURL, "+")

	assert.True(t, strings.HasPrefix(msg.WhatsAppURL, "https://wa.me/5511987654321?text=Ol%C3%A1%20Ana%20Souza%21"))
}

func TestCompose_ProcessNumberAndRedacted(t *testing.T) {
	p := sampleProposal()
	p.ProcessNumber = "0001234-56.2023.8.26.0100"

	msg := notify.Compose(p.Redacted(), "https://x.dev")

	assert.Contains(t, msg.Body, "• Processo: 0001234-56.2023.8.26.0100\n")
	assert.True(t, strings.HasPrefix(msg.WhatsAppURL, "https://wa.me/?text="))
	assert.True(t, strings.HasPrefix(msg.MailtoURL, "mailto:?subject="))
}

func TestComposeClient(t *testing.T) {
	msg := notify.ComposeClient(&client.Client{
		FirstName: "Bruno",
		LastName:  "Alves",
		Email:     "bruno@example.com",
		WhatsApp:  "21 9999-0000",
	})

	assert.Equal(t, "Contato - Bruno Alves", msg.Subject)
	assert.Equal(t, "Olá Bruno,\n\nEspero que esteja bem.\n\nAtenciosamente,\nEquipe LegalProp", msg.Body)
	assert.Equal(t, "Olá Bruno! Como posso ajudá-lo hoje?", msg.WhatsAppText)
	assert.Equal(t, "https://wa.me/2199990000?text=Ol%C3%A1%20Bruno%21%20Como%20posso%20ajud%C3%A1-lo%20hoje%3F", msg.WhatsAppURL)
	assert.Empty(t, msg.ShareURL)
}

func TestCompose_EscapesRecipient(t *testing.T) {
	p := sampleProposal()
	p.ClientEmail = "ana?cc=x%y@example.com"

	msg := notify.Compose(p, "https://x.dev")

	assert.True(t, strings.HasPrefix(msg.MailtoURL, "mailto:ana%3Fcc=x%25y@example.com?subject="), msg.MailtoURL)
	assert.Equal(t, 1, strings.Count(msg.MailtoURL, "?"))
}
