// Package notify builds and delivers the messages sent to proposal recipients
// and to the company when a recipient answers.
package notify

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/legalprop/propostas/internal/client"
	"github.com/legalprop/propostas/internal/money"
	"github.com/legalprop/propostas/internal/proposal"
)

const signature = "Equipe LegalProp"

// Message is everything a front end needs to open the user's mail or
// WhatsApp client with a prepared text.
type Message struct {
	MailtoURL    string `json:"mailto_url"`
	Subject      string `json:"subject"`
	Body         string `json:"body"`
	WhatsAppURL  string `json:"whatsapp_url"`
	WhatsAppText string `json:"whatsapp_text"`
	ShareURL     string `json:"share_url,omitempty"`
}

// ShareURL is the recipient's public link to a proposal.
func ShareURL(baseURL string, id uuid.UUID) string {
	return strings.TrimRight(baseURL, "/") + "/proposta/" + id.String()
}

// Compose prepares the proposal email and WhatsApp texts. Contact fields are
// used only when p carries them.
func Compose(p *proposal.Proposal, baseURL string) Message {
	link := ShareURL(baseURL, p.ID)

	subject := "Proposta Jurídica - " + p.ClientName
	body := fmt.Sprintf(`Prezado(a) %s,

Temos uma proposta de antecipação de crédito judicial para análise.

Detalhes da Proposta:
• Processo: %s
• Valor Cedível: %s
• Valor da Proposta: %s

Para visualizar e responder à proposta, acesse:
%s

Atenciosamente,
%s`, p.ClientName, orNA(p.ProcessNumber), money.Format(p.CedibleValue), money.Format(p.ProposalValue), link, signature)

	whatsapp := fmt.Sprintf(`Olá %s!

Temos uma proposta de antecipação de crédito judicial de *%s* para seu processo.

Para visualizar os detalhes e aceitar a proposta, clique no link:
%s

%s 📋⚖️`, p.ClientName, money.Format(p.ProposalValue), link, signature)

	return Message{
		MailtoURL:    mailto(p.ClientEmail, subject, body),
		Subject:      subject,
		Body:         body,
		WhatsAppURL:  whatsappURL(p.ClientPhone, whatsapp),
		WhatsAppText: whatsapp,
		ShareURL:     link,
	}
}

// ComposeClient prepares the CRM greeting for a client.
func ComposeClient(c *client.Client) Message {
	subject := fmt.Sprintf("Contato - %s %s", c.FirstName, c.LastName)
	body := fmt.Sprintf("Olá %s,\n\nEspero que esteja bem.\n\nAtenciosamente,\n%s", c.FirstName, signature)
	whatsapp := fmt.Sprintf("Olá %s! Como posso ajudá-lo hoje?", c.FirstName)

	return Message{
		MailtoURL:    mailto(c.Email, subject, body),
		Subject:      subject,
		Body:         body,
		WhatsAppURL:  whatsappURL(c.WhatsApp, whatsapp),
		WhatsAppText: whatsapp,
	}
}

func mailto(to, subject, body string) string {
	return "mailto:" + url.PathEscape(to) + "?subject=" + escape(subject) + "&body=" + escape(body)
}

// whatsappURL addresses the chat to phone when known; otherwise WhatsApp asks
// the sender to pick a contact.
func whatsappURL(phone, text string) string {
	return "https://wa.me/" + digits(phone) + "?text=" + escape(text)
}

// escape percent-encodes a URI component. Spaces become %20; mail clients do
// not read '+' as a space in mailto links.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}

		return -1
	}, s)
}
