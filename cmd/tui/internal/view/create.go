package view

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/legalprop/propostas/internal/client"
	"github.com/legalprop/propostas/internal/money"
	"github.com/legalprop/propostas/internal/proposal"
	"github.com/legalprop/propostas/internal/validation"
)

const (
	recipientManual = "manual"
	recipientNew    = "new"
)

type createState int

const (
	createStateLoading createState = iota
	createStateForm
	createStateSubmitting
	createStateDone
)

// Draft holds the values typed into the creation form.
type Draft struct {
	Recipient string // recipientManual, recipientNew or a client id

	ClientName  string
	ClientEmail string
	ClientPhone string

	FirstName string
	LastName  string
	Email     string
	WhatsApp  string

	ProcessNumber    string
	OrganizationName string
	CedibleValue     string
	ProposalValue    string
	ReceiverType     string
	Description      string
	Assignee         string
}

// Form maps the draft onto a submission. An unparsable client id becomes
// uuid.Nil so validation reports it.
func (d *Draft) Form() proposal.Form {
	f := proposal.Form{
		ProcessNumber:    d.ProcessNumber,
		OrganizationName: d.OrganizationName,
		CedibleValue:     typedAmount(d.CedibleValue),
		ProposalValue:    typedAmount(d.ProposalValue),
		ReceiverType:     proposal.ReceiverType(d.ReceiverType),
		Description:      d.Description,
		Assignee:         d.Assignee,
	}

	switch d.Recipient {
	case recipientManual, "":
		f.ClientName, f.ClientEmail, f.ClientPhone = d.ClientName, d.ClientEmail, d.ClientPhone
	case recipientNew:
		f.NewClient = &proposal.NewClient{
			FirstName: d.FirstName,
			LastName:  d.LastName,
			Email:     d.Email,
			WhatsApp:  d.WhatsApp,
		}
	default:
		id, err := uuid.Parse(d.Recipient)
		if err != nil {
			id = uuid.Nil
		}

		f.ExistingClientID = &id
	}

	return f
}

type CreateModel struct {
	svc Services

	state   createState
	form    *huh.Form
	draft   *Draft
	clients []*client.Client

	created  *proposal.Proposal
	problems []validation.Problem
	err      error
}

func NewCreateModel(svc Services) CreateModel {
	return CreateModel{
		svc:   svc,
		draft: &Draft{Recipient: recipientManual},
	}
}

func (m CreateModel) Title() string { return "New Proposal" }

func (m CreateModel) ShortHelp() string {
	if m.state == createStateDone {
		return "Enter: continue | Esc: back"
	}

	return "Navigate form | Esc: back"
}

func (m CreateModel) Init() tea.Cmd {
	return m.loadClientsCmd()
}

func (m CreateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadClientsMsg:
		// The CRM list only feeds the recipient picker; typing stays possible
		// without it.
		m.clients = msg.clients
		return m.startForm()

	case submitResultMsg:
		m.state = createStateDone
		m.created, m.problems, m.err = msg.proposal, nil, nil

		if verr, ok := validation.As(msg.err); ok {
			m.problems = verr.Problems
		} else if msg.err != nil {
			m.err = msg.err
		}

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	switch m.state {
	case createStateForm:
		return m.updateForm(msg)
	case createStateDone:
		return m.updateDone(msg)
	}

	return m, nil
}

func (m CreateModel) startForm() (tea.Model, tea.Cmd) {
	m.state = createStateForm
	m.form = m.buildForm()

	return m, m.form.Init()
}

func (m CreateModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = createStateSubmitting

	return m, m.submitCmd()
}

func (m CreateModel) updateDone(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || keyMsg.Type != tea.KeyEnter {
		return m, nil
	}

	// After a success start over; after a failure keep what was typed.
	if m.created != nil {
		m.draft = &Draft{Recipient: recipientManual}
	}

	return m.startForm()
}

func (m CreateModel) buildForm() *huh.Form {
	d := m.draft

	recipients := []huh.Option[string]{
		huh.NewOption("Type the recipient", recipientManual),
		huh.NewOption("Register a new client", recipientNew),
	}
	for _, c := range m.clients {
		recipients = append(recipients, huh.NewOption(fmt.Sprintf("%s <%s>", c.FullName(), c.Email), c.ID.String()))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("recipient").
				Title("Recipient").
				Options(recipients...).
				Value(&d.Recipient),
		),

		huh.NewGroup(
			huh.NewInput().Key("client_name").Title("Client name").Value(&d.ClientName).Validate(required),
			huh.NewInput().Key("client_email").Title("Client email").Value(&d.ClientEmail).Validate(emailAddress),
			huh.NewInput().Key("client_phone").Title("Client phone").Value(&d.ClientPhone),
		).WithHideFunc(func() bool { return d.Recipient != recipientManual }),

		huh.NewGroup(
			huh.NewInput().Key("first_name").Title("First name").Value(&d.FirstName).Validate(required),
			huh.NewInput().Key("last_name").Title("Last name").Value(&d.LastName).Validate(required),
			huh.NewInput().Key("email").Title("Email").Value(&d.Email).Validate(emailAddress),
			huh.NewInput().Key("whatsapp").Title("WhatsApp").Value(&d.WhatsApp).Validate(required),
		).WithHideFunc(func() bool { return d.Recipient != recipientNew }),

		huh.NewGroup(
			huh.NewInput().Key("process_number").Title("Process number").Value(&d.ProcessNumber),
			huh.NewInput().Key("organization_name").Title("Organization").Value(&d.OrganizationName),
			huh.NewInput().
				Key("cedible_value").
				Title("Cedible value").
				Placeholder("R$ 0,00").
				DescriptionFunc(func() string { return money.FormatDigits(d.CedibleValue) }, &d.CedibleValue).
				Value(&d.CedibleValue).
				Validate(requiredAmount),
			huh.NewInput().
				Key("proposal_value").
				Title("Proposal value").
				Placeholder("R$ 0,00").
				DescriptionFunc(func() string { return money.FormatDigits(d.ProposalValue) }, &d.ProposalValue).
				Value(&d.ProposalValue).
				Validate(requiredAmount),
			huh.NewSelect[string]().
				Key("receiver_type").
				Title("Receiver").
				Options(
					huh.NewOption("Not informed", ""),
					huh.NewOption(receiverLabel(proposal.ReceiverLawyer), string(proposal.ReceiverLawyer)),
					huh.NewOption(receiverLabel(proposal.ReceiverPlaintiff), string(proposal.ReceiverPlaintiff)),
					huh.NewOption(receiverLabel(proposal.ReceiverPrecatorio), string(proposal.ReceiverPrecatorio)),
				).
				Value(&d.ReceiverType),
		),

		huh.NewGroup(
			huh.NewText().Key("description").Title("Description").Value(&d.Description),
			huh.NewInput().Key("assignee").Title("Assignee").Value(&d.Assignee),
		),
	).WithWidth(60).WithShowHelp(false)
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}

	return nil
}

func emailAddress(s string) error {
	if !validation.Email(strings.TrimSpace(s)) {
		return errors.New("not a valid email address")
	}

	return nil
}

func requiredAmount(s string) error {
	if err := required(s); err != nil {
		return err
	}

	if _, err := money.ParseDigits(s); err != nil || !hasDigit(s) {
		return errors.New("not a valid amount")
	}

	return nil
}

// typedAmount reads the digits typed into an amount field as cents, so
// "10000" is R$ 100,00. A field without digits stays empty.
func typedAmount(raw string) string {
	if !hasDigit(raw) {
		return raw
	}

	return money.FormatDigits(raw)
}

func (m CreateModel) View() string {
	switch m.state {
	case createStateLoading:
		return lipgloss.NewStyle().Padding(2).Render("Loading clients...")
	case createStateSubmitting:
		return lipgloss.NewStyle().Padding(2).Render("Creating proposal...")
	case createStateForm:
		return lipgloss.NewStyle().Padding(1).Render("New Proposal\n\n" + m.form.View())
	}

	var b strings.Builder

	switch {
	case m.created != nil:
		p := m.created
		fmt.Fprintf(&b, "Proposal created for %s.\n\n", p.ClientName)
		fmt.Fprintf(&b, "Value:       %s\n", money.Format(p.ProposalValue))
		fmt.Fprintf(&b, "Valid until: %s\n", FormatDate(p.ValidUntil))
		fmt.Fprintf(&b, "ID:          %s\n", p.ID)
		b.WriteString("\n(Enter for another, Esc to back)")
	case len(m.problems) > 0:
		b.WriteString(errorStyle("The proposal was not created:") + "\n\n")
		for _, p := range m.problems {
			fmt.Fprintf(&b, "  %s %s\n", p.Field, p.Message)
		}

		b.WriteString("\n(Enter to fix, Esc to back)")
	default:
		b.WriteString(errorStyle(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n(Enter to retry, Esc to back)")
	}

	return lipgloss.NewStyle().Padding(2).Render(b.String())
}

// Messages

type loadClientsMsg struct {
	clients []*client.Client
}

func (m CreateModel) loadClientsCmd() tea.Cmd {
	svc := m.svc

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		clients, _ := svc.Clients.List(ctx, svc.Principal.CompanyID, "")

		return loadClientsMsg{clients: clients}
	}
}

type submitResultMsg struct {
	proposal *proposal.Proposal
	err      error
}

func (m CreateModel) submitCmd() tea.Cmd {
	svc := m.svc
	form := m.draft.Form()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		p, err := svc.Proposals.Submit(ctx, svc.Principal, form)

		return submitResultMsg{proposal: p, err: err}
	}
}
