package view

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/legalprop/propostas/internal/auth"
	"github.com/legalprop/propostas/internal/client"
	"github.com/legalprop/propostas/internal/money"
	"github.com/legalprop/propostas/internal/proposal"
	"github.com/legalprop/propostas/internal/report"
	"github.com/legalprop/propostas/internal/validation"
)

var principal = auth.Principal{
	UserID:    uuid.MustParse("11111111-1111-1111-1111-111111111111"),
	CompanyID: uuid.MustParse("22222222-2222-2222-2222-222222222222"),
	Role:      auth.RoleAdmin,
	FirstName: "Paula",
	LastName:  "Lima",
}

type mocks struct {
	proposals *MockProposalService
	clients   *MockClientService
	reports   *MockReportService
}

func newServices(t *testing.T) (mocks, Services) {
	ctrl := gomock.NewController(t)

	m := mocks{
		proposals: NewMockProposalService(ctrl),
		clients:   NewMockClientService(ctrl),
		reports:   NewMockReportService(ctrl),
	}

	return m, Services{Principal: principal, Proposals: m.proposals, Clients: m.clients, Reports: m.reports}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func date(y int, mo time.Month, d, h, mi, s, ms int) time.Time {
	return time.Date(y, mo, d, h, mi, s, ms*int(time.Millisecond), proposal.Location)
}

func TestDateRange(t *testing.T) {
	now := date(2026, time.October, 14, 15, 0, 0, 0) // Wednesday

	type testCase struct {
		name      string
		frame     Timeframe
		wantStart time.Time
		wantEnd   time.Time
		wantOK    bool
	}

	tests := []testCase{
		{"All", TimeframeAll, time.Time{}, time.Time{}, false},
		{"Today", TimeframeToday, date(2026, time.October, 14, 0, 0, 0, 0), date(2026, time.October, 14, 23, 59, 59, 999), true},
		{"ThisWeek", TimeframeThisWeek, date(2026, time.October, 12, 0, 0, 0, 0), date(2026, time.October, 14, 23, 59, 59, 999), true},
		{"ThisMonth", TimeframeThisMonth, date(2026, time.October, 1, 0, 0, 0, 0), date(2026, time.October, 14, 23, 59, 59, 999), true},
		{"LastMonth", TimeframeLastMonth, date(2026, time.September, 1, 0, 0, 0, 0), date(2026, time.September, 30, 23, 59, 59, 999), true},
		{"Last90Days", TimeframeLast90Days, date(2026, time.July, 17, 0, 0, 0, 0), date(2026, time.October, 14, 23, 59, 59, 999), true},
		{"Custom", TimeframeCustom, time.Time{}, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, ok := DateRange(tt.frame, now)
			require.Equal(t, tt.wantOK, ok)

			if ok {
				assert.True(t, tt.wantStart.Equal(start), "start %s", start)
				assert.True(t, tt.wantEnd.Equal(end), "end %s", end)
			}
		})
	}
}

func TestDateRange_Sunday(t *testing.T) {
	start, _, ok := DateRange(TimeframeThisWeek, date(2026, time.October, 18, 9, 0, 0, 0))
	require.True(t, ok)
	assert.True(t, date(2026, time.October, 12, 0, 0, 0, 0).Equal(start))
}

func TestDateRange_January(t *testing.T) {
	start, end, ok := DateRange(TimeframeLastMonth, date(2027, time.January, 5, 9, 0, 0, 0))
	require.True(t, ok)
	assert.True(t, date(2026, time.December, 1, 0, 0, 0, 0).Equal(start))
	assert.True(t, date(2026, time.December, 31, 23, 59, 59, 999).Equal(end))
}

func TestParseCustomRange(t *testing.T) {
	start, end, err := parseCustomRange("01/09/2026", "15/09/2026")
	require.NoError(t, err)
	assert.True(t, date(2026, time.September, 1, 0, 0, 0, 0).Equal(start))
	assert.True(t, date(2026, time.September, 15, 23, 59, 59, 999).Equal(end))

	_, _, err = parseCustomRange("2026-09-01", "15/09/2026")
	assert.ErrorContains(t, err, "start")

	_, _, err = parseCustomRange("15/09/2026", "01/09/2026")
	assert.ErrorContains(t, err, "before")
}

func TestFilters_Criteria(t *testing.T) {
	from := date(2026, time.October, 1, 0, 0, 0, 0)

	type testCase struct {
		name    string
		filters Filters
		want    proposal.Criteria
	}

	tests := []testCase{
		{
			name:    "Empty",
			filters: Filters{},
			want:    proposal.Criteria{},
		},
		{
			name:    "StatusAndReceiver",
			filters: Filters{Search: "  silva ", StatusIdx: 2, ReceiverIdx: 3},
			want: proposal.Criteria{
				Search:        "silva",
				Statuses:      []proposal.Status{proposal.StatusApproved},
				ReceiverTypes: []proposal.ReceiverType{proposal.ReceiverPrecatorio},
			},
		},
		{
			name:    "ValuesAndDates",
			filters: Filters{From: &from, MinValue: "R$ 1.000,00", MaxValue: "abc"},
			want:    proposal.Criteria{DateFrom: &from, MinValue: new(int64(100000))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filters.Criteria())
		})
	}
}

func TestDraft_Form(t *testing.T) {
	clientID := uuid.New()

	t.Run("Manual", func(t *testing.T) {
		d := &Draft{Recipient: recipientManual, ClientName: "Ana Souza", ClientEmail: "ana@example.com", CedibleValue: "R$ 10,00"}

		f := d.Form()
		assert.Equal(t, "Ana Souza", f.ClientName)
		assert.Equal(t, "R$ 10,00", f.CedibleValue)
		assert.Nil(t, f.NewClient)
		assert.Nil(t, f.ExistingClientID)
	})

	t.Run("NewClient", func(t *testing.T) {
		d := &Draft{Recipient: recipientNew, FirstName: "Ana", LastName: "Souza", Email: "ana@example.com", WhatsApp: "11 90000-0000", ClientName: "ignored"}

		f := d.Form()
		require.NotNil(t, f.NewClient)
		assert.Equal(t, "Ana", f.NewClient.FirstName)
		assert.Empty(t, f.ClientName)
	})

	t.Run("Existing", func(t *testing.T) {
		d := &Draft{Recipient: clientID.String(), ReceiverType: "autor"}

		f := d.Form()
		require.NotNil(t, f.ExistingClientID)
		assert.Equal(t, clientID, *f.ExistingClientID)
		assert.Equal(t, proposal.ReceiverPlaintiff, f.ReceiverType)
	})

	t.Run("TypedDigits", func(t *testing.T) {
		d := &Draft{CedibleValue: "10000", ProposalValue: "850"}

		f := d.Form()
		assert.Equal(t, "R$ 100,00", f.CedibleValue)
		assert.Equal(t, "R$ 8,50", f.ProposalValue)

		cents, err := money.Parse(f.CedibleValue)
		require.NoError(t, err)
		assert.Equal(t, int64(10000), cents)
	})

	t.Run("EmptyAmount", func(t *testing.T) {
		assert.Empty(t, (&Draft{}).Form().CedibleValue)
	})

	t.Run("BadID", func(t *testing.T) {
		f := (&Draft{Recipient: "not-an-id"}).Form()
		require.NotNil(t, f.ExistingClientID)
		assert.Equal(t, uuid.Nil, *f.ExistingClientID)
	})
}

func TestListModel_LoadAndFilter(t *testing.T) {
	m, svc := newServices(t)

	listed := []*proposal.Proposal{{
		ID:            uuid.New(),
		ClientName:    "Ana Souza",
		ProcessNumber: "0001234-56.2024.8.26.0100",
		ReceiverType:  proposal.ReceiverLawyer,
		ProposalValue: 150000,
		Status:        proposal.StatusPending,
		CreatedAt:     date(2026, time.October, 2, 10, 0, 0, 0),
	}}

	gomock.InOrder(
		m.proposals.EXPECT().List(gomock.Any(), principal, proposal.Criteria{}).Return(listed, nil),
		m.proposals.EXPECT().List(gomock.Any(), principal, proposal.Criteria{
			Statuses: []proposal.Status{proposal.StatusPending},
		}).Return(nil, nil),
	)

	model := NewListModel(svc)
	updated, _ := model.Update(model.Init()())
	model = updated.(ListModel)

	require.False(t, model.loading)
	require.Len(t, model.table.Rows(), 1)
	row := model.table.Rows()[0]
	assert.Equal(t, "02/10/2026", row[0])
	assert.Equal(t, "Advogado", row[3])
	assert.Equal(t, "R$ 1.500,00", row[4])

	updated, cmd := model.Update(key("s"))
	model = updated.(ListModel)
	require.NotNil(t, cmd)

	updated, _ = model.Update(cmd())
	model = updated.(ListModel)
	assert.Empty(t, model.table.Rows())
	assert.Contains(t, model.View(), "pendente")
}

func TestListModel_LoadError(t *testing.T) {
	m, svc := newServices(t)
	m.proposals.EXPECT().List(gomock.Any(), principal, gomock.Any()).Return(nil, errors.New("connection refused"))

	model := NewListModel(svc)
	updated, _ := model.Update(model.Init()())

	assert.Contains(t, updated.View(), "connection refused")
}

func TestListModel_Back(t *testing.T) {
	_, svc := newServices(t)

	model := NewListModel(svc)
	model.loading = false

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, BackMsg{}, cmd())
}

func TestListModel_Timeframe(t *testing.T) {
	m, svc := newServices(t)

	from, to := date(2026, time.September, 1, 0, 0, 0, 0), date(2026, time.September, 30, 23, 59, 59, 999)
	m.proposals.EXPECT().List(gomock.Any(), principal, proposal.Criteria{DateFrom: &from, DateTo: &to}).Return(nil, nil)

	model := NewListModel(svc)
	model.loading = false

	updated, _ := model.Update(key("d"))
	model = updated.(ListModel)
	assert.Equal(t, listStateTimeframe, model.state)

	updated, cmd := model.Update(TimeframeSelectedMsg{Frame: TimeframeCustom, From: &from, To: &to})
	model = updated.(ListModel)
	assert.Equal(t, listStateBrowse, model.state)
	model.Update(cmd())
	assert.Contains(t, model.View(), "01/09/2026 - 30/09/2026")
}

func TestCreateModel_Submit(t *testing.T) {
	m, svc := newServices(t)

	clientID := uuid.New()
	m.clients.EXPECT().List(gomock.Any(), principal.CompanyID, "").
		Return([]*client.Client{{ID: clientID, FirstName: "Ana", LastName: "Souza", Email: "ana@example.com"}}, nil)

	model := NewCreateModel(svc)
	updated, _ := model.Update(model.Init()())
	model = updated.(CreateModel)
	require.Equal(t, createStateForm, model.state)
	require.Len(t, model.clients, 1)

	model.draft.Recipient = clientID.String()
	model.draft.CedibleValue = "R$ 10.000,00"
	model.draft.ProposalValue = "R$ 8.000,00"

	created := &proposal.Proposal{ID: uuid.New(), ClientName: "Ana Souza", ProposalValue: 800000, ValidUntil: date(2026, time.November, 13, 12, 0, 0, 0)}
	m.proposals.EXPECT().Submit(gomock.Any(), principal, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ auth.Principal, f proposal.Form) (*proposal.Proposal, error) {
			require.NotNil(t, f.ExistingClientID)
			assert.Equal(t, clientID, *f.ExistingClientID)
			assert.Equal(t, "R$ 8.000,00", f.ProposalValue)

			return created, nil
		})

	updated, _ = model.Update(model.submitCmd()())
	model = updated.(CreateModel)

	assert.Equal(t, createStateDone, model.state)
	view := model.View()
	assert.Contains(t, view, "Proposal created for Ana Souza")
	assert.Contains(t, view, "R$ 8.000,00")
	assert.Contains(t, view, "13/11/2026")

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model = updated.(CreateModel)
	assert.Equal(t, createStateForm, model.state)
	assert.Equal(t, recipientManual, model.draft.Recipient)
}

func TestCreateModel_ValidationProblems(t *testing.T) {
	m, svc := newServices(t)
	m.clients.EXPECT().List(gomock.Any(), principal.CompanyID, "").Return(nil, errors.New("timeout"))

	model := NewCreateModel(svc)
	updated, _ := model.Update(model.Init()())
	model = updated.(CreateModel)
	require.Equal(t, createStateForm, model.state)

	model.draft.ClientName = "Ana Souza"

	verr := &validation.Error{}
	verr.Add("proposal_value", "must not exceed the cedible value")
	m.proposals.EXPECT().Submit(gomock.Any(), principal, gomock.Any()).Return(nil, verr)

	updated, _ = model.Update(model.submitCmd()())
	model = updated.(CreateModel)
	assert.Contains(t, model.View(), "proposal_value must not exceed the cedible value")

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model = updated.(CreateModel)
	assert.Equal(t, createStateForm, model.state)
	assert.Equal(t, "Ana Souza", model.draft.ClientName)
}

func TestFieldValidators(t *testing.T) {
	assert.Error(t, required("  "))
	assert.NoError(t, emailAddress(" ana@example.com "))
	assert.Error(t, emailAddress("ana"))
	assert.NoError(t, requiredAmount("R$ 1.234,56"))
	assert.Error(t, requiredAmount(""))
	assert.Error(t, requiredAmount("abc"))
	assert.NoError(t, requiredAmount("10000"))
	assert.Error(t, requiredAmount("99999999999999999999"))
	assert.NoError(t, validAmount(""))
	assert.Error(t, validAmount("abc"))
}

func TestClientsModel_Search(t *testing.T) {
	m, svc := newServices(t)

	gomock.InOrder(
		m.clients.EXPECT().List(gomock.Any(), principal.CompanyID, "").Return(nil, nil),
		m.clients.EXPECT().List(gomock.Any(), principal.CompanyID, "souza").
			Return([]*client.Client{{FirstName: "Ana", LastName: "Souza", Email: "ana@example.com", CreatedAt: date(2026, time.March, 3, 9, 0, 0, 0)}}, nil),
	)

	model := NewClientsModel(svc)
	updated, _ := model.Update(model.searchCmd("")())
	model = updated.(ClientsModel)
	assert.Contains(t, model.View(), "No clients found.")

	model.searchInput.SetValue("souza")
	updated, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model = updated.(ClientsModel)

	updated, _ = model.Update(cmd())
	model = updated.(ClientsModel)
	require.Len(t, model.table.Rows(), 1)
	assert.Equal(t, "Ana Souza", model.table.Rows()[0][0])
	assert.Equal(t, "03/03/2026", model.table.Rows()[0][3])
}

func TestReportModel_Period(t *testing.T) {
	m, svc := newServices(t)

	built := &report.Report{
		Stats:     report.Stats{Total: 4, Approved: 1, ConversionRate: 25, TotalValue: 400000},
		Assignees: []report.AssigneeStats{{Name: "Rui Costa", Stats: report.Stats{Total: 4, ConversionRate: 25}}},
	}

	gomock.InOrder(
		m.reports.EXPECT().Build(gomock.Any(), principal, report.Month).Return(built, nil),
		m.reports.EXPECT().Build(gomock.Any(), principal, report.Quarter).Return(built, nil),
	)

	model := NewReportModel(svc)
	updated, _ := model.Update(model.Init()())
	model = updated.(ReportModel)

	view := model.View()
	assert.Contains(t, view, "Last 30 days")
	assert.Contains(t, view, "25.0%")
	assert.Contains(t, view, "Rui Costa")

	updated, cmd := model.Update(key("p"))
	model = updated.(ReportModel)
	model.Update(cmd())
	assert.Contains(t, model.View(), "Last 90 days")
}
