package client_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/legalprop/propostas/internal/client"
	"github.com/legalprop/propostas/internal/validation"
)

func TestService_Create(t *testing.T) {
	companyID := uuid.New()

	type args struct {
		params client.CreateParams
	}

	type testCase struct {
		name       string
		args       args
		setupMock  func(m *client.MockRepository)
		wantFields []string
		wantErr    bool
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{params: client.CreateParams{
				CompanyID: companyID,
				FirstName: " Maria ",
				LastName:  "Souza",
				Email:     "Maria@Example.com",
				WhatsApp:  "+55 11 98765-4321",
			}},
			setupMock: func(m *client.MockRepository) {
				m.EXPECT().
					CreateClient(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, c *client.Client) error {
						assert.Equal(t, "Maria", c.FirstName)
						assert.Equal(t, "maria@example.com", c.Email)
						assert.Equal(t, companyID, c.CompanyID)
						return nil
					})
			},
		},
		{
			name:       "ValidationFailure",
			args:       args{params: client.CreateParams{CompanyID: companyID, Email: "not-an-email"}},
			wantFields: []string{"first_name", "last_name", "email", "whatsapp"},
			wantErr:    true,
		},
		{
			name: "RepoError",
			args: args{params: client.CreateParams{
				CompanyID: companyID, FirstName: "A", LastName: "B", Email: "a@b.com", WhatsApp: "11",
			}},
			setupMock: func(m *client.MockRepository) {
				m.EXPECT().CreateClient(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := client.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := client.NewService(repo)
			got, err := svc.Create(context.Background(), tt.args.params)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				if len(tt.wantFields) > 0 {
					verr, ok := validation.As(err)
					require.True(t, ok)

					for _, f := range tt.wantFields {
						assert.True(t, verr.Has(f), "expected problem for %s", f)
					}
				}

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
		})
	}
}

func TestService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	companyID := uuid.New()
	repo := client.NewMockRepository(ctrl)
	repo.EXPECT().
		ListClients(gomock.Any(), companyID).
		Return([]*client.Client{
			{FirstName: "Ana", LastName: "Lima", Email: "ana@example.com"},
			{FirstName: "Bruno", LastName: "Reis", Email: "bruno@example.com"},
		}, nil)

	got, err := client.NewService(repo).List(context.Background(), companyID, "LIMA")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ana", got[0].FirstName)
}

func TestService_Update(t *testing.T) {
	companyID, id := uuid.New(), uuid.New()

	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := client.NewMockRepository(ctrl)
		repo.EXPECT().GetClient(gomock.Any(), companyID, id).
			Return(&client.Client{ID: id, FirstName: "Ana", LastName: "Lima", Email: "ana@example.com"}, nil)
		repo.EXPECT().UpdateClient(gomock.Any(), gomock.Any()).Return(nil)

		got, err := client.NewService(repo).Update(context.Background(), companyID, id, client.UpdateParams{
			Email: new("ANA@novo.com"),
		})
		require.NoError(t, err)
		assert.Equal(t, "ana@novo.com", got.Email)
		assert.Equal(t, "Ana", got.FirstName)
	})

	t.Run("BlankName", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := client.NewMockRepository(ctrl)
		repo.EXPECT().GetClient(gomock.Any(), companyID, id).
			Return(&client.Client{ID: id, FirstName: "Ana", LastName: "Lima"}, nil)

		_, err := client.NewService(repo).Update(context.Background(), companyID, id, client.UpdateParams{
			FirstName: new("  "),
		})
		verr, ok := validation.As(err)
		require.True(t, ok)
		assert.True(t, verr.Has("first_name"))
	})

	t.Run("NotFound", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := client.NewMockRepository(ctrl)
		repo.EXPECT().GetClient(gomock.Any(), companyID, id).Return(nil, client.ErrNotFound)

		_, err := client.NewService(repo).Update(context.Background(), companyID, id, client.UpdateParams{})
		assert.ErrorIs(t, err, client.ErrNotFound)
	})
}

func TestService_Import(t *testing.T) {
	companyID := uuid.New()

	const sheet = "Nome;Sobrenome;E-mail;WhatsApp\n" +
		"Ana;Lima;ana@example.com;11999990000\n" +
		"Bruno;Reis;bruno@example.com;11988880000\n" +
		"Carla;;carla@example.com;11977770000\n" +
		"Ana;Lima;ANA@example.com;11999990000\n" +
		"Davi;Melo;davi@example.com;11966660000\n"

	type testCase struct {
		name         string
		setupMock    func(m *client.MockRepository, itx *client.MockImportTx)
		wantImported int
		wantSkipped  int
		wantProblems int
		wantErr      bool
	}

	tests := []testCase{
		{
			name: "SkipsExistingAndRepeated",
			setupMock: func(m *client.MockRepository, itx *client.MockImportTx) {
				m.EXPECT().BeginImport(gomock.Any(), companyID).Return(itx, nil)
				itx.EXPECT().
					ExistingEmails(gomock.Any(), []string{"ana@example.com", "bruno@example.com", "ana@example.com", "davi@example.com"}).
					Return(map[string]bool{"bruno@example.com": true}, nil)
				itx.EXPECT().
					CreateClients(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, cs []*client.Client) error {
						require.Len(t, cs, 2)
						assert.Equal(t, "ana@example.com", cs[0].Email)
						assert.Equal(t, "davi@example.com", cs[1].Email)
						return nil
					})
				itx.EXPECT().Commit().Return(nil)
				itx.EXPECT().Rollback().Return(nil)
			},
			wantImported: 2,
			wantSkipped:  2,
			wantProblems: 1,
		},
		{
			name: "CreateFailsRollsBack",
			setupMock: func(m *client.MockRepository, itx *client.MockImportTx) {
				m.EXPECT().BeginImport(gomock.Any(), companyID).Return(itx, nil)
				itx.EXPECT().ExistingEmails(gomock.Any(), gomock.Any()).Return(map[string]bool{}, nil)
				itx.EXPECT().CreateClients(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
				itx.EXPECT().Rollback().Return(nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := client.NewMockRepository(ctrl)
			itx := client.NewMockImportTx(ctrl)
			tt.setupMock(repo, itx)

			got, err := client.NewService(repo).Import(context.Background(), companyID, strings.NewReader(sheet))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantImported, got.Imported)
			assert.Equal(t, tt.wantSkipped, got.Skipped)
			assert.Len(t, got.Problems, tt.wantProblems)
			assert.Equal(t, "UTF-8", got.Charset)
		})
	}
}

func TestService_Import_NothingValid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := client.NewMockRepository(ctrl)

	got, err := client.NewService(repo).Import(context.Background(), uuid.New(),
		strings.NewReader("nome,email\n,broken\n"))
	require.NoError(t, err)
	assert.Zero(t, got.Imported)
	assert.Len(t, got.Problems, 1)
}
