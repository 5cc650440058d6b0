package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/legalprop/propostas/internal/auth"
	"github.com/legalprop/propostas/internal/client"
	clientStore "github.com/legalprop/propostas/internal/client/store"
	"github.com/legalprop/propostas/internal/company"
	companyStore "github.com/legalprop/propostas/internal/company/store"
	"github.com/legalprop/propostas/internal/config"
	"github.com/legalprop/propostas/internal/database"
	"github.com/legalprop/propostas/internal/document"
	legalpropHttp "github.com/legalprop/propostas/internal/http"
	clientHandler "github.com/legalprop/propostas/internal/http/client"
	companyHandler "github.com/legalprop/propostas/internal/http/company"
	proposalHandler "github.com/legalprop/propostas/internal/http/proposal"
	reportHandler "github.com/legalprop/propostas/internal/http/report"
	settingsHandler "github.com/legalprop/propostas/internal/http/settings"
	teamHandler "github.com/legalprop/propostas/internal/http/team"
	"github.com/legalprop/propostas/internal/mail"
	"github.com/legalprop/propostas/internal/notify"
	"github.com/legalprop/propostas/internal/proposal"
	proposalStore "github.com/legalprop/propostas/internal/proposal/store"
	"github.com/legalprop/propostas/internal/ratelimit"
	"github.com/legalprop/propostas/internal/report"
	"github.com/legalprop/propostas/internal/settings"
	settingsStore "github.com/legalprop/propostas/internal/settings/store"
	"github.com/legalprop/propostas/internal/team"
	teamStore "github.com/legalprop/propostas/internal/team/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.DB.Migrate {
		if err := database.Migrate(ctx, db); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	var (
		settingsRepo  settings.Repository = settingsStore.NewMemory()
		inviteCounter ratelimit.Counter   = ratelimit.NewMemoryCounter()
	)

	if cfg.Redis.Addr != "" {
		rdb, err := database.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()

		settingsRepo = settingsStore.NewRedis(rdb)
		inviteCounter = ratelimit.NewRedisCounter(rdb)
	} else {
		slog.Warn("redis not configured, settings and rate limits are kept in memory")
	}

	mailer := mail.New(mail.Config{
		From:         cfg.Email.From,
		ResendAPIKey: cfg.Email.ResendAPIKey,
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUser:     cfg.Email.SMTPUser,
		SMTPPassword: cfg.Email.SMTPPassword,
	})

	baseURL := cfg.ShareBaseURL()

	var (
		companies  = companyStore.New(db)
		proposals  = proposalStore.New(db)
		inviteRate = ratelimit.New(inviteCounter, "invites", cfg.Team.InvitesPerWindow, cfg.Team.InvitationsWindow)
	)

	var (
		companyService  = company.NewService(companies)
		clientService   = client.NewService(clientStore.New(db))
		notifyService   = notify.NewService(mailer, companies, baseURL)
		proposalService = proposal.NewService(proposals, proposals, clientService,
			proposal.WithValidity(cfg.Proposal.Validity),
			proposal.WithValueCap(cfg.Proposal.EnforceValueCap),
			proposal.WithStatusListener(notifyService.OnStatusChange),
		)
		documentService = document.NewService(proposalService, companies)
		teamService     = team.NewService(teamStore.New(db), companies, mailer, inviteRate, team.Options{
			BaseURL: baseURL,
			TTL:     cfg.Team.InvitationTTL,
		})
		reportService   = report.NewService(proposalService)
		settingsService = settings.NewService(settingsRepo)
	)

	var (
		proposalH = proposalHandler.NewHandler(proposalService, notifyService, documentService, baseURL)
		clientH   = clientHandler.NewHandler(clientService)
		companyH  = companyHandler.NewHandler(companyService)
		teamH     = teamHandler.NewHandler(teamService)
		reportH   = reportHandler.NewHandler(reportService)
		settingsH = settingsHandler.NewHandler(settingsService)
	)

	router := legalpropHttp.New(
		legalpropHttp.Options{AllowedOrigins: cfg.App.AllowedOrigins, Timeout: cfg.Server.Timeout},
		auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTAudience),
		companyService,
		proposalH, clientH, companyH, teamH, reportH, settingsH,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
