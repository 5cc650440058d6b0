package team

import (
	"bytes"
	"html/template"
	"strings"
	"time"
)

var invitationTemplate = template.Must(template.New("invitation").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Convite para Equipe</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 30px; border-radius: 10px; text-align: center; margin-bottom: 30px;">
    <h1 style="margin: 0; font-size: 28px;">🎉 Você foi convidado!</h1>
    <p style="margin: 10px 0 0; font-size: 16px; opacity: 0.9;">Faça parte da nossa equipe</p>
  </div>
  <div style="background: #f8f9fa; padding: 25px; border-radius: 8px; margin-bottom: 25px;">
    <h2 style="color: #495057; margin-top: 0;">Olá, {{.FirstName}}!</h2>
    <p>Você foi convidado por <strong>{{.Inviter}}</strong> para fazer parte da equipe da <strong>{{.Company}}</strong>.</p>
    <div style="background: white; padding: 20px; border-radius: 6px; margin: 20px 0;">
      <h3 style="margin-top: 0; color: #495057;">Dados do convite:</h3>
      <p><strong>Nome:</strong> {{.FirstName}} {{.LastName}}</p>
      <p><strong>Email:</strong> {{.Email}}</p>
      {{- if .Phone}}
      <p><strong>WhatsApp:</strong> {{.Phone}}</p>
      {{- end}}
      <p><strong>Empresa:</strong> {{.Company}}</p>
    </div>
  </div>
  <div style="text-align: center; margin: 30px 0;">
    <a href="{{.Link}}" style="background: #28a745; color: white; padding: 15px 30px; text-decoration: none; border-radius: 6px; font-weight: bold; font-size: 16px; display: inline-block;">
      🚀 Aceitar Convite e Criar Conta
    </a>
  </div>
  <div style="background: #fff3cd; border: 1px solid #ffeaa7; padding: 15px; border-radius: 6px; margin-bottom: 25px;">
    <p style="margin: 0; font-size: 14px; color: #856404;">
      <strong>⏰ Importante:</strong> Este convite expira em {{.Days}} dias. Clique no link acima para criar sua conta.
    </p>
  </div>
  <div style="border-top: 1px solid #dee2e6; padding-top: 20px; text-align: center; color: #6c757d; font-size: 14px;">
    <p>Este é um convite da plataforma {{.Company}}.</p>
    <p>Se você não esperava este convite, pode ignorar este email.</p>
    <p>© {{.Year}} {{.Company}} - Plataforma de Propostas Jurídicas</p>
  </div>
</body>
</html>
`))

type invitationEmail struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Inviter   string
	Company   string
	Link      string
	Days      int
	Year      int
}

func invitationSubject(company string) string {
	return "Convite para fazer parte da equipe " + company
}

// InvitationLink is where the invited user registers.
func InvitationLink(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/convite/" + token
}

func renderInvitation(inv *Invitation, inviter, company, link string, now time.Time) (string, error) {
	days := int(inv.ExpiresAt.Sub(inv.CreatedAt).Round(24*time.Hour) / (24 * time.Hour))

	var buf bytes.Buffer

	err := invitationTemplate.Execute(&buf, invitationEmail{
		FirstName: inv.FirstName,
		LastName:  inv.LastName,
		Email:     inv.Email,
		Phone:     inv.Phone,
		Inviter:   inviter,
		Company:   company,
		Link:      link,
		Days:      days,
		Year:      now.Year(),
	})
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}
