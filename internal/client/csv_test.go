package client_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legalprop/propostas/internal/client"
)

func TestParseCSV_SemicolonWithPreamble(t *testing.T) {
	input := "Exportado em 01/02/2024;;;\n" +
		"Primeiro Nome;Último Nome;E-mail;Celular\n" +
		"Ana;Lima;ANA@EXAMPLE.COM;11999990000\n" +
		";;;\n"

	rows, charset, err := client.ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "UTF-8", charset)

	require.Len(t, rows, 1)
	assert.Equal(t, client.Row{
		Line:      3,
		FirstName: "Ana",
		LastName:  "Lima",
		Email:     "ana@example.com",
		WhatsApp:  "11999990000",
	}, rows[0])
}

func TestParseCSV_CommaFullName(t *testing.T) {
	input := "Cliente,Email,Telefone\n\"Carlos Alberto Souza\",carlos@example.com,21 98888-7777\n"

	rows, _, err := client.ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Carlos", rows[0].FirstName)
	assert.Equal(t, "Alberto Souza", rows[0].LastName)
}

func TestParseCSV_Windows1252(t *testing.T) {
	// "Nome;Sobrenome;Email\nJoão;Assunção;j@x.com\n" in Windows-1252
	var b bytes.Buffer
	b.WriteString("Nome;Sobrenome;Email\nJo")
	b.WriteByte(0xE3)
	b.WriteString("o;Assun")
	b.WriteByte(0xE7)
	b.WriteByte(0xE3)
	b.WriteString("o;j@x.com\n")

	rows, _, err := client.ParseCSV(&b)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "João", rows[0].FirstName)
	assert.Equal(t, "Assunção", rows[0].LastName)
}

func TestParseCSV_NoHeader(t *testing.T) {
	_, _, err := client.ParseCSV(strings.NewReader("a;b;c\n1;2;3\n"))
	assert.Error(t, err)
}
