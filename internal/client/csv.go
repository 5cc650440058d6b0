package client

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	enc "github.com/legalprop/propostas/internal/encoding"
)

// Row is one client read from a spreadsheet, before validation.
type Row struct {
	Line      int
	FirstName string
	LastName  string
	Email     string
	WhatsApp  string
}

// column names accepted for each field, compared after folding case and accents
var headerAliases = map[string][]string{
	"first_name": {"nome", "primeiro nome", "first name", "first_name"},
	"last_name":  {"sobrenome", "ultimo nome", "last name", "last_name"},
	"email":      {"email", "e-mail"},
	"whatsapp":   {"whatsapp", "celular", "telefone", "phone"},
	"full_name":  {"nome completo", "cliente", "name"},
}

// ParseCSV reads clients from a comma or semicolon separated export. The
// header row may appear after preamble lines and is recognized by its column
// names. It returns the detected source charset along with the rows.
func ParseCSV(r io.Reader) ([]Row, string, error) {
	utf8r, charset, err := enc.Detect(r)
	if err != nil {
		return nil, "", fmt.Errorf("detect encoding: %w", err)
	}

	br := bufio.NewReader(utf8r)

	comma, err := sniffDelimiter(br)
	if err != nil {
		return nil, charset, err
	}

	reader := csv.NewReader(br)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, charset, fmt.Errorf("read csv: %w", err)
	}

	cols, headerIdx, ok := detectHeader(records)
	if !ok {
		return nil, charset, fmt.Errorf("no client header found: expected columns nome, sobrenome, email and whatsapp")
	}

	var rows []Row

	for i, rec := range records[headerIdx+1:] {
		row := Row{
			Line:      headerIdx + i + 2, // 1-based, after header
			FirstName: cell(rec, cols, "first_name"),
			LastName:  cell(rec, cols, "last_name"),
			Email:     strings.ToLower(cell(rec, cols, "email")),
			WhatsApp:  cell(rec, cols, "whatsapp"),
		}

		if full := cell(rec, cols, "full_name"); full != "" && row.FirstName == "" {
			row.FirstName, row.LastName = splitName(full)
		}

		if row == (Row{Line: row.Line}) {
			continue
		}

		rows = append(rows, row)
	}

	return rows, charset, nil
}

// Params converts the row into creation params for companyID.
func (r Row) Params(companyID uuid.UUID) CreateParams {
	return CreateParams{
		CompanyID: companyID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		WhatsApp:  r.WhatsApp,
	}
}

func sniffDelimiter(br *bufio.Reader) (rune, error) {
	line, err := br.Peek(br.Size())
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return 0, fmt.Errorf("peek: %w", err)
	}

	first, _, _ := strings.Cut(string(line), "\n")
	if strings.Count(first, ";") >= strings.Count(first, ",") && strings.Contains(first, ";") {
		return ';', nil
	}

	return ',', nil
}

type colIndex map[string]int

func detectHeader(records [][]string) (colIndex, int, bool) {
	for rowIdx, rec := range records {
		cols := make(colIndex)

		for i, name := range rec {
			if field, ok := fieldFor(name); ok {
				if _, seen := cols[field]; !seen {
					cols[field] = i
				}
			}
		}

		_, hasEmail := cols["email"]
		_, hasFirst := cols["first_name"]
		_, hasFull := cols["full_name"]

		if hasEmail && (hasFirst || hasFull) {
			return cols, rowIdx, true
		}
	}

	return nil, 0, false
}

func fieldFor(header string) (string, bool) {
	key := foldHeader(header)

	for field, aliases := range headerAliases {
		for _, a := range aliases {
			if key == a {
				return field, true
			}
		}
	}

	return "", false
}

// foldHeader lowercases and strips accents: "Último Nome" -> "ultimo nome".
func foldHeader(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		out = s
	}

	return cases.Fold().String(out)
}

func cell(rec []string, cols colIndex, field string) string {
	idx, ok := cols[field]
	if !ok || idx >= len(rec) {
		return ""
	}

	return strings.TrimSpace(rec[idx])
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}

	return parts[0], strings.Join(parts[1:], " ")
}
