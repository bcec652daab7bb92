package internal

import (
	"bytes"
	"fmt"
	"html"
	"robokassa/entity"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"
)

var formTemplate = template.Must(template.New("form").Parse(`<form action='{{.Action}}' method=POST>
{{range .Fields}}<input type=hidden name={{.Name}} value={{.Quote}}{{.Value}}{{.Quote}}>
{{end}}<input type=submit value='{{.Submit}}'>
</form>
`))

type formField struct {
	Name  string
	Value string
	Quote string
}

// Form renders an HTML form posting the payment to the gateway.
// Custom field names are capitalized; Receipt is single-quoted because its JSON may contain double quotes.
func (m *Merchant) Form(options *entity.PaymentOptions) (string, error) {
	list, err := m.params(options)
	if err != nil {
		return "", err
	}
	fields := make([]formField, 0, len(list))
	for _, p := range list {
		name := p.name
		if entity.IsShpKey(name) {
			name = upperFirst(name)
		}
		quote := p.quote
		if quote == "" {
			quote = `"`
		}
		fields = append(fields, formField{
			Name:  name,
			Value: html.EscapeString(p.value),
			Quote: quote,
		})
	}

	var buf bytes.Buffer
	err = formTemplate.Execute(&buf, struct {
		Action string
		Fields []formField
		Submit string
	}{
		Action: html.EscapeString(strings.TrimRight(m.conf.BaseUrl, "?")),
		Fields: fields,
		Submit: html.EscapeString(m.conf.SubmitLabel),
	})
	if err != nil {
		return "", fmt.Errorf("render form: %v", err)
	}
	return buf.String(), nil
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
