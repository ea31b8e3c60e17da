package importer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// rule maps a keyword group to a category label. Rules are evaluated
// top-to-bottom and the first matching group wins, so a description that
// matches more than one group gets the earlier label. Keep this a slice:
// the order is part of the contract.
type rule struct {
	keywords []string
	label    string
}

var categoryRules = []rule{
	{[]string{"salario", "ordenado", "vencimento"}, "Receita"},
	{[]string{"pix recebido"}, "Receita"},
	{[]string{"restaurante", "ifood", "rappi", "lanche"}, "Alimentação"},
	{[]string{"supermercado", "mercado"}, "Mercado"},
	{[]string{"transporte", "uber", "99"}, "Transporte"},
	{[]string{"conta de luz", "energia", "claro", "net", "vivo", "tim"}, "Contas Fixas"},
	{[]string{"farmacia", "drogaria"}, "Saúde"},
	{[]string{"aluguel"}, "Moradia"},
}

// CategoryOther is the fallback label for unmatched descriptions.
const CategoryOther = "Outros"

var stripAccents = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalize lowercases the description and drops diacritics so matching is
// case- and accent-insensitive ("Salário" matches "salario").
func normalize(s string) string {
	out, _, err := transform.String(stripAccents, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Categorize maps a free-text transaction description to a category label
// by keyword containment. Unmatched descriptions get CategoryOther.
func Categorize(description string) string {
	d := normalize(description)
	for _, r := range categoryRules {
		for _, k := range r.keywords {
			if strings.Contains(d, k) {
				return r.label
			}
		}
	}
	return CategoryOther
}
