package web

import (
	"html/template"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var inPrinter = message.NewPrinter(language.MustParse("en-IN"))

// paise → "₹1,23,456.00"
func formatMoney(paise int64) string {
	return "₹" + inPrinter.Sprint(number.Decimal(float64(paise)/100, number.Scale(2)))
}

func formatDate(t time.Time) string {
	return t.Format("02 Jan 2006, 15:04")
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"money": formatMoney,
		"date":  formatDate,
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}
}
