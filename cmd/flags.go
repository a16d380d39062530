package cmd

import (
	"github.com/spf13/pflag"

	"github.com/oakwood-commons/querybar/pkg/query"
)

// languageFlag is a --language value checked at parse time.
type languageFlag string

var _ pflag.Value = (*languageFlag)(nil)

func (l *languageFlag) String() string { return string(*l) }

func (l *languageFlag) Set(s string) error {
	lang, err := query.ParseLanguage(s)
	if err != nil {
		return err
	}
	*l = languageFlag(lang)
	return nil
}

func (*languageFlag) Type() string { return "language" }
