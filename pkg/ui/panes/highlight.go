package panes

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/odvcencio/panes/pkg/ui/backend"
)

// codePalette maps token categories to cell styles.
type codePalette struct {
	Default     backend.Style
	Keyword     backend.Style
	TypeName    backend.Style
	Function    backend.Style
	String      backend.Style
	Number      backend.Style
	Comment     backend.Style
	Operator    backend.Style
	Punctuation backend.Style
	Builtin     backend.Style
	Tag         backend.Style
	Error       backend.Style
}

func newCodePalette(base backend.Style) codePalette {
	return codePalette{
		Default:     base,
		Keyword:     base.Foreground(backend.ColorMagenta).Bold(true),
		TypeName:    base.Foreground(backend.ColorCyan),
		Function:    base.Foreground(backend.ColorBlue),
		String:      base.Foreground(backend.ColorGreen),
		Number:      base.Foreground(backend.ColorYellow),
		Comment:     base.Foreground(backend.ColorBrightBlack).Italic(true),
		Operator:    base.Foreground(backend.ColorBrightWhite),
		Punctuation: base.Foreground(backend.ColorBrightBlack),
		Builtin:     base.Foreground(backend.ColorCyan),
		Tag:         base.Foreground(backend.ColorMagenta),
		Error:       base.Foreground(backend.ColorRed).Bold(true),
	}
}

// highlight returns one style per rune of code. Unknown languages are
// guessed from the content; an empty result means no highlighting.
func highlight(code, language string, base backend.Style) []backend.Style {
	if code == "" {
		return nil
	}
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		return nil
	}
	lexer = chroma.Coalesce(lexer)

	iter, err := lexer.Tokenise(nil, code)
	if err != nil {
		return nil
	}

	palette := newCodePalette(base)
	styles := make([]backend.Style, 0, len(code))
	for token := iter(); token != chroma.EOF; token = iter() {
		style := palette.styleFor(token.Type)
		for range token.Value {
			styles = append(styles, style)
		}
	}
	return styles
}

func (p codePalette) styleFor(ttype chroma.TokenType) backend.Style {
	if ttype == chroma.Error {
		return p.Error
	}
	switch {
	case ttype.InCategory(chroma.Comment):
		return p.Comment
	case ttype.InCategory(chroma.Keyword):
		return p.Keyword
	case ttype.InCategory(chroma.LiteralString):
		return p.String
	case ttype.InCategory(chroma.LiteralNumber):
		return p.Number
	case ttype.InCategory(chroma.Operator):
		return p.Operator
	case ttype.InCategory(chroma.Punctuation):
		return p.Punctuation
	case ttype.InCategory(chroma.Name):
		switch ttype {
		case chroma.NameFunction, chroma.NameFunctionMagic:
			return p.Function
		case chroma.NameClass, chroma.NameNamespace:
			return p.TypeName
		case chroma.NameBuiltin, chroma.NameBuiltinPseudo:
			return p.Builtin
		case chroma.NameTag:
			return p.Tag
		case chroma.NameConstant:
			return p.Number
		}
	}
	return p.Default
}
