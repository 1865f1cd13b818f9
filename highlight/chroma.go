// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package highlight

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gdamore/tcell/v2"
)

const defaultStyleName = "catppuccin-mocha"

// Span is a fragment of a line with a resolved terminal style.
type Span struct {
	Text  string
	Style tcell.Style
}

// chromaStyle resolves a style name to a Chroma style, falling back to the default.
func chromaStyle(name string) *chroma.Style {
	if name == "" {
		name = defaultStyleName
	}
	return styles.Get(name)
}

// getLexer returns a Chroma lexer by name, or auto-detects from content.
func getLexer(name, text string) chroma.Lexer {
	if name != "" {
		if l := lexers.Get(name); l != nil {
			return l
		}
	}
	if l := lexers.Analyse(text); l != nil {
		return l
	}
	return lexers.Fallback
}

// Line tokenizes a single line and returns styled spans whose texts
// concatenate back to the input. Tokens whose color matches the style's
// base text color keep the terminal default foreground.
func Line(text, lang, styleName string) []Span {
	if text == "" {
		return nil
	}
	style := chromaStyle(styleName)
	lexer := chroma.Coalesce(getLexer(lang, text))

	// Line-oriented lexer patterns need the trailing newline.
	tokens, err := chroma.Tokenise(lexer, nil, text+"\n")
	if err != nil {
		return []Span{{Text: text, Style: tcell.StyleDefault}}
	}

	baseColour := style.Get(chroma.Text).Colour

	spans := make([]Span, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Type == chroma.EOFType {
			break
		}
		val := strings.TrimSuffix(tok.Value, "\n")
		trimmed := val != tok.Value
		if val != "" {
			spans = append(spans, Span{
				Text:  val,
				Style: tokenStyle(style.Get(tok.Type), baseColour),
			})
		}
		if trimmed {
			break
		}
	}
	return spans
}

// tokenStyle maps a Chroma style entry onto a tcell style. Colors equal to
// the base text color are left at the terminal default.
func tokenStyle(entry chroma.StyleEntry, baseColour chroma.Colour) tcell.Style {
	st := tcell.StyleDefault
	if entry.Colour.IsSet() && entry.Colour != baseColour {
		st = st.Foreground(tcell.NewRGBColor(
			int32(entry.Colour.Red()),
			int32(entry.Colour.Green()),
			int32(entry.Colour.Blue()),
		))
	}
	if entry.Bold == chroma.Yes {
		st = st.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		st = st.Italic(true)
	}
	if entry.Underline == chroma.Yes {
		st = st.Underline(true)
	}
	return st
}
