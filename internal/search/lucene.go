package search

import "strings"

// parseLucene treats the query as required terms: quoted phrases and bare
// words must each occur, case-insensitively, somewhere in the document.
// "field:term" restricts a term to one field.
func parseLucene(input string) (node, error) {
	toks, err := lex(input)
	if err != nil {
		return nil, err
	}
	var out andNode
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch t.kind {
		case tokWord, tokAnd, tokOr, tokNot:
			if toks[i+1].kind == tokColon && i+2 < len(toks) &&
				(toks[i+2].kind == tokWord || toks[i+2].kind == tokQuoted) {
				v := toks[i+2]
				out = append(out, fieldNode{field: t.text, v: valueMatcher{text: v.text, phrase: true}})
				i += 2
				continue
			}
			if t.kind != tokWord {
				continue
			}
			out = append(out, termNode{valueMatcher{text: strings.ReplaceAll(t.text, "*", ""), phrase: true}})
		case tokQuoted:
			out = append(out, termNode{valueMatcher{text: t.text, phrase: true}})
		}
	}
	return out, nil
}
