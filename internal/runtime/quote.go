// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// QuoteCommand renders name and args as a single bash command line, quoting
// only the words that need it.
func QuoteCommand(name string, args []string) string {
	words := make([]string, 0, len(args)+1)
	words = append(words, quoteWord(name))
	for _, arg := range args {
		words = append(words, quoteWord(arg))
	}
	return strings.Join(words, " ")
}

func quoteWord(s string) string {
	quoted, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		// syntax.Quote rejects strings that cannot be represented, e.g. NUL bytes.
		return strconv.Quote(s)
	}
	return quoted
}
