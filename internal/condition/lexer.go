package condition

import (
	"fmt"
	"regexp"
	"strings"
)

// stringLiteralRE matches single- or double-quoted string literals. Literals
// are swapped for numbered placeholders before function extraction so that
// parentheses or commas inside quotes never confuse call boundaries.
var stringLiteralRE = regexp.MustCompile(`".*?"|'.*?'`)

// functionNames lists the condition functions in the order they are matched.
// Function calls do not nest; the argument capture is non-greedy up to the
// first closing parenthesis.
var functionNames = []string{
	"file",
	"readable",
	"active",
	"many",
	"many_active",
	"is_master",
	"checksum",
	"version",
	"product_version",
}

var functionRegexps = buildFunctionRegexps()

// buildFunctionRegexps compiles one extraction regex per known function. A
// call must start at the beginning of the string or be preceded by whitespace
// or an opening parenthesis, so that e.g. the "active" in "many_active" is
// never matched on its own.
func buildFunctionRegexps() map[string]*regexp.Regexp {
	res := make(map[string]*regexp.Regexp, len(functionNames))
	for _, name := range functionNames {
		res[name] = regexp.MustCompile(`(?:^|[\s(])(` + name + `\((.*?)\))`)
	}
	return res
}

// functionCall is one extracted call: the function identifier, the raw
// argument text (with string literals restored) and the exact substring of
// the working expression to replace with the evaluated boolean.
type functionCall struct {
	name    string
	rawArgs string
	literal string
}

// replaceStringsWithPlaceholders swaps every quoted literal in the condition
// for a placeholder of the form {N} and returns the recorded literals in
// placeholder order. The literals keep their surrounding quotes.
func replaceStringsWithPlaceholders(cond string) (string, []string) {
	var literals []string
	for {
		loc := stringLiteralRE.FindStringIndex(cond)
		if loc == nil {
			return cond, literals
		}
		literal := cond[loc[0]:loc[1]]
		cond = strings.ReplaceAll(cond, literal, fmt.Sprintf("{%d}", len(literals)))
		literals = append(literals, literal)
	}
}

// restorePlaceholders substitutes recorded literals back into text.
func restorePlaceholders(text string, literals []string) string {
	for i, literal := range literals {
		text = strings.ReplaceAll(text, fmt.Sprintf("{%d}", i), literal)
	}
	return text
}

// extractCalls returns every call of the named function present in the
// placeholder-substituted expression.
func extractCalls(name string, cond string, literals []string) []functionCall {
	var calls []functionCall
	for _, match := range functionRegexps[name].FindAllStringSubmatch(cond, -1) {
		calls = append(calls, functionCall{
			name:    name,
			rawArgs: restorePlaceholders(match[2], literals),
			literal: match[1],
		})
	}
	return calls
}
