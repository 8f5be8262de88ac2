package flow

import "strings"

// A Named object is an object that has a name.
type Named interface {
	Name() string
}

// NameMustBeValid panics if the name is not a valid hierarchical name. A
// valid name is a series of non-empty tokens separated by dots, where each
// token starts with a letter and continues with letters, digits, or
// underscores.
func NameMustBeValid(name string) {
	if name == "" {
		panic("name must not be empty")
	}

	tokens := strings.Split(name, ".")
	for _, token := range tokens {
		tokenMustBeValid(name, token)
	}
}

func tokenMustBeValid(name, token string) {
	if token == "" {
		panic("name " + name + " is not valid: empty token")
	}

	for i, c := range token {
		if isLetter(c) {
			continue
		}

		if i > 0 && (isDigit(c) || c == '_') {
			continue
		}

		panic("name " + name + " is not valid: illegal character")
	}
}

func isLetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}
