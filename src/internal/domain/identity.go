package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	SymbolLength      = 3
	maxLeafNameLength = 64
	maxIdentityLength = 64
	accountSeparator  = "."
)

// Identity is a fully qualified ledger account name such as "acme.credeem.testnet".
type Identity string

func (i Identity) String() string {
	return string(i)
}

// DeriveAccountName joins a leaf name onto the deployment root. Names are used verbatim.
func DeriveAccountName(leaf string, root string) Identity {
	return Identity(leaf + accountSeparator + root)
}

// DeriveSymbol returns the first three characters of the business name in upper case.
func DeriveSymbol(businessName string) (string, error) {
	if utf8.RuneCountInString(businessName) < SymbolLength {
		return "", fmt.Errorf("businessName must be at least %d characters to derive a token symbol", SymbolLength)
	}

	runes := []rune(businessName)
	return strings.ToUpper(string(runes[:SymbolLength])), nil
}

func ValidateLeafName(field string, name string) error {
	if name == "" {
		return fmt.Errorf("%s is required", field)
	}
	if utf8.RuneCountInString(name) > maxLeafNameLength {
		return fmt.Errorf("%s must not exceed %d characters", field, maxLeafNameLength)
	}
	if strings.Contains(name, accountSeparator) {
		return fmt.Errorf("%s must not contain '.'", field)
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%s must not contain whitespace", field)
	}
	return nil
}

func ValidateIdentity(field string, identity string) error {
	if identity == "" {
		return fmt.Errorf("%s is required", field)
	}
	if utf8.RuneCountInString(identity) > maxIdentityLength {
		return fmt.Errorf("%s must not exceed %d characters", field, maxIdentityLength)
	}
	if strings.IndexFunc(identity, unicode.IsSpace) >= 0 {
		return errors.New(field + " must not contain whitespace")
	}
	return nil
}
