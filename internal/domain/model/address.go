package model

import (
	"strings"
	"unicode"
)

// AddressList is the ordered list of wallets processed by a run.
// Duplicates are kept and order is the processing order.
type AddressList []string

// ParseAddressList splits raw input on any run of whitespace and/or commas,
// discarding empty tokens. Unicode spaces and the byte-order mark count as
// whitespace, so lists pasted from web pages or read from BOM-prefixed files
// split the same way as plain ASCII input.
func ParseAddressList(text string) AddressList {
	parts := strings.FieldsFunc(text, isAddressSeparator)
	if parts == nil {
		return AddressList{}
	}
	return AddressList(parts)
}

func isAddressSeparator(r rune) bool {
	return r == ',' || r == '\uFEFF' || unicode.IsSpace(r)
}
