package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TokenAmount is an integer amount of token base units. Clients may send it
// as a JSON string or a JSON number; it is always written back as a string.
type TokenAmount string

func (a *TokenAmount) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*a = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*a = TokenAmount(s)
		return nil
	}

	var n json.Number
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	if err := decoder.Decode(&n); err != nil {
		return fmt.Errorf("amount must be a string or number: %w", err)
	}
	*a = TokenAmount(n.String())
	return nil
}

func (a TokenAmount) String() string {
	return string(a)
}
