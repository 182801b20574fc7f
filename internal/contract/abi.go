package contract

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Kind is the closed set of ABI entry kinds.
type Kind int

const (
	KindConstructor Kind = iota
	KindFunction
	KindEvent
	KindError
	KindOther // fallback, receive, unknown
)

// Param is a single parameter in an ABI entry.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Entry is one ABI entry (constructor, function, event or error).
type Entry struct {
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	Inputs          []Param `json:"inputs"`
	Outputs         []Param `json:"outputs"`
	StateMutability string  `json:"stateMutability"`
}

// Kind maps the raw type tag to the closed entry kind set.
func (e Entry) Kind() Kind {
	switch e.Type {
	case "constructor":
		return KindConstructor
	case "function":
		return KindFunction
	case "event":
		return KindEvent
	case "error":
		return KindError
	default:
		return KindOther
	}
}

// IsReadFunction returns true if the function is read-only (view/pure).
func (e Entry) IsReadFunction() bool {
	return e.Kind() == KindFunction &&
		(e.StateMutability == "view" || e.StateMutability == "pure")
}

// IsWriteFunction returns true if the function modifies state.
func (e Entry) IsWriteFunction() bool {
	return e.Kind() == KindFunction &&
		(e.StateMutability == "nonpayable" || e.StateMutability == "payable")
}

// Selector computes the 4-byte selector for a function or event entry.
func (e Entry) Selector() string {
	types := make([]string, len(e.Inputs))
	for i, p := range e.Inputs {
		types[i] = p.Type
	}
	sig := e.Name + "(" + strings.Join(types, ",") + ")"

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(sig))
	return "0x" + hex.EncodeToString(h.Sum(nil)[:4])
}

// ABI is an ordered sequence of ABI entries.
type ABI []Entry

// ParseABI parses a raw ABI JSON array.
func ParseABI(data []byte) (ABI, error) {
	var abi ABI
	if err := json.Unmarshal(data, &abi); err != nil {
		data = bytes.TrimSpace(data)
		if len(data) > 0 && data[0] == '{' {
			return nil, fmt.Errorf("file is a JSON object, not an ABI array — artifacts must carry the ABI under an \"abi\" key")
		}
		return nil, fmt.Errorf("invalid ABI JSON: %w", err)
	}
	return abi, nil
}

// Constructor returns the contract's constructor entry. At most one entry is
// meaningful; a contract without a declared constructor gets the implicit
// zero-input one.
func (a ABI) Constructor() (Entry, bool) {
	for _, e := range a {
		if e.Kind() == KindConstructor {
			return e, true
		}
	}
	return Entry{Type: "constructor"}, false
}

// ConstructorInputs returns the constructor's declared inputs in order.
// Empty when the contract has no explicit constructor.
func (a ABI) ConstructorInputs() []Param {
	ctor, _ := a.Constructor()
	return ctor.Inputs
}

// Functions returns all function entries in declaration order.
func (a ABI) Functions() []Entry {
	var out []Entry
	for _, e := range a {
		if e.Kind() == KindFunction {
			out = append(out, e)
		}
	}
	return out
}
