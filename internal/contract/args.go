package contract

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// TypeConstructorArgs converts raw comma-split argument strings into typed
// values matching the constructor's declared inputs, in order. Either every
// position converts or the whole call fails with the first error; there is
// no partial result.
//
// Conversion policy per declared Solidity type:
//
//	string   → passed through unchanged
//	uint*/int* → base-10 arbitrary-precision integer
//	bool     → case-insensitive "true"; anything else is false
//	address  → 0x-prefixed, exactly 42 chars; checksum is not verified
//	bytes*   → 0x-prefixed hex passed through; otherwise UTF-8 hex-encoded
//	T[]      → parsed as a JSON array
//	other    → parsed as JSON
func TypeConstructorArgs(abi ABI, rawArgs []string) ([]any, error) {
	inputs := abi.ConstructorInputs()
	if len(rawArgs) != len(inputs) {
		return nil, &ArgumentCountError{Expected: len(inputs), Got: len(rawArgs)}
	}

	typed := make([]any, len(inputs))
	for i, in := range inputs {
		v, err := convertArg(in.Type, rawArgs[i])
		if err != nil {
			return nil, &ArgumentTypeError{
				Index:        i,
				ExpectedType: in.Type,
				RawValue:     rawArgs[i],
				Cause:        err,
			}
		}
		typed[i] = v
	}
	return typed, nil
}

func convertArg(solType, raw string) (any, error) {
	switch {
	// Arrays first: "uint256[]" must not fall into the scalar integer case.
	case strings.Contains(solType, "["):
		dec := json.NewDecoder(strings.NewReader(raw))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("invalid JSON array: %w", err)
		}
		arr, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("expected a JSON array, e.g. [1,2]")
		}
		return arr, nil

	case solType == "string":
		return raw, nil

	case strings.HasPrefix(solType, "uint"), strings.HasPrefix(solType, "int"):
		n, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			return nil, fmt.Errorf("not a base-10 integer")
		}
		return n, nil

	case solType == "bool":
		// Only a case-insensitive "true" is truthy; "1", "yes" and anything
		// else fall through to false. Kept for compatibility with existing
		// deploy scripts that rely on it.
		return strings.EqualFold(raw, "true"), nil

	case solType == "address":
		if !strings.HasPrefix(raw, "0x") || len(raw) != 42 {
			return nil, fmt.Errorf("address must be 0x-prefixed and 42 characters")
		}
		return raw, nil

	case strings.HasPrefix(solType, "bytes"):
		if strings.HasPrefix(raw, "0x") {
			return raw, nil
		}
		return "0x" + hex.EncodeToString([]byte(raw)), nil

	default:
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("invalid JSON for composite type: %w", err)
		}
		return v, nil
	}
}

// EncodeConstructorArgs packs typed constructor arguments against the raw
// ABI JSON using go-ethereum's encoder and returns the encoded tail that is
// appended to the deployment bytecode. A contract without constructor inputs
// yields an empty slice.
func EncodeConstructorArgs(abiJSON []byte, abi ABI, typed []any) ([]byte, error) {
	inputs := abi.ConstructorInputs()
	if len(inputs) == 0 {
		return nil, nil
	}

	parsed, err := gethabi.JSON(strings.NewReader(string(abiJSON)))
	if err != nil {
		return nil, fmt.Errorf("parsing ABI for encoding: %w", err)
	}

	values := make([]any, len(typed))
	for i, in := range inputs {
		v, err := toEncoderValue(in.Type, typed[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s): %w", i, in.Type, err)
		}
		values[i] = v
	}

	packed, err := parsed.Pack("", values...)
	if err != nil {
		return nil, fmt.Errorf("encoding constructor arguments: %w", err)
	}
	return packed, nil
}

// toEncoderValue bridges the typed-argument representation to the exact Go
// values the go-ethereum packer expects for each ABI type.
func toEncoderValue(solType string, v any) (any, error) {
	switch {
	case strings.HasSuffix(solType, "[]"):
		elems, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("expected JSON array, got %T", v)
		}
		return sliceValue(strings.TrimSuffix(solType, "[]"), elems)

	case solType == "address":
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected address string, got %T", v)
		}
		return common.HexToAddress(s), nil

	case strings.HasPrefix(solType, "uint"), strings.HasPrefix(solType, "int"):
		n, ok := v.(*big.Int)
		if !ok {
			return nil, fmt.Errorf("expected integer, got %T", v)
		}
		return sizedInt(solType, n)

	case solType == "bytes":
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected hex string, got %T", v)
		}
		return hex.DecodeString(strings.TrimPrefix(s, "0x"))

	case strings.HasPrefix(solType, "bytes"):
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected hex string, got %T", v)
		}
		return fixedBytes(solType, s)

	default:
		// string, bool and JSON-derived composites go through as-is.
		return v, nil
	}
}

// sliceValue converts a JSON-decoded array to the slice type the packer
// expects for a dynamic array. Only full-width integers, addresses, strings
// and bools are supported as elements.
func sliceValue(elemType string, elems []any) (any, error) {
	switch {
	case elemType == "address":
		out := make([]common.Address, len(elems))
		for i, e := range elems {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("element %d: expected address string, got %T", i, e)
			}
			out[i] = common.HexToAddress(s)
		}
		return out, nil

	case elemType == "uint256", elemType == "uint", elemType == "int256", elemType == "int":
		out := make([]*big.Int, len(elems))
		for i, e := range elems {
			num, ok := e.(json.Number)
			if !ok {
				return nil, fmt.Errorf("element %d: expected number, got %T", i, e)
			}
			n, ok := new(big.Int).SetString(num.String(), 10)
			if !ok {
				return nil, fmt.Errorf("element %d: not an integer: %s", i, num)
			}
			out[i] = n
		}
		return out, nil

	case elemType == "string":
		out := make([]string, len(elems))
		for i, e := range elems {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("element %d: expected string, got %T", i, e)
			}
			out[i] = s
		}
		return out, nil

	case elemType == "bool":
		out := make([]bool, len(elems))
		for i, e := range elems {
			b, ok := e.(bool)
			if !ok {
				return nil, fmt.Errorf("element %d: expected bool, got %T", i, e)
			}
			out[i] = b
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported array element type %s", elemType)
	}
}

// sizedInt converts a big integer to the native Go type the packer requires
// for 8/16/32/64-bit widths; every other width stays *big.Int. The value is
// range-checked against the declared width first — Uint64/Int64 on an
// out-of-range value would wrap silently and a wrong constructor argument
// would end up on chain.
func sizedInt(solType string, n *big.Int) (any, error) {
	signed := strings.HasPrefix(solType, "int")
	sizeStr := strings.TrimPrefix(strings.TrimPrefix(solType, "uint"), "int")
	size := 256
	if sizeStr != "" {
		var err error
		size, err = strconv.Atoi(sizeStr)
		if err != nil {
			return nil, fmt.Errorf("bad integer width %q", sizeStr)
		}
	}
	if !intFits(n, size, signed) {
		return nil, fmt.Errorf("value %s out of range for %s", n, solType)
	}

	if signed {
		switch size {
		case 8:
			return int8(n.Int64()), nil
		case 16:
			return int16(n.Int64()), nil
		case 32:
			return int32(n.Int64()), nil
		case 64:
			return n.Int64(), nil
		}
		return n, nil
	}

	switch size {
	case 8:
		return uint8(n.Uint64()), nil
	case 16:
		return uint16(n.Uint64()), nil
	case 32:
		return uint32(n.Uint64()), nil
	case 64:
		return n.Uint64(), nil
	}
	return n, nil
}

// intFits reports whether n fits the declared integer width:
// [0, 2^size) unsigned, [-2^(size-1), 2^(size-1)) signed.
func intFits(n *big.Int, size int, signed bool) bool {
	if signed {
		bound := new(big.Int).Lsh(big.NewInt(1), uint(size-1))
		return n.Cmp(new(big.Int).Neg(bound)) >= 0 && n.Cmp(bound) < 0
	}
	return n.Sign() >= 0 && n.Cmp(new(big.Int).Lsh(big.NewInt(1), uint(size))) < 0
}

// fixedBytes right-pads hex input into the [N]byte array bytesN packs as.
func fixedBytes(solType, hexStr string) (any, error) {
	size, err := strconv.Atoi(strings.TrimPrefix(solType, "bytes"))
	if err != nil || size < 1 || size > 32 {
		return nil, fmt.Errorf("bad fixed-bytes width %q", solType)
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(hexStr, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	if len(raw) > size {
		return nil, fmt.Errorf("value is %d bytes, %s holds %d", len(raw), solType, size)
	}

	switch size {
	case 32:
		var out [32]byte
		copy(out[:], raw)
		return out, nil
	case 16:
		var out [16]byte
		copy(out[:], raw)
		return out, nil
	case 8:
		var out [8]byte
		copy(out[:], raw)
		return out, nil
	case 4:
		var out [4]byte
		copy(out[:], raw)
		return out, nil
	case 1:
		var out [1]byte
		copy(out[:], raw)
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported fixed-bytes width bytes%d", size)
	}
}
