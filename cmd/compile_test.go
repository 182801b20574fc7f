package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solterm/solterm/internal/compiler"
	"github.com/solterm/solterm/internal/contract"
)

func TestConstructorSignature(t *testing.T) {
	abi, err := contract.ParseABI([]byte(`[{"type":"constructor","inputs":[
		{"name":"name_","type":"string"},
		{"name":"supply_","type":"uint256"}]}]`))
	require.NoError(t, err)

	a := &compiler.Artifact{Name: "Token", ABI: abi}
	assert.Equal(t, "(string name_, uint256 supply_)", constructorSignature(a))
}

func TestConstructorSignatureEmpty(t *testing.T) {
	abi, err := contract.ParseABI([]byte(`[]`))
	require.NoError(t, err)
	assert.Equal(t, "()", constructorSignature(&compiler.Artifact{Name: "Counter", ABI: abi}))
}

func TestJoinMax(t *testing.T) {
	assert.Equal(t, "a,b,c", joinMax([]string{"a", "b", "c"}, 10))
	assert.Equal(t, "aaaa…", joinMax([]string{"aaaaa", "bbbbb"}, 5))
	assert.Equal(t, "", joinMax(nil, 5))
}
