package selector

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

func TestSignature(t *testing.T) {
	tests := []struct {
		name   string
		member string
		params []string
		want   string
	}{
		{"no params", "get", nil, "get()"},
		{"one param", "new", []string{"Balance"}, "new(Balance)"},
		{"whitespace in types", " transfer ", []string{"Account Id", "Mapping< u8 , u32 >"}, "transfer(AccountId,Mapping<u8,u32>)"},
		{"qualified", "erc20::Erc20::transfer", []string{"AccountId"}, "erc20::Erc20::transfer(AccountId)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Signature(tt.member, tt.params))
		})
	}
}

func TestSignatureNormalizesUnicode(t *testing.T) {
	composed := Signature("caf\u00e9", nil)
	decomposed := Signature("cafe\u0301", nil)
	assert.Equal(t, composed, decomposed)
}

func TestComputeIsStableAndOrderSensitive(t *testing.T) {
	a := Blake2b256.Compute(Signature("transfer", []string{"Address", "Balance"}))
	again := Blake2b256.Compute(Signature("transfer", []string{"Address", "Balance"}))
	swapped := Blake2b256.Compute(Signature("transfer", []string{"Balance", "Address"}))

	assert.Equal(t, a, again)
	assert.NotEqual(t, a, swapped)
}

func TestComputeTakesFirstFourDigestBytes(t *testing.T) {
	sum := blake2b.Sum256([]byte("new(Balance)"))
	assert.Equal(t, Selector{sum[0], sum[1], sum[2], sum[3]}, Blake2b256.Compute("new(Balance)"))

	assert.NotEqual(t, Blake2b256.Compute("get()"), Keccak256.Compute("get()"))
	assert.Len(t, Keccak256.Sum([]byte("get()")), 32)
}

func TestKeccakKnownVector(t *testing.T) {
	// transfer(address,uint256) is the ERC-20 transfer selector.
	assert.Equal(t, "0xa9059cbb", Keccak256.Compute("transfer(address,uint256)").Hex())
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
	}{
		{"0xCAFEBABE", 0xcafebabe},
		{"0xcafe_babe", 0xcafebabe},
		{"0x1", 1},
		{"1234", 1234},
		{"4_294_967_295", 0xffffffff},
		{" 0X00000002 ", 2},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Uint32())
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "0x", "0x123456789", "4294967296", "-1", "0xZZ", "abc"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			assert.Error(t, err)
		})
	}
}

func TestHexAndJSON(t *testing.T) {
	s := FromUint32(0x9bae9d5e)
	assert.Equal(t, "0x9bae9d5e", s.Hex())
	assert.Equal(t, "0x9bae9d5e", s.String())
	assert.Equal(t, uint32(0x9bae9d5e), s.Uint32())

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `"0x9bae9d5e"`, string(data))

	var decoded Selector
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, s, decoded)

	assert.Error(t, json.Unmarshal([]byte(`12`), &decoded))
}

func TestParseHash(t *testing.T) {
	h, err := ParseHash("")
	require.NoError(t, err)
	assert.Equal(t, Blake2b256, h)

	h, err = ParseHash(" Keccak256 ")
	require.NoError(t, err)
	assert.Equal(t, Keccak256, h)

	_, err = ParseHash("sha256")
	assert.Error(t, err)
}

func TestQualifiedName(t *testing.T) {
	assert.Equal(t, "get", QualifiedName("", "get"))
	assert.Equal(t, "admin::get", QualifiedName("admin", "get"))
	assert.Equal(t, "erc20::Erc20::transfer", QualifiedName("erc20", "Erc20", "transfer"))
	assert.Equal(t, "Erc20::transfer", QualifiedName(" ", "Erc20", "transfer"))
}

func TestExtensionSelector(t *testing.T) {
	assert.Equal(t, FromUint32(0x00070001), ExtensionSelector(7, 1))
	assert.Equal(t, "0xffffffff", ExtensionSelector(0xffff, 0xffff).Hex())
}
