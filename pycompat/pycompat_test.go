package pycompat

import (
	"fmt"
	"testing"

	"github.com/alecthomas/assert/v2"
)

// Keys of a CPython process started with PYTHONHASHSEED=29.
var seed29 = Keys{K0: 0x8242e80971a3bf85, K1: 0x452e7c62c21c1e46}

func TestKeysFromSeed(t *testing.T) {
	assert.Equal(t, seed29, KeysFromSeed(29))
	assert.Equal(t, Keys{K0: 0x935fc1c7e57669a3, K1: 0xd8e8de5e363d06c1}, KeysFromSeed(979))
	assert.Equal(t, Keys{}, KeysFromSeed(0))
	assert.Equal(t, KeysFromSeed(DefaultSeed), DefaultKeys)
}

func TestHash(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"travel", 5109853538790556365},
		{"foo", -7289325628708766470},
		{"bar", -1696825221828146139},
		{"project", 699199936436781263},
		{"trip-san-francisco-2020", 3705117015269033557},
		{"trip-chicago-2021", 3346730504516585016},
		{"a", 7063510004396127001},
		{"abcdefgh", 4788392105583824765},
		{"abcdefghi", -2600064247087747075},
		{"café", -5887385601356443919},
		{"中文", -9086444666241248999},
		{"😀x", 9201456030652812102},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Hash(seed29, tt.input))
		})
	}
}

func TestHashOtherKeys(t *testing.T) {
	assert.Equal(t, int64(-6603065703264520507), Hash(DefaultKeys, "travel"))
	assert.Equal(t, int64(3787189058582254643), Hash(Keys{}, "travel"))
}

func TestOrder(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "two tags",
			input: []string{"trip-san-francisco-2020", "travel"},
			want:  []string{"travel", "trip-san-francisco-2020"},
		},
		{
			name:  "insertion order irrelevant",
			input: []string{"project", "travel"},
			want:  []string{"travel", "project"},
		},
		{
			name:  "insertion order irrelevant reversed",
			input: []string{"travel", "project"},
			want:  []string{"travel", "project"},
		},
		{
			name:  "chicago",
			input: []string{"travel", "trip-chicago-2021"},
			want:  []string{"trip-chicago-2021", "travel"},
		},
		{
			name:  "foo bar",
			input: []string{"foo", "bar"},
			want:  []string{"foo", "bar"},
		},
		{
			name:  "underscore and dashes",
			input: []string{"rx_txn", "you-can-inc-tags"},
			want:  []string{"rx_txn", "you-can-inc-tags"},
		},
		{
			name:  "duplicates dropped",
			input: []string{"foo", "bar", "foo", "bar"},
			want:  []string{"foo", "bar"},
		},
		{
			name: "resize",
			input: []string{
				"alpha", "beta", "gamma", "delta", "epsilon", "zeta",
				"eta", "theta", "iota", "kappa", "lambda", "mu",
			},
			want: []string{
				"theta", "beta", "eta", "epsilon", "mu", "kappa",
				"gamma", "zeta", "iota", "delta", "alpha", "lambda",
			},
		},
		{
			name:  "six",
			input: []string{"t1", "t2", "t3", "t4", "t5", "t6"},
			want:  []string{"t1", "t4", "t2", "t6", "t5", "t3"},
		},
	}

	ordering := NewOrdering(seed29)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ordering.Order(tt.input))
		})
	}
}

func TestOrderLarge(t *testing.T) {
	input := make([]string, 40)
	for i := range input {
		input[i] = fmt.Sprintf("w%d", i)
	}

	want := []string{
		"w12", "w23", "w35", "w22", "w9", "w5", "w21", "w10", "w30", "w28",
		"w14", "w26", "w18", "w0", "w31", "w33", "w34", "w16", "w1", "w8",
		"w7", "w38", "w24", "w37", "w13", "w11", "w17", "w29", "w32", "w20",
		"w15", "w2", "w4", "w6", "w19", "w39", "w36", "w25", "w3", "w27",
	}
	assert.Equal(t, want, NewOrdering(seed29).Order(input))
}

func TestOrderDefaultKeys(t *testing.T) {
	got := NewOrdering(DefaultKeys).Order([]string{"travel", "project", "trip"})
	assert.Equal(t, []string{"project", "travel", "trip"}, got)

	got = NewOrdering(Keys{}).Order([]string{"a", "b", "c", "travel"})
	assert.Equal(t, []string{"travel", "c", "a", "b"}, got)
}

func TestOrderEmpty(t *testing.T) {
	assert.Equal(t, 0, len(NewOrdering(seed29).Order(nil)))
}
