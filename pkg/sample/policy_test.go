package sample

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPolicyGenerate(t *testing.T) {
	cases := []struct {
		name   string
		policy Policy
		expect []Sample
	}{
		{name: PolicyHalf, policy: Half{}, expect: []Sample{{0, 0}, {1, 0}, {2, 1}, {3, 1}}},
		{name: PolicyHalfUp, policy: HalfUp{}, expect: []Sample{{0, 0}, {1, 1}, {2, 1}, {3, 2}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for n, expected := range tc.expect {
				s := tc.policy.Generate(uint32(n))
				require.Equal(t, expected, s)
				require.True(t, tc.policy.Matches(s))
			}
		})
	}
}

func TestHalfUpNoOverflow(t *testing.T) {
	s := HalfUp{}.Generate(math.MaxUint32)
	require.Equal(t, uint32(math.MaxUint32/2+1), s.Y)
}

func TestRandomIsSeeded(t *testing.T) {
	a, b := NewRandom(42), NewRandom(42)
	for i := 0; i < 8; i++ {
		sa, sb := a.Generate(0), b.Generate(0)
		require.Equal(t, sa, sb)
		require.True(t, a.Matches(sa))
	}
	require.False(t, a.Matches(Sample{X: 1, Y: 1}))
}

func TestPolicyByName(t *testing.T) {
	for _, name := range PolicyNames() {
		p, err := PolicyByName(name)
		require.NoError(t, err)
		require.NotNil(t, p)
	}
	_, err := PolicyByName("sine")
	require.Error(t, err)
	require.Equal(t, []string{PolicyHalf, PolicyHalfUp, PolicyRandom}, PolicyNames())
}
