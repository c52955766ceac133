package method

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for want, token := range lut {
		if Method(want) == Unknown {
			continue
		}

		require.Equal(t, Method(want), Parse(token))
	}

	require.Equal(t, Unknown, Parse(""))
	require.Equal(t, Unknown, Parse("GETS"))
	require.Equal(t, Unknown, Parse("get"))
}
