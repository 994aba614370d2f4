package verify_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benbjohnson/less/internal/verify"
)

func TestCSS(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		for _, css := range []string{
			"",
			".a {\n  color: red;\n}\n",
			".a,.b{color:#fff;margin:0 1px !important}",
			"@media (max-width:600px){.a{padding:5px}}",
		} {
			assert.NoError(t, verify.CSS(css), css)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		err := verify.CSS(".a {\n  color: red;\n}\n.b { color: }} }\n")
		require.Error(t, err)
		assert.True(t, errors.Is(err, verify.ErrInvalidCSS))

		var e *verify.Error
		require.True(t, errors.As(err, &e))
		assert.GreaterOrEqual(t, e.Line, 4)
	})
}
