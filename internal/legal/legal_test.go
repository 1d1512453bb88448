package legal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	now := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

	p, err := Render("privacy", "hello@example.com", now)
	require.NoError(t, err)
	assert.Equal(t, "Privacy Policy", p.Title)
	assert.Contains(t, p.Body, "**Last Updated: March 9, 2024**")
	assert.Contains(t, p.Body, "hello@example.com")

	p, err = Render("terms", "", now)
	require.NoError(t, err)
	assert.Equal(t, "Terms of Service", p.Title)
	assert.Contains(t, p.Body, "[Your Contact Email Here]")

	_, err = Render("cookies", "", now)
	assert.ErrorIs(t, err, ErrUnknownPage)
}
