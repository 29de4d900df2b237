package request

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/rpschat/internal/api/apierr"
)

func TestIntQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/matches?limit=7", nil)
	v, err := IntQuery(r, "limit", 20)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestIntQueryDefault(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/matches", nil)
	v, err := IntQuery(r, "limit", 20)
	require.NoError(t, err)
	assert.Equal(t, 20, v)
}

func TestIntQueryInvalid(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/matches?limit=ten", nil)
	_, err := IntQuery(r, "limit", 20)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apierr.Status(err))
}
