package transport

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoAuth(t *testing.T) {
	req := &http.Request{Header: make(http.Header)}

	(&NoAuth{}).Apply(req)

	assert.Empty(t, req.Header)
}

func TestBasicAuth(t *testing.T) {
	req := &http.Request{Header: make(http.Header)}

	(&BasicAuth{User: "admin", Password: "secret"}).Apply(req)

	user, pass, ok := req.BasicAuth()
	assert.True(t, ok)
	assert.Equal(t, "admin", user)
	assert.Equal(t, "secret", pass)
}

func TestBasicAuthEmpty(t *testing.T) {
	req := &http.Request{Header: make(http.Header)}

	(&BasicAuth{}).Apply(req)

	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestBearerAuth(t *testing.T) {
	req := &http.Request{Header: make(http.Header)}

	(&BearerAuth{Token: "tok"}).Apply(req)

	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
}

func TestNewBasicAuth(t *testing.T) {
	assert.IsType(t, &NoAuth{}, NewBasicAuth("", ""))
	assert.IsType(t, &BasicAuth{}, NewBasicAuth("u", ""))
}
