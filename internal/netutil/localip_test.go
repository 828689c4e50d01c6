package netutil

import (
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalIPReturnsParseableAddress(t *testing.T) {
	ip := LocalIP()
	require.NotEmpty(t, ip)

	parsed := net.ParseIP(ip)
	require.NotNil(t, parsed, "LocalIP returned %q which is not an IP", ip)
	assert.NotNil(t, parsed.To4(), "expected an IPv4 address, got %q", ip)
}

func TestBaseURL(t *testing.T) {
	url := BaseURL(3000)
	assert.True(t, strings.HasPrefix(url, "http://"))
	assert.True(t, strings.HasSuffix(url, ":3000"))
}
