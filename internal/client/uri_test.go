package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddress = "3Ww2oseMJ33tkQUcXANnwHhq8gVsQLUPthXRiPsisKzGB74Zc9HD"

func TestRequestClassification(t *testing.T) {
	cases := []struct {
		uri         string
		payment     bool
		auth        bool
		dynamic     bool
		withAddress bool
	}{
		{"ergopay:AQIDBA", true, false, false, false},
		{"ergopay://example.com/pay", true, false, true, false},
		{"ErgoPay://example.com/pay/#P2PK_ADDRESS#", true, false, true, true},
		{"ergoauth://example.com/auth", false, true, true, false},
		{"ERGOAUTH://example.com/auth/#P2PK_ADDRESS#/x", false, true, true, true},
		{"ergoauth:%7B%22a%22%3A1%7D", false, true, false, false},
		{"ergopay:#P2PK_ADDRESS#", true, false, false, false},
		{"https://example.com", false, false, false, false},
		{"", false, false, false, false},
	}

	for _, c := range cases {
		assert.Equal(t, c.payment, IsPaymentRequest(c.uri), c.uri)
		assert.Equal(t, c.auth, IsAuthorizationRequest(c.uri), c.uri)
		assert.Equal(t, c.dynamic, IsDynamicRequest(c.uri), c.uri)
		assert.Equal(t, c.withAddress, IsDynamicWithAddressRequest(c.uri), c.uri)
	}
}

func TestResolveURLSubstitutesAddress(t *testing.T) {
	uri := "ergopay://dapp.example.com/pay/#P2PK_ADDRESS#/confirm?x=1"
	require.True(t, IsDynamicRequest(uri))
	require.True(t, IsDynamicWithAddressRequest(uri))

	u, err := ResolveURL(uri, testAddress)
	require.NoError(t, err)
	assert.Equal(t, "https://dapp.example.com/pay/"+testAddress+"/confirm?x=1", u)
}

func TestResolveURLEscapesReservedCharacters(t *testing.T) {
	u, err := ResolveURL("ergopay://dapp.example.com/pay/#P2PK_ADDRESS#", "a#b/c d?&")
	require.NoError(t, err)
	assert.Equal(t, "https://dapp.example.com/pay/a%23b%2Fc%20d%3F%26", u)

	u, err = ResolveURL("ergopay://dapp.example.com/pay?addr=#P2PK_ADDRESS#", "x&y=z")
	require.NoError(t, err)
	assert.Equal(t, "https://dapp.example.com/pay?addr=x%26y%3Dz", u)
}

func TestResolveURLRequiresAddress(t *testing.T) {
	_, err := ResolveURL("ergopay://dapp.example.com/pay/#P2PK_ADDRESS#", "")
	assert.ErrorIs(t, err, ErrAddressRequired)
}

func TestResolveURLScheme(t *testing.T) {
	cases := map[string]string{
		"ergopay://Dapp.Example.COM/p": "https://dapp.example.com/p",
		"ergopay://localhost:8080/p":   "http://localhost:8080/p",
		"ergoauth://LOCALHOST/p":       "http://localhost/p",
		"ergopay://192.168.1.10:9/p":   "http://192.168.1.10:9/p",
		"ergopay://[::1]:9000/p":       "http://[::1]:9000/p",
		"ergopay://10.example.org/p":   "https://10.example.org/p",
	}
	for in, want := range cases {
		got, err := ResolveURL(in, "")
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ResolveURL("ergopay:AQID", "")
	assert.Error(t, err)
	_, err = ResolveURL("ergopay:///nohost", "")
	assert.Error(t, err)
}
