package coldsign

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/ergo-wallet/internal/chunk"
	"github.com/AlexZinkM/ergo-wallet/internal/model"
)

func testRequest() *model.ColdSigningRequest {
	return &model.ColdSigningRequest{
		ReducedTransaction: []byte("DUMMYDATA"),
		SenderAddress:      "ADDRESS",
		InputBoxes:         [][]byte{[]byte("INPUT1")},
	}
}

func TestColdSigningRequestRoundTrip(t *testing.T) {
	req := testRequest()

	single, err := EncodeRequest(req, 1000)
	require.NoError(t, err)
	require.Len(t, single, 1)
	assert.Equal(t, 1, single[0].TotalPages)

	multi, err := EncodeRequest(req, 10)
	require.NoError(t, err)
	require.Greater(t, len(multi), 1)

	for _, chunks := range [][]chunk.Chunk{single, multi} {
		decoded, err := DecodeRequest(chunks)
		require.NoError(t, err)
		assert.Equal(t, "ADDRESS", decoded.SenderAddress)
		assert.Equal(t, []byte("DUMMYDATA"), decoded.ReducedTransaction)
		require.Len(t, decoded.InputBoxes, 1)
		assert.Equal(t, []byte("INPUT1"), decoded.InputBoxes[0])
	}
}

func TestColdSigningRequestPages(t *testing.T) {
	pages, err := RequestPages(testRequest(), 16)
	require.NoError(t, err)
	require.Greater(t, len(pages), 1)

	// pages arrive in reverse order from the camera
	reversed := make([]string, len(pages))
	for i, p := range pages {
		reversed[len(pages)-1-i] = p
	}
	decoded, err := DecodeRequestPages(reversed)
	require.NoError(t, err)
	assert.Equal(t, testRequest(), decoded)

	_, err = DecodeRequestPages(pages[1:])
	assert.ErrorIs(t, err, chunk.ErrIncompleteTransport)
}

func TestParseRequestStatic(t *testing.T) {
	text, err := MarshalRequest(testRequest())
	require.NoError(t, err)

	decoded, err := ParseRequest(text)
	require.NoError(t, err)
	assert.Equal(t, testRequest(), decoded)

	// URL alphabet without padding is accepted as well
	decoded, err = ParseRequest(`{"reducedTx":"RFVNTVlEQVRB","sender":"ADDRESS","inputs":["-_8"]}`)
	require.NoError(t, err)
	assert.Equal(t, []byte("DUMMYDATA"), decoded.ReducedTransaction)
	assert.Equal(t, [][]byte{{0xfb, 0xff}}, decoded.InputBoxes)
}

func TestParseRequestMalformed(t *testing.T) {
	cases := []string{
		`not json`,
		`{"reducedTx":"!!!","sender":"A","inputs":[]}`,
		`{"reducedTx":"RFVNTVlEQVRB","sender":"A","inputs":["***"]}`,
		`{"sender":"A","inputs":[]}`,
		`{"reducedTx":5}`,
	}
	for _, c := range cases {
		_, err := ParseRequest(c)
		assert.ErrorIs(t, err, ErrMalformedRequest, c)
	}
}

func TestColdSigningResultRoundTrip(t *testing.T) {
	res := &model.ColdSigningResult{
		Success:         true,
		Payload:         []byte(strings.Repeat("signed", 40)),
		AuxiliaryProofs: [][]byte{[]byte("proof-a"), []byte("proof-b")},
		SubjectAddress:  "3Ww2oseMJ33tkQUcXANnwHhq8gVsQLUPthXRiPsisKzGB74Zc9HD",
	}

	for _, size := range []int{7, 64, 4096} {
		pages, err := ResultPages(res, size)
		require.NoError(t, err)

		decoded, err := DecodeResultPages(pages)
		require.NoError(t, err)
		assert.Equal(t, res, decoded)
	}

	_, err := ParseResult(`{"success":true,"payload":"%%"}`)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}
