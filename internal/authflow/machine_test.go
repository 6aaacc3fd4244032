package authflow

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/AlexZinkM/ergo-wallet/internal/client"
	"github.com/AlexZinkM/ergo-wallet/internal/coldsign"
	"github.com/AlexZinkM/ergo-wallet/internal/metrics"
	"github.com/AlexZinkM/ergo-wallet/internal/model"
	"github.com/AlexZinkM/ergo-wallet/internal/preview"
)

const (
	walletAddr    = "9gmNsqrqdSppLUBqg2UzREmmivgqh1r3jmNcLAc53hk3YCvAGWE"
	recipientAddr = "9hHDQb26AjnJUXxcqriqY1mnhpLuUeC81C4pggtK7tupr92Ea1K"
	waitFor       = 2 * time.Second
	tick          = 5 * time.Millisecond
)

type fakeClient struct {
	mu       sync.Mutex
	payment  *model.ErgoPaySigningRequest
	auth     *model.ErgoAuthRequest
	err      error
	block    chan struct{}
	fetches  int
	replies  []string
	authResp *model.ErgoAuthResponse
}

func (f *fakeClient) wait(ctx context.Context) error {
	f.mu.Lock()
	f.fetches++
	block := f.block
	f.mu.Unlock()
	if block == nil {
		return nil
	}
	select {
	case <-block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeClient) FetchPayment(ctx context.Context, uri, address string) (*model.ErgoPaySigningRequest, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.payment, f.err
}

func (f *fakeClient) FetchAuth(ctx context.Context, uri, address string) (*model.ErgoAuthRequest, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.auth, f.err
}

func (f *fakeClient) ReplyPayment(ctx context.Context, replyTo, txID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, replyTo+" "+txID)
	return nil
}

func (f *fakeClient) ReplyAuth(ctx context.Context, replyTo string, resp *model.ErgoAuthResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authResp = resp
	return nil
}

type fakeSigner struct {
	err    error
	secret []byte
	inputs [][]byte
}

func (s *fakeSigner) SignReduced(ctx context.Context, secret *model.WalletSecret, reduced []byte, inputBoxes [][]byte) (*model.SignedTransaction, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.secret = append([]byte(nil), secret.Seed...)
	s.inputs = inputBoxes
	return &model.SignedTransaction{ID: "signed-tx", Bytes: append([]byte("signed:"), reduced...)}, nil
}

type fakeMessageSigner struct {
	message []byte
}

func (s *fakeMessageSigner) SignMessage(ctx context.Context, secret *model.WalletSecret, subjectProof, message []byte) ([]byte, error) {
	s.message = message
	return []byte{0xca, 0xfe}, nil
}

type fakeInspector struct{}

func (fakeInspector) InspectReduced(reduced []byte) (*preview.TxSkeleton, error) {
	return &preview.TxSkeleton{
		ID:       "tx1",
		InputIDs: []string{"box1"},
		Outputs: []model.BoxInfo{
			{Value: 1_000_000_000, Address: recipientAddr},
			{Value: 900_000_000, Address: walletAddr},
		},
	}, nil
}

func (fakeInspector) DecodeBox(serialized []byte) (model.BoxInfo, error) {
	return model.BoxInfo{BoxID: string(serialized), Value: 2_000_000_000, Address: walletAddr}, nil
}

type recorder struct {
	mu     sync.Mutex
	events []StateChanged
}

func (r *recorder) listen(ev StateChanged) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) states() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]State, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Snapshot.State
	}
	return out
}

// expect waits for the listener to have seen exactly want
func (r *recorder) expect(t *testing.T, want ...State) {
	t.Helper()
	require.Eventually(t, func() bool { return assert.ObjectsAreEqual(want, r.states()) }, waitFor, tick,
		"transitions %v", r.states())
}

func newMachine(t *testing.T, opts Options) (*Machine, *recorder) {
	t.Helper()
	opts.Log = zaptest.NewLogger(t)
	m := New(opts)
	rec := &recorder{}
	m.SetListener(rec.listen)
	t.Cleanup(m.Close)
	return m, rec
}

func waitState(t *testing.T, m *Machine, want State) Snapshot {
	t.Helper()
	require.Eventually(t, func() bool { return m.Snapshot().State == want }, waitFor, tick)
	return m.Snapshot()
}

func secret() *model.WalletSecret {
	return &model.WalletSecret{Seed: []byte("seed-bytes")}
}

func completePayment() *model.ErgoPaySigningRequest {
	return &model.ErgoPaySigningRequest{
		ReducedTransaction: []byte{1, 2, 3},
		Message:            model.StrPtr("Pay the shop"),
		ReplyToURL:         model.StrPtr("https://shop.example.com/reply"),
		Severity:           model.SeverityInformation,
	}
}

func TestInitialSnapshot(t *testing.T) {
	m := New(Options{})
	s := m.Snapshot()
	assert.Equal(t, StateDone, s.State)
	assert.Equal(t, model.SeverityNone, s.Severity)
}

func TestPaymentFlow(t *testing.T) {
	fc := &fakeClient{payment: completePayment()}
	signer := &fakeSigner{}
	m, rec := newMachine(t, Options{Client: fc, Signer: signer})

	require.True(t, m.Init(Request{URI: "ergopay://shop.example.com/pay", Address: walletAddr}))
	s := waitState(t, m, StateWaitForConfirmation)
	assert.Equal(t, FlowPayment, s.Flow)
	assert.Equal(t, "Pay the shop", s.Message)
	assert.Equal(t, model.SeverityInformation, s.Severity)

	sec := secret()
	require.NoError(t, m.Confirm(sec))
	s = waitState(t, m, StateDone)

	assert.Equal(t, model.SeverityNone, s.Severity)
	assert.Equal(t, "signed-tx", s.TxID)
	assert.Contains(t, s.Message, DefaultMessages.PaymentSubmitted)
	assert.Equal(t, []byte("seed-bytes"), signer.secret)
	assert.Equal(t, make([]byte, len("seed-bytes")), sec.Seed)

	fc.mu.Lock()
	assert.Equal(t, []string{"https://shop.example.com/reply signed-tx"}, fc.replies)
	fc.mu.Unlock()

	rec.expect(t, StateFetchData, StateWaitForConfirmation, StateDone)
}

func TestPaymentFlowWithPreview(t *testing.T) {
	fc := &fakeClient{payment: completePayment()}
	boxes := boxLookup{"box1": {BoxID: "box1", Value: 2_000_000_000, Address: walletAddr}}
	m, _ := newMachine(t, Options{Client: fc, Inspector: fakeInspector{}, Boxes: boxes})

	m.Init(Request{URI: "ergopay://shop.example.com/pay"})
	s := waitState(t, m, StateWaitForConfirmation)

	require.NotNil(t, s.Transaction)
	require.NotNil(t, s.Preview)
	assert.Len(t, s.Transaction.Outputs, 2)
	require.Len(t, s.Preview.Inputs, 1)
	assert.Equal(t, int64(1_100_000_000), s.Preview.Inputs[0].Value)
	require.Len(t, s.Preview.Outputs, 1)
	assert.Equal(t, recipientAddr, s.Preview.Outputs[0].Address)
}

type boxLookup map[string]model.BoxInfo

func (b boxLookup) LookupBox(_ context.Context, id string) (model.BoxInfo, error) {
	box, ok := b[id]
	if !ok {
		return model.BoxInfo{}, errors.New("unknown box")
	}
	return box, nil
}

func TestPaymentMissingBoxContext(t *testing.T) {
	fc := &fakeClient{payment: completePayment()}
	m, _ := newMachine(t, Options{Client: fc, Inspector: fakeInspector{}})

	m.Init(Request{URI: "ergopay://shop.example.com/pay"})
	s := waitState(t, m, StateDone)
	assert.Equal(t, model.SeverityError, s.Severity)
	assert.True(t, strings.HasPrefix(s.Message, DefaultMessages.FetchFailed))
}

func TestIncompletePayment(t *testing.T) {
	fc := &fakeClient{payment: &model.ErgoPaySigningRequest{Message: model.StrPtr("nothing to sign")}}
	m, rec := newMachine(t, Options{Client: fc})

	m.Init(Request{URI: "ergopay://shop.example.com/pay"})
	s := waitState(t, m, StateDone)

	assert.Equal(t, model.SeverityError, s.Severity)
	assert.Contains(t, s.Message, ErrIncompleteRequest.Error())
	rec.expect(t, StateFetchData, StateDone)
}

func TestFetchError(t *testing.T) {
	fc := &fakeClient{err: &client.HTTPStatusError{URL: "https://shop.example.com/pay", StatusCode: 500}}
	m, _ := newMachine(t, Options{Client: fc})

	m.Init(Request{URI: "ergopay://shop.example.com/pay"})
	s := waitState(t, m, StateDone)
	assert.Equal(t, model.SeverityError, s.Severity)
	assert.Contains(t, s.Message, "500")
}

func TestFetchTimeout(t *testing.T) {
	fc := &fakeClient{block: make(chan struct{})}
	m, _ := newMachine(t, Options{Client: fc, FetchTimeout: 20 * time.Millisecond})

	m.Init(Request{URI: "ergopay://shop.example.com/pay"})
	s := waitState(t, m, StateDone)
	assert.Equal(t, model.SeverityError, s.Severity)
	assert.Contains(t, s.Message, context.DeadlineExceeded.Error())
}

func TestUnsupportedURI(t *testing.T) {
	m, rec := newMachine(t, Options{Client: &fakeClient{}})

	require.True(t, m.Init(Request{URI: "https://example.com"}))
	s := m.Snapshot()
	assert.Equal(t, StateDone, s.State)
	assert.Equal(t, model.SeverityError, s.Severity)
	assert.Equal(t, DefaultMessages.Unsupported, s.Message)
	rec.expect(t, StateDone)
}

func TestInitSameURIWhileFetchingIsNoop(t *testing.T) {
	fc := &fakeClient{block: make(chan struct{}), payment: completePayment()}
	m, rec := newMachine(t, Options{Client: fc})

	uri := "ergopay://shop.example.com/pay"
	require.True(t, m.Init(Request{URI: uri}))
	session := m.Snapshot().Session
	assert.False(t, m.Init(Request{URI: uri}))
	assert.Equal(t, session, m.Snapshot().Session)

	close(fc.block)
	waitState(t, m, StateWaitForConfirmation)
	rec.expect(t, StateFetchData, StateWaitForConfirmation)
}

func TestInitSupersedesRunningFetch(t *testing.T) {
	fc := &fakeClient{block: make(chan struct{}), payment: completePayment()}
	m, rec := newMachine(t, Options{Client: fc})

	m.Init(Request{URI: "ergopay://shop.example.com/first"})
	first := m.Snapshot().Session
	m.Init(Request{URI: "ergopay://shop.example.com/second"})
	second := m.Snapshot().Session
	assert.Greater(t, second, first)

	close(fc.block)
	s := waitState(t, m, StateWaitForConfirmation)
	assert.Equal(t, "ergopay://shop.example.com/second", s.URI)

	// the cancelled first fetch never reports
	time.Sleep(20 * time.Millisecond)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	for _, ev := range rec.events {
		if ev.Snapshot.Session == first {
			assert.Equal(t, StateFetchData, ev.Snapshot.State)
		}
	}
}

func TestCloseSuppressesTransitions(t *testing.T) {
	fc := &fakeClient{block: make(chan struct{}), payment: completePayment()}
	m, rec := newMachine(t, Options{Client: fc})

	m.Init(Request{URI: "ergopay://shop.example.com/pay"})
	m.Close()
	close(fc.block)

	time.Sleep(20 * time.Millisecond)
	rec.expect(t, StateFetchData)
	assert.Equal(t, StateFetchData, m.Snapshot().State)
}

func TestConfirmRequiresWaitingState(t *testing.T) {
	m, _ := newMachine(t, Options{Client: &fakeClient{}})
	sec := secret()
	assert.ErrorIs(t, m.Confirm(sec), ErrInvalidState)
	assert.Equal(t, make([]byte, len("seed-bytes")), sec.Seed)
	assert.ErrorIs(t, m.Authenticate(secret()), ErrInvalidState)
}

func TestConfirmWithoutSigner(t *testing.T) {
	fc := &fakeClient{payment: completePayment()}
	m, _ := newMachine(t, Options{Client: fc})

	m.Init(Request{URI: "ergopay://shop.example.com/pay"})
	waitState(t, m, StateWaitForConfirmation)

	require.NoError(t, m.Confirm(secret()))
	s := waitState(t, m, StateDone)
	assert.Equal(t, model.SeverityError, s.Severity)
	assert.Contains(t, s.Message, ErrSignerUnavailable.Error())
}

func TestAuthFlow(t *testing.T) {
	fc := &fakeClient{auth: &model.ErgoAuthRequest{
		SigningMessage: model.StrPtr("challenge"),
		SubjectProof:   []byte{0xcd},
		UserMessage:    model.StrPtr("Log in to the shop"),
		ReplyToURL:     model.StrPtr("https://shop.example.com/auth"),
		Severity:       model.SeverityNone,
	}}
	ms := &fakeMessageSigner{}
	m, rec := newMachine(t, Options{Client: fc, MessageSigner: ms})

	m.Init(Request{URI: "ergoauth://shop.example.com/auth", Address: walletAddr})
	s := waitState(t, m, StateWaitForAuth)
	assert.Equal(t, FlowAuth, s.Flow)
	assert.Equal(t, "Log in to the shop", s.Message)

	require.NoError(t, m.Authenticate(secret()))
	s = waitState(t, m, StateDone)
	assert.Equal(t, model.SeverityNone, s.Severity)
	assert.Equal(t, DefaultMessages.AuthSucceeded, s.Message)

	fc.mu.Lock()
	resp := fc.authResp
	fc.mu.Unlock()
	require.NotNil(t, resp)
	assert.Equal(t, "cafe", resp.Proof)
	assert.Equal(t, string(ms.message), resp.SignedMessage)
	assert.True(t, strings.HasSuffix(resp.SignedMessage, "challengeshop.example.com"))
	assert.Len(t, resp.SignedMessage, 2*signedMessagePrefixLen+len("challengeshop.example.com"))

	rec.expect(t, StateFetchData, StateWaitForAuth, StateDone)
}

func TestIncompleteAuth(t *testing.T) {
	fc := &fakeClient{auth: &model.ErgoAuthRequest{SigningMessage: model.StrPtr("challenge")}}
	m, _ := newMachine(t, Options{Client: fc})

	m.Init(Request{URI: "ergoauth://shop.example.com/auth"})
	s := waitState(t, m, StateDone)
	assert.Equal(t, model.SeverityError, s.Severity)
}

func coldPages(t *testing.T, req *model.ColdSigningRequest) []string {
	t.Helper()
	pages, err := coldsign.RequestPages(req, 16)
	require.NoError(t, err)
	require.Greater(t, len(pages), 1)
	return pages
}

func TestColdFlow(t *testing.T) {
	reg := prometheus.NewRegistry()
	signer := &fakeSigner{}
	m, _ := newMachine(t, Options{
		Signer:       signer,
		Inspector:    fakeInspector{},
		FragmentSize: 32,
		Metrics:      metrics.NewFlow(reg),
	})

	req := &model.ColdSigningRequest{
		ReducedTransaction: []byte("reduced transaction bytes"),
		SenderAddress:      walletAddr,
		InputBoxes:         [][]byte{[]byte("box1")},
	}
	pages := coldPages(t, req)

	m.InitCold()
	assert.Equal(t, StateScanning, m.Snapshot().State)

	// scanned in reverse, with a repeat
	for i := len(pages) - 1; i > 0; i-- {
		added, err := m.AddPage(pages[i])
		require.NoError(t, err)
		assert.True(t, added)
	}
	added, err := m.AddPage(pages[len(pages)-1])
	require.NoError(t, err)
	assert.False(t, added)

	s := m.Snapshot()
	assert.Equal(t, StateScanning, s.State)
	assert.Equal(t, len(pages)-1, s.PagesSeen)
	assert.Equal(t, len(pages), s.PagesTotal)

	_, err = m.AddPage(`{"CSTX":"x","p":1,"n":1}`)
	assert.Error(t, err)
	assert.Equal(t, StateScanning, m.Snapshot().State)

	added, err = m.AddPage(pages[0])
	require.NoError(t, err)
	assert.True(t, added)

	s = m.Snapshot()
	require.Equal(t, StateWaitForConfirmation, s.State)
	assert.Equal(t, req, s.ColdRequest)
	require.NotNil(t, s.Preview)
	assert.Equal(t, "tx1", s.Preview.ID)

	require.NoError(t, m.Confirm(secret()))
	s = waitState(t, m, StateDone)
	assert.Equal(t, model.SeverityNone, s.Severity)
	assert.Equal(t, DefaultMessages.ColdSigned, s.Message)
	assert.Equal(t, [][]byte{[]byte("box1")}, signer.inputs)

	res, err := coldsign.DecodeResultPages(s.ResultPages)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, []byte("signed:reduced transaction bytes"), res.Payload)
	assert.Equal(t, walletAddr, res.SubjectAddress)

	assert.Equal(t, float64(len(pages)), testutil.ToFloat64(m.metrics.PagesScanned))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.metrics.SessionsStarted.WithLabelValues(string(FlowCold))))
}

func TestColdFlowMissingBoxContext(t *testing.T) {
	m, _ := newMachine(t, Options{Signer: &fakeSigner{}, Inspector: fakeInspector{}})

	pages := coldPages(t, &model.ColdSigningRequest{
		ReducedTransaction: []byte("reduced transaction bytes"),
		SenderAddress:      walletAddr,
	})

	m.InitCold()
	var err error
	for _, p := range pages {
		_, err = m.AddPage(p)
	}
	assert.ErrorIs(t, err, preview.ErrMissingBoxContext)

	s := m.Snapshot()
	assert.Equal(t, StateDone, s.State)
	assert.Equal(t, model.SeverityError, s.Severity)

	_, err = m.AddPage(pages[0])
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestAddPageOutsideScanning(t *testing.T) {
	m, _ := newMachine(t, Options{})
	_, err := m.AddPage(`{"CSR":"x","p":1,"n":1}`)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestDispatch(t *testing.T) {
	var dispatched int
	m := New(Options{Dispatch: func(f func()) {
		dispatched++
		f()
	}})
	rec := &recorder{}
	m.SetListener(rec.listen)

	m.InitCold()
	assert.Equal(t, 1, dispatched)
	rec.expect(t, StateScanning)
	assert.Equal(t, StateDone, rec.events[0].Previous)
}

func TestPaymentFlowOverHTTP(t *testing.T) {
	var reply model.ErgoPayReply
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "/pay/"+walletAddr, r.URL.Path)
			json.NewEncoder(w).Encode(map[string]string{
				"reducedTx":       "AQID",
				"message":         "Swap",
				"messageSeverity": "WARNING",
				"replyTo":         "http://" + r.Host + "/reply",
			})
		case http.MethodPost:
			mu.Lock()
			defer mu.Unlock()
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&reply))
		}
	}))
	defer srv.Close()

	log := zaptest.NewLogger(t)
	m, _ := newMachine(t, Options{
		Client: client.New(nil, log),
		Signer: &fakeSigner{},
	})

	uri := "ergopay://" + strings.TrimPrefix(srv.URL, "http://") + "/pay/" + client.AddressPlaceholder
	m.Init(Request{URI: uri, Address: walletAddr})
	s := waitState(t, m, StateWaitForConfirmation)
	assert.Equal(t, model.SeverityWarning, s.Severity)
	assert.Equal(t, []byte{1, 2, 3}, s.Payment.ReducedTransaction)

	require.NoError(t, m.Confirm(secret()))
	s = waitState(t, m, StateDone)
	assert.Equal(t, model.SeverityNone, s.Severity)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "signed-tx", reply.TxID)
}

func TestTransactionIDFallback(t *testing.T) {
	assert.Equal(t, "given", transactionID(&model.SignedTransaction{ID: "given", Bytes: []byte{1}}))

	id := transactionID(&model.SignedTransaction{Bytes: []byte{1, 2, 3}})
	assert.Len(t, id, 64)
	assert.Equal(t, id, transactionID(&model.SignedTransaction{Bytes: []byte{1, 2, 3}}))
}

func TestBuildSignedMessage(t *testing.T) {
	msg, err := buildSignedMessage("challenge", "https://dapp.example.com:8443/auth")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(msg, "challengedapp.example.com:8443"))

	other, err := buildSignedMessage("challenge", "https://dapp.example.com:8443/auth")
	require.NoError(t, err)
	assert.NotEqual(t, msg, other)

	_, err = buildSignedMessage("challenge", "://bad")
	assert.Error(t, err)
}
