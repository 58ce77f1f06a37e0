package wallet

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bakoushin/celo-box/internal/config"
	"github.com/bakoushin/celo-box/internal/deeplink"
)

func testConfig() config.WalletConfig {
	return config.WalletConfig{
		DappName:    "Boxes",
		Scheme:      "celo://wallet/dappkit",
		CallbackUrl: "http://localhost:8080/wallet/callback",
		RequestTTL:  600,
	}
}

// recordingOpener 记录出栈深链，按需在独立协程中回调
type recordingOpener struct {
	mu    sync.Mutex
	links map[string]string
}

func newRecordingOpener() *recordingOpener {
	return &recordingOpener{links: make(map[string]string)}
}

func (o *recordingOpener) Open(_ context.Context, requestID, link string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.links[requestID] = link
	return nil
}

func (o *recordingOpener) link(requestID string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.links[requestID]
}

func TestRequestSignatureRoundTrip(t *testing.T) {
	opener := newRecordingOpener()
	bridge := NewBridge(testConfig(), opener)

	go func() {
		// 等待请求挂起后再回调
		for bridge.PendingCount() == 0 {
			time.Sleep(time.Millisecond)
		}
		bridge.Resolve(&deeplink.Callback{
			RequestID: RequestContribute,
			Status:    deeplink.StatusOK,
			RawTxs:    []string{"0xaa", "0xbb"},
		})
	}()

	resp, err := bridge.RequestSignature(context.Background(), RequestContribute, []deeplink.TxDescriptor{
		{Tx: "0x01"}, {Tx: "0x02"},
	})
	if err != nil {
		t.Fatalf("RequestSignature returned error: %v", err)
	}

	if len(resp.RawTxs) != 2 || resp.RawTxs[0] != "0xaa" || resp.RawTxs[1] != "0xbb" {
		t.Errorf("rawTxs = %v, want [0xaa 0xbb] in request order", resp.RawTxs)
	}
	if opener.link(RequestContribute) == "" {
		t.Error("no deep link was issued for the request")
	}
	if bridge.PendingCount() != 0 {
		t.Errorf("pending count = %d after resolution, want 0", bridge.PendingCount())
	}
}

func TestRequestSignatureRejected(t *testing.T) {
	bridge := NewBridge(testConfig(), newRecordingOpener())

	go func() {
		for bridge.PendingCount() == 0 {
			time.Sleep(time.Millisecond)
		}
		bridge.Resolve(&deeplink.Callback{
			RequestID: RequestRedeem,
			Status:    deeplink.StatusCancelled,
		})
	}()

	_, err := bridge.RequestSignature(context.Background(), RequestRedeem, nil)
	if !errors.Is(err, ErrSigningRejected) {
		t.Fatalf("error = %v, want ErrSigningRejected", err)
	}
}

func TestResolveUnknownRequest(t *testing.T) {
	bridge := NewBridge(testConfig(), newRecordingOpener())

	if bridge.Resolve(&deeplink.Callback{RequestID: RequestFinalize, Status: deeplink.StatusOK}) {
		t.Error("Resolve should return false for an unknown requestId")
	}
}

func TestResolveDuplicateCallback(t *testing.T) {
	bridge := NewBridge(testConfig(), newRecordingOpener())

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := bridge.RequestSignature(context.Background(), RequestRevokeContribution, nil); err != nil {
			t.Errorf("RequestSignature returned error: %v", err)
		}
	}()

	for bridge.PendingCount() == 0 {
		time.Sleep(time.Millisecond)
	}

	cb := &deeplink.Callback{RequestID: RequestRevokeContribution, Status: deeplink.StatusOK, RawTxs: []string{"0x01"}}
	if !bridge.Resolve(cb) {
		t.Error("first callback should resolve the request")
	}
	if bridge.Resolve(cb) {
		t.Error("duplicate callback should be dropped")
	}

	<-done
}

func TestRequestSignatureCancelled(t *testing.T) {
	bridge := NewBridge(testConfig(), newRecordingOpener())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := bridge.RequestSignature(ctx, RequestCreateBox, nil)
	if err == nil {
		t.Fatal("expected an error for a cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if bridge.PendingCount() != 0 {
		t.Errorf("pending count = %d after cancellation, want 0", bridge.PendingCount())
	}
}

func TestDuplicatePendingRequest(t *testing.T) {
	bridge := NewBridge(testConfig(), newRecordingOpener())

	go bridge.RequestSignature(context.Background(), RequestFinalize, nil)
	for bridge.PendingCount() == 0 {
		time.Sleep(time.Millisecond)
	}

	_, err := bridge.RequestSignature(context.Background(), RequestFinalize, nil)
	if !errors.Is(err, ErrRequestPending) {
		t.Fatalf("error = %v, want ErrRequestPending", err)
	}

	// 清理挂起的首个请求
	bridge.Resolve(&deeplink.Callback{RequestID: RequestFinalize, Status: deeplink.StatusCancelled})
}

func TestSweepExpired(t *testing.T) {
	cfg := testConfig()
	cfg.RequestTTL = 0 // 所有请求立即过期
	bridge := NewBridge(cfg, newRecordingOpener())

	errCh := make(chan error, 1)
	go func() {
		_, err := bridge.RequestSignature(context.Background(), RequestContribute, nil)
		errCh <- err
	}()

	for bridge.PendingCount() == 0 {
		time.Sleep(time.Millisecond)
	}

	if expired := bridge.SweepExpired(); expired != 1 {
		t.Errorf("SweepExpired() = %d, want 1", expired)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrRequestExpired) {
			t.Errorf("error = %v, want ErrRequestExpired", err)
		}
	case <-time.After(time.Second):
		t.Fatal("request was not released by the sweep")
	}

	if expired := bridge.SweepExpired(); expired != 0 {
		t.Errorf("second SweepExpired() = %d, want 0", expired)
	}
}
