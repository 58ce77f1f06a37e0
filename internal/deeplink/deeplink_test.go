package deeplink

import (
	"net/url"
	"testing"
)

func TestSignRequestURLRoundTrip(t *testing.T) {
	req := SignRequest{
		RequestID: "contribute",
		DappName:  "Boxes",
		Callback:  "http://localhost:8080/wallet/callback",
		Transactions: []TxDescriptor{
			{
				Tx:           "0xdeadbeef",
				From:         "0x1111111111111111111111111111111111111111",
				To:           "0x2222222222222222222222222222222222222222",
				FeeCurrency:  "0x3333333333333333333333333333333333333333",
				EstimatedGas: 200000,
			},
			{
				Tx:          "0xcafebabe",
				From:        "0x1111111111111111111111111111111111111111",
				To:          "0x4444444444444444444444444444444444444444",
				FeeCurrency: "0x3333333333333333333333333333333333333333",
			},
		},
	}

	link, err := BuildSignRequestURL("celo://wallet/dappkit", req)
	if err != nil {
		t.Fatalf("BuildSignRequestURL returned error: %v", err)
	}

	parsed, err := ParseSignRequestURL(link)
	if err != nil {
		t.Fatalf("ParseSignRequestURL returned error: %v", err)
	}

	if parsed.RequestID != req.RequestID {
		t.Errorf("requestId = %q, want %q", parsed.RequestID, req.RequestID)
	}
	if parsed.DappName != req.DappName {
		t.Errorf("dappName = %q, want %q", parsed.DappName, req.DappName)
	}
	if parsed.Callback != req.Callback {
		t.Errorf("callback = %q, want %q", parsed.Callback, req.Callback)
	}
	if len(parsed.Transactions) != 2 {
		t.Fatalf("got %d transactions, want 2", len(parsed.Transactions))
	}
	if parsed.Transactions[0] != req.Transactions[0] {
		t.Errorf("first tx = %+v, want %+v", parsed.Transactions[0], req.Transactions[0])
	}
	if parsed.Transactions[1] != req.Transactions[1] {
		t.Errorf("second tx = %+v, want %+v", parsed.Transactions[1], req.Transactions[1])
	}
}

func TestBuildAccountRequestURL(t *testing.T) {
	link := BuildAccountRequestURL("celo://wallet/dappkit", "request_account_address", "Boxes", "http://cb")

	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("invalid URL: %v", err)
	}
	params := u.Query()
	if params.Get("type") != TypeAccountAddress {
		t.Errorf("type = %q, want %q", params.Get("type"), TypeAccountAddress)
	}
	if params.Get("requestId") != "request_account_address" {
		t.Errorf("requestId = %q", params.Get("requestId"))
	}
}

func TestParseCallback(t *testing.T) {
	testCases := []struct {
		name       string
		params     url.Values
		wantErr    bool
		wantStatus string
		wantTxs    int
		wantAddr   string
	}{
		{
			name: "signed transactions",
			params: url.Values{
				"requestId": {"contribute"},
				"status":    {"ok"},
				"rawTxs":    {"WyIweGFhIiwiMHhiYiJd"}, // ["0xaa","0xbb"]
			},
			wantStatus: "ok",
			wantTxs:    2,
		},
		{
			name: "account address",
			params: url.Values{
				"requestId": {"request_account_address"},
				"address":   {"0x1234"},
			},
			wantStatus: "ok",
			wantAddr:   "0x1234",
		},
		{
			name: "cancelled",
			params: url.Values{
				"requestId": {"redeem"},
				"status":    {"cancelled"},
			},
			wantStatus: "cancelled",
		},
		{
			name:    "missing requestId",
			params:  url.Values{"status": {"ok"}},
			wantErr: true,
		},
		{
			name: "bad rawTxs encoding",
			params: url.Values{
				"requestId": {"contribute"},
				"rawTxs":    {"%%%"},
			},
			wantErr: true,
		},
	}

	for _, c := range testCases {
		t.Run(c.name, func(t *testing.T) {
			cb, err := ParseCallback(c.params)
			if c.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCallback returned error: %v", err)
			}
			if cb.Status != c.wantStatus {
				t.Errorf("status = %q, want %q", cb.Status, c.wantStatus)
			}
			if len(cb.RawTxs) != c.wantTxs {
				t.Errorf("got %d rawTxs, want %d", len(cb.RawTxs), c.wantTxs)
			}
			if cb.Address != c.wantAddr {
				t.Errorf("address = %q, want %q", cb.Address, c.wantAddr)
			}
		})
	}
}

func TestShareLinkRoundTrip(t *testing.T) {
	link := BuildShareLink("http://localhost:8080/", "0xabcdef", "Alfajores")

	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("invalid share link: %v", err)
	}

	boxAddress, network, err := ParseShareLink(u.Query())
	if err != nil {
		t.Fatalf("ParseShareLink returned error: %v", err)
	}
	if boxAddress != "0xabcdef" {
		t.Errorf("boxAddress = %q", boxAddress)
	}
	if network != "Alfajores" {
		t.Errorf("network = %q", network)
	}
}

func TestParseShareLinkMissingParams(t *testing.T) {
	if _, _, err := ParseShareLink(url.Values{"boxAddress": {"0xab"}}); err == nil {
		t.Error("expected an error for a link without network")
	}
	if _, _, err := ParseShareLink(url.Values{"network": {"Mainnet"}}); err == nil {
		t.Error("expected an error for a link without boxAddress")
	}
}
