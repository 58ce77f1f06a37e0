package chain

import (
	"errors"
	"testing"

	"github.com/bakoushin/celo-box/internal/config"
	"github.com/ethereum/go-ethereum/common"
)

const (
	testGoldToken   = "0xF194afDf50B03e69Bd7D057c1Aa9e10c9954E4C9"
	testStableToken = "0x874069Fa1Eb16D44d622F2e0Ca25eeA172369bC1"
	testFactory     = "0x1111111111111111111111111111111111111111"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(config.ChainConfig{
		Networks: map[string]config.NetworkConfig{
			"Alfajores": {
				RpcUrl:         "wss://alfajores-forno.celo-testnet.org/ws",
				FactoryAddress: testFactory,
				GoldToken:      testGoldToken,
				StableToken:    testStableToken,
				ExplorerUrl:    "https://explorer.celo.org/alfajores",
			},
		},
	})
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}
	return client
}

func TestParseNetwork(t *testing.T) {
	tests := []struct {
		input   string
		want    Network
		wantErr bool
	}{
		{"Mainnet", NetworkMainnet, false},
		{"mainnet", NetworkMainnet, false},
		{"Alfajores", NetworkAlfajores, false},
		{"ALFAJORES", NetworkAlfajores, false},
		{"Baklava", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseNetwork(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownNetwork) {
				t.Errorf("ParseNetwork(%q) error = %v, want ErrUnknownNetwork", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseNetwork(%q) returned error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseNetwork(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		input   string
		want    Currency
		wantErr bool
	}{
		{"CELO", CurrencyCELO, false},
		{"celo", CurrencyCELO, false},
		{"cUSD", CurrencyCUSD, false},
		{"CUSD", CurrencyCUSD, false},
		{"cEUR", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseCurrency(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownCurrency) {
				t.Errorf("ParseCurrency(%q) error = %v, want ErrUnknownCurrency", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCurrency(%q) returned error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCurrency(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(config.ChainConfig{})
	if err == nil {
		t.Error("NewClient accepted an empty network map")
	}

	_, err = NewClient(config.ChainConfig{
		Networks: map[string]config.NetworkConfig{
			"Baklava": {RpcUrl: "wss://example.com/ws"},
		},
	})
	if !errors.Is(err, ErrUnknownNetwork) {
		t.Errorf("error = %v, want ErrUnknownNetwork for an unknown network name", err)
	}

	_, err = NewClient(config.ChainConfig{
		Networks: map[string]config.NetworkConfig{
			"Mainnet": {},
		},
	})
	if err == nil {
		t.Error("NewClient accepted a network without an RPC URL")
	}
}

func TestTokenByCurrency(t *testing.T) {
	client := testClient(t)

	gold, err := client.TokenByCurrency(NetworkAlfajores, CurrencyCELO)
	if err != nil {
		t.Fatalf("TokenByCurrency(CELO) returned error: %v", err)
	}
	if gold != common.HexToAddress(testGoldToken) {
		t.Errorf("CELO token = %s, want %s", gold.Hex(), testGoldToken)
	}

	stable, err := client.TokenByCurrency(NetworkAlfajores, CurrencyCUSD)
	if err != nil {
		t.Fatalf("TokenByCurrency(cUSD) returned error: %v", err)
	}
	if stable != common.HexToAddress(testStableToken) {
		t.Errorf("cUSD token = %s, want %s", stable.Hex(), testStableToken)
	}

	if _, err := client.TokenByCurrency(NetworkMainnet, CurrencyCELO); !errors.Is(err, ErrUnknownNetwork) {
		t.Errorf("error = %v, want ErrUnknownNetwork for an unconfigured network", err)
	}
}

func TestCurrencyByToken(t *testing.T) {
	client := testClient(t)

	currency, err := client.CurrencyByToken(NetworkAlfajores, common.HexToAddress(testGoldToken))
	if err != nil {
		t.Fatalf("CurrencyByToken(gold) returned error: %v", err)
	}
	if currency != CurrencyCELO {
		t.Errorf("currency = %s, want CELO", currency)
	}

	currency, err = client.CurrencyByToken(NetworkAlfajores, common.HexToAddress(testStableToken))
	if err != nil {
		t.Fatalf("CurrencyByToken(stable) returned error: %v", err)
	}
	if currency != CurrencyCUSD {
		t.Errorf("currency = %s, want cUSD", currency)
	}

	unknown := common.HexToAddress("0x9999999999999999999999999999999999999999")
	if _, err := client.CurrencyByToken(NetworkAlfajores, unknown); !errors.Is(err, ErrUnknownCurrency) {
		t.Errorf("error = %v, want ErrUnknownCurrency for an unmapped token", err)
	}
}

func TestFactoryAddress(t *testing.T) {
	client := testClient(t)

	factory, err := client.FactoryAddress(NetworkAlfajores)
	if err != nil {
		t.Fatalf("FactoryAddress returned error: %v", err)
	}
	if factory != common.HexToAddress(testFactory) {
		t.Errorf("factory = %s, want %s", factory.Hex(), testFactory)
	}
}

func TestExplorerLink(t *testing.T) {
	client := testClient(t)

	link := client.ExplorerLink(NetworkAlfajores, "0xabc")
	want := "https://explorer.celo.org/alfajores/address/0xabc/token_transfers"
	if link != want {
		t.Errorf("link = %s, want %s", link, want)
	}

	if link := client.ExplorerLink(NetworkMainnet, "0xabc"); link != "" {
		t.Errorf("link for unconfigured network = %q, want empty", link)
	}
}

func TestDecodeRawTx(t *testing.T) {
	withPrefix, err := decodeRawTx("0xf86b")
	if err != nil {
		t.Fatalf("decodeRawTx(0x-prefixed) returned error: %v", err)
	}
	withoutPrefix, err := decodeRawTx("f86b")
	if err != nil {
		t.Fatalf("decodeRawTx(bare hex) returned error: %v", err)
	}
	if len(withPrefix) != 2 || withPrefix[0] != withoutPrefix[0] || withPrefix[1] != withoutPrefix[1] {
		t.Errorf("prefixed and bare decodes differ: %x vs %x", withPrefix, withoutPrefix)
	}

	if _, err := decodeRawTx("0xzz"); err == nil {
		t.Error("decodeRawTx accepted invalid hex")
	}
}
