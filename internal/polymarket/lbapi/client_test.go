package lbapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liamashdown/holderscope/internal/config"
)

func TestGetProfit(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		want   float64
		wantOK bool
	}{
		{"object-profit", `{"profit": 1523.75}`, 1523.75, true},
		{"object-string-profit", `{"profit": "-88.10"}`, -88.10, true},
		{"array-matching-wallet", `[{"proxyWallet":"0xOTHER","amount":5},{"proxyWallet":"0xABC","amount":-42.5}]`, -42.5, true},
		{"array-single-row-no-wallet", `[{"amount": 12}]`, 12, true},
		{"empty-array", `[]`, 0, false},
		{"object-without-profit", `{"rank": 3}`, 0, false},
		{"array-other-wallet-only", `[{"proxyWallet":"0xOTHER","amount":5}]`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/profit", r.URL.Path)
				assert.Equal(t, "0xabc", r.URL.Query().Get("address"))
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(&config.Config{LBAPIBaseURL: server.URL, LBAPIRPS: 100})
			got, ok, err := client.GetProfit(context.Background(), "0xabc")
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetProfitHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(&config.Config{LBAPIBaseURL: server.URL, LBAPIRPS: 100})
	_, ok, err := client.GetProfit(context.Background(), "0xabc")
	require.Error(t, err)
	assert.False(t, ok)
}
