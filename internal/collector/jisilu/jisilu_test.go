package jisilu

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minjia/goldgap/internal/collector"
)

func TestJisilu_ImplementsFundCollector(t *testing.T) {
	var _ collector.FundCollector = (*Jisilu)(nil)
}

func TestJisilu_Name(t *testing.T) {
	assert.Equal(t, "jisilu", New().Name())
}

func TestJisilu_ParseCell(t *testing.T) {
	tests := []struct {
		input string
		want  *float64
	}{
		{"4.123", f64(4.123)},
		{"0.54%", f64(0.54)},
		{" 4.089 ", f64(4.089)},
		{"", nil},
		{"-", nil},
		{"n/a", nil},
	}

	for _, tc := range tests {
		got := parseCell(tc.input)
		if tc.want == nil {
			assert.Nil(t, got, "parseCell(%q)", tc.input)
		} else {
			require.NotNil(t, got, "parseCell(%q)", tc.input)
			assert.Equal(t, *tc.want, *got, "parseCell(%q)", tc.input)
		}
	}
}

func TestJisilu_PercentToRate(t *testing.T) {
	got := percentToRate(f64(0.54))
	require.NotNil(t, got)
	assert.InDelta(t, 0.0054, *got, 1e-12)

	assert.Nil(t, percentToRate(nil), "nil should pass through")
}

func TestJisilu_IsGoldFund(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"国泰黄金ETF", true},
		{"博时标普500", false},
		{"嘉实Gold", true},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, isGoldFund(tc.name), "isGoldFund(%s)", tc.name)
	}
}

func TestJisilu_FetchFunds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Y", r.URL.Query().Get("is_search"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"rows":[
			{"id":"518800","cell":{"fund_cd":"518800","fund_nm":"国泰黄金ETF","price":"4.123","unit_nav":"4.089","est_nav":"4.101","premium_rt":"0.54"}},
			{"id":"159920","cell":{"fund_cd":"159920","fund_nm":"恒生ETF","price":"1.1","unit_nav":"1.0","est_nav":"","premium_rt":""}},
			{"id":"159934","cell":{"fund_cd":"159934","fund_nm":"易方达黄金ETF","price":"4.087","unit_nav":"","est_nav":"-","premium_rt":"-"}}
		]}`))
	}))
	defer srv.Close()

	j := New()
	require.NoError(t, j.Init(collector.Config{BaseURL: srv.URL}))

	funds, err := j.FetchFunds(context.Background())
	require.NoError(t, err)

	// The non-gold row is filtered out.
	require.Len(t, funds, 2)

	first := funds[0]
	assert.Equal(t, "518800", first.Code)
	require.NotNil(t, first.NavT2)
	assert.Equal(t, 4.089, *first.NavT2)
	require.NotNil(t, first.PremiumT1)
	assert.InDelta(t, 0.0054, *first.PremiumT1, 1e-12, "premium should be converted to decimal")

	// Absent cells come back as nil, not zero.
	second := funds[1]
	assert.Nil(t, second.NavT2)
	assert.Nil(t, second.PremiumT1)
}

func TestJisilu_FetchFundsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	j := New()
	require.NoError(t, j.Init(collector.Config{BaseURL: srv.URL}))

	_, err := j.FetchFunds(context.Background())
	assert.Error(t, err)
}

func f64(v float64) *float64 { return &v }
