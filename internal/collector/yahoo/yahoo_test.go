package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/minjia/goldgap/internal/collector"
)

func TestYahoo_ImplementsMarketCollector(t *testing.T) {
	var _ collector.MarketCollector = (*Yahoo)(nil)
}

func TestYahoo_Name(t *testing.T) {
	y := New()
	if y.Name() != "yahoo" {
		t.Errorf("expected 'yahoo', got '%s'", y.Name())
	}
}

func chartBody(timestamps []int64, closes []string) string {
	return fmt.Sprintf(`{"chart":{"result":[{
		"meta":{"symbol":"GC=F"},
		"timestamp":[%s],
		"indicators":{"quote":[{"close":[%s]}]}
	}],"error":null}}`,
		joinInt64(timestamps), strings.Join(closes, ","))
}

func joinInt64(vs []int64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ",")
}

func TestYahoo_FetchGold(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "GC=F") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(chartBody(
			[]int64{1709251200, 1709337600, 1709424000, 1709683200},
			[]string{"2015.00", "2020.50", "2022.30", "2025.00"},
		)))
	}))
	defer srv.Close()

	y := New()
	y.Init(collector.Config{BaseURL: srv.URL})

	gold, err := y.FetchGold(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gold.TMinus2 == nil || *gold.TMinus2 != 2020.50 {
		t.Errorf("t-2 = %v, want 2020.50", gold.TMinus2)
	}
	if gold.TMinus1 == nil || *gold.TMinus1 != 2022.30 {
		t.Errorf("t-1 = %v, want 2022.30", gold.TMinus1)
	}
	if gold.Now == nil || *gold.Now != 2025.00 {
		t.Errorf("now = %v, want 2025.00", gold.Now)
	}
	if gold.Currency != "USD" {
		t.Errorf("currency = %s, want USD", gold.Currency)
	}
	if !gold.NowTime.After(gold.TMinus2Time) {
		t.Error("timestamps should be ordered oldest to newest")
	}
}

func TestYahoo_FetchGold_SkipsNullCloses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chartBody(
			[]int64{1709251200, 1709337600, 1709424000, 1709683200},
			[]string{"2020.50", "null", "2022.30", "2025.00"},
		)))
	}))
	defer srv.Close()

	y := New()
	y.Init(collector.Config{BaseURL: srv.URL})

	gold, err := y.FetchGold(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if gold.TMinus2 == nil || *gold.TMinus2 != 2020.50 {
		t.Errorf("null closes should be skipped, t-2 = %v", gold.TMinus2)
	}
}

func TestYahoo_FetchGold_TooFewCloses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chartBody([]int64{1709683200}, []string{"2025.00"})))
	}))
	defer srv.Close()

	y := New()
	y.Init(collector.Config{BaseURL: srv.URL})

	gold, err := y.FetchGold(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// Early points stay absent; the normalizer turns that into a
	// fatal missing-gold-data error.
	if gold.Now == nil {
		t.Error("now should be present")
	}
	if gold.TMinus2 != nil || gold.TMinus1 != nil {
		t.Error("t-2 and t-1 should be absent with a single close")
	}
}

func TestYahoo_FetchFx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "USDCNY=X") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(chartBody([]int64{1709683200}, []string{"7.21"})))
	}))
	defer srv.Close()

	y := New()
	y.Init(collector.Config{BaseURL: srv.URL})

	fx, err := y.FetchFx(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if fx.UsdCny == nil || *fx.UsdCny != 7.21 {
		t.Errorf("fx = %v, want 7.21", fx.UsdCny)
	}
}

func TestYahoo_FetchGold_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer srv.Close()

	y := New()
	y.Init(collector.Config{BaseURL: srv.URL})

	if _, err := y.FetchGold(context.Background()); err == nil {
		t.Error("expected error from API error payload")
	}
}
