package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestRakutenSearchProducts(t *testing.T) {
	t.Parallel()

	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{
			"Items": [
				{"Item": {
					"itemCode": "shop:100",
					"itemName": "ペガサス41 メンズ",
					"itemPrice": 16500,
					"itemUrl": "https://item.rakuten.co.jp/shop/100/",
					"shopName": "shopA",
					"reviewCount": 12,
					"reviewAverage": 4.4,
					"mediumImageUrls": [{"imageUrl": "https://thumbnail.image.rakuten.co.jp/a.jpg?_ex=128x128"}]
				}},
				{"Item": {
					"itemCode": "shop:200",
					"itemName": "ペガサス41 箱なし",
					"itemUrl": "https://item.rakuten.co.jp/shop/200/",
					"shopName": "shopB",
					"reviewCount": 0,
					"reviewAverage": 0
				}},
				{"Item": {
					"itemCode": "",
					"itemName": "missing code",
					"itemUrl": "https://item.rakuten.co.jp/shop/300/"
				}}
			]
		}`))
	}))
	defer server.Close()

	r := NewRakuten("app-id", "aff-id", time.Second).WithEndpoint(server.URL)
	stats, err := r.SearchProducts(context.Background(), "Nike Pegasus 41 シューズ", 10)
	if err != nil {
		t.Fatalf("SearchProducts() error = %v", err)
	}

	if got := gotQuery.Get("genreId"); got != "216130" {
		t.Errorf("genreId = %q, want running shoe genre", got)
	}
	if got := gotQuery.Get("keyword"); got != "Nike Pegasus 41 シューズ" {
		t.Errorf("keyword = %q", got)
	}
	if got := gotQuery.Get("sort"); got != "-reviewCount" {
		t.Errorf("sort = %q", got)
	}
	if got := gotQuery.Get("affiliateId"); got != "aff-id" {
		t.Errorf("affiliateId = %q", got)
	}

	if len(stats) != 2 {
		t.Fatalf("stats = %d, want 2 (empty itemCode dropped)", len(stats))
	}

	first := stats[0]
	if first.NormalizedRating != 8.8 {
		t.Errorf("NormalizedRating = %v, want 8.8", first.NormalizedRating)
	}
	if first.ImageURL != "https://thumbnail.image.rakuten.co.jp/a.jpg?_ex=500x500" {
		t.Errorf("ImageURL = %q, want _ex=500x500 rewrite", first.ImageURL)
	}
	if first.Price != 16500 {
		t.Errorf("Price = %d", first.Price)
	}

	second := stats[1]
	if second.NormalizedRating != 0 {
		t.Errorf("unreviewed NormalizedRating = %v, want 0", second.NormalizedRating)
	}
	if second.ImageURL != "" {
		t.Errorf("ImageURL = %q, want empty", second.ImageURL)
	}
}

func TestRakutenRequiresApplicationID(t *testing.T) {
	t.Parallel()

	r := NewRakuten("", "", time.Second)
	if _, err := r.SearchProducts(context.Background(), "keyword", 10); err == nil {
		t.Error("empty application id must fail before the request")
	}
}
