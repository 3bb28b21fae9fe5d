package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultRakutenEndpoint = "https://app.rakuten.co.jp/services/api"
	rakutenSearchPath      = "/IchibaItem/Search/20220601"

	// Running shoe genre in the Ichiba taxonomy.
	rakutenShoeGenreID = "216130"
)

// Rakuten fetches product review statistics from the Ichiba item search
// API. Review bodies are deliberately never collected, only the count and
// average rating with a link to the listing.
type Rakuten struct {
	applicationID string
	affiliateID   string
	endpoint      string
	client        *http.Client
}

func NewRakuten(applicationID, affiliateID string, timeout time.Duration) *Rakuten {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Rakuten{
		applicationID: strings.TrimSpace(applicationID),
		affiliateID:   strings.TrimSpace(affiliateID),
		endpoint:      defaultRakutenEndpoint,
		client:        &http.Client{Timeout: timeout},
	}
}

// WithEndpoint overrides the API endpoint, used in tests.
func (r *Rakuten) WithEndpoint(endpoint string) *Rakuten {
	r.endpoint = strings.TrimRight(endpoint, "/")
	return r
}

func (r *Rakuten) Name() string { return "rakuten" }

func (r *Rakuten) SearchProducts(ctx context.Context, keyword string, maxResults int) ([]ProductStat, error) {
	if r.applicationID == "" {
		return nil, wrapErr(r.Name(), fmt.Errorf("application id is empty"))
	}
	if maxResults < 1 {
		maxResults = 10
	}

	params := neturl.Values{}
	params.Set("format", "json")
	params.Set("keyword", keyword)
	params.Set("applicationId", r.applicationID)
	params.Set("hits", strconv.Itoa(maxResults))
	params.Set("sort", "-reviewCount")
	params.Set("genreId", rakutenShoeGenreID)
	if r.affiliateID != "" {
		params.Set("affiliateId", r.affiliateID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint+rakutenSearchPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, wrapErr(r.Name(), err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, wrapErr(r.Name(), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapErr(r.Name(), err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, wrapErr(r.Name(), fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))))
	}

	var payload struct {
		Items []struct {
			Item struct {
				ItemCode        string  `json:"itemCode"`
				ItemName        string  `json:"itemName"`
				ItemPrice       int     `json:"itemPrice"`
				ItemURL         string  `json:"itemUrl"`
				ShopName        string  `json:"shopName"`
				ReviewCount     int     `json:"reviewCount"`
				ReviewAverage   float64 `json:"reviewAverage"`
				MediumImageURLs []struct {
					ImageURL string `json:"imageUrl"`
				} `json:"mediumImageUrls"`
			} `json:"Item"`
		} `json:"Items"`
	}
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, wrapErr(r.Name(), err)
	}

	stats := make([]ProductStat, 0, len(payload.Items))
	for _, wrapper := range payload.Items {
		item := wrapper.Item
		if item.ItemCode == "" || strings.TrimSpace(item.ItemURL) == "" {
			continue
		}

		imageURL := ""
		if len(item.MediumImageURLs) > 0 {
			imageURL = strings.Replace(item.MediumImageURLs[0].ImageURL, "?_ex=128x128", "?_ex=500x500", 1)
		}

		// The item search rating is 0-5; reviews land on the 0-10 scale
		// everything else uses. Unreviewed listings stay unrated.
		normalized := 0.0
		if item.ReviewCount > 0 {
			normalized = item.ReviewAverage * 2
		}

		stats = append(stats, ProductStat{
			ProductName:      item.ItemName,
			ProductURL:       item.ItemURL,
			ShopName:         item.ShopName,
			Price:            item.ItemPrice,
			ImageURL:         imageURL,
			ReviewCount:      item.ReviewCount,
			AverageRating:    item.ReviewAverage,
			NormalizedRating: normalized,
		})
	}
	return stats, nil
}
