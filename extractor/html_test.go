package extractor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Balaji2327/Devsparks/internal/types"
	"github.com/Balaji2327/Devsparks/utils"
)

func newTestExtractor(t *testing.T) *HTMLExtractor {
	t.Helper()
	config := types.DefaultConfig()
	config.RequestDelay = 0
	logger := logrus.New()
	return &HTMLExtractor{
		client:    utils.NewHTTPClient(config, logger),
		logger:    logger,
		allowHost: func(string) bool { return true },
	}
}

const productPage = `<html><head>
<script type="application/ld+json">
{"@context":"https://schema.org","@type":"Product",
 "name":"NAKPRO Micronised Creatine Monohydrate 250g, Unflavoured (83 Servings)",
 "brand":{"@type":"Brand","name":"NAKPRO"},
 "image":["https://img.example/creatine.jpg"],
 "offers":{"@type":"Offer","price":"499.00","priceCurrency":"INR"},
 "aggregateRating":{"@type":"AggregateRating","ratingValue":"4.3","ratingCount":11526}}
</script>
</head><body><h1>page</h1></body></html>`

func TestExtract_StructuredDataFirst(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(productPage))
	}))
	defer server.Close()

	record, err := newTestExtractor(t).Extract(context.Background(), server.URL)
	require.NoError(t, err)
	require.NotNil(t, record)

	require.NotNil(t, record.ProductName)
	assert.Equal(t, "NAKPRO Micronised Creatine Monohydrate 250g, Unflavoured (83 Servings)", *record.ProductName)
	require.NotNil(t, record.Brand)
	assert.Equal(t, "NAKPRO", *record.Brand)
	require.NotNil(t, record.Price)
	assert.Equal(t, 499.0, *record.Price)
	require.NotNil(t, record.Currency)
	assert.Equal(t, "INR", *record.Currency)
	require.NotNil(t, record.Rating)
	assert.Equal(t, 4.3, *record.Rating)
	require.NotNil(t, record.RatingCount)
	assert.Equal(t, 11526, *record.RatingCount)
	assert.True(t, record.Complete())
}

func TestExtract_BotWallReturnsNilNotError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>We have detected unusual traffic from your network.</body></html>`))
	}))
	defer server.Close()

	record, err := newTestExtractor(t).Extract(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestExtract_DisallowedRedirectHost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(productPage))
	}))
	defer server.Close()

	config := types.DefaultConfig()
	config.RequestDelay = 0
	logger := logrus.New()
	extractor := &HTMLExtractor{
		client:    utils.NewHTTPClient(config, logger),
		logger:    logger,
		allowHost: func(string) bool { return false },
	}

	record, err := extractor.Extract(context.Background(), server.URL)
	assert.Nil(t, record)
	assert.ErrorIs(t, err, types.ErrDomainNotAllowed)
}

func TestExtract_EmptyPageIsValidButIncomplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>nothing here</p></body></html>`))
	}))
	defer server.Close()

	record, err := newTestExtractor(t).Extract(context.Background(), server.URL)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.False(t, record.Complete())
	assert.Nil(t, record.ProductName)
	assert.Nil(t, record.Brand)
	assert.Nil(t, record.Price)
	assert.Nil(t, record.Image)
}

func TestExtract_ServerErrorIsSoftFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	record, err := newTestExtractor(t).Extract(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestLooksLikeBotWall(t *testing.T) {
	assert.True(t, looksLikeBotWall("please solve this CAPTCHA to continue"))
	assert.True(t, looksLikeBotWall("Unusual Traffic detected"))
	assert.True(t, looksLikeBotWall("automated access is not permitted"))
	assert.False(t, looksLikeBotWall("<html><body>ordinary product page</body></html>"))
}

func TestApplyJSONLD_GraphAndArrayForms(t *testing.T) {
	graph := `{"@context":"https://schema.org","@graph":[
		{"@type":"BreadcrumbList"},
		{"@type":["Thing","Product"],"name":"Graph Product","offers":[{"price":129.5,"priceCurrency":"INR"}]}
	]}`

	record := &types.ProductRecord{Platform: types.PlatformAmazon}
	applyJSONLD(record, []string{graph})

	require.NotNil(t, record.ProductName)
	assert.Equal(t, "Graph Product", *record.ProductName)
	require.NotNil(t, record.Price)
	assert.Equal(t, 129.5, *record.Price)

	array := `[{"@type":"WebSite"},{"@type":"Product","name":"Array Product","brand":"Acme"}]`
	record = &types.ProductRecord{}
	applyJSONLD(record, []string{array})

	require.NotNil(t, record.ProductName)
	assert.Equal(t, "Array Product", *record.ProductName)
	require.NotNil(t, record.Brand)
	assert.Equal(t, "Acme", *record.Brand)
}

func TestApplyJSONLD_MalformedBlockIgnored(t *testing.T) {
	record := &types.ProductRecord{}
	applyJSONLD(record, []string{`{not json`, `{"@type":"Product","name":"Recovered"}`})

	require.NotNil(t, record.ProductName)
	assert.Equal(t, "Recovered", *record.ProductName)
}

func TestApplySelectors_AmazonMarkup(t *testing.T) {
	page := `<html><body>
		<span id="productTitle"> Dabur Honey  1kg </span>
		<a id="bylineInfo">Visit the Dabur Store</a>
		<span class="a-price"><span class="a-offscreen">₹399.00</span></span>
		<img id="landingImage" data-old-hires="https://img.example/hi.jpg" src="https://img.example/lo.jpg"/>
		<span id="acrPopover"><span class="a-icon-alt">4.4 out of 5 stars</span></span>
		<span id="acrCustomerReviewText">52,117 ratings</span>
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	record := &types.ProductRecord{Platform: types.PlatformAmazon}
	applySelectors(record, doc, types.PlatformAmazon)

	require.NotNil(t, record.ProductName)
	assert.Equal(t, "Dabur Honey 1kg", *record.ProductName)
	require.NotNil(t, record.Brand)
	assert.Equal(t, "Dabur", *record.Brand)
	require.NotNil(t, record.Price)
	assert.Equal(t, 399.0, *record.Price)
	require.NotNil(t, record.Currency)
	assert.Equal(t, "INR", *record.Currency)
	require.NotNil(t, record.Image)
	assert.Equal(t, "https://img.example/hi.jpg", *record.Image)
	require.NotNil(t, record.Rating)
	assert.Equal(t, 4.4, *record.Rating)
	require.NotNil(t, record.RatingCount)
	assert.Equal(t, 52117, *record.RatingCount)
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want *float64
	}{
		{"₹499.00", f64Ptr(499)},
		{"₹1,299", f64Ptr(1299)},
		{"MRP: ₹85", f64Ptr(85)},
		{"free", nil},
		{"", nil},
		{"₹1.2.3", nil},
	}
	for _, tc := range cases {
		got := parsePrice(tc.in)
		if tc.want == nil {
			assert.Nil(t, got, "input %q", tc.in)
		} else {
			require.NotNil(t, got, "input %q", tc.in)
			assert.Equal(t, *tc.want, *got, "input %q", tc.in)
		}
	}
}
