package extractor

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Balaji2327/Devsparks/internal/types"
	"github.com/Balaji2327/Devsparks/utils"
)

type fakeRenderer struct {
	page        *utils.RenderedPage
	err         error
	lastProfile utils.FingerprintProfile
}

func (f *fakeRenderer) Render(ctx context.Context, rawURL string, profile utils.FingerprintProfile) (*utils.RenderedPage, error) {
	f.lastProfile = profile
	return f.page, f.err
}

func newBrowserExtractor(renderer pageRenderer) *BrowserExtractor {
	return NewBrowserExtractor(renderer, types.DefaultConfig(), logrus.New())
}

func TestBrowserExtractMinesRenderedPage(t *testing.T) {
	renderer := &fakeRenderer{page: &utils.RenderedPage{
		FinalURL: "https://www.flipkart.com/p/itm123",
		JSONLD: []string{`{
			"@type": "Product",
			"name": "boAt Airdopes 131 Bluetooth Headset",
			"brand": {"name": "boAt"},
			"offers": {"price": "1099", "priceCurrency": "INR"}
		}`},
		HTML: "<html><body></body></html>",
	}}

	record, err := newBrowserExtractor(renderer).Extract(context.Background(), "https://www.flipkart.com/p/itm123")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, types.PlatformFlipkart, record.Platform)
	require.NotNil(t, record.ProductName)
	assert.Equal(t, "boAt Airdopes 131 Bluetooth Headset", *record.ProductName)
	require.NotNil(t, record.Price)
	assert.Equal(t, 1099.0, *record.Price)
}

func TestBrowserExtractRejectsDisallowedRedirect(t *testing.T) {
	renderer := &fakeRenderer{page: &utils.RenderedPage{
		FinalURL: "https://amazon.in.evil.com/dp/B07WNS52H2",
		HTML:     "<html><body>moved</body></html>",
	}}

	record, err := newBrowserExtractor(renderer).Extract(context.Background(), "https://www.amazon.in/dp/B07WNS52H2")
	assert.Nil(t, record)
	assert.ErrorIs(t, err, types.ErrDomainNotAllowed)
}

func TestBrowserExtractBotWallIsSoftFailure(t *testing.T) {
	renderer := &fakeRenderer{page: &utils.RenderedPage{
		FinalURL: "https://www.amazon.in/dp/B07WNS52H2",
		HTML:     "<html><body>We have detected unusual traffic from your network.</body></html>",
	}}

	record, err := newBrowserExtractor(renderer).Extract(context.Background(), "https://www.amazon.in/dp/B07WNS52H2")
	assert.Nil(t, record)
	assert.NoError(t, err)
}

func TestBrowserExtractPropagatesRenderFailure(t *testing.T) {
	renderer := &fakeRenderer{err: errors.New("browser render failed: chrome exited")}

	record, err := newBrowserExtractor(renderer).Extract(context.Background(), "https://www.nykaa.com/p/12345")
	assert.Nil(t, record)
	assert.Error(t, err)
}

func TestBrowserExtractEmptyPageIsValidIncomplete(t *testing.T) {
	renderer := &fakeRenderer{page: &utils.RenderedPage{
		FinalURL: "https://www.myntra.com/dresses/1234",
		HTML:     "<html><body><p>nothing here</p></body></html>",
	}}

	record, err := newBrowserExtractor(renderer).Extract(context.Background(), "https://www.myntra.com/dresses/1234")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.False(t, record.Complete())
}

func TestBrowserExtractSelectsProfileByPlatform(t *testing.T) {
	renderer := &fakeRenderer{page: &utils.RenderedPage{
		FinalURL: "https://www.amazon.in/dp/B07WNS52H2",
		HTML:     "<html></html>",
	}}
	extractor := newBrowserExtractor(renderer)

	_, err := extractor.Extract(context.Background(), "https://www.amazon.in/dp/B07WNS52H2")
	require.NoError(t, err)
	assert.Equal(t, "default", renderer.lastProfile.Name)

	renderer.page.FinalURL = "https://www.bigbasket.com/pd/1207893"
	_, err = extractor.Extract(context.Background(), "https://www.bigbasket.com/pd/1207893")
	require.NoError(t, err)
	assert.Equal(t, "stealth", renderer.lastProfile.Name)
}
