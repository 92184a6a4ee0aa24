package registry

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isirwatch/backend/pkg/config"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func testClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	client, err := NewClient(config.RegistryConfig{
		FeedURL:       "https://registry.test/feed",
		SupplementURL: "https://registry.test/supplement",
		Timeout:       5 * time.Second,
	}, WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)
	return client
}

func xmlResponse(body string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"text/xml; charset=utf-8"}},
	}
}

const feedOKBody = `<?xml version="1.0" encoding="UTF-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <ns2:getIsirWsPublicDataResponse xmlns:ns2="http://isirws.cca.cz/types/">
      <status><stav>OK</stav></status>
      <data>
        <id>101</id>
        <datumZalozeniUdalosti>2026-02-03T08:15:00.123+01:00</datumZalozeniUdalosti>
        <datumZverejneniUdalosti>2026-02-03T09:00:00.000+01:00</datumZverejneniUdalosti>
        <dokumentUrl>https://isir.justice.cz/doc/101</dokumentUrl>
        <spisovaZnacka>KSJIMBM 33 INS 1234 / 2026</spisovaZnacka>
        <typUdalosti>5</typUdalosti>
        <popisUdalosti>Vyhláška o zahájení</popisUdalosti>
        <oddil>A</oddil>
        <cisloVOddilu>3</cisloVOddilu>
        <poznamka><![CDATA[<udalost><idOsobyPuvodce>KSJIMBM</idOsobyPuvodce></udalost>]]></poznamka>
      </data>
      <data>
        <id>102</id>
        <datumZalozeniUdalosti>2026-02-03T08:20:00</datumZalozeniUdalosti>
        <datumZverejneniUdalosti>2026-02-03T09:05:00</datumZverejneniUdalosti>
        <spisovaZnacka>MSPH 60 INS 77 / 2026</spisovaZnacka>
        <typUdalosti>12</typUdalosti>
        <oddil>B</oddil>
      </data>
    </ns2:getIsirWsPublicDataResponse>
  </soapenv:Body>
</soapenv:Envelope>`

func TestFetchTransactions(t *testing.T) {
	var gotAction string
	var gotBody string
	client := testClient(t, func(r *http.Request) (*http.Response, error) {
		gotAction = r.Header.Get("SOAPAction")
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		return xmlResponse(feedOKBody), nil
	})

	records, err := client.FetchTransactions(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "getIsirWsPublicData", gotAction)
	assert.Contains(t, gotBody, "<idPodnetu>100</idPodnetu>")

	first := records[0]
	assert.Equal(t, int64(101), first.ID)
	assert.Equal(t, time.Date(2026, 2, 3, 8, 15, 0, 0, time.UTC), first.Created)
	assert.Equal(t, time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC), first.Published)
	assert.Equal(t, "KSJIMBM 33 INS 1234 / 2026", first.CaseRef)
	assert.Equal(t, "5", first.EventType)
	assert.Equal(t, "A", first.Section)
	require.NotNil(t, first.SectionItem)
	assert.Equal(t, 3, *first.SectionItem)
	assert.Contains(t, first.Note, "<udalost>")

	second := records[1]
	assert.Equal(t, int64(102), second.ID)
	assert.Empty(t, second.DocumentURL)
	assert.Nil(t, second.SectionItem)
	assert.Empty(t, second.Note)
}

func TestFetchTransactionsNoData(t *testing.T) {
	client := testClient(t, func(r *http.Request) (*http.Response, error) {
		return xmlResponse(`<Envelope><Body>
			<getIsirWsPublicDataResponse>
				<status><stav>DATA_NENALEZENA</stav></status>
			</getIsirWsPublicDataResponse>
		</Body></Envelope>`), nil
	})

	records, err := client.FetchTransactions(context.Background(), 999999)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFetchTransactionsHTTPError(t *testing.T) {
	client := testClient(t, func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusServiceUnavailable,
			Body:       io.NopCloser(strings.NewReader("maintenance")),
		}, nil
	})

	_, err := client.FetchTransactions(context.Background(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestFetchCaseSupplement(t *testing.T) {
	var gotBody string
	client := testClient(t, func(r *http.Request) (*http.Response, error) {
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		return xmlResponse(`<Envelope><Body>
			<getIsirWsCuzkDataResponse>
				<status><stav>OK</stav></status>
				<data>
					<pocetVysledku>1</pocetVysledku>
					<cisloSenatu>33</cisloSenatu>
					<urlDetailRizeni>https://isir.justice.cz/isir/ueu/evidence_upadcu_detail.do?id=abc</urlDetailRizeni>
					<nazevOrganizace>Krajský soud v Brně</nazevOrganizace>
				</data>
			</getIsirWsCuzkDataResponse>
		</Body></Envelope>`), nil
	})

	sup, err := client.FetchCaseSupplement(context.Background(), 1234, 2026)
	require.NoError(t, err)
	require.NotNil(t, sup)

	assert.Contains(t, gotBody, "<bcVec>1234</bcVec>")
	assert.Contains(t, gotBody, "<rocnik>2026</rocnik>")

	assert.Equal(t, 1, sup.Count)
	require.NotNil(t, sup.Senate)
	assert.Equal(t, 33, *sup.Senate)
	assert.Equal(t, "https://isir.justice.cz/isir/ueu/evidence_upadcu_detail.do?id=abc", sup.Link)
	assert.Equal(t, "Krajský soud v Brně", sup.Organization)
}

func TestFetchCaseSupplementNotFound(t *testing.T) {
	client := testClient(t, func(r *http.Request) (*http.Response, error) {
		return xmlResponse(`<Envelope><Body>
			<getIsirWsCuzkDataResponse>
				<status><stav>DATA_NENALEZENA</stav></status>
			</getIsirWsCuzkDataResponse>
		</Body></Envelope>`), nil
	})

	sup, err := client.FetchCaseSupplement(context.Background(), 1, 2026)
	require.NoError(t, err)
	assert.Nil(t, sup)
}

func TestSupplementMatchesOrganization(t *testing.T) {
	senate := 26
	sup := &Supplement{Senate: &senate, Organization: "Krajský soud v Ostravě, pobočka v Olomouci"}

	assert.True(t, sup.MatchesOrganization("Krajský soud v Ostravě"))
	assert.False(t, sup.MatchesOrganization("Krajský soud v Brně"))

	var nilSup *Supplement
	assert.False(t, nilSup.MatchesOrganization("Krajský soud v Brně"))
}
