package registry

// The register speaks plain SOAP 1.1 with fixed envelope shapes; templates
// only interpolate integers, so no XML escaping is needed.

const feedRequestTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:typ="http://isirws.cca.cz/types/">
  <soapenv:Header/>
  <soapenv:Body>
    <typ:getIsirWsPublicDataRequest>
      <idPodnetu>%d</idPodnetu>
    </typ:getIsirWsPublicDataRequest>
  </soapenv:Body>
</soapenv:Envelope>`

const supplementRequestTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:typ="http://isirws.cca.cz/types/">
  <soapenv:Header/>
  <soapenv:Body>
    <typ:getIsirWsCuzkDataRequest>
      <bcVec>%d</bcVec>
      <rocnik>%d</rocnik>
    </typ:getIsirWsCuzkDataRequest>
  </soapenv:Body>
</soapenv:Envelope>`

type feedResponseEnvelope struct {
	Body struct {
		Response struct {
			Status struct {
				Stav string `xml:"stav"`
			} `xml:"status"`
			Data []feedRecord `xml:"data"`
		} `xml:"getIsirWsPublicDataResponse"`
	} `xml:"Body"`
}

type feedRecord struct {
	ID          int64  `xml:"id"`
	Created     string `xml:"datumZalozeniUdalosti"`
	Published   string `xml:"datumZverejneniUdalosti"`
	DocumentURL string `xml:"dokumentUrl"`
	CaseRef     string `xml:"spisovaZnacka"`
	EventType   string `xml:"typUdalosti"`
	Description string `xml:"popisUdalosti"`
	Section     string `xml:"oddil"`
	SectionItem *int   `xml:"cisloVOddilu"`
	Note        string `xml:"poznamka"`
}

type supplementResponseEnvelope struct {
	Body struct {
		Response struct {
			Status struct {
				Stav string `xml:"stav"`
			} `xml:"status"`
			Data []supplementRecord `xml:"data"`
		} `xml:"getIsirWsCuzkDataResponse"`
	} `xml:"Body"`
}

type supplementRecord struct {
	Count        int    `xml:"pocetVysledku"`
	Senate       *int   `xml:"cisloSenatu"`
	Link         string `xml:"urlDetailRizeni"`
	Organization string `xml:"nazevOrganizace"`
}
