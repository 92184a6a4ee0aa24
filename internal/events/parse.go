// Package events decodes the embedded XML note payload of a raw feed
// transaction into a typed change event.
package events

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/isirwatch/backend/pkg/textnorm"
)

// ParsedEvent is one decoded registry event. Court, Number and Year identify
// the case; the fact groups are present only when the payload carried them.
type ParsedEvent struct {
	Court  string
	Number int
	Year   int

	Case    *CaseFacts
	Person  *PersonFacts
	Address *AddressFacts
}

// CaseFacts carries case-level changes from the payload's vec element.
type CaseFacts struct {
	State     string
	StruckOff *time.Time
}

// PersonFacts carries person-level changes. Detached means the payload signals
// the person's removal from the case rather than an attachment.
type PersonFacts struct {
	Court        string
	PersonID     string
	RoleKind     string
	Name         string
	BusinessName string
	GivenName    string
	TitleBefore  string
	TitleAfter   string
	ICO          string
	DIC          string
	BirthDate    *time.Time
	BirthID      string
	Detached     bool
}

// AddressFacts carries one address tuple. Detached means the payload carried
// an end-of-validity date, so the address should be unlinked from the person.
type AddressFacts struct {
	Kind        string
	City        string
	Street      string
	HouseNumber string
	District    string
	Country     string
	PostalCode  string
	Phone       string
	Fax         string
	Text        string
	Detached    bool
}

type notePayload struct {
	XMLName xml.Name    `xml:"udalost"`
	Court   string      `xml:"idOsobyPuvodce"`
	Vec     *noteVec    `xml:"vec"`
	Osoba   *noteOsoba  `xml:"osoba"`
	Adresa  *noteAdresa `xml:"adresa"`
}

type noteVec struct {
	State     string `xml:"druhStavRizeni"`
	StruckOff string `xml:"datumVyskrtnuti"`
}

type noteOsoba struct {
	Court        string `xml:"idOsobyPuvodce"`
	PersonID     string `xml:"idOsoby"`
	RoleKind     string `xml:"druhRoleVRizeni"`
	Name         string `xml:"nazevOsoby"`
	BusinessName string `xml:"nazevOsobyObchodni"`
	GivenName    string `xml:"jmeno"`
	TitleBefore  string `xml:"titulPred"`
	TitleAfter   string `xml:"titulZa"`
	ICO          string `xml:"ic"`
	DIC          string `xml:"dic"`
	BirthDate    string `xml:"datumNarozeni"`
	BirthID      string `xml:"rc"`
	RemovedAt    string `xml:"datumOsobaVeVeciZrusena"`
}

type noteAdresa struct {
	Kind        string `xml:"druhAdresy"`
	City        string `xml:"mesto"`
	Street      string `xml:"ulice"`
	HouseNumber string `xml:"cisloPopisne"`
	District    string `xml:"okres"`
	Country     string `xml:"zeme"`
	PostalCode  string `xml:"psc"`
	Phone       string `xml:"telefon"`
	Fax         string `xml:"fax"`
	Text        string `xml:"textAdresy"`
	ValidUntil  string `xml:"datumPobytDo"`
}

// Parse decodes a feed record's case reference and note payload. It returns
// (nil, nil) when the record is a benign no-op: an unparsable case reference
// or an empty note. Any other extraction problem is a genuine failure.
func Parse(caseRef, note string) (*ParsedEvent, error) {
	number, year, ok := parseCaseRef(caseRef)
	if !ok {
		return nil, nil
	}
	if strings.TrimSpace(note) == "" {
		return nil, nil
	}

	var payload notePayload
	if err := xml.Unmarshal([]byte(note), &payload); err != nil {
		return nil, fmt.Errorf("decoding note payload: %w", err)
	}

	court := strings.TrimSpace(payload.Court)
	if court == "" {
		return nil, fmt.Errorf("note payload is missing the origin court")
	}

	event := &ParsedEvent{
		Court:  court,
		Number: number,
		Year:   year,
	}

	if payload.Vec != nil {
		facts := &CaseFacts{State: textnorm.Collapse(payload.Vec.State)}
		struck, err := parseOptionalDate(payload.Vec.StruckOff)
		if err != nil {
			return nil, fmt.Errorf("case strike-off date: %w", err)
		}
		facts.StruckOff = struck
		event.Case = facts
	}

	if payload.Osoba != nil {
		person, err := parsePerson(payload.Osoba, year)
		if err != nil {
			return nil, err
		}
		event.Person = person
	}

	if payload.Adresa != nil {
		address, err := parseAddress(payload.Adresa)
		if err != nil {
			return nil, err
		}
		event.Address = address
	}

	return event, nil
}

// parseCaseRef extracts (number, year) from the feed's case reference string.
// The last whitespace-delimited token must be "<number>/<year>" with both
// halves positive integers; anything else is a no-op record.
func parseCaseRef(ref string) (number, year int, ok bool) {
	fields := strings.Fields(ref)
	if len(fields) == 0 {
		return 0, 0, false
	}
	halves := strings.Split(fields[len(fields)-1], "/")
	if len(halves) < 2 {
		return 0, 0, false
	}
	number, err := strconv.Atoi(strings.TrimSpace(halves[0]))
	if err != nil || number <= 0 {
		return 0, 0, false
	}
	year, err = strconv.Atoi(strings.TrimSpace(halves[1]))
	if err != nil || year <= 0 {
		return 0, 0, false
	}
	return number, year, true
}

func parsePerson(raw *noteOsoba, filingYear int) (*PersonFacts, error) {
	court := strings.TrimSpace(raw.Court)
	personID := textnorm.Collapse(raw.PersonID)
	if court == "" || personID == "" {
		return nil, fmt.Errorf("person facts are missing court or person id")
	}

	person := &PersonFacts{
		Court:        court,
		PersonID:     personID,
		RoleKind:     textnorm.Collapse(raw.RoleKind),
		Name:         textnorm.Collapse(raw.Name),
		BusinessName: textnorm.Collapse(raw.BusinessName),
		GivenName:    textnorm.Collapse(raw.GivenName),
		TitleBefore:  textnorm.Collapse(raw.TitleBefore),
		TitleAfter:   textnorm.Collapse(raw.TitleAfter),
		ICO:          textnorm.Collapse(raw.ICO),
		DIC:          textnorm.Collapse(raw.DIC),
		BirthID:      textnorm.Collapse(raw.BirthID),
		Detached:     strings.TrimSpace(raw.RemovedAt) != "",
	}

	birth, err := parseOptionalDate(raw.BirthDate)
	if err != nil {
		return nil, fmt.Errorf("person birth date: %w", err)
	}
	if birth == nil && person.BirthID != "" {
		birth, err = birthDateFromNationalID(person.BirthID, filingYear)
		if err != nil {
			return nil, err
		}
	}
	person.BirthDate = birth

	return person, nil
}

func parseAddress(raw *noteAdresa) (*AddressFacts, error) {
	detached := strings.TrimSpace(raw.ValidUntil) != ""
	if detached {
		// still validate the date so garbage gets flagged, not silently dropped
		if _, err := parseOptionalDate(raw.ValidUntil); err != nil {
			return nil, fmt.Errorf("address end-of-validity date: %w", err)
		}
	}
	return &AddressFacts{
		Kind:        textnorm.Collapse(raw.Kind),
		City:        textnorm.Collapse(raw.City),
		Street:      textnorm.Collapse(raw.Street),
		HouseNumber: textnorm.Collapse(raw.HouseNumber),
		District:    textnorm.Collapse(raw.District),
		Country:     textnorm.Collapse(raw.Country),
		PostalCode:  textnorm.PostalCode(raw.PostalCode),
		Phone:       textnorm.Collapse(raw.Phone),
		Fax:         textnorm.Collapse(raw.Fax),
		Text:        textnorm.Collapse(raw.Text),
		Detached:    detached,
	}, nil
}

// birthDateFromNationalID derives a birth date from the first six digits of a
// Czech national id (rodné číslo). The two-digit year is read as 2000+YY,
// windowed back a century when it would exceed the case's filing year. The
// month carries +50 for one gender, so it is reduced modulo 50; the day is
// taken literally with no calendar validation.
func birthDateFromNationalID(id string, filingYear int) (*time.Time, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, id)
	if len(digits) < 6 {
		return nil, fmt.Errorf("national id %q has fewer than six digits", id)
	}

	yy, err := strconv.Atoi(digits[0:2])
	if err != nil {
		return nil, fmt.Errorf("national id %q year: %w", id, err)
	}
	mm, err := strconv.Atoi(digits[2:4])
	if err != nil {
		return nil, fmt.Errorf("national id %q month: %w", id, err)
	}
	dd, err := strconv.Atoi(digits[4:6])
	if err != nil {
		return nil, fmt.Errorf("national id %q day: %w", id, err)
	}

	year := 2000 + yy
	if year > filingYear {
		year -= 100
	}
	month := mm % 50

	birth := time.Date(year, time.Month(month), dd, 0, 0, 0, 0, time.UTC)
	return &birth, nil
}

var dateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseOptionalDate(raw string) (*time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	if len(trimmed) > 19 {
		trimmed = trimmed[:19]
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, trimmed); err == nil {
			return &ts, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date %q", raw)
}
