package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullNote = `<ns2:udalost xmlns:ns2="http://isirws.cca.cz/types/">
  <idOsobyPuvodce>KSJIMBM</idOsobyPuvodce>
  <vec>
    <druhStavRizeni>ÚPADEK</druhStavRizeni>
  </vec>
  <osoba>
    <idOsobyPuvodce>KSJIMBM</idOsobyPuvodce>
    <idOsoby>NOVÁK JAN 231</idOsoby>
    <druhRoleVRizeni>DLUŽNÍK</druhRoleVRizeni>
    <nazevOsoby>Novák</nazevOsoby>
    <jmeno>Jan</jmeno>
    <titulPred>Ing.</titulPred>
    <rc>780512/1234</rc>
  </osoba>
  <adresa>
    <druhAdresy>TRVALÁ</druhAdresy>
    <mesto>Brno</mesto>
    <ulice>Veveří</ulice>
    <cisloPopisne>12</cisloPopisne>
    <zeme>Česká republika</zeme>
    <psc>602 00</psc>
  </adresa>
</ns2:udalost>`

func TestParseFullPayload(t *testing.T) {
	event, err := Parse("KSJIMBM 33 INS 1234 / 2023", fullNote)
	require.NoError(t, err)
	require.NotNil(t, event)

	assert.Equal(t, "KSJIMBM", event.Court)
	assert.Equal(t, 1234, event.Number)
	assert.Equal(t, 2023, event.Year)

	require.NotNil(t, event.Case)
	assert.Equal(t, "ÚPADEK", event.Case.State)
	assert.Nil(t, event.Case.StruckOff)

	require.NotNil(t, event.Person)
	assert.Equal(t, "KSJIMBM", event.Person.Court)
	assert.Equal(t, "NOVÁK JAN 231", event.Person.PersonID)
	assert.Equal(t, "DLUŽNÍK", event.Person.RoleKind)
	assert.Equal(t, "Novák", event.Person.Name)
	assert.Equal(t, "Jan", event.Person.GivenName)
	assert.False(t, event.Person.Detached)

	// birth date derived from the national id digits 780512
	require.NotNil(t, event.Person.BirthDate)
	assert.Equal(t, time.Date(1978, 5, 12, 0, 0, 0, 0, time.UTC), *event.Person.BirthDate)

	require.NotNil(t, event.Address)
	assert.Equal(t, "TRVALÁ", event.Address.Kind)
	assert.Equal(t, "Brno", event.Address.City)
	assert.Equal(t, "60200", event.Address.PostalCode)
	assert.False(t, event.Address.Detached)
}

func TestParseCaseRef(t *testing.T) {
	cases := []struct {
		ref    string
		number int
		year   int
		ok     bool
	}{
		{"KSJIMBM 33 INS 1234 / 2023", 1234, 2023, true},
		{"MSPH 60 INS 77/2026", 77, 2026, true},
		{"ABC", 0, 0, false},
		{"KSJIMBM 33 INS x/2023", 0, 0, false},
		{"KSJIMBM 33 INS -5/2023", 0, 0, false},
		{"KSJIMBM 33 INS 5/0", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tc := range cases {
		number, year, ok := parseCaseRef(tc.ref)
		assert.Equal(t, tc.ok, ok, tc.ref)
		if tc.ok {
			assert.Equal(t, tc.number, number, tc.ref)
			assert.Equal(t, tc.year, year, tc.ref)
		}
	}
}

func TestParseBenignSkips(t *testing.T) {
	// unparsable case reference
	event, err := Parse("ABC", fullNote)
	require.NoError(t, err)
	assert.Nil(t, event)

	// empty note
	event, err = Parse("KSJIMBM 33 INS 1234 / 2023", "   ")
	require.NoError(t, err)
	assert.Nil(t, event)
}

func TestParseGenuineFailures(t *testing.T) {
	// truncated XML
	_, err := Parse("KSJIMBM 33 INS 1234 / 2023", "<udalost><vec>")
	require.Error(t, err)

	// missing origin court
	_, err = Parse("KSJIMBM 33 INS 1234 / 2023", "<udalost><vec/></udalost>")
	require.Error(t, err)

	// person without an id
	_, err = Parse("KSJIMBM 33 INS 1234 / 2023",
		"<udalost><idOsobyPuvodce>KSJIMBM</idOsobyPuvodce><osoba><idOsobyPuvodce>KSJIMBM</idOsobyPuvodce></osoba></udalost>")
	require.Error(t, err)
}

func TestBirthDateWindowing(t *testing.T) {
	// 2000+99 = 2099 exceeds the 2023 filing year, so window back a century
	birth, err := birthDateFromNationalID("990101", 2023)
	require.NoError(t, err)
	assert.Equal(t, 1999, birth.Year())

	birth, err = birthDateFromNationalID("050101", 2023)
	require.NoError(t, err)
	assert.Equal(t, 2005, birth.Year())

	// month carries +50 for one gender; reduced modulo 50
	birth, err = birthDateFromNationalID("855603/0123", 2023)
	require.NoError(t, err)
	assert.Equal(t, time.Date(1985, 6, 3, 0, 0, 0, 0, time.UTC), *birth)

	_, err = birthDateFromNationalID("12", 2023)
	require.Error(t, err)
}

func TestParseDetachmentSignals(t *testing.T) {
	note := `<udalost>
		<idOsobyPuvodce>MSPH</idOsobyPuvodce>
		<osoba>
			<idOsobyPuvodce>MSPH</idOsobyPuvodce>
			<idOsoby>FIRMA S.R.O. 9</idOsoby>
			<druhRoleVRizeni>VĚŘITEL</druhRoleVRizeni>
			<datumOsobaVeVeciZrusena>2026-01-15</datumOsobaVeVeciZrusena>
		</osoba>
		<adresa>
			<druhAdresy>SÍDLO FY.</druhAdresy>
			<mesto>Praha</mesto>
			<datumPobytDo>2026-01-15T00:00:00</datumPobytDo>
		</adresa>
	</udalost>`

	event, err := Parse("MSPH 60 INS 77 / 2026", note)
	require.NoError(t, err)
	require.NotNil(t, event)

	require.NotNil(t, event.Person)
	assert.True(t, event.Person.Detached)
	assert.Nil(t, event.Person.BirthDate)

	require.NotNil(t, event.Address)
	assert.True(t, event.Address.Detached)
}
