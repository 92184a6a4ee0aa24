// Package courts holds the fixed list of insolvency courts. The table is
// immutable reference data loaded once at init; registry events identify a
// court by its long code (idOsobyPuvodce).
package courts

// Court describes one insolvency court.
type Court struct {
	Code          string // long registry code (idOsobyPuvodce)
	Short         string // display abbreviation used in file numbers
	RegistryGroup string // senate prefix used in spisová značka
	Name          string // full court name
}

var all = []Court{
	{Code: "MSPHAAB", Short: "MS Praha", RegistryGroup: "MSPH", Name: "Městský soud v Praze"},
	{Code: "KSSTCAB", Short: "KS Praha", RegistryGroup: "KSPH", Name: "Krajský soud v Praze"},
	{Code: "KSJICCB", Short: "KS České Budějovice", RegistryGroup: "KSCB", Name: "Krajský soud v Českých Budějovicích"},
	{Code: "KSZPCPM", Short: "KS Plzeň", RegistryGroup: "KSPL", Name: "Krajský soud v Plzni"},
	{Code: "KSSCEUL", Short: "KS Ústí nad Labem", RegistryGroup: "KSUL", Name: "Krajský soud v Ústí nad Labem"},
	{Code: "KSSEMLB", Short: "KS Ústí nad Labem (Liberec)", RegistryGroup: "KSLB", Name: "Krajský soud v Ústí nad Labem, pobočka Liberec"},
	{Code: "KSVYCHK", Short: "KS Hradec Králové", RegistryGroup: "KSHK", Name: "Krajský soud v Hradci Králové"},
	{Code: "KSVYCPA", Short: "KS Hradec Králové (Pardubice)", RegistryGroup: "KSPA", Name: "Krajský soud v Hradci Králové, pobočka Pardubice"},
	{Code: "KSJIMBM", Short: "KS Brno", RegistryGroup: "KSBR", Name: "Krajský soud v Brně"},
	{Code: "KSSEMOS", Short: "KS Ostrava", RegistryGroup: "KSOS", Name: "Krajský soud v Ostravě"},
	{Code: "KSSEMOL", Short: "KS Ostrava (Olomouc)", RegistryGroup: "KSOL", Name: "Krajský soud v Ostravě, pobočka Olomouc"},
	{Code: "VSPHAAB", Short: "VS Praha", RegistryGroup: "VSPH", Name: "Vrchní soud v Praze"},
	{Code: "VSSEMOL", Short: "VS Olomouc", RegistryGroup: "VSOL", Name: "Vrchní soud v Olomouci"},
	{Code: "NSJIMBM", Short: "NS Brno", RegistryGroup: "NSBR", Name: "Nejvyšší soud"},
}

var byCode = func() map[string]Court {
	m := make(map[string]Court, len(all))
	for _, c := range all {
		m[c.Code] = c
	}
	return m
}()

// ByCode looks up a court by its long registry code.
func ByCode(code string) (Court, bool) {
	c, ok := byCode[code]
	return c, ok
}

// All returns the full court list in registry order.
func All() []Court {
	out := make([]Court, len(all))
	copy(out, all)
	return out
}
