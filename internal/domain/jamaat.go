package domain

import (
	"strconv"
	"strings"
)

// Jamaat codes used by the Poona deployment.
const (
	JamaatBaramati        = 1
	JamaatFakhriMohalla   = 2
	JamaatZainiMohalla    = 3
	JamaatKalimiMohalla   = 4
	JamaatAhmednagar      = 5
	JamaatImadiMohalla    = 6
	JamaatKasarwadi       = 7
	JamaatKhadki          = 8
	JamaatLonavala        = 9
	JamaatMufaddalMohalla = 10
	JamaatPoona           = 11
	JamaatSaifeeMohallah  = 12
	JamaatTaiyebiMohalla  = 13
	JamaatFatemiMohalla   = 14
)

var jamaatNames = map[int]string{
	JamaatBaramati:        "BARAMATI",
	JamaatFakhriMohalla:   "FAKHRI MOHALLA (POONA)",
	JamaatZainiMohalla:    "ZAINI MOHALLA (POONA)",
	JamaatKalimiMohalla:   "KALIMI MOHALLA (POONA)",
	JamaatAhmednagar:      "AHMEDNAGAR",
	JamaatImadiMohalla:    "IMADI MOHALLA (POONA)",
	JamaatKasarwadi:       "KASARWADI",
	JamaatKhadki:          "KHADKI (POONA)",
	JamaatLonavala:        "LONAVALA",
	JamaatMufaddalMohalla: "MUFADDAL MOHALLA (POONA)",
	JamaatPoona:           "POONA",
	JamaatSaifeeMohallah:  "SAIFEE MOHALLAH (POONA)",
	JamaatTaiyebiMohalla:  "TAIYEBI MOHALLA (POONA)",
	JamaatFatemiMohalla:   "FATEMI MOHALLA (POONA)",
}

// JamiyatPoona is the only jamiyat currently configured.
const JamiyatPoona = 1

var jamiyatNames = map[int]string{
	JamiyatPoona: "Poona",
}

// JamaatName returns the stored text for a jamaat code, or "Unknown".
func JamaatName(code int) string {
	if n, ok := jamaatNames[code]; ok {
		return n
	}
	return "Unknown"
}

// JamaatCode returns the code for stored jamaat text.
func JamaatCode(name string) (int, bool) {
	n := strings.TrimSpace(name)
	for c, s := range jamaatNames {
		if s == n {
			return c, true
		}
	}
	return 0, false
}

// JamiyatName returns the stored text for a jamiyat code, or "Unknown".
func JamiyatName(code int) string {
	if n, ok := jamiyatNames[code]; ok {
		return n
	}
	return "Unknown"
}

// JamiyatCode returns the code for stored jamiyat text.
func JamiyatCode(name string) (int, bool) {
	n := strings.TrimSpace(name)
	for c, s := range jamiyatNames {
		if s == n {
			return c, true
		}
	}
	return 0, false
}

// ResolveJamaat trims s and replaces a known numeric jamaat code with its catalogue name.
// Members and miqaats both store the resolved text so fan-out can match them exactly.
func ResolveJamaat(s string) string { return resolveGroup(s, JamaatName) }

// ResolveJamiyat is ResolveJamaat for the jamiyat catalogue.
func ResolveJamiyat(s string) string { return resolveGroup(s, JamiyatName) }

func resolveGroup(s string, byCode func(int) string) string {
	v := strings.TrimSpace(s)
	if code, err := strconv.Atoi(v); err == nil {
		if name := byCode(code); name != "Unknown" {
			return name
		}
	}
	return v
}
