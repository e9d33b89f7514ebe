// Package iban builds and validates IBAN-style account numbers in the
// French format: FR + 2 check digits + 5-digit bank code + 5-digit branch
// code + 11-digit serial + 2-digit RIB key. The serial is drawn from a
// monotonic source so two calls never produce the same candidate within a
// process; callers still re-check uniqueness against storage.
package iban

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	countryCode = "FR"
	serialMod   = int64(100_000_000_000) // 11 digits
)

type Generator struct {
	bankCode   string
	branchCode string
	now        func() time.Time

	mu         sync.Mutex
	lastSerial int64
}

func NewGenerator(bankCode, branchCode string) *Generator {
	return &Generator{
		bankCode:   padCode(bankCode),
		branchCode: padCode(branchCode),
		now:        time.Now,
	}
}

// padCode left-pads a bank or branch code with zeros to 5 digits.
func padCode(code string) string {
	if len(code) >= 5 {
		return code[:5]
	}
	return strings.Repeat("0", 5-len(code)) + code
}

// Next returns a fresh candidate number. Serials are strictly increasing
// within the process.
func (g *Generator) Next() string {
	g.mu.Lock()
	serial := g.now().UnixNano() % serialMod
	if serial <= g.lastSerial {
		serial = g.lastSerial + 1
	}
	g.lastSerial = serial
	g.mu.Unlock()

	bban := fmt.Sprintf("%s%s%011d", g.bankCode, g.branchCode, serial)
	bban += ribKey(g.bankCode, g.branchCode, serial)
	check := 98 - mod97(bban+countryCode+"00")
	return fmt.Sprintf("%s%02d%s", countryCode, check, bban)
}

// Valid reports whether number passes the ISO 7064 mod-97 check.
func Valid(number string) bool {
	number = strings.ToUpper(strings.ReplaceAll(number, " ", ""))
	if len(number) < 15 || len(number) > 34 {
		return false
	}
	rearranged := number[4:] + number[:4]
	remainder, ok := tryMod97(rearranged)
	return ok && remainder == 1
}

// ribKey is the French national check: 97 - (89b + 15g + 3a) mod 97.
func ribKey(bank, branch string, serial int64) string {
	b := digitsValue(bank)
	g := digitsValue(branch)
	key := 97 - (89*b+15*g+3*serial)%97
	return fmt.Sprintf("%02d", key)
}

func digitsValue(s string) int64 {
	var v int64
	for _, r := range s {
		if r >= '0' && r <= '9' {
			v = v*10 + int64(r-'0')
		}
	}
	return v
}

func mod97(s string) int {
	remainder, _ := tryMod97(s)
	return remainder
}

// tryMod97 computes s mod 97 with letters expanded to their numeric value
// (A=10 .. Z=35). ok is false if s holds anything else.
func tryMod97(s string) (int, bool) {
	remainder := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			remainder = (remainder*10 + int(r-'0')) % 97
		case r >= 'A' && r <= 'Z':
			value := int(r-'A') + 10
			remainder = (remainder*100 + value) % 97
		default:
			return 0, false
		}
	}
	return remainder, true
}
