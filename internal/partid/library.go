package partid

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
)

// PrefixEntry maps a part-family prefix key to its marking pattern and the
// manufacturer that owns the family. Library order is significant: it is the
// tie-break when two candidates score equally.
type PrefixEntry struct {
	Key          string `json:"key"`
	Pattern      string `json:"pattern"`
	Manufacturer string `json:"manufacturer"`

	re *regexp.Regexp
}

// Library is an ordered collection of prefix entries.
type Library struct {
	Entries []PrefixEntry `json:"entries"`
}

// DefaultLibrary returns the built-in prefix library. Entries are ordered by
// how distinctive the prefix is; the generic logic families come last so a
// longer, more specific match is always discovered first on equal scores.
func DefaultLibrary() *Library {
	lib := &Library{Entries: []PrefixEntry{
		{Key: "ATMEGA", Pattern: `ATMEGA\d{2,4}[A-Z]{0,3}(?:-[A-Z0-9]{1,6})?`, Manufacturer: "Microchip"},
		{Key: "ATTINY", Pattern: `ATTINY\d{2,4}[A-Z]{0,3}(?:-[A-Z0-9]{1,6})?`, Manufacturer: "Microchip"},
		{Key: "PIC", Pattern: `PIC\d{2}[A-Z]{0,2}\d{2,4}[A-Z]{0,3}(?:-[A-Z0-9/]{1,6})?`, Manufacturer: "Microchip"},
		{Key: "24LC", Pattern: `24LC\d{2,4}[A-Z]{0,2}(?:-[A-Z0-9/]{1,4})?`, Manufacturer: "Microchip"},
		{Key: "CY8C", Pattern: `CY8C\d{4,5}(?:-\d{2}[A-Z0-9]{0,5})?`, Manufacturer: "Cypress"},
		{Key: "STM32", Pattern: `STM32[A-Z]\d{2,3}[A-Z0-9]{0,4}`, Manufacturer: "STMicroelectronics"},
		{Key: "MSP430", Pattern: `MSP430[A-Z0-9]{1,6}`, Manufacturer: "Texas Instruments"},
		{Key: "SN74", Pattern: `SN74[A-Z]{0,4}\d{2,4}[A-Z]{0,2}`, Manufacturer: "Texas Instruments"},
		{Key: "NE555", Pattern: `(?:NE|SE|SA)55[56][A-Z]{0,2}`, Manufacturer: "Texas Instruments"},
		{Key: "LM", Pattern: `LM\d{3,4}[A-Z]{0,2}(?:-\d{1,2})?`, Manufacturer: "Texas Instruments"},
		{Key: "MAX", Pattern: `MAX\d{3,4}[A-Z]{0,4}`, Manufacturer: "Analog Devices"},
		{Key: "DS", Pattern: `DS\d{4}[A-Z]{0,3}`, Manufacturer: "Analog Devices"},
		{Key: "ESP", Pattern: `ESP(?:32|8266)(?:-[A-Z0-9]{1,8})?`, Manufacturer: "Espressif"},
		{Key: "74", Pattern: `74[A-Z]{0,4}\d{2,4}[A-Z]{0,2}`, Manufacturer: ""},
	}}
	if err := lib.compile(); err != nil {
		// Built-in patterns are compile-checked by the tests.
		panic(err)
	}
	return lib
}

// LoadLibrary reads a prefix library from a JSON file, keeping file order.
func LoadLibrary(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read prefix library: %w", err)
	}

	var lib Library
	if err := json.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("cannot parse prefix library: %w", err)
	}
	if err := lib.compile(); err != nil {
		return nil, err
	}

	fmt.Printf("Loaded %d prefix patterns from %s\n", len(lib.Entries), path)
	return &lib, nil
}

func (lib *Library) compile() error {
	for i := range lib.Entries {
		re, err := regexp.Compile(lib.Entries[i].Pattern)
		if err != nil {
			return fmt.Errorf("prefix %s: bad pattern: %w", lib.Entries[i].Key, err)
		}
		lib.Entries[i].re = re
	}
	return nil
}

// hasKey reports whether the library contains the exact prefix key.
func (lib *Library) hasKey(key string) bool {
	for i := range lib.Entries {
		if lib.Entries[i].Key == key {
			return true
		}
	}
	return false
}
