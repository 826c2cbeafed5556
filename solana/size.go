package shdw_drive

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	units "github.com/docker/go-units"
)

// Only decimal KB, MB and GB are accepted. go-units alone would also take
// bare bytes, TB, PB and binary suffixes.
var storageSizeRegex = regexp.MustCompile(`^(\d+(\.\d+)?) ?([kKmMgG])[bB]$`)

var storageUnits = map[string]int64{
	"k": units.KB,
	"m": units.MB,
	"g": units.GB,
}

// ParseStorageSize converts a size such as "10MB" or "1.5 GB" into bytes.
// Fractional sizes must come to a whole number of bytes.
func ParseStorageSize(size string) (uint64, error) {
	size = strings.TrimSpace(size)
	matches := storageSizeRegex.FindStringSubmatch(size)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStorage, size)
	}

	amount, ok := new(big.Rat).SetString(matches[1])
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStorage, size)
	}
	amount.Mul(amount, new(big.Rat).SetInt64(storageUnits[strings.ToLower(matches[3])]))

	if !amount.IsInt() {
		return 0, fmt.Errorf("%w: %q is not a whole number of bytes", ErrInvalidStorage, size)
	}
	n := amount.Num()
	if n.Sign() <= 0 {
		return 0, fmt.Errorf("%w: size must be greater than zero", ErrInvalidStorage)
	}
	if !n.IsUint64() {
		return 0, fmt.Errorf("%w: %q is too large", ErrInvalidStorage, size)
	}

	return n.Uint64(), nil
}

// FormatStorageSize renders a byte count the way the coordinator reports sizes.
func FormatStorageSize(bytes uint64) string {
	return units.HumanSize(float64(bytes))
}
