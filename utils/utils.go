package utils

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// SliceContains reports whether the provided string is present in the given slice of strings.
func SliceContains(list []string, target string) bool {
	for _, s := range list {
		if s == target {
			return true
		}
	}
	return false
}

// IsValidAddress reports whether the string is a well formed 0x-prefixed EVM address.
func IsValidAddress(address string) bool {
	if !strings.HasPrefix(address, "0x") || len(address) != 42 {
		return false
	}
	return common.IsHexAddress(address)
}

// NormalizeAddress lowercases an address for identity comparisons.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
