package validation

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ethereumAddressRegex = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	botIDRegex           = regexp.MustCompile(`^0x[a-fA-F0-9]{1,64}$`)
	urlRegex             = regexp.MustCompile(`^https?://[^\s/$.?#].[^\s]*$`)
)

// ValidateAddress validates a blockchain address format
func ValidateAddress(address string, chain string) error {
	if address == "" {
		return errors.New("address cannot be empty")
	}

	switch strings.ToLower(chain) {
	case "ethereum", "arbitrum", "optimism":
		return validateEthereumAddress(address)
	default:
		return errors.New("unsupported chain " + chain)
	}
}

// validateEthereumAddress validates EVM address format
func validateEthereumAddress(address string) error {
	if !ethereumAddressRegex.MatchString(address) {
		return errors.New("invalid Ethereum address format")
	}
	return nil
}

// ValidateBotID validates the hex identifier the bot publishes alerts under
func ValidateBotID(botID string) error {
	if botID == "" {
		return errors.New("bot id cannot be empty")
	}
	if !botIDRegex.MatchString(botID) {
		return errors.New("bot id must be a 0x-prefixed hex string")
	}
	return nil
}

// ValidateURL validates URL format
func ValidateURL(url string) error {
	if url == "" {
		return errors.New("URL cannot be empty")
	}

	if !urlRegex.MatchString(url) {
		return errors.New("invalid URL format")
	}

	return nil
}
