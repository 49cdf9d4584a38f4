package sdk

import "github.com/ethanbaker/mitra/pkg/utils"

// NewClientFromConfig creates a client from QUERY_API_URL and QUERY_API_TIMEOUT
func NewClientFromConfig(cfg *utils.Config) *Client {
	return NewClient(
		cfg.GetWithDefault("QUERY_API_URL", DefaultBaseURL),
		cfg.GetDurationWithDefault("QUERY_API_TIMEOUT", 0),
	)
}
