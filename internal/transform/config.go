package transform

import (
	"errors"
	"fmt"
)

const (
	QueryKey    = "queryKey"
	MutationKey = "mutationKey"
)

var ErrInvalidKeyName = errors.New("invalid key name")

// Config describes one migration pass. It is read-only once a run starts
// and may be shared between files processed in parallel.
type Config struct {
	KeyName            string   `yaml:"keyName" json:"keyName"`
	QueryClientMethods []string `yaml:"queryClientMethods" json:"queryClientMethods"`
	Hooks              []string `yaml:"hooks" json:"hooks"`
}

// Validate checks that the key name is one the migration knows.
func (c Config) Validate() error {
	switch c.KeyName {
	case QueryKey, MutationKey:
		return nil
	default:
		return fmt.Errorf("%w: %q (expected %q or %q)", ErrInvalidKeyName, c.KeyName, QueryKey, MutationKey)
	}
}

// DefaultPasses returns the two passes of the v5 overload removal: query
// filters first, then mutation filters.
func DefaultPasses() []Config {
	return []Config{
		{
			KeyName: QueryKey,
			QueryClientMethods: []string{
				"cancelQueries",
				"getQueriesData",
				"invalidateQueries",
				"isFetching",
				"refetchQueries",
				"removeQueries",
				"resetQueries",
			},
			Hooks: []string{"useIsFetching", "useQuery"},
		},
		{
			KeyName:            MutationKey,
			QueryClientMethods: []string{},
			Hooks:              []string{"useIsMutating"},
		},
	}
}
