package core

import (
	"strings"

	"github.com/smarty/mfsync/contracts"
)

const APIKeyVariable = "BUNGIE_API_KEY"

type APIKeyResolver struct {
	environment contracts.Environment
}

func NewAPIKeyResolver(environment contracts.Environment) APIKeyResolver {
	return APIKeyResolver{environment: environment}
}

// Resolve returns the key from the environment, or blank when none is set.
// The metadata endpoint may still answer anonymously.
func (this APIKeyResolver) Resolve() string {
	value, found := this.environment.LookupEnv(APIKeyVariable)
	if !found {
		return ""
	}
	return strings.TrimSpace(value)
}
