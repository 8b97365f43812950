package core

import "strings"

// Environment is the deployment stage the orchestrator runs in. It selects log format and level.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Testing     Environment = "testing"
	Production  Environment = "production"
)

var environmentAliases = map[string]Environment{
	"dev":  Development,
	"stg":  Staging,
	"test": Testing,
	"prod": Production,
}

func (e Environment) String() string {
	return string(e)
}

// IsProduction reports whether JSON logs at info level should be used.
func (e Environment) IsProduction() bool {
	return e == Production
}

// ParseEnvironment maps ENVIRONMENT values (case-insensitive, short aliases allowed) onto a known
// stage. Anything unrecognised is Development.
func ParseEnvironment(v string) Environment {
	v = strings.ToLower(strings.TrimSpace(v))
	if env, ok := environmentAliases[v]; ok {
		return env
	}
	switch env := Environment(v); env {
	case Production, Staging, Testing:
		return env
	default:
		return Development
	}
}
