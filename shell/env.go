package shell

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/smartystreets/logging"
)

// Environment reads the process environment, falling back to values from
// dotenv files. Missing dotenv files are ignored.
type Environment struct {
	dotenv map[string]string
}

func NewEnvironment(logger *logging.Logger, dotenvFiles ...string) *Environment {
	values := make(map[string]string)
	for _, file := range dotenvFiles {
		loaded, err := godotenv.Read(file)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			logger.Printf("[WARN] ignoring dotenv file %s: %s", file, err)
			continue
		}
		for key, value := range loaded {
			if _, found := values[key]; !found {
				values[key] = value
			}
		}
	}
	return &Environment{dotenv: values}
}

func (this *Environment) LookupEnv(key string) (value string, set bool) {
	if value, set = os.LookupEnv(key); set {
		return value, set
	}
	value, set = this.dotenv[key]
	return value, set
}
