package process

import (
	"fmt"
	"os"

	"mvdan.cc/sh/v3/shell"
)

// Parse splits a command template into a Command.
// $NAME and ${NAME} are replaced from vars first and from the process
// environment second. Quoting follows POSIX shell rules; backslashes are
// escapes, so Windows paths in templates should use forward slashes.
func Parse(template string, vars map[string]string) (Command, error) {
	fields, err := shell.Fields(template, lookup(vars))
	if err != nil {
		return Command{}, fmt.Errorf("parse command %q: %w", template, err)
	}

	if len(fields) == 0 {
		return Command{}, fmt.Errorf("parse command %q: %w", template, errEmptyCommand)
	}

	return Command{Name: fields[0], Args: fields[1:]}, nil
}

// Expand substitutes variables in a single string such as a path template.
func Expand(template string, vars map[string]string) (string, error) {
	expanded, err := shell.Expand(template, lookup(vars))
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", template, err)
	}

	return expanded, nil
}

func lookup(vars map[string]string) func(string) string {
	return func(name string) string {
		if value, ok := vars[name]; ok {
			return value
		}

		return os.Getenv(name)
	}
}
