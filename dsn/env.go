package dsn

import (
	"os"
	"regexp"
	"strings"
)

const (
	envvardefaultSeparator = ":-"
)

var (
	regexEnvVar      = regexp.MustCompile("^[a-zA-Z_][a-zA-Z0-9_]*")
	regexEnvVarExact = regexp.MustCompile("^[a-zA-Z_][a-zA-Z0-9_]*$")
)

func replaceEnvVar(arg string, override map[string]string) (string, error) {
	s := strings.Builder{}
	for text := arg; len(text) > 0; {
		k := strings.IndexAny(text, "$")
		if k < 0 || k+1 >= len(text) {
			s.WriteString(text)
			break
		}
		s.WriteString(text[0:k])
		text = text[k+1:]

		envvar := ""
		envvaldefault := ""
		if name := regexEnvVar.FindString(text); name != "" {
			envvar = name
			text = text[len(name):]
		} else if text[0] == '{' {
			text = text[1:]
			end := strings.IndexAny(text, "}")
			if end < 0 {
				return "", errUnclosedBrace
			}
			envpair := strings.SplitN(text[0:end], envvardefaultSeparator, 2)
			envvar = envpair[0]
			if len(envpair) > 1 {
				envvaldefault = envpair[1]
			}
			text = text[end+1:]
		} else if text[0] == '$' {
			s.WriteString("$")
			text = text[1:]
			continue
		} else {
			s.WriteString("$")
			continue
		}
		if !regexEnvVarExact.MatchString(envvar) {
			return "", errInvalidEnvVar
		}

		s.WriteString(lookupEnv(envvar, envvaldefault, override))
	}
	return s.String(), nil
}

func lookupEnv(envvar string, envvaldefault string, override map[string]string) string {
	if val, ok := override[envvar]; ok {
		return val
	}
	if val, ok := os.LookupEnv(envvar); ok {
		return val
	}
	return envvaldefault
}
