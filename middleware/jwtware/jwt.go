// Package jwtware extracts raw bearer tokens from router requests.
//
// Extraction never validates a token and never rejects a request, callers
// decide what a missing or unusable credential means.
package jwtware

import (
	"errors"
	"strings"

	"github.com/goliatone/go-router"
)

var (
	DefaultTokenLookup       = "header:" + router.HeaderAuthorization
	DefaultAuthScheme        = "Bearer"
	ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")
)

// JWTExtractor pulls a raw token out of a request
type JWTExtractor func(c router.Context) (string, error)

// ExtractRawTokenFromContext runs extractors in order and returns the first token found
func ExtractRawTokenFromContext(ctx router.Context, extractors []JWTExtractor) (string, error) {
	raw := ""
	err := ErrJWTMissingOrMalformed

	for _, extractor := range extractors {
		raw, err = extractor(ctx)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

// GetExtractors parses a lookup definition such as
// "header:Authorization,query:token,cookie:jwt".
func GetExtractors(tokenLookup string, authSchemes ...string) []JWTExtractor {
	extractors := make([]JWTExtractor, 0)

	if strings.TrimSpace(tokenLookup) == "" {
		tokenLookup = DefaultTokenLookup
	}

	authScheme := DefaultAuthScheme
	if len(authSchemes) > 0 && strings.TrimSpace(authSchemes[0]) != "" {
		authScheme = strings.TrimSpace(authSchemes[0])
	}

	for _, rootPart := range strings.Split(tokenLookup, ",") {
		parts := strings.SplitN(strings.TrimSpace(rootPart), ":", 2)
		if len(parts) != 2 {
			continue
		}

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			extractors = append(extractors, jwtFromHeader(parts[1], authScheme))
		case "query":
			extractors = append(extractors, jwtFromQuery(parts[1]))
		case "param":
			extractors = append(extractors, jwtFromParam(parts[1]))
		case "cookie":
			extractors = append(extractors, jwtFromCookie(parts[1]))
		}
	}

	return extractors
}

// SchemeToken strips authScheme from a header value. Scheme matching ignores
// case and the token must not be empty.
func SchemeToken(value, authScheme string) (string, bool) {
	authScheme = strings.TrimSpace(authScheme)
	l := len(authScheme)
	if l == 0 {
		return "", false
	}
	if len(value) > l+1 && strings.EqualFold(value[:l], authScheme) && value[l] == ' ' {
		token := strings.TrimSpace(value[l:])
		return token, token != ""
	}
	return "", false
}

// jwtFromHeader returns a function that extracts token from the request header.
func jwtFromHeader(header string, authScheme string) JWTExtractor {
	return func(c router.Context) (string, error) {
		if token, ok := SchemeToken(c.GetString(header, ""), authScheme); ok {
			return token, nil
		}
		return "", ErrJWTMissingOrMalformed
	}
}

// jwtFromQuery returns a function that extracts token from the query string.
func jwtFromQuery(param string) JWTExtractor {
	return func(c router.Context) (string, error) {
		token := c.Query(param, "")
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

// jwtFromParam returns a function that extracts token from the url param string.
func jwtFromParam(param string) JWTExtractor {
	return func(c router.Context) (string, error) {
		token := c.Param(param)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

// jwtFromCookie returns a function that extracts token from the named cookie.
func jwtFromCookie(name string) JWTExtractor {
	return func(c router.Context) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}
