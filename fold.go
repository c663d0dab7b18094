package rvdata

import (
	"regexp"
	"strings"
)

var (
	foldAcronym = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)
	foldCamel   = regexp.MustCompile(`([a-z\d])([A-Z])`)
	foldSpacer  = strings.NewReplacer("::", "/", "-", "_", " ", "_")
)

// Fold turns a free-form script name into a lowercase, underscore
// separated identifier usable as a file name: "BattleManager" becomes
// "battle_manager", "HTTPServer" becomes "http_server" and "Foo::Bar"
// becomes "foo/bar". Distinct names may fold to the same identifier.
func Fold(name string) string {
	s := strings.ReplaceAll(name, "::", "/")
	s = foldAcronym.ReplaceAllString(s, "${1}_${2}")
	s = foldCamel.ReplaceAllString(s, "${1}_${2}")
	s = foldSpacer.Replace(s)
	return strings.ToLower(s)
}
