// Copyright (c) 2025 ToeiRei
// Vaultmaster - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

// package i18n provides internationalization support for Vaultmaster. It
// uses the go-i18n library to load and manage translation files, allowing
// the user interface to be displayed in multiple languages.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/toeirei/vaultmaster/util/mapst"
)

// localeFS embeds the YAML translation files from the 'locales' directory
// into the application binary.
//
//go:embed locales/*.yaml
var localeFS embed.FS

// bundle stores all the loaded translation messages from the locale files.
var bundle *i18n.Bundle

// localizer is used to translate messages into a specific language.
var localizer *i18n.Localizer

// currentLang tracks the active language tag.
var currentLang string

// displayNames maps known locale tags to their native display name. Tags
// without an entry fall back to the raw tag.
var displayNames = map[string]string{
	"en": "English",
	"de": "Deutsch",
}

// Init initializes the i18n bundle and sets up the localizer for a specific
// language. It parses all embedded YAML files from the 'locales' directory.
func Init(lang string) {
	bundle = i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	files, _ := fs.ReadDir(localeFS, "locales")
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		data, _ := localeFS.ReadFile("locales/" + f.Name())
		bundle.ParseMessageFileBytes(data, f.Name())
	}

	currentLang = lang
	localizer = i18n.NewLocalizer(bundle, lang)
}

// T translates a message by its ID. Extra arguments are applied with
// fmt.Sprintf, so locale values carry plain fmt verbs. If the i18n system
// has not been initialized, it defaults to English. An unknown message ID
// is returned verbatim so a missing translation never hides output.
func T(messageID string, args ...interface{}) string {
	if localizer == nil {
		Init("en")
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: messageID})
	if err != nil && msg == "" {
		msg = messageID
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

// SetLang changes the active language of the localizer.
func SetLang(lang string) {
	Init(lang)
}

// GetLang returns the active language tag.
func GetLang() string {
	if currentLang == "" {
		return "en"
	}
	return currentLang
}

// GetAvailableLocales returns the embedded locale tags mapped to display
// names, for language pickers and validation.
func GetAvailableLocales() map[string]string {
	out := map[string]string{}
	files, _ := fs.ReadDir(localeFS, "locales")
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".yaml") {
			continue
		}
		tag := strings.TrimSuffix(f.Name(), ".yaml")
		if name, ok := displayNames[tag]; ok {
			out[tag] = name
		} else {
			out[tag] = tag
		}
	}
	return out
}

// AvailableLocaleTags returns the embedded locale tags sorted, for stable
// help output.
func AvailableLocaleTags() []string {
	tags := mapst.Keys(GetAvailableLocales())
	sort.Strings(tags)
	return tags
}
