// Package locale translates user-visible strings using TOML message bundles.
package locale

import (
	"io/fs"
	"strings"

	"github.com/miniblog/miniblog/logger"

	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

var i18nBundle *i18n.Bundle

// InitLocalizer loads every file under translation/ in i18nFS. English is the fallback.
func InitLocalizer(i18nFS fs.FS) error {
	bundle := i18n.NewBundle(language.MustParse("en-US"))
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	if err := parseTranslationFiles(i18nFS, bundle); err != nil {
		return err
	}
	i18nBundle = bundle
	return nil
}

// templateData turns "name==value" pairs into message template data.
func templateData(params []string) map[string]any {
	data := make(map[string]any, len(params))
	for _, param := range params {
		if name, value, ok := strings.Cut(param, "=="); ok {
			data[name] = value
		}
	}
	return data
}

// I18n localizes key with localizer. Params are "name==value" pairs.
// Without a localizer, or for an unknown key, the key itself is returned.
func I18n(localizer *i18n.Localizer, key string, params ...string) string {
	if localizer == nil {
		return key
	}

	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: templateData(params),
	})
	if err != nil {
		// a fallback-language message comes back together with a not-found error
		if msg != "" {
			return msg
		}
		logger.Warningf("Failed to localize message %q: %v", key, err)
		return key
	}

	return msg
}

// LocalizerMiddleware picks a localizer from the "lang" cookie or Accept-Language.
func LocalizerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if i18nBundle == nil {
			c.Next()
			return
		}
		var lang string

		if cookie, err := c.Request.Cookie("lang"); err == nil {
			lang = cookie.Value
		} else {
			lang = c.GetHeader("Accept-Language")
		}

		c.Set("localizer", i18n.NewLocalizer(i18nBundle, lang))
		c.Next()
	}
}

// FromContext returns the request's localizer, or nil if the middleware did not run.
func FromContext(c *gin.Context) *i18n.Localizer {
	if v, ok := c.Get("localizer"); ok {
		if l, ok := v.(*i18n.Localizer); ok {
			return l
		}
	}
	return nil
}

func parseTranslationFiles(i18nFS fs.FS, i18nBundle *i18n.Bundle) error {
	return fs.WalkDir(i18nFS, "translation",
		func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				return nil
			}

			data, err := fs.ReadFile(i18nFS, path)
			if err != nil {
				return err
			}

			_, err = i18nBundle.ParseMessageFileBytes(data, path)
			return err
		})
}
