package cmd

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/text/language"

	"github.com/lehigh-university-libraries/iiif-gallery/internal/iiif"
	"github.com/lehigh-university-libraries/iiif-gallery/internal/manifests"
	"github.com/lehigh-university-libraries/iiif-gallery/internal/resolver"
)

// loadVocabulary reads the vocabulary at path, or GALLERY_VOCABULARY when
// path is empty. Without either the defaults are used.
func loadVocabulary(path string) (resolver.Vocabulary, error) {
	if path == "" {
		path = os.Getenv("GALLERY_VOCABULARY")
	}
	if path == "" {
		return resolver.DefaultVocabulary(), nil
	}
	return resolver.LoadVocabulary(path)
}

// parseLanguages reads an Accept-Language style list such as "fr, en;q=0.8",
// falling back to GALLERY_LANGUAGES.
func parseLanguages(list string) ([]language.Tag, error) {
	if list == "" {
		list = os.Getenv("GALLERY_LANGUAGES")
	}
	if list == "" {
		return nil, nil
	}

	tags, _, err := language.ParseAcceptLanguage(list)
	if err != nil {
		return nil, fmt.Errorf("invalid language list %q: %w", list, err)
	}
	return tags, nil
}

func newResolver(vocabularyPath, languages string) (*resolver.Resolver, error) {
	vocabulary, err := loadVocabulary(vocabularyPath)
	if err != nil {
		return nil, err
	}
	tags, err := parseLanguages(languages)
	if err != nil {
		return nil, err
	}
	return resolver.New(resolver.WithVocabulary(vocabulary), resolver.WithLanguages(tags...)), nil
}

// sourceLoader fetches URLs and reads local files, for commands that accept
// either.
type sourceLoader struct {
	client *manifests.Client
}

func (l sourceLoader) Fetch(ctx context.Context, source string) (*iiif.Manifest, error) {
	return l.client.Load(ctx, source)
}
