package store

import (
	"github.com/beyu9918/labml/internal/tracker/definitions"
)

// LoadIndicators registers empty indicators described by a definitions file.
func (s *Store) LoadIndicators(path string) error {
	doc, err := definitions.LoadIndicators(path)
	if err != nil {
		return err
	}

	inds, err := doc.Build()
	if err != nil {
		return err
	}

	for _, ind := range inds {
		if err := s.AddIndicator(ind); err != nil {
			return err
		}
	}
	return nil
}

// LoadArtifacts registers empty artifacts described by a definitions file.
func (s *Store) LoadArtifacts(path string) error {
	doc, err := definitions.LoadArtifacts(path)
	if err != nil {
		return err
	}

	arts, err := doc.Build()
	if err != nil {
		return err
	}

	for _, art := range arts {
		if err := s.AddArtifact(art); err != nil {
			return err
		}
	}
	return nil
}
