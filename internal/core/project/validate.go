package project

import (
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
)

// required validates that a string field is set.
func required(s string) error {
	if s == "" {
		return errors.New("is required")
	}
	return nil
}

// Validate checks the project shard for structural problems before it
// is written back to disk.
func (p *ProjectData) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("project.id", p.Project.ID, required),
		criterio.Run("project.name", p.Project.Name, required),
		criterio.Run("project.languages.source", p.Project.Languages.Source, required),
		p.validateTargets(),
		criterio.Run("project.team.editor", p.Project.Team.Editor, required),
		p.validateSettings(),
	)
}

func (p *ProjectData) validateTargets() error {
	if len(p.Project.Languages.Targets) == 0 {
		return criterio.NewFieldErrors("project.languages.targets", errors.New("at least one target language is required"))
	}
	return nil
}

func (p *ProjectData) validateSettings() error {
	q := p.Project.Settings.QualityThreshold
	if q < 0.0 || q > 10.0 {
		return criterio.NewFieldErrors("project.settings.quality_threshold", fmt.Errorf("must be between 0.0 and 10.0, got %v", q))
	}
	return nil
}

// Validate checks the chapter shard, including every unit and
// translation version, before it is written back to disk.
func (c *ChapterData) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("chapter.slug", c.Chapter.Slug, required),
		c.validateTitle(),
		c.validateUnits(),
	)
}

func (c *ChapterData) validateTitle() error {
	if len(c.Chapter.Title) == 0 {
		return criterio.NewFieldErrors("chapter.title", errors.New("at least one language title is required"))
	}
	return nil
}

func (c *ChapterData) validateUnits() error {
	var errs criterio.FieldErrorsBuilder

	for i, unit := range c.Units {
		if unit.ID == "" {
			errs = errs.Append(fmt.Sprintf("units[%d].id", i), errors.New("is required"))
		}
		if unit.SourceText == "" {
			errs = errs.Append(fmt.Sprintf("units[%d].source_text", i), errors.New("is required"))
		}

		for lang, tr := range unit.Translations {
			field := fmt.Sprintf("units[%d].translations.%s", i, lang)
			if tr.Text == "" {
				errs = errs.Append(field+".text", errors.New("is required"))
			}
			if tr.Translator == "" {
				errs = errs.Append(field+".translator", errors.New("is required"))
			}
			if tr.QualityScore != nil && (*tr.QualityScore < 0.0 || *tr.QualityScore > 10.0) {
				errs = errs.Append(field+".quality_score", fmt.Errorf("must be between 0.0 and 10.0, got %v", *tr.QualityScore))
			}
			if cs := tr.Metadata.ConfidenceScore; cs < 0.0 || cs > 1.0 {
				errs = errs.Append(field+".metadata.confidence_score", fmt.Errorf("must be between 0.0 and 1.0, got %v", cs))
			}
		}
	}

	return errs.ToError()
}
