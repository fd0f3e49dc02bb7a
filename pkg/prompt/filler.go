// Package prompt fills the brand-manual form interactively and asks for
// template and section choices.
package prompt

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-brandmanual/pkg/customization"
	"github.com/goliatone/go-brandmanual/pkg/formdata"
	"github.com/goliatone/go-brandmanual/pkg/templates"
	"github.com/goliatone/go-brandmanual/pkg/validation"
)

// Filler walks the form section by section.
type Filler struct {
	driver Driver
}

// NewFiller returns a Filler over driver, defaulting to the survey driver.
func NewFiller(driver Driver) *Filler {
	if driver == nil {
		driver = NewSurveyDriver()
	}
	return &Filler{driver: driver}
}

// Fill prompts for every field of form, using the current value as the
// default. When sections is non-empty only fields of those sections are
// asked. It returns the number of fields whose value changed.
func (f *Filler) Fill(ctx context.Context, form *formdata.Form, sections ...string) (int, error) {
	only := map[string]bool{}
	for _, s := range sections {
		only[s] = true
	}

	changed := 0
	current := ""
	for _, field := range form.Fields() {
		if len(only) > 0 && !only[field.Section] {
			continue
		}
		if field.Section != current {
			current = field.Section
			title := current
			if info, ok := customization.Lookup(current); ok {
				title = info.Title
			}
			if err := f.driver.Info(ctx, "\n== "+title+" =="); err != nil {
				return changed, err
			}
		}

		value, err := f.ask(ctx, field, form.Value(field.ID))
		if err != nil {
			return changed, err
		}
		value = strings.TrimSpace(value)
		if value != form.Value(field.ID) {
			form.SetValue(field.ID, value)
			changed++
		}
	}
	return changed, nil
}

func (f *Filler) ask(ctx context.Context, field formdata.Field, current string) (string, error) {
	message := field.Label
	if field.Required {
		message += " *"
	}
	if current == "" {
		current = field.Default
	}
	if field.Kind == formdata.KindTextArea {
		return f.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: current})
	}
	return f.driver.Input(ctx, InputConfig{
		Message:   message,
		Default:   current,
		Validator: validatorFor(field),
	})
}

func validatorFor(field formdata.Field) func(string) error {
	return func(v string) error {
		v = strings.TrimSpace(v)
		if v == "" {
			if field.Required {
				return errors.New(validation.MsgRequired)
			}
			return nil
		}
		switch field.Kind {
		case formdata.KindEmail:
			if !validation.IsValidEmail(v) {
				return errors.New(validation.MsgInvalidEmail)
			}
		case formdata.KindURL:
			if !validation.IsValidURL(v) {
				return errors.New(validation.MsgInvalidURL)
			}
		case formdata.KindColor:
			if !customization.ValidColor(v) {
				return errors.New(validation.MsgInvalidColor)
			}
		}
		return nil
	}
}

// ChooseTemplate asks for one of list, preselecting currentID.
func (f *Filler) ChooseTemplate(ctx context.Context, list []templates.Template, currentID string) (templates.Template, error) {
	if len(list) == 0 {
		return templates.Classic(), nil
	}
	options := make([]string, len(list))
	def := 0
	for i, t := range list {
		options[i] = t.Name + " - " + t.Description
		if t.ID == currentID {
			def = i
		}
	}
	idx, err := f.driver.Select(ctx, SelectConfig{
		Message:      "Template",
		Options:      options,
		DefaultIndex: def,
	})
	if err != nil {
		return templates.Template{}, err
	}
	if idx < 0 || idx >= len(list) {
		return list[def], nil
	}
	return list[idx], nil
}

// ChooseSections asks which sections to include and applies the answer
// to c.
func (f *Filler) ChooseSections(ctx context.Context, c *customization.Customization) error {
	catalog := customization.Catalog()
	options := make([]string, len(catalog))
	var defaults []int
	for i, info := range catalog {
		options[i] = info.Title
		if c.SectionEnabled(info.ID) {
			defaults = append(defaults, i)
		}
	}
	picked, err := f.driver.MultiSelect(ctx, SelectConfig{
		Message:  "Seções do manual",
		Options:  options,
		Defaults: defaults,
		PageSize: len(options),
	})
	if err != nil {
		return err
	}
	enabled := map[int]bool{}
	for _, idx := range picked {
		enabled[idx] = true
	}
	for i, info := range catalog {
		if err := c.ToggleSection(info.ID, enabled[i]); err != nil {
			return err
		}
	}
	return nil
}

// Confirm asks a yes/no question.
func (f *Filler) Confirm(ctx context.Context, message string, def bool) (bool, error) {
	return f.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: def})
}
